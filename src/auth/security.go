package auth

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Constant-time comparison to prevent timing attacks
func SlowEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	var result byte
	for i := 0; i < len(a); i++ {
		result |= a[i] ^ b[i]
	}

	return result == 0
}

// HashPassword hashes a plaintext password using Argon2id.
// Parameters recommended by OWASP:
// - Time: 1
// - Memory: 64 * 1024 (64 MB)
// - Threads: 4
// - Key length: 32 bytes
func HashPassword(password string) (PasswordHash, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return PasswordHash{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	timeParam := uint32(1)
	memory := uint32(64 * 1024)
	threads := uint8(4)
	keyLen := uint32(32)
	hash := argon2.IDKey([]byte(password), salt, timeParam, memory, threads, keyLen)

	return PasswordHash{
		Hash:    hash,
		Salt:    salt,
		Method:  "argon2id",
		Time:    timeParam,
		Memory:  memory,
		Threads: threads,
		KeyLen:  keyLen,
	}, nil
}

// VerifyPassword checks a plaintext password against a stored hash using the
// stored parameters and a constant-time comparison.
func VerifyPassword(stored PasswordHash, password string) bool {
	hash := argon2.IDKey(
		[]byte(password),
		stored.Salt,
		stored.Time,
		stored.Memory,
		stored.Threads,
		stored.KeyLen,
	)
	return SlowEqual(hash, stored.Hash)
}
