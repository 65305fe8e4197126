package auth

import (
	"strings"
	"time"
)

// Collection names in the backing store.
const (
	UserCollection  = "management.users"
	GroupCollection = "management.groups"
)

type PasswordHash struct {
	Hash    []byte `bson:"hash" json:"hash"`
	Salt    []byte `bson:"salt" json:"salt"`
	Method  string `bson:"method" json:"method"`   // "argon2id"
	Time    uint32 `bson:"time" json:"time"`       // time parameter for Argon2
	Memory  uint32 `bson:"memory" json:"memory"`   // memory parameter in KiB
	Threads uint8  `bson:"threads" json:"threads"` // threads parameter
	KeyLen  uint32 `bson:"keylen" json:"keylen"`   // length of the hash in bytes
}

// User is one account. Every user belongs to exactly one group; the group
// carries the rights and the per-type capabilities resolve against its id.
type User struct {
	PublicID         int64        `bson:"public_id" json:"public_id"`
	UserName         string       `bson:"user_name" json:"user_name"`
	FirstName        string       `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName         string       `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Email            string       `bson:"email,omitempty" json:"email,omitempty"`
	GroupID          int64        `bson:"group_id" json:"group_id"`
	Active           bool         `bson:"active" json:"active"`
	PasswordHash     PasswordHash `bson:"password_hash" json:"-"`
	RegistrationTime time.Time    `bson:"registration_time" json:"registration_time"`
}

// DisplayName returns the human-readable name of the user, falling back to
// the account name when no real name is set.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.UserName
	}
	return name
}

// NewUser carries the plaintext credentials of an account being created.
// The password is hashed before the record ever reaches the store.
type NewUser struct {
	UserName  string
	FirstName string
	LastName  string
	Email     string
	GroupID   int64
	Password  string
}

// UserGroup is one permission group. Rights are dotted names; a trailing
// wildcard segment grants every right below it.
type UserGroup struct {
	PublicID int64    `bson:"public_id" json:"public_id"`
	Name     string   `bson:"name" json:"name"`
	Label    string   `bson:"label" json:"label"`
	Rights   []string `bson:"rights" json:"rights"`
}

// HasRight reports whether the group holds the named right, either exactly
// or through a wildcard grant.
func (g *UserGroup) HasRight(name string) bool {
	for _, right := range g.Rights {
		if right == name {
			return true
		}
		if strings.HasSuffix(right, ".*") &&
			strings.HasPrefix(name, strings.TrimSuffix(right, "*")) {
			return true
		}
		if right == "*" {
			return true
		}
	}
	return false
}
