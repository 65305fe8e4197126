package framework

import (
	"context"
	"sync"
	"time"
)

// ValidateFunc checks a candidate value, e.g. a name uniqueness probe against
// the store.
type ValidateFunc func(ctx context.Context, value string) error

// QuiescentValidator runs a validation only after the input for a key has
// been quiet for the configured delay. A newer request for the same key
// supersedes and cancels any in-flight validation of that key; requests for
// different keys are independent.
type QuiescentValidator struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingValidation
}

type pendingValidation struct {
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewQuiescentValidator(delay time.Duration) *QuiescentValidator {
	return &QuiescentValidator{
		delay:   delay,
		pending: make(map[string]*pendingValidation),
	}
}

// Validate schedules fn for the key once input has been quiet for the delay.
// The report callback receives the validation outcome; superseded runs never
// report.
func (v *QuiescentValidator) Validate(ctx context.Context, key, value string, fn ValidateFunc, report func(error)) {
	runCtx, cancel := context.WithCancel(ctx)

	v.mu.Lock()
	if previous, ok := v.pending[key]; ok {
		previous.timer.Stop()
		previous.cancel()
	}
	entry := &pendingValidation{cancel: cancel}
	entry.timer = time.AfterFunc(v.delay, func() {
		v.mu.Lock()
		if v.pending[key] == entry {
			delete(v.pending, key)
		}
		v.mu.Unlock()

		if runCtx.Err() != nil {
			return
		}
		err := fn(runCtx, value)
		if runCtx.Err() != nil {
			return
		}
		report(err)
	})
	v.pending[key] = entry
	v.mu.Unlock()
}

// Cancel drops any pending validation for the key.
func (v *QuiescentValidator) Cancel(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if entry, ok := v.pending[key]; ok {
		entry.timer.Stop()
		entry.cancel()
		delete(v.pending, key)
	}
}
