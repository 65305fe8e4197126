package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuiescentValidatorRunsAfterQuietPeriod(t *testing.T) {
	validator := NewQuiescentValidator(10 * time.Millisecond)
	reported := make(chan error, 1)

	validator.Validate(context.Background(), "name", "servers",
		func(ctx context.Context, value string) error {
			if value == "servers" {
				return errors.New("taken")
			}
			return nil
		},
		func(err error) { reported <- err })

	select {
	case err := <-reported:
		assert.EqualError(t, err, "taken")
	case <-time.After(time.Second):
		t.Fatal("validation never reported")
	}
}

func TestQuiescentValidatorSupersedesInFlightKey(t *testing.T) {
	validator := NewQuiescentValidator(30 * time.Millisecond)
	reported := make(chan string, 2)

	probe := func(ctx context.Context, value string) error { return nil }

	validator.Validate(context.Background(), "name", "first", probe,
		func(err error) { reported <- "first" })
	// New input before the quiet period elapses supersedes the first run.
	time.Sleep(5 * time.Millisecond)
	validator.Validate(context.Background(), "name", "second", probe,
		func(err error) { reported <- "second" })

	select {
	case value := <-reported:
		require.Equal(t, "second", value)
	case <-time.After(time.Second):
		t.Fatal("validation never reported")
	}

	select {
	case value := <-reported:
		t.Fatalf("superseded validation reported: %s", value)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestQuiescentValidatorIndependentKeys(t *testing.T) {
	validator := NewQuiescentValidator(10 * time.Millisecond)
	reported := make(chan string, 2)

	probe := func(ctx context.Context, value string) error { return nil }
	validator.Validate(context.Background(), "a", "one", probe,
		func(err error) { reported <- "a" })
	validator.Validate(context.Background(), "b", "two", probe,
		func(err error) { reported <- "b" })

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case key := <-reported:
			seen[key] = true
		case <-time.After(time.Second):
			t.Fatal("validation never reported")
		}
	}
	assert.True(t, seen["a"] && seen["b"])
}

func TestQuiescentValidatorCancel(t *testing.T) {
	validator := NewQuiescentValidator(20 * time.Millisecond)
	reported := make(chan error, 1)

	validator.Validate(context.Background(), "name", "value",
		func(ctx context.Context, value string) error { return nil },
		func(err error) { reported <- err })
	validator.Cancel("name")

	select {
	case <-reported:
		t.Fatal("cancelled validation reported")
	case <-time.After(50 * time.Millisecond):
	}
}
