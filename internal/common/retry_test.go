package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/summon-almanac/internal/service"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
	}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		wantErr   error
		wantCalls int
	}{
		{name: "success", err: nil, wantCalls: 1},
		{name: "retryable", err: &RetryableError{Err: errors.New("timeout"), Retryable: true}, wantErr: ErrMaxRetries, wantCalls: 3},
		{name: "unavailable", err: ErrWikiUnavailable, wantErr: ErrWikiUnavailable, wantCalls: 3},
		{name: "permanent", err: Permanent(errors.New("bad request")), wantCalls: 1},
		{name: "plain error", err: ErrPageNotFound, wantErr: ErrPageNotFound, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				return tt.err
			}, fastRetry(3))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWithRetry_RecoversAfterFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return ErrRateLimit
		}
		return nil
	}, fastRetry(3))

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return nil
	}, fastRetry(3))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestUserError(t *testing.T) {
	err := NewUserError("run `almanac servants` first", ErrNotFound)
	assert.Equal(t, "run `almanac servants` first: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "plain", (&UserError{Hint: "plain"}).Error())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("debug").String())
	assert.Equal(t, "WARN", ParseLevel(" Warning ").String())
	assert.Equal(t, "ERROR", ParseLevel("error").String())
	assert.Equal(t, "INFO", ParseLevel("bogus").String())
}
