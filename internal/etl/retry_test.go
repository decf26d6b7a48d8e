package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 7, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 800*time.Millisecond, p.Delay(4))
	assert.Equal(t, time.Second, p.Delay(5))

	assert.Equal(t, time.Duration(0), DefaultRetryPolicy().Delay(3))
}

func TestRetryPolicyDo(t *testing.T) {
	tests := map[string]struct {
		failures     int
		permanentAt  int
		wantAttempts int
		wantErr      bool
	}{
		"first attempt succeeds":  {failures: 0, wantAttempts: 1},
		"succeeds after failures": {failures: 3, wantAttempts: 4},
		"last attempt succeeds":   {failures: 6, wantAttempts: 7},
		"all attempts fail":       {failures: 100, wantAttempts: 7, wantErr: true},
		"permanent error stops":   {failures: 100, permanentAt: 2, wantAttempts: 2, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			calls := 0
			attempts, err := DefaultRetryPolicy().Do(context.Background(), func(attempt int) error {
				calls++
				assert.Equal(t, calls, attempt)
				if attempt == tc.permanentAt {
					return Permanent(errBoom)
				}
				if attempt <= tc.failures {
					return errBoom
				}
				return nil
			})

			assert.Equal(t, tc.wantAttempts, attempts)
			assert.Equal(t, tc.wantAttempts, calls)
			if tc.wantErr {
				require.ErrorIs(t, err, errBoom)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRetryPolicyDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 7, InitialDelay: time.Hour, Multiplier: 1}

	calls := 0
	attempts, err := p.Do(ctx, func(int) error {
		calls++
		cancel()
		return errBoom
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	require.ErrorIs(t, err, errBoom)
}

func TestRetryPolicyDoCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := DefaultRetryPolicy().Do(ctx, func(int) error {
		t.Fatal("fn must not be called")
		return nil
	})

	assert.Equal(t, 0, attempts)
	require.ErrorIs(t, err, context.Canceled)
}
