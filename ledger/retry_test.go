package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librento/librento/ledger"
)

func Test_Retry_Succeeds_OnFirstAttempt(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := ledger.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		return nil
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func Test_Retry_RetriesOnConcurrencyConflict_UntilSuccess(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := ledger.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return ledger.ErrConcurrencyConflict
		}
		return nil
	}, ledger.WithBaseDelay(time.Millisecond))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func Test_Retry_FailsFast_OnNonRetryableErrors(t *testing.T) {
	// arrange
	permanentErr := errors.New("permanent failure")
	attempts := 0

	// act
	err := ledger.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		return permanentErr
	})

	// assert
	assert.ErrorIs(t, err, permanentErr)
	assert.Equal(t, 1, attempts)
}

func Test_Retry_GivesUp_AfterMaxAttempts(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := ledger.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		attempts++
		return ledger.ErrConcurrencyConflict
	}, ledger.WithMaxAttempts(3), ledger.WithBaseDelay(time.Millisecond))

	// assert
	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.Equal(t, 3, attempts)
}

func Test_Retry_Stops_WhenTheContextIsCancelled(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	// act
	err := ledger.RetryWithExponentialBackoff(ctx, func(_ context.Context) error {
		attempts++
		cancel()
		return ledger.ErrConcurrencyConflict
	}, ledger.WithBaseDelay(10*time.Millisecond))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func Test_Retry_ValidatesItsOptions(t *testing.T) {
	testCases := []struct {
		name        string
		option      ledger.RetryOption
		expectedErr error
	}{
		{
			name:        "zero max attempts",
			option:      ledger.WithMaxAttempts(0),
			expectedErr: ledger.ErrInvalidMaxAttempts,
		},
		{
			name:        "negative base delay",
			option:      ledger.WithBaseDelay(-time.Millisecond),
			expectedErr: ledger.ErrNegativeBaseDelay,
		},
		{
			name:        "jitter factor above one",
			option:      ledger.WithJitterFactor(1.5),
			expectedErr: ledger.ErrInvalidJitterFactor,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := ledger.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
				return nil
			}, tc.option)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
