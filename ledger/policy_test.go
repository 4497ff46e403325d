package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librento/librento/ledger"
)

func Test_BuildPolicy_ValidatesInputs(t *testing.T) {
	testCases := []struct {
		name        string
		loanPeriod  time.Duration
		fineRate    float64
		expectedErr error
	}{
		{
			name:       "valid policy",
			loanPeriod: 14 * 24 * time.Hour,
			fineRate:   5,
		},
		{
			name:       "zero fine rate is valid",
			loanPeriod: 7 * 24 * time.Hour,
			fineRate:   0,
		},
		{
			name:        "zero loan period",
			loanPeriod:  0,
			fineRate:    5,
			expectedErr: ledger.ErrInvalidLoanPeriod,
		},
		{
			name:        "negative loan period",
			loanPeriod:  -time.Hour,
			fineRate:    5,
			expectedErr: ledger.ErrInvalidLoanPeriod,
		},
		{
			name:        "negative fine rate",
			loanPeriod:  14 * 24 * time.Hour,
			fineRate:    -1,
			expectedErr: ledger.ErrNegativeFineRate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			policy, err := ledger.BuildPolicy(tc.loanPeriod, tc.fineRate)

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.loanPeriod, policy.LoanPeriod)
			assert.InDelta(t, tc.fineRate, policy.FineRatePerDay, 0.0001)
		})
	}
}

func Test_Policy_DueDate_AddsTheLoanPeriod(t *testing.T) {
	// arrange
	policy := ledger.DefaultPolicy()
	borrowedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// act
	dueDate := policy.DueDate(borrowedAt)

	// assert
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), dueDate)
}

func Test_Policy_Fine_IsZero_BeforeAndAtTheDueDate(t *testing.T) {
	// arrange
	policy := ledger.DefaultPolicy()
	dueDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// assert
	assert.InDelta(t, 0.0, policy.Fine(dueDate, dueDate.Add(-48*time.Hour)), 0.0001)
	assert.InDelta(t, 0.0, policy.Fine(dueDate, dueDate), 0.0001)
}

func Test_Policy_Fine_RoundsPartialDaysUp(t *testing.T) {
	// arrange
	policy := ledger.DefaultPolicy()
	dueDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name         string
		now          time.Time
		expectedFine float64
	}{
		{
			name:         "one second late counts as one day",
			now:          dueDate.Add(time.Second),
			expectedFine: 5,
		},
		{
			name:         "exactly one day late",
			now:          dueDate.Add(24 * time.Hour),
			expectedFine: 5,
		},
		{
			name:         "one day and one hour late counts as two days",
			now:          dueDate.Add(25 * time.Hour),
			expectedFine: 10,
		},
		{
			name:         "three days late",
			now:          time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
			expectedFine: 15,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			fine := policy.Fine(dueDate, tc.now)

			// assert
			assert.InDelta(t, tc.expectedFine, fine, 0.0001)
		})
	}
}

func Test_Policy_Fine_UsesTheConfiguredRate(t *testing.T) {
	// arrange
	policy, err := ledger.BuildPolicy(7*24*time.Hour, 2.5)
	require.NoError(t, err)

	dueDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// act
	fine := policy.Fine(dueDate, dueDate.Add(2*24*time.Hour))

	// assert
	assert.InDelta(t, 5.0, fine, 0.0001)
}

func Test_DaysLate_NeverNegative(t *testing.T) {
	// arrange
	dueDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	// assert
	assert.Equal(t, 0, ledger.DaysLate(dueDate, dueDate.Add(-10*24*time.Hour)))
	assert.Equal(t, 0, ledger.DaysLate(dueDate, dueDate))
	assert.Equal(t, 1, ledger.DaysLate(dueDate, dueDate.Add(time.Minute)))
}
