package ledger

import (
	"errors"
	"math"
	"time"
)

const (
	defaultLoanPeriodDays = 14
	defaultFineRatePerDay = 5.0

	hoursPerDay = 24
)

var (
	// ErrInvalidLoanPeriod is returned when the loan period is not positive.
	ErrInvalidLoanPeriod = errors.New("loan period must be positive")

	// ErrNegativeFineRate is returned when the fine rate is negative.
	ErrNegativeFineRate = errors.New("fine rate must not be negative")
)

// Policy holds the lending business constants. The source system hardcoded
// a 14-day period and a 5-per-day fine; both are configuration here, with
// those values as defaults.
type Policy struct {
	LoanPeriod     time.Duration
	FineRatePerDay float64
}

// DefaultPolicy returns the stock lending policy: 14 days, 5 per day.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriod:     defaultLoanPeriodDays * hoursPerDay * time.Hour,
		FineRatePerDay: defaultFineRatePerDay,
	}
}

// BuildPolicy creates a validated Policy.
func BuildPolicy(loanPeriod time.Duration, fineRatePerDay float64) (Policy, error) {
	if loanPeriod <= 0 {
		return Policy{}, ErrInvalidLoanPeriod
	}

	if fineRatePerDay < 0 {
		return Policy{}, ErrNegativeFineRate
	}

	return Policy{
		LoanPeriod:     loanPeriod,
		FineRatePerDay: fineRatePerDay,
	}, nil
}

// DueDate computes the due date for a loan starting at borrowedAt.
func (p Policy) DueDate(borrowedAt time.Time) time.Time {
	return borrowedAt.Add(p.LoanPeriod)
}

// Fine computes the monetary penalty accrued at the given instant:
// days late (rounded up, never negative) times the daily rate.
// Pure and deterministic; now is always an explicit parameter.
func (p Policy) Fine(dueDate time.Time, now time.Time) float64 {
	days := DaysLate(dueDate, now)
	if days <= 0 {
		return 0
	}

	return float64(days) * p.FineRatePerDay
}

// DaysLate returns how many whole or partial days now is past dueDate,
// or 0 when the due date has not passed.
func DaysLate(dueDate time.Time, now time.Time) int {
	late := now.Sub(dueDate)
	if late <= 0 {
		return 0
	}

	return int(math.Ceil(late.Hours() / hoursPerDay))
}
