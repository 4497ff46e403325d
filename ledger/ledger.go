package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/librento/librento/catalog"
	"github.com/librento/librento/directory"
)

const (
	logMsgBorrowCompleted    = "borrow command completed"
	logMsgReturnCompleted    = "return command completed"
	logMsgCompensationFailed = "availability compensation failed, catalog may be inconsistent"
	logAttrError             = "error"
	logAttrBookID            = "book_id"
	logAttrMemberEmail       = "member_email"
	logAttrRecordID          = "record_id"
	logAttrDueDate           = "due_date"
)

var (
	// ErrUnavailableBook is returned when a borrow targets a book with no copies left.
	ErrUnavailableBook = errors.New("no copies of this book are available")

	// ErrDuplicateOpenLoan is returned when the member already holds an open loan
	// for the same book.
	ErrDuplicateOpenLoan = errors.New("member already has an open loan for this book")
)

// Logger interface for command logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Ledger is the borrow/return core. It validates commands against the
// catalog and directory, applies them to the record store, and keeps
// availability adjustments atomic with record changes.
//
// Construct one Ledger per process and pass it by reference; it owns no
// global state.
type Ledger struct {
	books        catalog.Store
	members      directory.Directory
	records      RecordStore
	policy       Policy
	clock        func() time.Time
	logger       Logger
	retryOptions []RetryOption
	pairLocks    keyedMutex
}

// Option defines a functional option for configuring a Ledger.
type Option func(*Ledger) error

// WithPolicy sets the lending policy.
func WithPolicy(policy Policy) Option {
	return func(l *Ledger) error {
		if policy.LoanPeriod <= 0 {
			return ErrInvalidLoanPeriod
		}
		if policy.FineRatePerDay < 0 {
			return ErrNegativeFineRate
		}

		l.policy = policy

		return nil
	}
}

// WithClock sets the time source. Tests inject a fixed clock here; production
// code keeps the default time.Now.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) error {
		if clock == nil {
			return errors.New("clock must not be nil")
		}

		l.clock = clock

		return nil
	}
}

// WithLogger sets the logger for command outcomes and consistency warnings.
func WithLogger(logger Logger) Option {
	return func(l *Ledger) error {
		l.logger = logger
		return nil
	}
}

// WithRetryOptions sets a custom retry configuration for command conflicts.
func WithRetryOptions(opts ...RetryOption) Option {
	return func(l *Ledger) error {
		l.retryOptions = opts
		return nil
	}
}

// NewLedger creates a Ledger over the given catalog, directory, and record
// store with optional configuration.
func NewLedger(
	books catalog.Store,
	members directory.Directory,
	records RecordStore,
	options ...Option,
) (*Ledger, error) {

	ledger := &Ledger{
		books:   books,
		members: members,
		records: records,
		policy:  DefaultPolicy(),
		clock:   time.Now,
	}

	for _, option := range options {
		if err := option(ledger); err != nil {
			return nil, err
		}
	}

	return ledger, nil
}

// Policy returns the active lending policy.
func (l *Ledger) Policy() Policy {
	return l.policy
}

// Borrow creates an open loan record for the (book, member email) pair and
// decrements the book's availability. The command either fully succeeds or
// leaves no state change behind.
//
// Fails with catalog.ErrUnknownBook, directory.ErrUnknownMember,
// ErrUnavailableBook, or ErrDuplicateOpenLoan.
func (l *Ledger) Borrow(ctx context.Context, bookID uuid.UUID, memberEmail string) (LoanRecord, error) {
	unlock := l.pairLocks.lock(pairKey(bookID, memberEmail))
	defer unlock()

	var record LoanRecord

	err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		record, execErr = l.executeBorrow(retryCtx, bookID, memberEmail)

		return execErr
	}, l.retryOptions...)

	if err != nil {
		return LoanRecord{}, err
	}

	if l.logger != nil {
		l.logger.Info(logMsgBorrowCompleted,
			logAttrBookID, bookID.String(),
			logAttrMemberEmail, memberEmail,
			logAttrRecordID, record.ID.String(),
			logAttrDueDate, record.DueDate)
	}

	return record, nil
}

// executeBorrow contains the borrow logic that can be retried on conflicts.
func (l *Ledger) executeBorrow(ctx context.Context, bookID uuid.UUID, memberEmail string) (LoanRecord, error) {
	member, err := l.members.FindByEmail(ctx, memberEmail)
	if err != nil {
		return LoanRecord{}, err
	}

	book, err := l.books.Get(ctx, bookID)
	if err != nil {
		return LoanRecord{}, err
	}

	if !book.IsAvailable() {
		return LoanRecord{}, ErrUnavailableBook
	}

	_, err = l.records.FindOpen(ctx, bookID, memberEmail)
	if err == nil {
		return LoanRecord{}, ErrDuplicateOpenLoan
	}
	if !errors.Is(err, ErrNoOpenLoan) {
		return LoanRecord{}, err
	}

	now := l.clock()
	record := BuildLoanRecord(uuid.New(), bookID, member.ID, member.Email, now, l.policy.DueDate(now))

	// Decrement first, then append; a failed append is compensated so the
	// command never leaves a partial state change.
	if adjustErr := l.books.AdjustAvailability(ctx, bookID, -1); adjustErr != nil {
		if errors.Is(adjustErr, catalog.ErrInvalidAdjustment) {
			return LoanRecord{}, ErrUnavailableBook
		}

		return LoanRecord{}, adjustErr
	}

	if appendErr := l.records.Append(ctx, record); appendErr != nil {
		l.compensateAvailability(ctx, bookID, +1)
		return LoanRecord{}, appendErr
	}

	return record, nil
}

// Return closes the earliest-borrowed open loan record for the pair and
// increments the book's availability. Not idempotent: a second return for
// the same pair fails with ErrNoOpenLoan.
func (l *Ledger) Return(ctx context.Context, bookID uuid.UUID, memberEmail string) (LoanRecord, error) {
	unlock := l.pairLocks.lock(pairKey(bookID, memberEmail))
	defer unlock()

	var record LoanRecord

	err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		record, execErr = l.executeReturn(retryCtx, bookID, memberEmail)

		return execErr
	}, l.retryOptions...)

	if err != nil {
		return LoanRecord{}, err
	}

	if l.logger != nil {
		l.logger.Info(logMsgReturnCompleted,
			logAttrBookID, bookID.String(),
			logAttrMemberEmail, memberEmail,
			logAttrRecordID, record.ID.String())
	}

	return record, nil
}

// executeReturn contains the return logic that can be retried on conflicts.
func (l *Ledger) executeReturn(ctx context.Context, bookID uuid.UUID, memberEmail string) (LoanRecord, error) {
	record, err := l.records.FindOpen(ctx, bookID, memberEmail)
	if err != nil {
		return LoanRecord{}, err
	}

	now := l.clock()

	// Increment first, then close the record; a failed close is compensated.
	if adjustErr := l.books.AdjustAvailability(ctx, bookID, +1); adjustErr != nil {
		return LoanRecord{}, adjustErr
	}

	if setErr := l.records.SetReturned(ctx, record.ID, now); setErr != nil {
		l.compensateAvailability(ctx, bookID, -1)
		return LoanRecord{}, setErr
	}

	record.ReturnDate = &now

	return record, nil
}

// compensateAvailability rolls an availability adjustment back after the
// paired record write failed. A failed compensation is logged loudly since
// it leaves the catalog inconsistent.
func (l *Ledger) compensateAvailability(ctx context.Context, bookID uuid.UUID, delta int) {
	if err := l.books.AdjustAvailability(ctx, bookID, delta); err != nil {
		if l.logger != nil {
			l.logger.Error(logMsgCompensationFailed,
				logAttrBookID, bookID.String(),
				logAttrError, err.Error())
		}
	}
}

// FindOpen returns the open loan record for the pair, or ErrNoOpenLoan.
func (l *Ledger) FindOpen(ctx context.Context, bookID uuid.UUID, memberEmail string) (LoanRecord, error) {
	return l.records.FindOpen(ctx, bookID, memberEmail)
}

// ListWithStatus returns every loan record annotated with its status derived
// at the current instant. Recomputed on every call; never cached.
func (l *Ledger) ListWithStatus(ctx context.Context) ([]AnnotatedRecord, error) {
	records, err := l.records.List(ctx)
	if err != nil {
		return nil, err
	}

	return AnnotateRecords(records, l.clock()), nil
}

// ListForMember returns the member's loan records annotated with derived
// status, the view behind a member's own dashboard.
func (l *Ledger) ListForMember(ctx context.Context, memberEmail string) ([]AnnotatedRecord, error) {
	records, err := l.records.ListForMember(ctx, memberEmail)
	if err != nil {
		return nil, err
	}

	return AnnotateRecords(records, l.clock()), nil
}
