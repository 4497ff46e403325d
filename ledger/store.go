package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoOpenLoan is returned when no open record exists for a (book, member) pair.
	ErrNoOpenLoan = errors.New("no open loan record for this book and member")

	// ErrConcurrencyConflict is returned by a RecordStore when the ledger state
	// changed between read and guarded write. Commands retry on it and re-read.
	ErrConcurrencyConflict = errors.New("loan ledger state changed concurrently, no rows were affected")
)

// RecordStore persists loan records.
//
// Append and SetReturned are guarded writes: they fail with
// ErrConcurrencyConflict when the precondition they carry (no open record
// for the pair, record still open) no longer holds. The ledger re-reads
// and retries, converging on the correct business outcome.
type RecordStore interface {
	// Append stores a new open record, guarded against another open record
	// existing for the same (book, member email) pair.
	Append(ctx context.Context, record LoanRecord) error

	// FindOpen returns the earliest-borrowed open record for the pair,
	// or ErrNoOpenLoan. The earliest-first tie-break defends against
	// duplicate open records that the invariant says should not exist.
	FindOpen(ctx context.Context, bookID uuid.UUID, memberEmail string) (LoanRecord, error)

	// SetReturned closes the record, guarded against it already being closed.
	SetReturned(ctx context.Context, recordID uuid.UUID, returnedAt time.Time) error

	List(ctx context.Context) ([]LoanRecord, error)
	ListForMember(ctx context.Context, memberEmail string) ([]LoanRecord, error)
}
