package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Status is derived from a record's fields and the current time.
// It is never stored; persisting it would let the stored value and the
// wall clock disagree.
type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

// LoanRecord is a single borrow-to-return lifecycle instance linking one
// book copy to one member. It carries the member by id and by email; joins
// resolve id first with email as fallback.
//
// A record is immutable except for the single transition that sets
// ReturnDate, after which it is terminal.
type LoanRecord struct {
	ID          uuid.UUID
	BookID      uuid.UUID
	MemberID    uuid.UUID
	MemberEmail string
	BorrowDate  time.Time
	DueDate     time.Time
	ReturnDate  *time.Time
}

// BuildLoanRecord creates an open LoanRecord.
func BuildLoanRecord(
	id uuid.UUID,
	bookID uuid.UUID,
	memberID uuid.UUID,
	memberEmail string,
	borrowDate time.Time,
	dueDate time.Time,
) LoanRecord {

	return LoanRecord{
		ID:          id,
		BookID:      bookID,
		MemberID:    memberID,
		MemberEmail: memberEmail,
		BorrowDate:  borrowDate,
		DueDate:     dueDate,
	}
}

// IsOpen reports whether the record has not been returned yet.
func (r LoanRecord) IsOpen() bool {
	return r.ReturnDate == nil
}

// DeriveStatus computes the status of a record at the given instant:
// returned if ReturnDate is set, overdue if the due date has passed,
// borrowed otherwise. This is the single source of truth for status.
func DeriveStatus(record LoanRecord, now time.Time) Status {
	if record.ReturnDate != nil {
		return StatusReturned
	}

	if record.DueDate.Before(now) {
		return StatusOverdue
	}

	return StatusBorrowed
}

// AnnotatedRecord pairs a record with its status derived at query time.
type AnnotatedRecord struct {
	LoanRecord
	Status Status
}

// AnnotateRecords derives the status of every record at the given instant.
// The result is recomputed on every call and must not be cached beyond a
// single response cycle.
func AnnotateRecords(records []LoanRecord, now time.Time) []AnnotatedRecord {
	annotated := make([]AnnotatedRecord, 0, len(records))

	for _, record := range records {
		annotated = append(annotated, AnnotatedRecord{
			LoanRecord: record,
			Status:     DeriveStatus(record, now),
		})
	}

	return annotated
}
