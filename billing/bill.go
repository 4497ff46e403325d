// Package billing derives settlement summaries at return time.
// Nothing here is persisted; a Bill exists only for the duration of the
// return confirmation flow.
package billing

import (
	"time"

	"github.com/librento/librento/catalog"
	"github.com/librento/librento/directory"
	"github.com/librento/librento/ledger"
)

// Bill is the ephemeral settlement summary shown to the operator when a
// book comes back: the book price plus any fine accrued past the due date.
type Bill struct {
	MemberName  string    `json:"memberName"`
	MemberEmail string    `json:"memberEmail"`
	BookTitle   string    `json:"bookTitle"`
	BookPrice   float64   `json:"bookPrice"`
	BorrowDate  time.Time `json:"borrowDate"`
	DueDate     time.Time `json:"dueDate"`
	ReturnDate  time.Time `json:"returnDate"`
	Fine        float64   `json:"fine"`
	Total       float64   `json:"total"`
}

// Settle computes the bill for a loan record at the given instant.
// Pure function: deterministic for identical inputs, no hidden clock.
// The fine is computed against now; the return date is the record's if the
// record is already closed, otherwise now.
func Settle(
	record ledger.LoanRecord,
	book catalog.Book,
	member directory.Member,
	policy ledger.Policy,
	now time.Time,
) Bill {

	returnDate := now
	if record.ReturnDate != nil {
		returnDate = *record.ReturnDate
	}

	fine := policy.Fine(record.DueDate, now)

	return Bill{
		MemberName:  member.Name,
		MemberEmail: member.Email,
		BookTitle:   book.Title,
		BookPrice:   book.Price,
		BorrowDate:  record.BorrowDate,
		DueDate:     record.DueDate,
		ReturnDate:  returnDate,
		Fine:        fine,
		Total:       book.Price + fine,
	}
}
