// Package present joins ledger, catalog, and directory data into the rows
// the view layer renders, with filtering, locale-aware sorting, and JSON
// encoding at the boundary.
package present

import (
	"time"

	"github.com/google/uuid"

	"github.com/librento/librento/catalog"
	"github.com/librento/librento/directory"
	"github.com/librento/librento/ledger"
)

const (
	unknownBookTitle  = "Unknown Book"
	unknownAuthor     = "Unknown Author"
	unknownMemberName = "Unknown Member"
)

// LoanRow is a loan record denormalized with book and member display fields
// and the status derived at build time.
type LoanRow struct {
	RecordID    uuid.UUID     `json:"recordId"`
	BookID      uuid.UUID     `json:"bookId"`
	BookTitle   string        `json:"bookTitle"`
	BookAuthor  string        `json:"bookAuthor"`
	MemberID    uuid.UUID     `json:"memberId"`
	MemberName  string        `json:"memberName"`
	MemberEmail string        `json:"memberEmail"`
	BorrowDate  time.Time     `json:"borrowDate"`
	DueDate     time.Time     `json:"dueDate"`
	ReturnDate  *time.Time    `json:"returnDate,omitempty"`
	Status      ledger.Status `json:"status"`
}

// BuildLoanRows joins annotated records with catalog and member data.
// Members resolve by id first with email fallback; a dangling reference
// yields placeholder display fields rather than dropping the row.
func BuildLoanRows(
	records []ledger.AnnotatedRecord,
	books []catalog.Book,
	members []directory.Member,
) []LoanRow {

	booksByID := make(map[uuid.UUID]catalog.Book, len(books))
	for _, book := range books {
		booksByID[book.ID] = book
	}

	membersByID := make(map[uuid.UUID]directory.Member, len(members))
	membersByEmail := make(map[string]directory.Member, len(members))
	for _, member := range members {
		membersByID[member.ID] = member
		membersByEmail[foldEmail(member.Email)] = member
	}

	rows := make([]LoanRow, 0, len(records))

	for _, record := range records {
		row := LoanRow{
			RecordID:    record.ID,
			BookID:      record.BookID,
			BookTitle:   unknownBookTitle,
			BookAuthor:  unknownAuthor,
			MemberName:  unknownMemberName,
			MemberEmail: record.MemberEmail,
			BorrowDate:  record.BorrowDate,
			DueDate:     record.DueDate,
			ReturnDate:  record.ReturnDate,
			Status:      record.Status,
		}

		if book, ok := booksByID[record.BookID]; ok {
			row.BookTitle = book.Title
			row.BookAuthor = book.Author
		}

		member, ok := membersByID[record.MemberID]
		if !ok {
			member, ok = membersByEmail[foldEmail(record.MemberEmail)]
		}
		if ok {
			row.MemberID = member.ID
			row.MemberName = member.Name
			row.MemberEmail = member.Email
		}

		rows = append(rows, row)
	}

	return rows
}
