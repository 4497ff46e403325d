package present

import (
	"strings"

	"github.com/librento/librento/catalog"
	"github.com/librento/librento/ledger"
)

// LoanFilter selects loan rows by a case-insensitive substring query over
// book title, author, member name, and email, combined with an exact status
// match. Both conditions must hold; a zero value matches everything.
type LoanFilter struct {
	Query  string
	Status ledger.Status // empty means any status
}

// Apply returns the rows matching the filter, preserving input order.
func (f LoanFilter) Apply(rows []LoanRow) []LoanRow {
	matched := make([]LoanRow, 0, len(rows))

	for _, row := range rows {
		if f.matches(row) {
			matched = append(matched, row)
		}
	}

	return matched
}

func (f LoanFilter) matches(row LoanRow) bool {
	if f.Status != "" && row.Status != f.Status {
		return false
	}

	if f.Query == "" {
		return true
	}

	query := strings.ToLower(f.Query)

	return containsFold(row.BookTitle, query) ||
		containsFold(row.BookAuthor, query) ||
		containsFold(row.MemberName, query) ||
		containsFold(row.MemberEmail, query)
}

// BookFilter selects books by a case-insensitive substring query over title,
// author, and category, combined with an exact category match.
type BookFilter struct {
	Query    string
	Category string // empty means any category
}

// Apply returns the books matching the filter, preserving input order.
func (f BookFilter) Apply(books []catalog.Book) []catalog.Book {
	matched := make([]catalog.Book, 0, len(books))

	for _, book := range books {
		if f.matches(book) {
			matched = append(matched, book)
		}
	}

	return matched
}

func (f BookFilter) matches(book catalog.Book) bool {
	if f.Category != "" && book.Category != f.Category {
		return false
	}

	if f.Query == "" {
		return true
	}

	query := strings.ToLower(f.Query)

	return containsFold(book.Title, query) ||
		containsFold(book.Author, query) ||
		containsFold(book.Category, query)
}

// containsFold reports whether s contains the already-lowercased query.
func containsFold(s string, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(s), loweredQuery)
}

func foldEmail(email string) string {
	return strings.ToLower(email)
}
