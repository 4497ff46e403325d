package present_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/librento/librento/catalog"
	"github.com/librento/librento/directory"
	"github.com/librento/librento/ledger"
	"github.com/librento/librento/present"
)

var rowsNow = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func annotatedRecord(book catalog.Book, member directory.Member, status ledger.Status) ledger.AnnotatedRecord {
	record := ledger.BuildLoanRecord(uuid.New(), book.ID, member.ID, member.Email,
		rowsNow.Add(-7*24*time.Hour), rowsNow.Add(7*24*time.Hour))

	if status == ledger.StatusReturned {
		returnedAt := rowsNow.Add(-24 * time.Hour)
		record.ReturnDate = &returnedAt
	}

	return ledger.AnnotatedRecord{LoanRecord: record, Status: status}
}

func testBook(title string, author string) catalog.Book {
	return catalog.Book{ID: uuid.New(), Title: title, Author: author}
}

func testMember(name string, email string) directory.Member {
	return directory.Member{ID: uuid.New(), Name: name, Email: email}
}

func Test_BuildLoanRows_JoinsBookAndMemberData(t *testing.T) {
	// arrange
	book := testBook("Dune", "Frank Herbert")
	member := testMember("Ada Reader", "ada@example.com")
	records := []ledger.AnnotatedRecord{annotatedRecord(book, member, ledger.StatusBorrowed)}

	// act
	rows := present.BuildLoanRows(records, []catalog.Book{book}, []directory.Member{member})

	// assert
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0].BookTitle)
	assert.Equal(t, "Frank Herbert", rows[0].BookAuthor)
	assert.Equal(t, "Ada Reader", rows[0].MemberName)
	assert.Equal(t, ledger.StatusBorrowed, rows[0].Status)
}

func Test_BuildLoanRows_KeepsRowsWithDanglingReferences(t *testing.T) {
	// arrange
	book := testBook("Dune", "Frank Herbert")
	member := testMember("Ada Reader", "ada@example.com")
	records := []ledger.AnnotatedRecord{annotatedRecord(book, member, ledger.StatusBorrowed)}

	// act: neither the book nor the member exists anymore
	rows := present.BuildLoanRows(records, nil, nil)

	// assert
	require.Len(t, rows, 1)
	assert.Equal(t, "Unknown Book", rows[0].BookTitle)
	assert.Equal(t, "Unknown Author", rows[0].BookAuthor)
	assert.Equal(t, "Unknown Member", rows[0].MemberName)
	assert.Equal(t, member.Email, rows[0].MemberEmail)
}

func Test_BuildLoanRows_ResolvesMembersByEmail_WhenTheIDDangles(t *testing.T) {
	// arrange
	book := testBook("Dune", "Frank Herbert")
	member := testMember("Ada Reader", "Ada@Example.com")

	record := ledger.BuildLoanRecord(uuid.New(), book.ID, uuid.New(), "ada@example.com",
		rowsNow.Add(-24*time.Hour), rowsNow.Add(13*24*time.Hour))
	records := []ledger.AnnotatedRecord{{LoanRecord: record, Status: ledger.StatusBorrowed}}

	// act
	rows := present.BuildLoanRows(records, []catalog.Book{book}, []directory.Member{member})

	// assert
	require.Len(t, rows, 1)
	assert.Equal(t, member.ID, rows[0].MemberID)
	assert.Equal(t, "Ada Reader", rows[0].MemberName)
}

func Test_LoanFilter_MatchesSubstringsAcrossAllTextColumns(t *testing.T) {
	// arrange
	dune := testBook("Dune", "Frank Herbert")
	solaris := testBook("Solaris", "Stanislaw Lem")
	ada := testMember("Ada Reader", "ada@example.com")
	bob := testMember("Bob Browser", "bob@example.com")

	rows := present.BuildLoanRows(
		[]ledger.AnnotatedRecord{
			annotatedRecord(dune, ada, ledger.StatusBorrowed),
			annotatedRecord(solaris, bob, ledger.StatusOverdue),
		},
		[]catalog.Book{dune, solaris},
		[]directory.Member{ada, bob},
	)

	testCases := []struct {
		name          string
		filter        present.LoanFilter
		expectedCount int
	}{
		{name: "empty filter matches everything", filter: present.LoanFilter{}, expectedCount: 2},
		{name: "title substring ignores case", filter: present.LoanFilter{Query: "dUnE"}, expectedCount: 1},
		{name: "author substring", filter: present.LoanFilter{Query: "lem"}, expectedCount: 1},
		{name: "member name substring", filter: present.LoanFilter{Query: "ada"}, expectedCount: 1},
		{name: "email substring", filter: present.LoanFilter{Query: "bob@"}, expectedCount: 1},
		{name: "status only", filter: present.LoanFilter{Status: ledger.StatusOverdue}, expectedCount: 1},
		{name: "query and status must both hold", filter: present.LoanFilter{Query: "dune", Status: ledger.StatusOverdue}, expectedCount: 0},
		{name: "no match", filter: present.LoanFilter{Query: "zzz"}, expectedCount: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			matched := tc.filter.Apply(rows)

			// assert
			assert.Len(t, matched, tc.expectedCount)
		})
	}
}

func Test_BookFilter_CombinesQueryAndCategory(t *testing.T) {
	// arrange
	books := []catalog.Book{
		{ID: uuid.New(), Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction"},
		{ID: uuid.New(), Title: "The Hobbit", Author: "J.R.R. Tolkien", Category: "Fantasy"},
	}

	// act
	matched := present.BookFilter{Query: "herbert", Category: "Science Fiction"}.Apply(books)

	// assert
	require.Len(t, matched, 1)
	assert.Equal(t, "Dune", matched[0].Title)

	assert.Empty(t, present.BookFilter{Query: "herbert", Category: "Fantasy"}.Apply(books))
}

func Test_SortState_Select_TogglesTheActiveKey(t *testing.T) {
	// arrange
	state := present.SortState{}

	// act + assert
	state = state.Select(present.SortByBookTitle)
	assert.Equal(t, present.SortState{Key: present.SortByBookTitle, Direction: present.Ascending}, state)

	state = state.Select(present.SortByBookTitle)
	assert.Equal(t, present.SortState{Key: present.SortByBookTitle, Direction: present.Descending}, state)

	state = state.Select(present.SortByBookTitle)
	assert.Equal(t, present.SortState{Key: present.SortByBookTitle, Direction: present.Ascending}, state)

	state = state.Select(present.SortByDueDate)
	assert.Equal(t, present.SortState{Key: present.SortByDueDate, Direction: present.Ascending}, state)
}

func Test_Sorter_SortsStringColumnsWithTheCollator(t *testing.T) {
	// arrange
	sorter := present.NewSorter(language.English)
	rows := []present.LoanRow{
		{BookTitle: "solaris"},
		{BookTitle: "Dune"},
		{BookTitle: "neuromancer"},
	}

	// act
	sorter.Sort(rows, present.SortState{Key: present.SortByBookTitle, Direction: present.Ascending})

	// assert: collation ignores letter case
	assert.Equal(t, "Dune", rows[0].BookTitle)
	assert.Equal(t, "neuromancer", rows[1].BookTitle)
	assert.Equal(t, "solaris", rows[2].BookTitle)
}

func Test_Sorter_DescendingIsTheExactReverseOfAscending(t *testing.T) {
	// arrange
	sorter := present.NewSorter(language.English)
	rows := []present.LoanRow{
		{BookTitle: "Solaris", DueDate: rowsNow.Add(48 * time.Hour)},
		{BookTitle: "Dune", DueDate: rowsNow},
		{BookTitle: "Neuromancer", DueDate: rowsNow.Add(24 * time.Hour)},
	}

	ascending := make([]present.LoanRow, len(rows))
	copy(ascending, rows)
	sorter.Sort(ascending, present.SortState{Key: present.SortByDueDate, Direction: present.Ascending})

	descending := make([]present.LoanRow, len(rows))
	copy(descending, rows)

	// act
	sorter.Sort(descending, present.SortState{Key: present.SortByDueDate, Direction: present.Descending})

	// assert
	for i := range ascending {
		assert.Equal(t, ascending[i], descending[len(descending)-1-i])
	}
}

func Test_Sorter_LeavesRowsUntouched_WithoutASortKey(t *testing.T) {
	// arrange
	sorter := present.NewSorter(language.English)
	rows := []present.LoanRow{
		{BookTitle: "Zebra"},
		{BookTitle: "Aardvark"},
	}

	// act
	sorter.Sort(rows, present.SortState{})

	// assert
	assert.Equal(t, "Zebra", rows[0].BookTitle)
	assert.Equal(t, "Aardvark", rows[1].BookTitle)
}

func Test_EncodeLoanRows_UsesViewFieldNames(t *testing.T) {
	// arrange
	book := testBook("Dune", "Frank Herbert")
	member := testMember("Ada Reader", "ada@example.com")
	rows := present.BuildLoanRows(
		[]ledger.AnnotatedRecord{annotatedRecord(book, member, ledger.StatusReturned)},
		[]catalog.Book{book},
		[]directory.Member{member},
	)

	// act
	encoded, err := present.EncodeLoanRows(rows)

	// assert
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"bookTitle":"Dune"`)
	assert.Contains(t, string(encoded), `"status":"returned"`)
	assert.Contains(t, string(encoded), `"returnDate"`)
}
