package present

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey names a sortable loan-row column.
type SortKey string

const (
	SortByBookTitle  SortKey = "bookTitle"
	SortByMemberName SortKey = "memberName"
	SortByBorrowDate SortKey = "borrowDate"
	SortByDueDate    SortKey = "dueDate"
	SortByStatus     SortKey = "status"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState tracks the active sort key and direction the way the view
// toggles them: selecting the active key flips the direction, selecting a
// new key resets to ascending.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// Select returns the state after the user picks a sort key.
func (s SortState) Select(key SortKey) SortState {
	if s.Key == key && s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}

	return SortState{Key: key, Direction: Ascending}
}

// Sorter orders loan rows. String columns compare with a locale-aware
// collator; date and status columns compare natively.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter creates a Sorter collating strings for the given locale.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{
		collator: collate.New(tag),
	}
}

// Sort orders rows in place according to the sort state. The sort is stable,
// so rows with equal keys keep their input order and sorting the same input
// ascending then descending yields exact reverses.
func (s *Sorter) Sort(rows []LoanRow, state SortState) {
	if state.Key == "" {
		return
	}

	less := s.lessFunc(rows, state.Key)
	if less == nil {
		return
	}

	if state.Direction == Descending {
		ascending := less
		less = func(i, j int) bool { return ascending(j, i) }
	}

	sort.SliceStable(rows, less)
}

func (s *Sorter) lessFunc(rows []LoanRow, key SortKey) func(i, j int) bool {
	switch key {
	case SortByBookTitle:
		return func(i, j int) bool {
			return s.collator.CompareString(rows[i].BookTitle, rows[j].BookTitle) < 0
		}

	case SortByMemberName:
		return func(i, j int) bool {
			return s.collator.CompareString(rows[i].MemberName, rows[j].MemberName) < 0
		}

	case SortByBorrowDate:
		return func(i, j int) bool {
			return rows[i].BorrowDate.Before(rows[j].BorrowDate)
		}

	case SortByDueDate:
		return func(i, j int) bool {
			return rows[i].DueDate.Before(rows[j].DueDate)
		}

	case SortByStatus:
		return func(i, j int) bool {
			return s.collator.CompareString(string(rows[i].Status), string(rows[j].Status)) < 0
		}

	default:
		return nil
	}
}
