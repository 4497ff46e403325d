package librento

import (
	"context"
	"sort"

	"github.com/librento/librento/catalog"
	"github.com/librento/librento/directory"
	"github.com/librento/librento/ledger"
)

const recentLimit = 5

// Stats is the dashboard snapshot: stock and loan counters plus the most
// recently added books and members. Derived at query time, never stored.
type Stats struct {
	TotalBooks      int                `json:"totalBooks"`
	TotalCopies     int                `json:"totalCopies"`
	AvailableCopies int                `json:"availableCopies"`
	OpenLoans       int                `json:"openLoans"`
	OverdueLoans    int                `json:"overdueLoans"`
	TotalMembers    int                `json:"totalMembers"`
	MonthlyBorrows  int                `json:"monthlyBorrows"`
	RecentBooks     []catalog.Book     `json:"recentBooks"`
	RecentMembers   []directory.Member `json:"recentMembers"`
}

// Stats derives the dashboard snapshot at the current instant. Monthly
// borrows count the records borrowed in the same calendar month and year as
// now; members count only regular members, not administrators.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	members, err := s.members.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	annotated, err := s.loans.ListWithStatus(ctx)
	if err != nil {
		return Stats{}, err
	}

	now := s.clock()
	stats := Stats{TotalBooks: len(books)}

	for _, book := range books {
		stats.TotalCopies += book.TotalCopies
		stats.AvailableCopies += book.AvailableCopies
	}

	for _, member := range members {
		if member.Role == directory.RoleUser {
			stats.TotalMembers++
		}
	}

	for _, record := range annotated {
		if record.IsOpen() {
			stats.OpenLoans++
		}
		if record.Status == ledger.StatusOverdue {
			stats.OverdueLoans++
		}
		if record.BorrowDate.Month() == now.Month() && record.BorrowDate.Year() == now.Year() {
			stats.MonthlyBorrows++
		}
	}

	stats.RecentBooks = recentBooks(books)
	stats.RecentMembers = recentMembers(members)

	return stats, nil
}

func recentBooks(books []catalog.Book) []catalog.Book {
	recent := make([]catalog.Book, len(books))
	copy(recent, books)

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return recent
}

func recentMembers(members []directory.Member) []directory.Member {
	recent := make([]directory.Member, len(members))
	copy(recent, members)

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return recent
}
