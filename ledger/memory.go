package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRecordStore is an in-memory RecordStore implementation, safe for
// concurrent use. It enforces the same guarded-write contract as the
// Postgres-backed store.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records []LoanRecord
}

// NewMemoryRecordStore creates an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

// Append stores a new open record unless an open record already exists for
// the same (book, member email) pair.
func (s *MemoryRecordStore) Append(_ context.Context, record LoanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.IsOpen() &&
			existing.BookID == record.BookID &&
			strings.EqualFold(existing.MemberEmail, record.MemberEmail) {
			return ErrConcurrencyConflict
		}
	}

	s.records = append(s.records, record)

	return nil
}

// FindOpen returns the earliest-borrowed open record for the pair.
func (s *MemoryRecordStore) FindOpen(_ context.Context, bookID uuid.UUID, memberEmail string) (LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *LoanRecord

	for i := range s.records {
		record := s.records[i]
		if !record.IsOpen() || record.BookID != bookID || !strings.EqualFold(record.MemberEmail, memberEmail) {
			continue
		}
		if found == nil || record.BorrowDate.Before(found.BorrowDate) {
			found = &s.records[i]
		}
	}

	if found == nil {
		return LoanRecord{}, ErrNoOpenLoan
	}

	return *found, nil
}

// SetReturned closes the record unless it is already closed.
func (s *MemoryRecordStore) SetReturned(_ context.Context, recordID uuid.UUID, returnedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != recordID {
			continue
		}

		if !s.records[i].IsOpen() {
			return ErrConcurrencyConflict
		}

		at := returnedAt
		s.records[i].ReturnDate = &at

		return nil
	}

	return ErrNoOpenLoan
}

// List returns all records ordered by borrow date, then id for stability.
func (s *MemoryRecordStore) List(_ context.Context) ([]LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]LoanRecord, len(s.records))
	copy(records, s.records)

	sort.Slice(records, func(i, j int) bool {
		if !records[i].BorrowDate.Equal(records[j].BorrowDate) {
			return records[i].BorrowDate.Before(records[j].BorrowDate)
		}
		return records[i].ID.String() < records[j].ID.String()
	})

	return records, nil
}

// ListForMember returns all records for the member email, ordered as List.
func (s *MemoryRecordStore) ListForMember(ctx context.Context, memberEmail string) ([]LoanRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]LoanRecord, 0, len(records))
	for _, record := range records {
		if strings.EqualFold(record.MemberEmail, memberEmail) {
			filtered = append(filtered, record)
		}
	}

	return filtered, nil
}
