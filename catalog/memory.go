package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation.
// It is safe for concurrent use and backs tests, the demo CLI, and any
// deployment that keeps the catalog in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[uuid.UUID]Book
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[uuid.UUID]Book),
	}
}

// Get returns the book with the given id.
func (s *MemoryStore) Get(_ context.Context, bookID uuid.UUID) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[bookID]
	if !ok {
		return Book{}, ErrUnknownBook
	}

	return book, nil
}

// List returns all books ordered by creation time, then id for stability.
func (s *MemoryStore) List(_ context.Context) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]Book, 0, len(s.books))
	for _, book := range s.books {
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.Before(books[j].CreatedAt)
		}
		return books[i].ID.String() < books[j].ID.String()
	})

	return books, nil
}

// ListAvailable returns all books with at least one available copy.
func (s *MemoryStore) ListAvailable(ctx context.Context) ([]Book, error) {
	books, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]Book, 0, len(books))
	for _, book := range books {
		if book.IsAvailable() {
			available = append(available, book)
		}
	}

	return available, nil
}

// AdjustAvailability changes AvailableCopies by delta, failing with
// ErrInvalidAdjustment if the result would leave the [0, TotalCopies] range.
func (s *MemoryStore) AdjustAvailability(_ context.Context, bookID uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[bookID]
	if !ok {
		return ErrUnknownBook
	}

	adjusted := book.AvailableCopies + delta
	if adjusted < 0 || adjusted > book.TotalCopies {
		return ErrInvalidAdjustment
	}

	book.AvailableCopies = adjusted
	s.books[bookID] = book

	return nil
}

// Add inserts a new book.
func (s *MemoryStore) Add(_ context.Context, book Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[book.ID]; ok {
		return ErrBookExists
	}

	s.books[book.ID] = book

	return nil
}

// Update replaces the stored book with the same id. AvailableCopies is
// clamped to the new TotalCopies so admin edits cannot break the invariant.
func (s *MemoryStore) Update(_ context.Context, book Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[book.ID]; !ok {
		return ErrUnknownBook
	}

	if book.AvailableCopies > book.TotalCopies {
		book.AvailableCopies = book.TotalCopies
	}
	if book.AvailableCopies < 0 {
		book.AvailableCopies = 0
	}

	s.books[book.ID] = book

	return nil
}

// Remove deletes the book with the given id.
func (s *MemoryStore) Remove(_ context.Context, bookID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[bookID]; !ok {
		return ErrUnknownBook
	}

	delete(s.books, bookID)

	return nil
}
