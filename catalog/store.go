package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrUnknownBook is returned when a book id does not resolve to a catalog entry.
	ErrUnknownBook = errors.New("book is not in the catalog")

	// ErrBookExists is returned when adding a book whose id is already in the catalog.
	ErrBookExists = errors.New("book is already in the catalog")

	// ErrInvalidAdjustment is returned when an availability adjustment would leave
	// the [0, total copies] range.
	ErrInvalidAdjustment = errors.New("availability adjustment would violate copy bounds")
)

// Store owns the catalog and is the only component allowed to mutate
// copy-availability counts. The loan ledger adjusts availability exclusively
// through AdjustAvailability.
type Store interface {
	Get(ctx context.Context, bookID uuid.UUID) (Book, error)
	List(ctx context.Context) ([]Book, error)
	ListAvailable(ctx context.Context) ([]Book, error)

	// AdjustAvailability changes AvailableCopies by delta. The adjustment is
	// atomic and fails with ErrInvalidAdjustment if the result would leave
	// the [0, TotalCopies] range.
	AdjustAvailability(ctx context.Context, bookID uuid.UUID, delta int) error

	Add(ctx context.Context, book Book) error
	Update(ctx context.Context, book Book) error
	Remove(ctx context.Context, bookID uuid.UUID) error
}
