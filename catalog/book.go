package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyTitle is returned when a book is built without a title.
	ErrEmptyTitle = errors.New("book title must not be empty")

	// ErrInvalidTotalCopies is returned when total copies is below one.
	ErrInvalidTotalCopies = errors.New("total copies must be at least 1")

	// ErrInvalidAvailableCopies is returned when available copies leaves the [0, total] range.
	ErrInvalidAvailableCopies = errors.New("available copies must be between 0 and total copies")

	// ErrNegativePrice is returned when a book is built with a negative price.
	ErrNegativePrice = errors.New("book price must not be negative")
)

// Book is a catalog entry with copy-availability counts.
//
// The invariant 0 <= AvailableCopies <= TotalCopies holds at all times.
// AvailableCopies is mutated only through Store.AdjustAvailability or
// through catalog edits that preserve the invariant.
type Book struct {
	ID              uuid.UUID
	Title           string
	Author          string
	ISBN            string
	Category        string
	PublishYear     int
	TotalCopies     int
	AvailableCopies int
	Price           float64
	Description     string
	CoverImage      string
	CreatedAt       time.Time
}

// BuildBook creates a Book and validates the availability invariant.
func BuildBook(
	id uuid.UUID,
	title string,
	author string,
	isbn string,
	category string,
	publishYear int,
	totalCopies int,
	availableCopies int,
	price float64,
	createdAt time.Time,
) (Book, error) {

	if title == "" {
		return Book{}, ErrEmptyTitle
	}

	if totalCopies < 1 {
		return Book{}, ErrInvalidTotalCopies
	}

	if availableCopies < 0 || availableCopies > totalCopies {
		return Book{}, ErrInvalidAvailableCopies
	}

	if price < 0 {
		return Book{}, ErrNegativePrice
	}

	return Book{
		ID:              id,
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		Category:        category,
		PublishYear:     publishYear,
		TotalCopies:     totalCopies,
		AvailableCopies: availableCopies,
		Price:           price,
		CreatedAt:       createdAt,
	}, nil
}

// IsAvailable reports whether at least one copy can be borrowed.
func (b Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}
