// Package librento wires the catalog, member directory, loan ledger,
// billing, and presentation layers into one library-management service.
package librento

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/librento/librento/billing"
	"github.com/librento/librento/catalog"
	"github.com/librento/librento/directory"
	"github.com/librento/librento/ledger"
	"github.com/librento/librento/present"
)

// Service is the application facade over the library core. Commands go
// through the ledger; queries join ledger, catalog, and directory data into
// presentation rows.
type Service struct {
	books   catalog.Store
	members directory.Directory
	loans   *ledger.Ledger
	sorter  *present.Sorter
	clock   func() time.Time
}

// Option defines a functional option for configuring a Service.
type Option func(*serviceConfig) error

type serviceConfig struct {
	ledgerOptions []ledger.Option
	locale        language.Tag
	clock         func() time.Time
}

// WithPolicy sets the lending policy.
func WithPolicy(policy ledger.Policy) Option {
	return func(c *serviceConfig) error {
		c.ledgerOptions = append(c.ledgerOptions, ledger.WithPolicy(policy))
		return nil
	}
}

// WithClock sets the time source for the service and its ledger.
func WithClock(clock func() time.Time) Option {
	return func(c *serviceConfig) error {
		c.ledgerOptions = append(c.ledgerOptions, ledger.WithClock(clock))
		c.clock = clock

		return nil
	}
}

// WithLogger sets the logger for ledger command outcomes.
func WithLogger(logger ledger.Logger) Option {
	return func(c *serviceConfig) error {
		c.ledgerOptions = append(c.ledgerOptions, ledger.WithLogger(logger))
		return nil
	}
}

// WithLocale sets the collation locale for sorted queries.
func WithLocale(tag language.Tag) Option {
	return func(c *serviceConfig) error {
		c.locale = tag
		return nil
	}
}

// NewService creates a Service over the given stores with optional
// configuration.
func NewService(
	books catalog.Store,
	members directory.Directory,
	records ledger.RecordStore,
	options ...Option,
) (*Service, error) {

	cfg := serviceConfig{
		locale: language.English,
		clock:  time.Now,
	}

	for _, option := range options {
		if err := option(&cfg); err != nil {
			return nil, err
		}
	}

	loans, err := ledger.NewLedger(books, members, records, cfg.ledgerOptions...)
	if err != nil {
		return nil, err
	}

	return &Service{
		books:   books,
		members: members,
		loans:   loans,
		sorter:  present.NewSorter(cfg.locale),
		clock:   cfg.clock,
	}, nil
}

// Borrow lends one copy of the book to the member identified by email.
func (s *Service) Borrow(ctx context.Context, bookID uuid.UUID, memberEmail string) (ledger.LoanRecord, error) {
	return s.loans.Borrow(ctx, bookID, memberEmail)
}

// Return takes the book back from the member and settles the bill for the
// closed loan. The bill reflects the price of the book plus any fine accrued
// past the due date.
func (s *Service) Return(ctx context.Context, bookID uuid.UUID, memberEmail string) (ledger.LoanRecord, billing.Bill, error) {
	record, err := s.loans.Return(ctx, bookID, memberEmail)
	if err != nil {
		return ledger.LoanRecord{}, billing.Bill{}, err
	}

	bill, err := s.settle(ctx, record)
	if err != nil {
		return ledger.LoanRecord{}, billing.Bill{}, err
	}

	return record, bill, nil
}

// PreviewBill computes the bill the member would owe if the open loan for
// the pair were returned right now, without changing any state.
func (s *Service) PreviewBill(ctx context.Context, bookID uuid.UUID, memberEmail string) (billing.Bill, error) {
	record, err := s.loans.FindOpen(ctx, bookID, memberEmail)
	if err != nil {
		return billing.Bill{}, err
	}

	return s.settle(ctx, record)
}

func (s *Service) settle(ctx context.Context, record ledger.LoanRecord) (billing.Bill, error) {
	book, err := s.books.Get(ctx, record.BookID)
	if err != nil {
		return billing.Bill{}, err
	}

	member, err := directory.Resolve(ctx, s.members, record.MemberID, record.MemberEmail)
	if err != nil {
		return billing.Bill{}, err
	}

	return billing.Settle(record, book, member, s.loans.Policy(), s.clock()), nil
}

// LoanRows returns all loans joined with book and member display data,
// filtered and sorted for the view.
func (s *Service) LoanRows(ctx context.Context, filter present.LoanFilter, sortState present.SortState) ([]present.LoanRow, error) {
	annotated, err := s.loans.ListWithStatus(ctx)
	if err != nil {
		return nil, err
	}

	return s.buildRows(ctx, annotated, filter, sortState)
}

// MemberLoanRows returns the member's own loans joined, filtered, and
// sorted. The member is matched by email, compared case-insensitively.
func (s *Service) MemberLoanRows(ctx context.Context, memberEmail string, filter present.LoanFilter, sortState present.SortState) ([]present.LoanRow, error) {
	annotated, err := s.loans.ListForMember(ctx, memberEmail)
	if err != nil {
		return nil, err
	}

	return s.buildRows(ctx, annotated, filter, sortState)
}

func (s *Service) buildRows(
	ctx context.Context,
	annotated []ledger.AnnotatedRecord,
	filter present.LoanFilter,
	sortState present.SortState,
) ([]present.LoanRow, error) {

	books, err := s.books.List(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := filter.Apply(present.BuildLoanRows(annotated, books, members))
	s.sorter.Sort(rows, sortState)

	return rows, nil
}

// Books returns the catalog filtered for the view.
func (s *Service) Books(ctx context.Context, filter present.BookFilter) ([]catalog.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, err
	}

	return filter.Apply(books), nil
}

// AvailableBooks returns the books with at least one available copy.
func (s *Service) AvailableBooks(ctx context.Context) ([]catalog.Book, error) {
	return s.books.ListAvailable(ctx)
}

// Members returns all registered members.
func (s *Service) Members(ctx context.Context) ([]directory.Member, error) {
	return s.members.List(ctx)
}

// Policy returns the active lending policy.
func (s *Service) Policy() ledger.Policy {
	return s.loans.Policy()
}
