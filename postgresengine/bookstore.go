package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/librento/librento/catalog"
	"github.com/librento/librento/postgresengine/internal/adapters"
)

const (
	colBookID          = "id"
	colTitle           = "title"
	colAuthor          = "author"
	colISBN            = "isbn"
	colCategory        = "category"
	colPublishYear     = "publish_year"
	colTotalCopies     = "total_copies"
	colAvailableCopies = "available_copies"
	colPrice           = "price"
	colDescription     = "description"
	colCoverImage      = "cover_image"
	colBookCreatedAt   = "created_at"

	logActionGetBook     = "get book"
	logActionListBooks   = "list books"
	logActionAdjustAvail = "adjust availability"
	logActionInsertBook  = "insert book"
	logActionUpdateBook  = "update book"
	logActionDeleteBook  = "delete book"
	logMsgAvailAdjusted  = "availability adjusted"
	logAttrBookID        = "book_id"
	logAttrDelta         = "delta"
)

// BookStore implements catalog.Store on top of Postgres.
//
// AdjustAvailability is a single conditional update guarding the
// [0, total_copies] bounds, so the adjustment is atomic even across
// processes.
type BookStore struct {
	engine Engine
}

var _ catalog.Store = (*BookStore)(nil)

func (s *BookStore) bookColumns() []any {
	return []any{
		colBookID, colTitle, colAuthor, colISBN, colCategory, colPublishYear,
		colTotalCopies, colAvailableCopies, colPrice, colDescription,
		colCoverImage, colBookCreatedAt,
	}
}

// Get returns the book with the given id.
func (s *BookStore) Get(ctx context.Context, bookID uuid.UUID) (catalog.Book, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.engine.tables.Books).
		Select(s.bookColumns()...).
		Where(goqu.C(colBookID).Eq(bookID.String())).
		ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return catalog.Book{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := s.engine.query(ctx, logActionGetBook, sqlQuery)
	if err != nil {
		return catalog.Book{}, err
	}
	defer s.engine.closeRows(rows)

	if !rows.Next() {
		return catalog.Book{}, catalog.ErrUnknownBook
	}

	return s.scanBook(rows)
}

// List returns all books ordered by creation time.
func (s *BookStore) List(ctx context.Context) ([]catalog.Book, error) {
	return s.list(ctx, nil)
}

// ListAvailable returns all books with at least one available copy.
func (s *BookStore) ListAvailable(ctx context.Context) ([]catalog.Book, error) {
	return s.list(ctx, goqu.C(colAvailableCopies).Gt(0))
}

func (s *BookStore) list(ctx context.Context, where goqu.Expression) ([]catalog.Book, error) {
	selectStmt := builder().
		From(s.engine.tables.Books).
		Select(s.bookColumns()...).
		Order(goqu.I(colBookCreatedAt).Asc(), goqu.I(colBookID).Asc())

	if where != nil {
		selectStmt = selectStmt.Where(where)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := s.engine.query(ctx, logActionListBooks, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer s.engine.closeRows(rows)

	books := make([]catalog.Book, 0)

	for rows.Next() {
		book, scanErr := s.scanBook(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		books = append(books, book)
	}

	return books, nil
}

// AdjustAvailability changes available_copies by delta with the bounds guard
// inside the update statement. Zero rows affected means either the book is
// unknown or the adjustment would leave [0, total_copies].
func (s *BookStore) AdjustAvailability(ctx context.Context, bookID uuid.UUID, delta int) error {
	sqlQuery, _, toSQLErr := builder().
		Update(s.engine.tables.Books).
		Set(goqu.Record{
			colAvailableCopies: goqu.L(colAvailableCopies+" + ?", delta),
		}).
		Where(
			goqu.C(colBookID).Eq(bookID.String()),
			goqu.L(colAvailableCopies+" + ? BETWEEN 0 AND "+colTotalCopies, delta),
		).
		ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.engine.exec(ctx, logActionAdjustAvail, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		if _, getErr := s.Get(ctx, bookID); errors.Is(getErr, catalog.ErrUnknownBook) {
			return catalog.ErrUnknownBook
		}

		return catalog.ErrInvalidAdjustment
	}

	if s.engine.logger != nil {
		s.engine.logger.Info(logMsgAvailAdjusted,
			logAttrBookID, bookID.String(),
			logAttrDelta, delta)
	}

	return nil
}

// Add inserts a new book.
func (s *BookStore) Add(ctx context.Context, book catalog.Book) error {
	sqlQuery, _, toSQLErr := builder().
		Insert(s.engine.tables.Books).
		Rows(s.bookRecord(book)).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.engine.exec(ctx, logActionInsertBook, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return catalog.ErrBookExists
	}

	return nil
}

// Update replaces the stored book. Available copies are clamped to the new
// total so admin edits cannot break the invariant.
func (s *BookStore) Update(ctx context.Context, book catalog.Book) error {
	if book.AvailableCopies > book.TotalCopies {
		book.AvailableCopies = book.TotalCopies
	}
	if book.AvailableCopies < 0 {
		book.AvailableCopies = 0
	}

	record := s.bookRecord(book)
	delete(record, colBookID)
	delete(record, colBookCreatedAt)

	sqlQuery, _, toSQLErr := builder().
		Update(s.engine.tables.Books).
		Set(record).
		Where(goqu.C(colBookID).Eq(book.ID.String())).
		ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.engine.exec(ctx, logActionUpdateBook, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return catalog.ErrUnknownBook
	}

	return nil
}

// Remove deletes the book with the given id.
func (s *BookStore) Remove(ctx context.Context, bookID uuid.UUID) error {
	sqlQuery, _, toSQLErr := builder().
		Delete(s.engine.tables.Books).
		Where(goqu.C(colBookID).Eq(bookID.String())).
		ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.engine.exec(ctx, logActionDeleteBook, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return catalog.ErrUnknownBook
	}

	return nil
}

func (s *BookStore) bookRecord(book catalog.Book) goqu.Record {
	return goqu.Record{
		colBookID:          book.ID.String(),
		colTitle:           book.Title,
		colAuthor:          book.Author,
		colISBN:            book.ISBN,
		colCategory:        book.Category,
		colPublishYear:     book.PublishYear,
		colTotalCopies:     book.TotalCopies,
		colAvailableCopies: book.AvailableCopies,
		colPrice:           book.Price,
		colDescription:     book.Description,
		colCoverImage:      book.CoverImage,
		colBookCreatedAt:   book.CreatedAt,
	}
}

func (s *BookStore) scanBook(rows adapters.DBRows) (catalog.Book, error) {
	var (
		book  catalog.Book
		rawID string
	)

	scanErr := rows.Scan(
		&rawID, &book.Title, &book.Author, &book.ISBN, &book.Category,
		&book.PublishYear, &book.TotalCopies, &book.AvailableCopies,
		&book.Price, &book.Description, &book.CoverImage, &book.CreatedAt,
	)
	if scanErr != nil {
		s.engine.logError(logMsgScanRowFailed, scanErr)
		return catalog.Book{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	id, parseErr := uuid.Parse(rawID)
	if parseErr != nil {
		return catalog.Book{}, errors.Join(ErrScanningDBRowFailed, parseErr)
	}

	book.ID = id

	return book, nil
}
