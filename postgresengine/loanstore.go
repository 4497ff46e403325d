package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/librento/librento/ledger"
	"github.com/librento/librento/postgresengine/internal/adapters"
)

const (
	colLoanID          = "id"
	colLoanBookID      = "book_id"
	colLoanMemberID    = "member_id"
	colLoanMemberEmail = "member_email"
	colBorrowDate      = "borrow_date"
	colDueDate         = "due_date"
	colReturnDate      = "return_date"

	logActionAppendLoan   = "append loan record"
	logActionFindOpenLoan = "find open loan record"
	logActionCloseLoan    = "close loan record"
	logActionListLoans    = "list loan records"
)

// LoanStore implements ledger.RecordStore on top of Postgres.
//
// Both writes carry their precondition inside the statement. Append only
// inserts when no open record exists for the pair, SetReturned only updates
// while return_date is still NULL. Zero rows affected surfaces as
// ledger.ErrConcurrencyConflict so the caller re-reads and retries.
type LoanStore struct {
	engine Engine
}

var _ ledger.RecordStore = (*LoanStore)(nil)

func (s *LoanStore) loanColumns() []any {
	return []any{
		colLoanID, colLoanBookID, colLoanMemberID, colLoanMemberEmail,
		colBorrowDate, colDueDate, colReturnDate,
	}
}

// Append stores a new open record unless an open record already exists for
// the same (book, member email) pair. The guard and the insert are a single
// statement, so two concurrent borrows cannot both succeed.
func (s *LoanStore) Append(ctx context.Context, record ledger.LoanRecord) error {
	openForPair := builder().
		From(s.engine.tables.Loans).
		Select(goqu.L("1")).
		Where(
			goqu.C(colLoanBookID).Eq(record.BookID.String()),
			goqu.L("LOWER("+colLoanMemberEmail+")").Eq(strings.ToLower(record.MemberEmail)),
			goqu.C(colReturnDate).IsNull(),
		)

	selectValues := builder().
		Select(
			goqu.V(record.ID.String()),
			goqu.V(record.BookID.String()),
			goqu.V(record.MemberID.String()),
			goqu.V(record.MemberEmail),
			goqu.V(record.BorrowDate),
			goqu.V(record.DueDate),
			goqu.V(nil),
		).
		Where(goqu.L("NOT EXISTS ?", openForPair))

	sqlQuery, _, toSQLErr := builder().
		Insert(s.engine.tables.Loans).
		Cols(s.loanColumns()...).
		FromQuery(selectValues).
		ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.engine.exec(ctx, logActionAppendLoan, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ledger.ErrConcurrencyConflict
	}

	return nil
}

// FindOpen returns the earliest-borrowed open record for the pair.
func (s *LoanStore) FindOpen(ctx context.Context, bookID uuid.UUID, memberEmail string) (ledger.LoanRecord, error) {
	sqlQuery, _, toSQLErr := builder().
		From(s.engine.tables.Loans).
		Select(s.loanColumns()...).
		Where(
			goqu.C(colLoanBookID).Eq(bookID.String()),
			goqu.L("LOWER("+colLoanMemberEmail+")").Eq(strings.ToLower(memberEmail)),
			goqu.C(colReturnDate).IsNull(),
		).
		Order(goqu.I(colBorrowDate).Asc(), goqu.I(colLoanID).Asc()).
		Limit(1).
		ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return ledger.LoanRecord{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := s.engine.query(ctx, logActionFindOpenLoan, sqlQuery)
	if err != nil {
		return ledger.LoanRecord{}, err
	}
	defer s.engine.closeRows(rows)

	if !rows.Next() {
		return ledger.LoanRecord{}, ledger.ErrNoOpenLoan
	}

	return s.scanRecord(rows)
}

// SetReturned closes the record, guarded against it already being closed.
func (s *LoanStore) SetReturned(ctx context.Context, recordID uuid.UUID, returnedAt time.Time) error {
	sqlQuery, _, toSQLErr := builder().
		Update(s.engine.tables.Loans).
		Set(goqu.Record{colReturnDate: returnedAt}).
		Where(
			goqu.C(colLoanID).Eq(recordID.String()),
			goqu.C(colReturnDate).IsNull(),
		).
		ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.engine.exec(ctx, logActionCloseLoan, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ledger.ErrConcurrencyConflict
	}

	return nil
}

// List returns all records ordered by borrow date.
func (s *LoanStore) List(ctx context.Context) ([]ledger.LoanRecord, error) {
	return s.list(ctx, nil)
}

// ListForMember returns all records for the member email, compared
// case-insensitively, ordered by borrow date.
func (s *LoanStore) ListForMember(ctx context.Context, memberEmail string) ([]ledger.LoanRecord, error) {
	return s.list(ctx, goqu.L("LOWER("+colLoanMemberEmail+")").Eq(strings.ToLower(memberEmail)))
}

func (s *LoanStore) list(ctx context.Context, where goqu.Expression) ([]ledger.LoanRecord, error) {
	selectStmt := builder().
		From(s.engine.tables.Loans).
		Select(s.loanColumns()...).
		Order(goqu.I(colBorrowDate).Asc(), goqu.I(colLoanID).Asc())

	if where != nil {
		selectStmt = selectStmt.Where(where)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.engine.logError(logMsgBuildQueryFailed, toSQLErr)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := s.engine.query(ctx, logActionListLoans, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer s.engine.closeRows(rows)

	records := make([]ledger.LoanRecord, 0)

	for rows.Next() {
		record, scanErr := s.scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		records = append(records, record)
	}

	return records, nil
}

func (s *LoanStore) scanRecord(rows adapters.DBRows) (ledger.LoanRecord, error) {
	var (
		record      ledger.LoanRecord
		rawID       string
		rawBookID   string
		rawMemberID string
		returnDate  sql.NullTime
	)

	scanErr := rows.Scan(
		&rawID, &rawBookID, &rawMemberID, &record.MemberEmail,
		&record.BorrowDate, &record.DueDate, &returnDate,
	)
	if scanErr != nil {
		s.engine.logError(logMsgScanRowFailed, scanErr)
		return ledger.LoanRecord{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	id, parseErr := uuid.Parse(rawID)
	if parseErr != nil {
		return ledger.LoanRecord{}, errors.Join(ErrScanningDBRowFailed, parseErr)
	}

	bookID, parseErr := uuid.Parse(rawBookID)
	if parseErr != nil {
		return ledger.LoanRecord{}, errors.Join(ErrScanningDBRowFailed, parseErr)
	}

	memberID, parseErr := uuid.Parse(rawMemberID)
	if parseErr != nil {
		return ledger.LoanRecord{}, errors.Join(ErrScanningDBRowFailed, parseErr)
	}

	record.ID = id
	record.BookID = bookID
	record.MemberID = memberID

	if returnDate.Valid {
		returnedAt := returnDate.Time
		record.ReturnDate = &returnedAt
	}

	return record, nil
}
