package postgresengine

import (
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/librento/librento/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName   = "books"
	defaultMembersTableName = "members"
	defaultLoansTableName   = "loans"

	dialectPostgres = "postgres"

	logMsgBuildQueryFailed   = "failed to build query"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgSQLExecuted        = "executed sql for: "
	logAttrError             = "error"
	logAttrQuery             = "query"
	logAttrDurationMS        = "duration_ms"
)

var (
	// ErrNilDatabaseConnection is returned when an engine is built from a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is supplied.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrBuildingQueryFailed is returned when goqu cannot render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryingFailed is returned when a select statement fails.
	ErrQueryingFailed = errors.New("querying failed")

	// ErrExecFailed is returned when an insert/update/delete statement fails.
	ErrExecFailed = errors.New("executing statement failed")

	// ErrScanningDBRowFailed is returned when a result row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrGettingRowsAffectedFailed is returned when the affected-row count is unavailable.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
)

// Logger interface for SQL query logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// TableNames holds the table names the engine operates on.
type TableNames struct {
	Books   string
	Members string
	Loans   string
}

// Engine is a Postgres-backed storage engine for the library core.
// It leverages a database adapter and supports customizable logging and
// table configuration; the per-component stores all share one Engine.
type Engine struct {
	db     adapters.DBAdapter
	tables TableNames
	logger Logger
}

// Option defines a functional option for configuring an Engine.
type Option func(*Engine) error

// WithLogger sets the logger for the Engine.
//
// Debug level: SQL statements with execution timing (development use)
// Warn level: non-critical issues like row cleanup failures
// Error level: failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithTableNames overrides the default books/members/loans table names.
func WithTableNames(tables TableNames) Option {
	return func(e *Engine) error {
		if tables.Books == "" || tables.Members == "" || tables.Loans == "" {
			return ErrEmptyTableName
		}

		e.tables = tables

		return nil
	}
}

// NewEngineFromPGXPool creates a new Engine using a pgx pool with optional configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, ErrNilDatabaseConnection
	}

	return buildEngine(adapters.NewPGXAdapter(db), options...)
}

// NewEngineFromPGXPoolWithReplica creates a new Engine routing reads to a replica pool.
func NewEngineFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Engine, error) {
	if db == nil || replica == nil {
		return Engine{}, ErrNilDatabaseConnection
	}

	return buildEngine(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, ErrNilDatabaseConnection
	}

	return buildEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, ErrNilDatabaseConnection
	}

	return buildEngine(adapters.NewSQLXAdapter(db), options...)
}

func buildEngine(db adapters.DBAdapter, options ...Option) (Engine, error) {
	engine := Engine{
		db: db,
		tables: TableNames{
			Books:   defaultBooksTableName,
			Members: defaultMembersTableName,
			Loans:   defaultLoansTableName,
		},
	}

	for _, option := range options {
		if err := option(&engine); err != nil {
			return Engine{}, err
		}
	}

	return engine, nil
}

// BookStore returns the catalog store backed by this engine.
func (e Engine) BookStore() *BookStore {
	return &BookStore{engine: e}
}

// MemberDirectory returns the member directory backed by this engine.
func (e Engine) MemberDirectory() *MemberDirectory {
	return &MemberDirectory{engine: e}
}

// LoanStore returns the loan record store backed by this engine.
func (e Engine) LoanStore() *LoanStore {
	return &LoanStore{engine: e}
}

// logQueryWithDuration logs SQL statements with execution time at debug level
// if the logger is configured.
func (e Engine) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (e Engine) logError(msg string, err error, args ...any) {
	if e.logger != nil {
		e.logger.Error(msg, append([]any{logAttrError, err.Error()}, args...)...)
	}
}

func (e Engine) logWarn(msg string, err error) {
	if e.logger != nil {
		e.logger.Warn(msg, logAttrError, err.Error())
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
