package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import

	"github.com/librento/librento/postgresengine/internal/adapters"
)

// builder returns the goqu dialect builder all statements are rendered with.
func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// query executes a select statement and returns rows with timing logged.
func (e Engine) query(ctx context.Context, action string, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery)
	e.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if queryErr != nil {
		e.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrQueryingFailed, queryErr)
	}

	return rows, nil
}

// exec executes a mutating statement and returns the affected-row count with
// timing logged.
func (e Engine) exec(ctx context.Context, action string, sqlQuery string) (int64, error) {
	start := time.Now()
	result, execErr := e.db.Exec(ctx, sqlQuery)
	e.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if execErr != nil {
		e.logError(logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrExecFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		e.logError(logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (e Engine) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarn(logMsgCloseRowsFailed, closeErr)
	}
}
