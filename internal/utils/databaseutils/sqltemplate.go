package databaseutils

import (
	"context"
	"database/sql"
	"time"
)

type SQLTemplate struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewSQLTemplate(db *sql.DB, timeout time.Duration) *SQLTemplate {
	return &SQLTemplate{
		DB:      db,
		Timeout: timeout,
	}
}

func (t *SQLTemplate) executor(ctx context.Context) SQLExecutor {
	return GetSQLExecutor(ctx, t.DB)
}

// ExecuteQuery runs query and maps every row with extractor.
func ExecuteQuery[T any](sqlTemplate *SQLTemplate, ctx context.Context, query string, extractor func(rows *sql.Rows) (T, error), args ...any) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, sqlTemplate.Timeout)
	defer cancel()

	rows, err := sqlTemplate.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []T{}
	for rows.Next() {
		t, err := extractor(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// ExecuteSingleQuery is ExecuteQuery for exactly one row. It returns sql.ErrNoRows when
// the query yields nothing.
func ExecuteSingleQuery[T any](sqlTemplate *SQLTemplate, ctx context.Context, query string, extractor func(rows *sql.Rows) (T, error), args ...any) (T, error) {
	var zero T
	results, err := ExecuteQuery(sqlTemplate, ctx, query, extractor, args...)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, sql.ErrNoRows
	}
	return results[0], nil
}

// Exec runs a statement and reports the number of affected rows.
func Exec(sqlTemplate *SQLTemplate, ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, sqlTemplate.Timeout)
	defer cancel()

	result, err := sqlTemplate.executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func ScanInt64(rows *sql.Rows) (int64, error) {
	var n int64
	err := rows.Scan(&n)
	return n, err
}
