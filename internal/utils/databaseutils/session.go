package databaseutils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mdobak/go-xerrors"
)

type txKey struct {
}

// SQLExecutor is implemented by both *sql.DB and *sql.Tx, so queries can run
// inside or outside a transaction unchanged.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session manages transactions for code that only sees a context.
type Session interface {
	// DoTransactionally runs fn in a new transaction carried by txCtx.
	// The transaction is committed if fn returns nil and rolled back otherwise.
	DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) error
}

type sqlSession struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSession(db *sql.DB, log *slog.Logger) Session {
	return &sqlSession{
		db:  db,
		log: log,
	}
}

func (s *sqlSession) DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	// Nested calls join the outer transaction.
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Newf("session: failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				s.log.Error("session: failed to rollback transaction",
					slog.String("rollback_error", rollbackErr.Error()),
					slog.String("error", err.Error()))
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = xerrors.Newf("session: failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	return err
}

// GetSQLExecutor returns the transaction stored in ctx, or fallbackDB when there is none.
func GetSQLExecutor(ctx context.Context, fallbackDB *sql.DB) SQLExecutor {
	dbExecutor := ctx.Value(txKey{})
	if dbExecutor == nil {
		return fallbackDB
	}

	tx, ok := dbExecutor.(*sql.Tx)
	if !ok {
		panic(fmt.Sprintf("session: value in context for txKey is not a *sql.Tx, but %T", dbExecutor))
	}
	return tx
}

func DoTransactionally[T any](ctx context.Context, session Session, fn func(txCtx context.Context) (T, error)) (T, error) {
	var zero T
	var result T
	err := session.DoTransactionally(ctx, func(txCtx context.Context) error {
		r, err := fn(txCtx)
		result = r
		return err
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}
