package core

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
)

var (
	NoRecordFound = xerrors.Message("No record found")
)

type Core struct {
	log         *slog.Logger
	db          *sql.DB
	sqlTemplate *databaseutils.SQLTemplate
	session     databaseutils.Session
}

func NewCore(dbConn *sql.DB, log *slog.Logger, sqlTemplate *databaseutils.SQLTemplate) *Core {
	return &Core{
		log:         log,
		db:          dbConn,
		sqlTemplate: sqlTemplate,
		session:     databaseutils.NewSession(dbConn, log),
	}
}

// uniqueViolation returns the constraint name when err is a unique violation.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return xerrors.New(NoRecordFound)
	}
	return xerrors.New(err)
}

func (c *Core) DB() *sql.DB {
	return c.db
}
