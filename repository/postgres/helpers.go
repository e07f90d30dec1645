package postgres

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation    = "23505"
	pgInvalidTextForType = "22P02"
)

var dialect = goqu.Dialect("postgres")

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// asText selects a uuid column as its string form.
func asText(column string) interface{} {
	return goqu.Cast(goqu.C(column), "TEXT").As(column)
}
