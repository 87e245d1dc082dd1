package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// limitArg maps a zero limit to SQL NULL, which Postgres reads as no limit.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

func offsetArg(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}
