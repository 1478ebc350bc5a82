package pgdb

import (
	"errors"
	"fmt"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapErr переводит ошибки драйвера в классы ошибок предметной области.
// Ошибки без соответствия возвращаются как есть и на границе станут 500.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return e.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", e.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", e.ErrNotFound, pgErr.ConstraintName)
		}
	}

	return err
}
