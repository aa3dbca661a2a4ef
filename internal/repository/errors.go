package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vendorly/vendorly-api/internal/domain"
)

// mapPostgresError converts PostgreSQL-specific errors into the domain
// taxonomy. Unique violations are keyed on the constraint name so the
// per-owner vendor name constraint and the account identity constraints map
// to distinct sentinel errors. Anything unrecognized is returned wrapped.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "vendors_owner_id_name_key":
			return domain.ErrDuplicateVendorName
		case "accounts_subject_id_key", "accounts_email_key":
			return domain.ErrAccountExists
		}
		return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, err)
	}

	return err
}

// isNoRows reports whether err is pgx's empty-result sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
