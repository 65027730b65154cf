package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/txn"
)

// SQLSTATE codes the services react to.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Classify maps driver errors onto the kinds the services understand:
// unique violations become apperr.ErrDuplicateKey and retryable aborts
// become txn.ErrTransient. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w on %s: %w", apperr.ErrDuplicateKey, pgErr.ConstraintName, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %w", txn.ErrTransient, err)
	}

	return err
}
