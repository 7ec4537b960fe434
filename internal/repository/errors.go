package repository

import (
	"errors"
	"fmt"

	"go-packet-inventory/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes the stores react to.
const (
	pgCheckViolation  = "23514"
	pgUniqueViolation = "23505"
)

// ErrDuplicate is returned when a unique index rejects an insert.
var ErrDuplicate = errors.New("duplicate record")

// translateError maps driver errors onto the domain taxonomy. Domain errors
// pass through untouched.
func translateError(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation:
			return fmt.Errorf("%s: %w (%s)", op, model.ErrInsufficientStock, pgErr.ConstraintName)
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pgErr.ConstraintName)
		}
	}
	return &model.PersistenceError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		model.ErrUnauthorized,
		model.ErrForbidden,
		model.ErrNotFound,
		model.ErrInvalidInput,
		model.ErrInsufficientStock,
		model.ErrPersistence,
		ErrDuplicate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
