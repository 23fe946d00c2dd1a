package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/store"
)

// SQLSTATE codes the stores translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// taskCheckErrors maps the CHECK constraints of the tasks table to the
// validation error the domain layer reports for the same rule.
var taskCheckErrors = map[string]*domain.ValidationError{
	"tasks_status_check": domain.NewValidationError(
		"status", "must be either pending or completed", domain.ErrInvalidTaskStatus),
	"tasks_priority_check": domain.NewValidationError(
		"priority", "must be low, medium, or high", domain.ErrInvalidTaskPriority),
	"tasks_order_check": domain.NewValidationError(
		"order", "must be 0 or greater", domain.ErrInvalidTaskOrder),
	"tasks_description_length_check": domain.NewValidationError(
		"description", "must not exceed 1000 characters", domain.ErrTaskDescriptionLong),
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// MapError maps a database error to the matching store error, wrapping the
// original so it stays available for logging.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	pgErr, ok := asPgError(err)
	if !ok {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case codeForeignKeyViolation, codeCheckViolation:
		return fmt.Errorf("%w: constraint %s: %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == codeUniqueViolation
}

// mapTaskWriteError translates a failed task insert or update. A missing
// owner becomes store.ErrUserNotFound and a CHECK failure becomes the
// matching domain validation error.
func mapTaskWriteError(err error) error {
	pgErr, ok := asPgError(err)
	if !ok {
		return MapError(err)
	}
	switch pgErr.Code {
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: task owner: %v", store.ErrUserNotFound, err)
	case codeCheckViolation:
		if verr, ok := taskCheckErrors[pgErr.ConstraintName]; ok {
			out := *verr
			return &out
		}
	}
	return MapError(err)
}

// mapEmailConflict reports a unique violation on users as store.ErrEmailExists.
func mapEmailConflict(err error) error {
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
	}
	return MapError(err)
}

// requireAffected returns notFound when an UPDATE or DELETE matched no rows.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
