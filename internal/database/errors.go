package database

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helixir/procurement-service/internal/domain"
)

// PostgreSQL error codes used for constraint violation detection.
const (
	PgUniqueViolation     = "23505" // unique_violation
	PgForeignKeyViolation = "23503" // foreign_key_violation
	PgNotNullViolation    = "23502" // not_null_violation
	PgCheckViolation      = "23514" // check_violation
)

// keyDetailPattern extracts column and value from constraint details such as
// `Key (nit)=(123) already exists.`
var keyDetailPattern = regexp.MustCompile(`Key \(([^)]+)\)=\((.*)\)`)

// PgErrorCode returns the SQLSTATE of err when it wraps a *pgconn.PgError.
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return PgErrorCode(err) == PgUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return PgErrorCode(err) == PgForeignKeyViolation
}

// ClassifyError maps a store error onto the domain error taxonomy. Errors that
// already carry a domain kind are returned unchanged. detail is the short
// message used when the result is a DatabaseError.
func ClassifyError(err error, entity, detail string) error {
	if err == nil {
		return nil
	}
	if domain.IsDomainError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewDatabaseError(detail+": "+err.Error(), err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return domain.NewDatabaseError(detail, err)
	}

	switch pgErr.Code {
	case PgUniqueViolation:
		field, value := parseKeyDetail(pgErr.Detail)
		return &domain.DuplicateError{Entity: entity, Field: field, Value: value}
	case PgForeignKeyViolation:
		return &domain.ForeignKeyError{Entity: entity, Detail: pgErr.ConstraintName, Cause: err}
	case PgNotNullViolation:
		return domain.NewValidationError(pgErr.ColumnName, "must not be null")
	case PgCheckViolation:
		return domain.NewValidationError(pgErr.ConstraintName, "violates check constraint")
	default:
		return domain.NewDatabaseError(detail, err)
	}
}

func parseKeyDetail(detail string) (field, value string) {
	m := keyDetailPattern.FindStringSubmatch(detail)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}
