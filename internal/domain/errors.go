package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates that a uniqueness constraint would be or was violated.
	ErrDuplicate = errors.New("duplicate")

	// ErrForeignKey indicates that a referenced record is missing or that a
	// referencing record blocks the operation.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrDatabase indicates any other store-level fault.
	ErrDatabase = errors.New("database error")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPoolExhausted indicates that no pooled connection became available
	// within the acquire timeout.
	ErrPoolExhausted = errors.New("connection pool exhausted")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DuplicateError provides details about a violated business key.
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s already exists", e.Entity)
	}
	return fmt.Sprintf("%s already exists with %s: %s", e.Entity, e.Field, e.Value)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// ForeignKeyError reports a reference to a record that does not exist, or a
// record that cannot be removed because others still reference it.
type ForeignKeyError struct {
	// Entity is the referenced entity when known (for example "supplier").
	Entity string
	// ID is the referenced id when known.
	ID string
	// Detail is a short description used when Entity/ID are not known.
	Detail string
	// Cause is the store error that reported the violation, if any.
	Cause error
}

// Error implements the error interface.
func (e *ForeignKeyError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %s does not exist", e.Entity, e.ID)
	}
	if e.Detail != "" {
		return fmt.Sprintf("foreign key violation on %s: %s", e.Entity, e.Detail)
	}
	return fmt.Sprintf("foreign key violation on %s", e.Entity)
}

// Unwrap exposes the sentinel and, when present, the store error.
func (e *ForeignKeyError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrForeignKey}
	}
	return []error{ErrForeignKey, e.Cause}
}

// DatabaseError wraps any other store fault. Detail is the only part meant to
// reach clients; Cause stays reachable through errors.Is/errors.As.
type DatabaseError struct {
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error: %s", e.Detail)
}

// Unwrap exposes both the sentinel and the original cause.
func (e *DatabaseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDatabase}
	}
	return []error{ErrDatabase, e.Cause}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     fmt.Sprint(id),
	}
}

// NewDuplicateError creates a new DuplicateError.
func NewDuplicateError(entity, field string, value any) *DuplicateError {
	return &DuplicateError{
		Entity: entity,
		Field:  field,
		Value:  fmt.Sprint(value),
	}
}

// NewForeignKeyError creates a ForeignKeyError naming the missing referenced record.
func NewForeignKeyError(entity string, id any) *ForeignKeyError {
	return &ForeignKeyError{
		Entity: entity,
		ID:     fmt.Sprint(id),
	}
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(detail string, cause error) *DatabaseError {
	return &DatabaseError{
		Detail: detail,
		Cause:  cause,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error kinds reported by ErrorKind. They double as metric label values.
const (
	KindNotFound      = "not_found"
	KindDuplicate     = "duplicate"
	KindForeignKey    = "foreign_key"
	KindInvalidInput  = "invalid_input"
	KindPoolExhausted = "pool_exhausted"
	KindDatabase      = "database"
	KindUnknown       = "unknown"
)

// ErrorKind returns the taxonomy kind of err, or "" for a nil error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrForeignKey):
		return KindForeignKey
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrPoolExhausted):
		return KindPoolExhausted
	case errors.Is(err, ErrDatabase):
		return KindDatabase
	default:
		return KindUnknown
	}
}

// IsDomainError reports whether err already carries one of the taxonomy kinds.
func IsDomainError(err error) bool {
	k := ErrorKind(err)
	return k != "" && k != KindUnknown
}
