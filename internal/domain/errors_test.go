package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrors_UnwrapToSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "not found",
			err:      NewNotFoundError(EntitySupplier, 5),
			sentinel: ErrNotFound,
			message:  "supplier not found: 5",
		},
		{
			name:     "duplicate",
			err:      NewDuplicateError(EntitySupplier, "nit", "123"),
			sentinel: ErrDuplicate,
			message:  "supplier already exists with nit: 123",
		},
		{
			name:     "duplicate without field",
			err:      &DuplicateError{Entity: EntityPurchase},
			sentinel: ErrDuplicate,
			message:  "purchase already exists",
		},
		{
			name:     "foreign key with id",
			err:      NewForeignKeyError(EntitySupplier, 999),
			sentinel: ErrForeignKey,
			message:  "supplier with id 999 does not exist",
		},
		{
			name:     "foreign key with detail",
			err:      &ForeignKeyError{Entity: EntityPurchase, Detail: "referenced row missing"},
			sentinel: ErrForeignKey,
			message:  "foreign key violation on purchase: referenced row missing",
		},
		{
			name:     "validation",
			err:      NewValidationError("fields", "at least one field is required"),
			sentinel: ErrInvalidInput,
			message:  "validation error: fields: at least one field is required",
		},
		{
			name:     "database",
			err:      NewDatabaseError("connection reset", nil),
			sentinel: ErrDatabase,
			message:  "database error: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.message, tt.err.Error())

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
		})
	}
}

func TestDatabaseError_KeepsCause(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := NewDatabaseError("failed to load supplier", cause)

	assert.True(t, errors.Is(err, ErrDatabase))
	assert.True(t, errors.Is(err, cause))
	assert.NotContains(t, err.Error(), "driver")

	var dbErr *DatabaseError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &dbErr))
	assert.Equal(t, cause, dbErr.Cause)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"nil", nil, ""},
		{"not found", NewNotFoundError(EntitySupplier, 1), KindNotFound},
		{"duplicate", NewDuplicateError(EntitySupplier, "nit", "1"), KindDuplicate},
		{"foreign key", NewForeignKeyError(EntitySupplier, 1), KindForeignKey},
		{"validation", NewValidationError("f", "m"), KindInvalidInput},
		{"pool exhausted", fmt.Errorf("acquire: %w", ErrPoolExhausted), KindPoolExhausted},
		{"pool exhausted inside database error", NewDatabaseError("x", ErrPoolExhausted), KindPoolExhausted},
		{"database", NewDatabaseError("x", errors.New("y")), KindDatabase},
		{"unknown", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, ErrorKind(tt.err))
		})
	}

	assert.True(t, IsDomainError(NewNotFoundError(EntitySupplier, 1)))
	assert.False(t, IsDomainError(errors.New("boom")))
	assert.False(t, IsDomainError(nil))
}
