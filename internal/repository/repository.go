// Package repository provides entity-agnostic data access over PostgreSQL
// for the procurement service.
//
// # Overview
//
// A Repository is parameterized by a record type and a Descriptor naming the
// table, its id column, the column allow-list and a row decoder. Supplier and
// purchase repositories compose a generic Repository and add their own
// lookups.
//
// # Results
//
// Lookups by id or field return (record, found, error): a missing row is a
// normal absent result, not an error. Update and Delete report a missing row
// as domain.NotFoundError.
//
// # Error Handling
//
// Store faults are classified by database.ClassifyError:
//
//   - unique violations become domain.DuplicateError
//   - foreign key violations become domain.ForeignKeyError
//   - pool acquisition timeouts keep domain.ErrPoolExhausted
//   - anything else becomes domain.DatabaseError with the cause attached
//
// # Transactions
//
// Mutations run in their own transaction when the handle can begin one (a
// pool or *database.DB). Passing a pgx.Tx makes them join that transaction:
//
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    suppliers := repository.NewSupplierRepository(tx, "public", logger)
//	    _, err := suppliers.Create(ctx, fields)
//	    return err
//	})
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/helixir/procurement-service/internal/database"
	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/query"
)

// DBTX is the database interface supporting both pool and transaction contexts.
type DBTX = database.DBTX

// txBeginner is implemented by handles that can open a transaction
// (*database.DB, *pgxpool.Pool). A pgx.Tx also satisfies it; Begin on a
// transaction opens a savepoint.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ListOptions controls ordering and paging of multi-row reads. The zero value
// orders by id ascending and returns every row.
type ListOptions struct {
	OrderBy []query.Order
	Limit   int
	Offset  int
}

// Page selects a window of a listing whose order is fixed by the query.
// Zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// Ordered returns list options for p in the given order.
func (p Page) Ordered(orderBy ...query.Order) ListOptions {
	return ListOptions{OrderBy: orderBy, Limit: p.Limit, Offset: p.Offset}
}

// Store is the CRUD surface the service layer builds on.
type Store[T any, K comparable] interface {
	FindByID(ctx context.Context, id K) (*T, bool, error)
	FindAll(ctx context.Context, opts ListOptions) ([]*T, error)
	FindByField(ctx context.Context, field string, value any) (*T, bool, error)
	FindManyByField(ctx context.Context, field string, value any, orderBy ...query.Order) ([]*T, error)
	Create(ctx context.Context, fields domain.FieldMap) (*T, error)
	Update(ctx context.Context, id K, fields domain.FieldMap) (*T, error)
	Delete(ctx context.Context, id K) (bool, error)
	Exists(ctx context.Context, id K) (bool, error)
}
