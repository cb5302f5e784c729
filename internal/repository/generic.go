package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/database"
	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/observability"
	"github.com/helixir/procurement-service/internal/query"
)

// Repository is the CRUD engine over one table. It holds no entity-specific
// business rules and is safe for concurrent use when db is a pool.
type Repository[T any, K comparable] struct {
	db       DBTX
	desc     Descriptor[T]
	table    query.Table
	readable map[string]struct{}
	logger   zerolog.Logger
}

// New builds a Repository. It panics when desc is invalid; descriptors are
// static values fixed at process start.
func New[T any, K comparable](db DBTX, desc Descriptor[T], logger zerolog.Logger) *Repository[T, K] {
	if err := desc.Validate(); err != nil {
		panic(fmt.Sprintf("repository: %v", err))
	}

	readable := make(map[string]struct{}, len(desc.Columns))
	for _, c := range desc.Columns {
		readable[c] = struct{}{}
	}

	return &Repository[T, K]{
		db:       db,
		desc:     desc,
		table:    desc.table(),
		readable: readable,
		logger: observability.WithComponent(logger, "repository").With().
			Str("entity", desc.Entity).
			Logger(),
	}
}

// Descriptor returns the repository's descriptor.
func (r *Repository[T, K]) Descriptor() Descriptor[T] {
	return r.desc
}

// FindByID returns the record with the given id. A missing row yields
// (nil, false, nil).
func (r *Repository[T, K]) FindByID(ctx context.Context, id K) (*T, bool, error) {
	return r.FindOneWhere(ctx, query.Eq(r.desc.IDColumn, id))
}

// FindAll returns every record ordered by opts.OrderBy (id ascending by default).
func (r *Repository[T, K]) FindAll(ctx context.Context, opts ListOptions) ([]*T, error) {
	return r.FindManyWhere(ctx, opts)
}

// FindByField returns the first record whose field equals value.
func (r *Repository[T, K]) FindByField(ctx context.Context, field string, value any) (*T, bool, error) {
	return r.FindOneWhere(ctx, query.Eq(field, value))
}

// FindManyByField returns every record whose field equals value.
func (r *Repository[T, K]) FindManyByField(ctx context.Context, field string, value any, orderBy ...query.Order) ([]*T, error) {
	return r.FindManyWhere(ctx, ListOptions{OrderBy: orderBy}, query.Eq(field, value))
}

// FindOneWhere returns the first record, in id order, matching all filters.
func (r *Repository[T, K]) FindOneWhere(ctx context.Context, filters ...query.Filter) (*T, bool, error) {
	if err := r.checkFilters(filters); err != nil {
		return nil, false, err
	}

	sql, args := query.BuildSelect(query.SelectQuery{
		Table:   r.table,
		Columns: r.desc.Columns,
		Filters: filters,
		OrderBy: []query.Order{query.Asc(r.desc.IDColumn)},
		Limit:   1,
	})

	rec, err := r.desc.Scan(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, r.fail(err, "find "+r.desc.Entity)
	}
	return rec, true, nil
}

// FindManyWhere returns every record matching all filters.
func (r *Repository[T, K]) FindManyWhere(ctx context.Context, opts ListOptions, filters ...query.Filter) ([]*T, error) {
	if err := r.checkFilters(filters); err != nil {
		return nil, err
	}
	orderBy := opts.OrderBy
	if len(orderBy) == 0 {
		orderBy = []query.Order{query.Asc(r.desc.IDColumn)}
	}
	for _, o := range orderBy {
		if err := r.checkReadable(o.Column); err != nil {
			return nil, err
		}
	}
	if opts.Limit < 0 {
		return nil, domain.NewValidationError("limit", "must not be negative")
	}
	if opts.Offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative")
	}

	sql, args := query.BuildSelect(query.SelectQuery{
		Table:   r.table,
		Columns: r.desc.Columns,
		Filters: filters,
		OrderBy: orderBy,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, r.fail(err, "list "+r.desc.Entity)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*T, error) {
		return r.desc.Scan(row)
	})
	if err != nil {
		return nil, r.fail(err, "list "+r.desc.Entity)
	}
	return records, nil
}

// Exists reports whether a record with the given id exists.
func (r *Repository[T, K]) Exists(ctx context.Context, id K) (bool, error) {
	_, found, err := r.FindByID(ctx, id)
	return found, err
}

// Create inserts the given fields and returns the stored record, including
// column defaults.
func (r *Repository[T, K]) Create(ctx context.Context, fields domain.FieldMap) (*T, error) {
	if err := r.checkWritable(fields); err != nil {
		return nil, err
	}
	sql, args, err := query.BuildInsert(r.table, fields, r.desc.Columns...)
	if err != nil {
		return nil, err
	}

	var created *T
	err = r.inTx(ctx, func(db DBTX) error {
		rec, err := r.desc.Scan(db.QueryRow(ctx, sql, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewDatabaseError("create "+r.desc.Entity+": no row returned", err)
			}
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, r.fail(err, "create "+r.desc.Entity)
	}

	r.logger.Info().
		Strs("columns", fields.Columns()).
		Msg("record created")
	return created, nil
}

// Update writes the given fields to the record with id. An empty field map
// returns the current record without issuing a write.
func (r *Repository[T, K]) Update(ctx context.Context, id K, fields domain.FieldMap) (*T, error) {
	if fields.Len() == 0 {
		rec, found, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, domain.NewNotFoundError(r.desc.Entity, id)
		}
		return rec, nil
	}
	if err := r.checkWritable(fields); err != nil {
		return nil, err
	}
	sql, args, err := query.BuildUpdate(r.table, fields, r.desc.IDColumn, id, r.desc.Columns...)
	if err != nil {
		return nil, err
	}

	var updated *T
	err = r.inTx(ctx, func(db DBTX) error {
		rec, err := r.desc.Scan(db.QueryRow(ctx, sql, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewNotFoundError(r.desc.Entity, id)
			}
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, r.fail(err, "update "+r.desc.Entity)
	}

	r.logger.Info().
		Interface("id", id).
		Strs("columns", fields.Columns()).
		Msg("record updated")
	return updated, nil
}

// Delete removes the record with id.
func (r *Repository[T, K]) Delete(ctx context.Context, id K) (bool, error) {
	sql, args := query.BuildDelete(r.table, r.desc.IDColumn, id)

	err := r.inTx(ctx, func(db DBTX) error {
		tag, err := db.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.NewNotFoundError(r.desc.Entity, id)
		}
		return nil
	})
	if err != nil {
		return false, r.fail(err, "delete "+r.desc.Entity)
	}

	r.logger.Info().Interface("id", id).Msg("record deleted")
	return true, nil
}

// inTx runs fn inside a transaction when the handle can begin one, otherwise
// directly on the handle.
func (r *Repository[T, K]) inTx(ctx context.Context, fn func(db DBTX) error) error {
	beginner, ok := r.db.(txBeginner)
	if !ok {
		return fn(r.db)
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// fail classifies err and logs store faults.
func (r *Repository[T, K]) fail(err error, detail string) error {
	classified := database.ClassifyError(err, r.desc.Entity, detail)
	switch domain.ErrorKind(classified) {
	case domain.KindDatabase, domain.KindPoolExhausted:
		r.logger.Error().Err(err).Str("operation", detail).Msg("store operation failed")
	}
	return classified
}

func (r *Repository[T, K]) checkReadable(column string) error {
	if _, ok := r.readable[column]; !ok {
		return domain.NewValidationError(column, fmt.Sprintf("unknown %s column", r.desc.Entity))
	}
	return nil
}

func (r *Repository[T, K]) checkFilters(filters []query.Filter) error {
	for _, f := range filters {
		if err := r.checkReadable(f.Column); err != nil {
			return err
		}
	}
	return nil
}

// checkWritable rejects unknown columns and the id column.
func (r *Repository[T, K]) checkWritable(fields domain.FieldMap) error {
	for _, c := range fields.Columns() {
		if err := r.checkReadable(c); err != nil {
			return err
		}
		if c == r.desc.IDColumn {
			return domain.NewValidationError(c, "is read-only")
		}
	}
	return nil
}
