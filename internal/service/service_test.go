package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/observability"
	"github.com/helixir/procurement-service/internal/query"
	"github.com/helixir/procurement-service/internal/repository"
)

func newGenericService(store *MockSupplierStore, opts ...Option) *Service[domain.Supplier, int64] {
	return New[domain.Supplier, int64](store, domain.EntitySupplier, zerolog.Nop(), opts...)
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store := new(MockSupplierStore)
		want := &domain.Supplier{ID: 1, Name: "Acme", TaxID: "123"}
		store.On("FindByID", mock.Anything, int64(1)).Return(want, true, nil)

		got, err := newGenericService(store).GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		store.AssertExpectations(t)
	})

	t.Run("absent record is not found", func(t *testing.T) {
		store := new(MockSupplierStore)
		store.On("FindByID", mock.Anything, int64(42)).Return(nil, false, nil)

		_, err := newGenericService(store).GetByID(ctx, 42)
		require.Error(t, err)

		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, domain.EntitySupplier, nf.Entity)
		assert.Equal(t, "42", nf.ID)
	})

	t.Run("unclassified store errors become database errors", func(t *testing.T) {
		store := new(MockSupplierStore)
		cause := errors.New("connection reset")
		store.On("FindByID", mock.Anything, int64(1)).Return(nil, false, cause)

		_, err := newGenericService(store).GetByID(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrDatabase)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		store := new(MockSupplierStore)
		store.On("FindByID", mock.Anything, int64(1)).Return(nil, false, domain.NewDatabaseError("find supplier", domain.ErrPoolExhausted))

		_, err := newGenericService(store).GetByID(ctx, 1)
		assert.Equal(t, domain.KindPoolExhausted, domain.ErrorKind(err))
	})
}

func TestService_GetAll(t *testing.T) {
	store := new(MockSupplierStore)
	opts := repository.ListOptions{OrderBy: []query.Order{query.Asc(domain.SupplierColumnName)}, Limit: 10}
	want := []*domain.Supplier{{ID: 1}, {ID: 2}}
	store.On("FindAll", mock.Anything, opts).Return(want, nil)

	got, err := newGenericService(store).GetAll(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	store.AssertExpectations(t)
}

func TestService_CreateFields(t *testing.T) {
	store := new(MockSupplierStore)
	var fields domain.FieldMap
	fields.Set(domain.SupplierColumnName, "Acme")
	fields.Set(domain.SupplierColumnTaxID, "123")

	want := &domain.Supplier{ID: 7, Name: "Acme", TaxID: "123"}
	store.On("Create", mock.Anything, fields).Return(want, nil)

	got, err := newGenericService(store).CreateFields(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	store.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	current := &domain.Supplier{ID: 3, Name: "Acme", TaxID: "123"}

	t.Run("writes set fields", func(t *testing.T) {
		store := new(MockSupplierStore)
		payload := domain.SupplierUpdate{Name: domain.Some("Acme Ltd")}
		updated := &domain.Supplier{ID: 3, Name: "Acme Ltd", TaxID: "123"}

		store.On("FindByID", mock.Anything, int64(3)).Return(current, true, nil)
		store.On("Update", mock.Anything, int64(3), payload.Fields()).Return(updated, nil)

		got, err := newGenericService(store).Update(ctx, 3, payload)
		require.NoError(t, err)
		assert.Equal(t, "Acme Ltd", got.Name)
		store.AssertExpectations(t)
	})

	t.Run("empty payload returns current record without writing", func(t *testing.T) {
		store := new(MockSupplierStore)
		store.On("FindByID", mock.Anything, int64(3)).Return(current, true, nil)

		got, err := newGenericService(store).Update(ctx, 3, domain.SupplierUpdate{})
		require.NoError(t, err)
		assert.Equal(t, current, got)
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing record", func(t *testing.T) {
		store := new(MockSupplierStore)
		store.On("FindByID", mock.Anything, int64(9)).Return(nil, false, nil)

		_, err := newGenericService(store).Update(ctx, 9, domain.SupplierUpdate{Name: domain.Some("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	current := &domain.Supplier{ID: 3}

	t.Run("removes existing record", func(t *testing.T) {
		store := new(MockSupplierStore)
		store.On("FindByID", mock.Anything, int64(3)).Return(current, true, nil)
		store.On("Delete", mock.Anything, int64(3)).Return(true, nil)

		require.NoError(t, newGenericService(store).Delete(ctx, 3))
		store.AssertExpectations(t)
	})

	t.Run("missing record", func(t *testing.T) {
		store := new(MockSupplierStore)
		store.On("FindByID", mock.Anything, int64(3)).Return(nil, false, nil)

		err := newGenericService(store).Delete(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("referenced record is a database error", func(t *testing.T) {
		store := new(MockSupplierStore)
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "compra_proveedor_id_proveedor_fkey"}
		store.On("FindByID", mock.Anything, int64(3)).Return(current, true, nil)
		store.On("Delete", mock.Anything, int64(3)).Return(false, &domain.ForeignKeyError{
			Entity: domain.EntitySupplier,
			Detail: pgErr.ConstraintName,
			Cause:  pgErr,
		})

		err := newGenericService(store, WithReferencedDetail("cannot delete supplier: it has associated purchases")).Delete(ctx, 3)
		require.Error(t, err)
		assert.Equal(t, domain.KindDatabase, domain.ErrorKind(err))
		assert.Contains(t, err.Error(), "it has associated purchases")
		assert.ErrorIs(t, err, pgErr)
	})

	t.Run("default referenced detail names the entity", func(t *testing.T) {
		store := new(MockSupplierStore)
		store.On("FindByID", mock.Anything, int64(3)).Return(current, true, nil)
		store.On("Delete", mock.Anything, int64(3)).Return(false, &domain.ForeignKeyError{Entity: domain.EntitySupplier})

		err := newGenericService(store).Delete(ctx, 3)
		assert.Contains(t, err.Error(), "cannot delete supplier")
	})
}

func TestService_Metrics(t *testing.T) {
	m := observability.NewMetrics("test_service_metrics")
	store := new(MockSupplierStore)
	store.On("FindByID", mock.Anything, int64(1)).Return(&domain.Supplier{ID: 1}, true, nil)
	store.On("FindByID", mock.Anything, int64(2)).Return(nil, false, nil)

	svc := newGenericService(store, WithMetrics(m))
	_, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.GetByID(context.Background(), 2)
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsTotal.WithLabelValues(domain.EntitySupplier, "get", observability.OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationErrors.WithLabelValues(domain.EntitySupplier, "get", domain.KindNotFound)))
}

func TestService_Entity(t *testing.T) {
	assert.Equal(t, domain.EntitySupplier, newGenericService(new(MockSupplierStore)).Entity())
}
