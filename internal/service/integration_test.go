//go:build integration

package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/procurement-service/internal/database"
	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/repository"
	"github.com/helixir/procurement-service/internal/testutil"
)

type stack struct {
	db        *database.DB
	suppliers *SupplierService
	purchases *PurchaseService
}

func setupStack(t *testing.T) stack {
	t.Helper()

	cfg := testutil.StartPostgres(t)
	logger := zerolog.Nop()

	db, err := database.New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	m, err := database.NewMigrator(db, cfg.MigrationPath, logger)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	return stack{
		db:        db,
		suppliers: NewSupplierService(repository.NewSupplierRepository(db, cfg.Schema, logger), logger),
		purchases: NewPurchaseService(repository.NewPurchaseRepository(db, cfg.Schema, logger), logger),
	}
}

func money(units int64) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(units), Valid: true}
}

func TestProcurement_Integration(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	acme, err := s.suppliers.Create(ctx, domain.SupplierCreate{Name: "ACME Industrial", TaxID: "900100"})
	require.NoError(t, err)

	t.Run("supplier defaults come from the table", func(t *testing.T) {
		assert.Positive(t, acme.ID)
		assert.Equal(t, int32(0), acme.PurchaseCount)
		assert.Nil(t, acme.Description)
		assert.True(t, acme.AmountPurchased.Valid)
	})

	t.Run("duplicate nit", func(t *testing.T) {
		_, err := s.suppliers.Create(ctx, domain.SupplierCreate{Name: "Other", TaxID: "900100"})
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("search ignores case", func(t *testing.T) {
		found, err := s.suppliers.SearchByName(ctx, "acme", repository.Page{})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, acme.ID, found[0].ID)
	})

	t.Run("empty update returns the record unchanged", func(t *testing.T) {
		got, err := s.suppliers.Update(ctx, acme.ID, domain.SupplierUpdate{})
		require.NoError(t, err)
		assert.Equal(t, acme.Name, got.Name)
	})

	t.Run("purchase for a missing supplier", func(t *testing.T) {
		_, err := s.purchases.Create(ctx, domain.PurchaseCreate{SupplierID: 999, Amount: money(10), Invoice: "F-999"})
		var fk *domain.ForeignKeyError
		require.ErrorAs(t, err, &fk)
		assert.Equal(t, "999", fk.ID)
	})

	older, err := s.purchases.Create(ctx, domain.PurchaseCreate{
		SupplierID:  acme.ID,
		Amount:      money(100),
		Invoice:     "F-001",
		PurchasedAt: domain.Some(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	newer, err := s.purchases.Create(ctx, domain.PurchaseCreate{SupplierID: acme.ID, Amount: money(50), Invoice: "F-002"})
	require.NoError(t, err)

	t.Run("purchases list newest first", func(t *testing.T) {
		list, err := s.purchases.GetBySupplier(ctx, acme.ID, repository.Page{})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)
		assert.Equal(t, domain.PurchaseStatusPending, list[0].Status)
	})

	t.Run("received date before purchase date", func(t *testing.T) {
		_, err := s.purchases.Update(ctx, older.ID, domain.PurchaseUpdate{
			ReceivedAt: domain.Some(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("supplier with purchases cannot be deleted", func(t *testing.T) {
		err := s.suppliers.Delete(ctx, acme.ID)
		require.Error(t, err)
		assert.Equal(t, domain.KindDatabase, domain.ErrorKind(err))

		_, err = s.suppliers.GetByID(ctx, acme.ID)
		assert.NoError(t, err)
	})

	t.Run("repositories join a caller transaction", func(t *testing.T) {
		err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
			purchases := repository.NewPurchaseRepository(tx, "public", zerolog.Nop())
			_, err := purchases.Delete(ctx, older.ID)
			require.NoError(t, err)
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		_, err = s.purchases.GetByID(ctx, older.ID)
		assert.NoError(t, err, "rolled back delete must leave the purchase")
	})

	t.Run("deleting purchases frees the supplier", func(t *testing.T) {
		require.NoError(t, s.purchases.Delete(ctx, older.ID))
		require.NoError(t, s.purchases.Delete(ctx, newer.ID))
		require.NoError(t, s.suppliers.Delete(ctx, acme.ID))

		_, err := s.suppliers.GetByID(ctx, acme.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
