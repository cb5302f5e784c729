package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/query"
)

// SupplierTable is the table holding suppliers.
const SupplierTable = "proveedor"

// Compile-time interface verification.
var _ Store[domain.Supplier, int64] = (*SupplierRepository)(nil)

// SupplierDescriptor returns the supplier descriptor for the given schema.
func SupplierDescriptor(schema string) Descriptor[domain.Supplier] {
	return Descriptor[domain.Supplier]{
		Entity:   domain.EntitySupplier,
		Schema:   schema,
		Table:    SupplierTable,
		IDColumn: domain.SupplierColumnID,
		Columns:  domain.SupplierColumns,
		Scan:     scanSupplier,
	}
}

// SupplierRepository adds supplier lookups to the generic repository.
type SupplierRepository struct {
	*Repository[domain.Supplier, int64]
}

// NewSupplierRepository creates a supplier repository over db.
func NewSupplierRepository(db DBTX, schema string, logger zerolog.Logger) *SupplierRepository {
	return &SupplierRepository{
		Repository: New[domain.Supplier, int64](db, SupplierDescriptor(schema), logger),
	}
}

// SearchByName returns suppliers whose name contains name, ignoring case,
// ordered by name.
func (r *SupplierRepository) SearchByName(ctx context.Context, name string, page Page) ([]*domain.Supplier, error) {
	return r.FindManyWhere(ctx,
		page.Ordered(query.Asc(domain.SupplierColumnName), query.Asc(domain.SupplierColumnID)),
		query.Filter{Column: domain.SupplierColumnName, Op: query.OpContainsFold, Value: name},
	)
}

// FindByTaxID returns the supplier registered under nit.
func (r *SupplierRepository) FindByTaxID(ctx context.Context, nit string) (*domain.Supplier, bool, error) {
	return r.FindByField(ctx, domain.SupplierColumnTaxID, nit)
}

// FindByTaxIDExcluding returns a supplier other than excludeID registered
// under nit.
func (r *SupplierRepository) FindByTaxIDExcluding(ctx context.Context, nit string, excludeID int64) (*domain.Supplier, bool, error) {
	return r.FindOneWhere(ctx,
		query.Eq(domain.SupplierColumnTaxID, nit),
		query.Filter{Column: domain.SupplierColumnID, Op: query.OpNotEqual, Value: excludeID},
	)
}

func scanSupplier(row pgx.Row) (*domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.TaxID,
		&s.Description,
		&s.ItemsPurchased,
		&s.ItemsReturned,
		&s.ItemsSold,
		&s.PurchaseCount,
		&s.AmountPurchased,
		&s.ReturnCount,
		&s.AmountReturned,
		&s.SaleCount,
		&s.AmountSold,
		&s.Rating,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
