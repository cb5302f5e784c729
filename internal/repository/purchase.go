package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/query"
)

// PurchaseTable is the table holding supplier purchases.
const PurchaseTable = "compra_proveedor"

// Compile-time interface verification.
var _ Store[domain.Purchase, int64] = (*PurchaseRepository)(nil)

// PurchaseOrder is the listing order for purchases: newest first.
var PurchaseOrder = []query.Order{
	query.Desc(domain.PurchaseColumnPurchasedAt),
	query.Desc(domain.PurchaseColumnID),
}

// PurchaseDescriptor returns the purchase descriptor for the given schema.
func PurchaseDescriptor(schema string) Descriptor[domain.Purchase] {
	return Descriptor[domain.Purchase]{
		Entity:   domain.EntityPurchase,
		Schema:   schema,
		Table:    PurchaseTable,
		IDColumn: domain.PurchaseColumnID,
		Columns:  domain.PurchaseColumns,
		Scan:     scanPurchase,
	}
}

// PurchaseRepository adds purchase lookups to the generic repository.
type PurchaseRepository struct {
	*Repository[domain.Purchase, int64]
}

// NewPurchaseRepository creates a purchase repository over db.
func NewPurchaseRepository(db DBTX, schema string, logger zerolog.Logger) *PurchaseRepository {
	return &PurchaseRepository{
		Repository: New[domain.Purchase, int64](db, PurchaseDescriptor(schema), logger),
	}
}

// FindAllOrdered returns purchases newest first.
func (r *PurchaseRepository) FindAllOrdered(ctx context.Context, page Page) ([]*domain.Purchase, error) {
	return r.FindAll(ctx, page.Ordered(PurchaseOrder...))
}

// FindBySupplier returns the purchases of one supplier, newest first.
func (r *PurchaseRepository) FindBySupplier(ctx context.Context, supplierID int64, page Page) ([]*domain.Purchase, error) {
	return r.FindManyWhere(ctx,
		page.Ordered(PurchaseOrder...),
		query.Eq(domain.PurchaseColumnSupplierID, supplierID),
	)
}

// FindByInvoice returns the purchase recorded under factura.
func (r *PurchaseRepository) FindByInvoice(ctx context.Context, factura string) (*domain.Purchase, bool, error) {
	return r.FindByField(ctx, domain.PurchaseColumnInvoice, factura)
}

// FindByInvoiceExcluding returns a purchase other than excludeID recorded
// under factura.
func (r *PurchaseRepository) FindByInvoiceExcluding(ctx context.Context, factura string, excludeID int64) (*domain.Purchase, bool, error) {
	return r.FindOneWhere(ctx,
		query.Eq(domain.PurchaseColumnInvoice, factura),
		query.Filter{Column: domain.PurchaseColumnID, Op: query.OpNotEqual, Value: excludeID},
	)
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var (
		p      domain.Purchase
		status int16
	)
	err := row.Scan(
		&p.ID,
		&p.SupplierID,
		&p.Amount,
		&p.Invoice,
		&p.PurchasedAt,
		&p.ReceivedAt,
		&p.Destination,
		&status,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PurchaseStatus(status)
	return &p, nil
}
