package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/repository"
)

// PurchaseStore is the data access the purchase service needs.
type PurchaseStore interface {
	repository.Store[domain.Purchase, int64]
	FindAllOrdered(ctx context.Context, page repository.Page) ([]*domain.Purchase, error)
	FindBySupplier(ctx context.Context, supplierID int64, page repository.Page) ([]*domain.Purchase, error)
	FindByInvoice(ctx context.Context, factura string) (*domain.Purchase, bool, error)
	FindByInvoiceExcluding(ctx context.Context, factura string, excludeID int64) (*domain.Purchase, bool, error)
}

// Compile-time interface verification.
var _ PurchaseStore = (*repository.PurchaseRepository)(nil)

// PurchaseService enforces a unique invoice (factura) per purchase and a
// valid supplier reference.
type PurchaseService struct {
	*Service[domain.Purchase, int64]
	store PurchaseStore
	now   func() time.Time
}

// NewPurchaseService creates a purchase service over store.
func NewPurchaseService(store PurchaseStore, logger zerolog.Logger, opts ...Option) *PurchaseService {
	return &PurchaseService{
		Service: New[domain.Purchase, int64](store, domain.EntityPurchase, logger, opts...),
		store:   store,
		now:     time.Now,
	}
}

// Create records a purchase. fecha_compra defaults to the current UTC time.
// A missing supplier fails with a ForeignKeyError naming the supplier id.
func (s *PurchaseService) Create(ctx context.Context, payload domain.PurchaseCreate) (*domain.Purchase, error) {
	if _, ok := payload.PurchasedAt.Get(); !ok {
		payload.PurchasedAt = domain.Some(s.now().UTC())
	}
	if err := payload.CheckDates(); err != nil {
		return nil, err
	}

	rec, err := s.create(ctx, payload.Fields(), func(ctx context.Context) error {
		return s.checkInvoice(ctx, payload.Invoice, 0)
	})
	switch domain.ErrorKind(err) {
	case domain.KindDuplicate:
		return nil, domain.NewDuplicateError(domain.EntityPurchase, domain.PurchaseColumnInvoice, payload.Invoice)
	case domain.KindForeignKey:
		return nil, domain.NewForeignKeyError(domain.EntitySupplier, payload.SupplierID)
	}
	return rec, err
}

// Update applies a partial update. A new factura must not belong to another
// purchase and fecha_recibido must not precede fecha_compra, taking the stored
// value for whichever date the update leaves out.
func (s *PurchaseService) Update(ctx context.Context, id int64, payload domain.PurchaseUpdate) (*domain.Purchase, error) {
	invoice, invoiceSet := payload.Invoice.Get()

	rec, err := s.update(ctx, id, payload.Fields(), func(ctx context.Context, current *domain.Purchase) error {
		if err := mergedDates(current, payload).CheckDates(); err != nil {
			return err
		}
		if !invoiceSet {
			return nil
		}
		return s.checkInvoice(ctx, invoice, id)
	})
	switch domain.ErrorKind(err) {
	case domain.KindDuplicate:
		if invoiceSet {
			return nil, domain.NewDuplicateError(domain.EntityPurchase, domain.PurchaseColumnInvoice, invoice)
		}
	case domain.KindForeignKey:
		if supplierID, ok := payload.SupplierID.Get(); ok {
			return nil, domain.NewForeignKeyError(domain.EntitySupplier, supplierID)
		}
	}
	return rec, err
}

// GetAll lists purchases, newest first unless opts orders otherwise.
func (s *PurchaseService) GetAll(ctx context.Context, opts repository.ListOptions) ([]*domain.Purchase, error) {
	if len(opts.OrderBy) == 0 {
		opts.OrderBy = repository.PurchaseOrder
	}
	return s.Service.GetAll(ctx, opts)
}

// GetBySupplier lists the purchases of one supplier, newest first.
func (s *PurchaseService) GetBySupplier(ctx context.Context, supplierID int64, page repository.Page) (recs []*domain.Purchase, err error) {
	defer s.observe("list_by_supplier", time.Now(), &err)

	recs, err = s.store.FindBySupplier(ctx, supplierID, page)
	if err != nil {
		return nil, s.wrap(err, "list "+s.entity+" by supplier")
	}
	return recs, nil
}

// checkInvoice fails when factura belongs to a purchase other than excludeID.
// excludeID 0 matches every purchase.
func (s *PurchaseService) checkInvoice(ctx context.Context, factura string, excludeID int64) error {
	var (
		found bool
		err   error
	)
	if excludeID == 0 {
		_, found, err = s.store.FindByInvoice(ctx, factura)
	} else {
		_, found, err = s.store.FindByInvoiceExcluding(ctx, factura, excludeID)
	}
	if err != nil {
		return err
	}
	if found {
		return domain.NewDuplicateError(domain.EntityPurchase, domain.PurchaseColumnInvoice, factura)
	}
	return nil
}

// mergedDates fills the dates an update leaves out with the stored values.
func mergedDates(current *domain.Purchase, payload domain.PurchaseUpdate) domain.PurchaseUpdate {
	merged := domain.PurchaseUpdate{
		PurchasedAt: payload.PurchasedAt,
		ReceivedAt:  payload.ReceivedAt,
	}
	if !merged.PurchasedAt.Set {
		merged.PurchasedAt = domain.Some(current.PurchasedAt)
	}
	if !merged.ReceivedAt.Set && current.ReceivedAt != nil {
		merged.ReceivedAt = domain.Some(*current.ReceivedAt)
	}
	return merged
}
