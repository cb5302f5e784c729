package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/repository"
)

// SupplierStore is the data access the supplier service needs.
type SupplierStore interface {
	repository.Store[domain.Supplier, int64]
	SearchByName(ctx context.Context, name string, page repository.Page) ([]*domain.Supplier, error)
	FindByTaxID(ctx context.Context, nit string) (*domain.Supplier, bool, error)
	FindByTaxIDExcluding(ctx context.Context, nit string, excludeID int64) (*domain.Supplier, bool, error)
}

// Compile-time interface verification.
var _ SupplierStore = (*repository.SupplierRepository)(nil)

// SupplierService enforces a unique tax id (nit) per supplier.
type SupplierService struct {
	*Service[domain.Supplier, int64]
	store SupplierStore
}

// NewSupplierService creates a supplier service over store.
func NewSupplierService(store SupplierStore, logger zerolog.Logger, opts ...Option) *SupplierService {
	opts = append([]Option{WithReferencedDetail("cannot delete supplier: it has associated purchases")}, opts...)
	return &SupplierService{
		Service: New[domain.Supplier, int64](store, domain.EntitySupplier, logger, opts...),
		store:   store,
	}
}

// Create registers a supplier. A nit already in use fails with a
// DuplicateError naming the nit, whether caught by the pre-check or by the
// unique constraint.
func (s *SupplierService) Create(ctx context.Context, payload domain.SupplierCreate) (*domain.Supplier, error) {
	rec, err := s.create(ctx, payload.Fields(), func(ctx context.Context) error {
		return s.checkTaxID(ctx, payload.TaxID, 0)
	})
	if domain.ErrorKind(err) == domain.KindDuplicate {
		return nil, domain.NewDuplicateError(domain.EntitySupplier, domain.SupplierColumnTaxID, payload.TaxID)
	}
	return rec, err
}

// Update applies a partial update. A new nit must not belong to another supplier.
func (s *SupplierService) Update(ctx context.Context, id int64, payload domain.SupplierUpdate) (*domain.Supplier, error) {
	nit, nitSet := payload.TaxID.Get()

	rec, err := s.update(ctx, id, payload.Fields(), func(ctx context.Context, _ *domain.Supplier) error {
		if !nitSet {
			return nil
		}
		return s.checkTaxID(ctx, nit, id)
	})
	if domain.ErrorKind(err) == domain.KindDuplicate && nitSet {
		return nil, domain.NewDuplicateError(domain.EntitySupplier, domain.SupplierColumnTaxID, nit)
	}
	return rec, err
}

// SearchByName returns suppliers whose name contains name, ignoring case.
func (s *SupplierService) SearchByName(ctx context.Context, name string, page repository.Page) (recs []*domain.Supplier, err error) {
	defer s.observe("search", time.Now(), &err)

	recs, err = s.store.SearchByName(ctx, name, page)
	if err != nil {
		return nil, s.wrap(err, "search "+s.entity)
	}
	return recs, nil
}

// FindByTaxID returns the supplier registered under nit, or a NotFoundError.
func (s *SupplierService) FindByTaxID(ctx context.Context, nit string) (rec *domain.Supplier, err error) {
	defer s.observe("find_by_nit", time.Now(), &err)

	rec, found, err := s.store.FindByTaxID(ctx, nit)
	if err != nil {
		return nil, s.wrap(err, "find "+s.entity+" by nit")
	}
	if !found {
		return nil, domain.NewNotFoundError(domain.EntitySupplier, nit)
	}
	return rec, nil
}

// checkTaxID fails when nit belongs to a supplier other than excludeID.
// excludeID 0 matches every supplier.
func (s *SupplierService) checkTaxID(ctx context.Context, nit string, excludeID int64) error {
	var (
		found bool
		err   error
	)
	if excludeID == 0 {
		_, found, err = s.store.FindByTaxID(ctx, nit)
	} else {
		_, found, err = s.store.FindByTaxIDExcluding(ctx, nit, excludeID)
	}
	if err != nil {
		return err
	}
	if found {
		return domain.NewDuplicateError(domain.EntitySupplier, domain.SupplierColumnTaxID, nit)
	}
	return nil
}
