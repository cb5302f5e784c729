package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/query"
	"github.com/helixir/procurement-service/internal/repository"
)

// MockSupplierStore is a mock implementation of SupplierStore.
type MockSupplierStore struct {
	mock.Mock
}

func (m *MockSupplierStore) FindByID(ctx context.Context, id int64) (*domain.Supplier, bool, error) {
	args := m.Called(ctx, id)
	return supplierArg(args, 0), args.Bool(1), args.Error(2)
}

func (m *MockSupplierStore) FindAll(ctx context.Context, opts repository.ListOptions) ([]*domain.Supplier, error) {
	args := m.Called(ctx, opts)
	return suppliersArg(args, 0), args.Error(1)
}

func (m *MockSupplierStore) FindByField(ctx context.Context, field string, value any) (*domain.Supplier, bool, error) {
	args := m.Called(ctx, field, value)
	return supplierArg(args, 0), args.Bool(1), args.Error(2)
}

func (m *MockSupplierStore) FindManyByField(ctx context.Context, field string, value any, orderBy ...query.Order) ([]*domain.Supplier, error) {
	args := m.Called(ctx, field, value, orderBy)
	return suppliersArg(args, 0), args.Error(1)
}

func (m *MockSupplierStore) Create(ctx context.Context, fields domain.FieldMap) (*domain.Supplier, error) {
	args := m.Called(ctx, fields)
	return supplierArg(args, 0), args.Error(1)
}

func (m *MockSupplierStore) Update(ctx context.Context, id int64, fields domain.FieldMap) (*domain.Supplier, error) {
	args := m.Called(ctx, id, fields)
	return supplierArg(args, 0), args.Error(1)
}

func (m *MockSupplierStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierStore) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierStore) SearchByName(ctx context.Context, name string, page repository.Page) ([]*domain.Supplier, error) {
	args := m.Called(ctx, name, page)
	return suppliersArg(args, 0), args.Error(1)
}

func (m *MockSupplierStore) FindByTaxID(ctx context.Context, nit string) (*domain.Supplier, bool, error) {
	args := m.Called(ctx, nit)
	return supplierArg(args, 0), args.Bool(1), args.Error(2)
}

func (m *MockSupplierStore) FindByTaxIDExcluding(ctx context.Context, nit string, excludeID int64) (*domain.Supplier, bool, error) {
	args := m.Called(ctx, nit, excludeID)
	return supplierArg(args, 0), args.Bool(1), args.Error(2)
}

// MockPurchaseStore is a mock implementation of PurchaseStore.
type MockPurchaseStore struct {
	mock.Mock
}

func (m *MockPurchaseStore) FindByID(ctx context.Context, id int64) (*domain.Purchase, bool, error) {
	args := m.Called(ctx, id)
	return purchaseArg(args, 0), args.Bool(1), args.Error(2)
}

func (m *MockPurchaseStore) FindAll(ctx context.Context, opts repository.ListOptions) ([]*domain.Purchase, error) {
	args := m.Called(ctx, opts)
	return purchasesArg(args, 0), args.Error(1)
}

func (m *MockPurchaseStore) FindByField(ctx context.Context, field string, value any) (*domain.Purchase, bool, error) {
	args := m.Called(ctx, field, value)
	return purchaseArg(args, 0), args.Bool(1), args.Error(2)
}

func (m *MockPurchaseStore) FindManyByField(ctx context.Context, field string, value any, orderBy ...query.Order) ([]*domain.Purchase, error) {
	args := m.Called(ctx, field, value, orderBy)
	return purchasesArg(args, 0), args.Error(1)
}

func (m *MockPurchaseStore) Create(ctx context.Context, fields domain.FieldMap) (*domain.Purchase, error) {
	args := m.Called(ctx, fields)
	return purchaseArg(args, 0), args.Error(1)
}

func (m *MockPurchaseStore) Update(ctx context.Context, id int64, fields domain.FieldMap) (*domain.Purchase, error) {
	args := m.Called(ctx, id, fields)
	return purchaseArg(args, 0), args.Error(1)
}

func (m *MockPurchaseStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseStore) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseStore) FindAllOrdered(ctx context.Context, page repository.Page) ([]*domain.Purchase, error) {
	args := m.Called(ctx, page)
	return purchasesArg(args, 0), args.Error(1)
}

func (m *MockPurchaseStore) FindBySupplier(ctx context.Context, supplierID int64, page repository.Page) ([]*domain.Purchase, error) {
	args := m.Called(ctx, supplierID, page)
	return purchasesArg(args, 0), args.Error(1)
}

func (m *MockPurchaseStore) FindByInvoice(ctx context.Context, factura string) (*domain.Purchase, bool, error) {
	args := m.Called(ctx, factura)
	return purchaseArg(args, 0), args.Bool(1), args.Error(2)
}

func (m *MockPurchaseStore) FindByInvoiceExcluding(ctx context.Context, factura string, excludeID int64) (*domain.Purchase, bool, error) {
	args := m.Called(ctx, factura, excludeID)
	return purchaseArg(args, 0), args.Bool(1), args.Error(2)
}

func supplierArg(args mock.Arguments, i int) *domain.Supplier {
	if v, ok := args.Get(i).(*domain.Supplier); ok {
		return v
	}
	return nil
}

func suppliersArg(args mock.Arguments, i int) []*domain.Supplier {
	if v, ok := args.Get(i).([]*domain.Supplier); ok {
		return v
	}
	return nil
}

func purchaseArg(args mock.Arguments, i int) *domain.Purchase {
	if v, ok := args.Get(i).(*domain.Purchase); ok {
		return v
	}
	return nil
}

func purchasesArg(args mock.Arguments, i int) []*domain.Purchase {
	if v, ok := args.Get(i).([]*domain.Purchase); ok {
		return v
	}
	return nil
}
