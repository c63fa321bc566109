package mocks

import (
	"context"

	"github.com/ridloal/pc-store-commerce/internal/inventory/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
	"github.com/stretchr/testify/mock"
)

type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(database.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStockRepository) InsertEntry(ctx context.Context, dbops database.DBTX, entry *domain.StockEntry) error {
	args := m.Called(ctx, dbops, entry)
	if entry != nil && args.Error(0) == nil {
		entry.ID = "mock-entry-id"
	}
	return args.Error(0)
}

func (m *MockStockRepository) GetEntryByID(ctx context.Context, dbops database.DBTX, id string) (*domain.StockEntry, error) {
	args := m.Called(ctx, dbops, id)
	if e := args.Get(0); e != nil {
		return e.(*domain.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStockRepository) DeleteEntry(ctx context.Context, dbops database.DBTX, id string) error {
	args := m.Called(ctx, dbops, id)
	return args.Error(0)
}

func (m *MockStockRepository) ListEntriesByProduct(ctx context.Context, productID string) ([]domain.StockEntry, error) {
	args := m.Called(ctx, productID)
	if es := args.Get(0); es != nil {
		return es.([]domain.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStockRepository) ListCheckoutEntries(ctx context.Context, dbops database.DBTX, invoiceNumber string) ([]domain.StockEntry, error) {
	args := m.Called(ctx, dbops, invoiceNumber)
	if es := args.Get(0); es != nil {
		return es.([]domain.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStockRepository) UpdateProductStock(ctx context.Context, dbops database.DBTX, productID string, stock int, status product.StockStatus) error {
	args := m.Called(ctx, dbops, productID, stock, status)
	return args.Error(0)
}

func (m *MockStockRepository) DecrementStockGuarded(ctx context.Context, dbops database.DBTX, productID string, quantity int) error {
	args := m.Called(ctx, dbops, productID, quantity)
	return args.Error(0)
}
