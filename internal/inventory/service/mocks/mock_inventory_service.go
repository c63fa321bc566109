package mocks

import (
	"context"

	"github.com/ridloal/pc-store-commerce/internal/inventory/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
	"github.com/stretchr/testify/mock"
)

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) CreateEntry(ctx context.Context, actorID string, req domain.CreateEntryRequest) (*domain.StockEntry, error) {
	args := m.Called(ctx, actorID, req)
	if e := args.Get(0); e != nil {
		return e.(*domain.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInventoryService) DeleteEntry(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockInventoryService) ListEntries(ctx context.Context, productID string) ([]domain.StockEntry, error) {
	args := m.Called(ctx, productID)
	if e := args.Get(0); e != nil {
		return e.([]domain.StockEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInventoryService) DecrementForCheckout(ctx context.Context, dbops database.DBTX, p *product.Product, quantity int, invoiceNumber, actorID string) error {
	args := m.Called(ctx, dbops, p, quantity, invoiceNumber, actorID)
	return args.Error(0)
}

func (m *MockInventoryService) RestoreForCancellation(ctx context.Context, dbops database.DBTX, invoiceNumber, actorID string) error {
	args := m.Called(ctx, dbops, invoiceNumber, actorID)
	return args.Error(0)
}
