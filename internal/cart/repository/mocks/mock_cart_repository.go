package mocks

import (
	"context"

	"github.com/ridloal/pc-store-commerce/internal/cart/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	args := m.Called(ctx, item)
	if item != nil && args.Error(0) == nil {
		item.ID = "mock-cart-item-id"
	}
	return args.Error(0)
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, userID)
	if items := args.Get(0); items != nil {
		return items.([]domain.CartItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepository) RemoveItem(ctx context.Context, userID, itemID string) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func (m *MockCartRepository) GetItemsForCheckout(ctx context.Context, dbops database.DBTX, userID string, itemIDs []string) ([]domain.CartItem, error) {
	args := m.Called(ctx, dbops, userID, itemIDs)
	if items := args.Get(0); items != nil {
		return items.([]domain.CartItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepository) DeleteItems(ctx context.Context, dbops database.DBTX, itemIDs []string) error {
	args := m.Called(ctx, dbops, itemIDs)
	return args.Error(0)
}
