package mocks

import (
	"context"

	"github.com/ridloal/pc-store-commerce/internal/compat/domain"
	"github.com/stretchr/testify/mock"
)

type MockCompatRepository struct {
	mock.Mock
}

func (m *MockCompatRepository) AddPair(ctx context.Context, productAID, productBID string) error {
	args := m.Called(ctx, productAID, productBID)
	return args.Error(0)
}

func (m *MockCompatRepository) RemovePair(ctx context.Context, productAID, productBID string) error {
	args := m.Called(ctx, productAID, productBID)
	return args.Error(0)
}

func (m *MockCompatRepository) ArePairCompatible(ctx context.Context, productAID, productBID string) (bool, error) {
	args := m.Called(ctx, productAID, productBID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompatRepository) ListCompatibleIDs(ctx context.Context, productID string) ([]string, error) {
	args := m.Called(ctx, productID)
	if ids := args.Get(0); ids != nil {
		return ids.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompatRepository) ListPairsAmong(ctx context.Context, productIDs []string) ([]domain.CompatibilityPair, error) {
	args := m.Called(ctx, productIDs)
	if pairs := args.Get(0); pairs != nil {
		return pairs.([]domain.CompatibilityPair), args.Error(1)
	}
	return nil, args.Error(1)
}
