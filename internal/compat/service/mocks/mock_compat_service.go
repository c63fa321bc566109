package mocks

import (
	"context"

	"github.com/ridloal/pc-store-commerce/internal/compat/domain"
	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
	"github.com/stretchr/testify/mock"
)

type MockCompatService struct {
	mock.Mock
}

func (m *MockCompatService) AddPair(ctx context.Context, req domain.PairRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCompatService) RemovePair(ctx context.Context, req domain.PairRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCompatService) IsPairCompatible(ctx context.Context, productAID, productBID string) (bool, error) {
	args := m.Called(ctx, productAID, productBID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompatService) ListCompatible(ctx context.Context, productID string) ([]product.Product, error) {
	args := m.Called(ctx, productID)
	if p := args.Get(0); p != nil {
		return p.([]product.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompatService) ValidateBuild(ctx context.Context, components []domain.BuildComponent) error {
	args := m.Called(ctx, components)
	return args.Error(0)
}
