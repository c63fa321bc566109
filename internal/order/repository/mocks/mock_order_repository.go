package mocks

import (
	"context"
	"time"

	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(database.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) InsertOrder(ctx context.Context, dbops database.DBTX, order *domain.Order) error {
	args := m.Called(ctx, dbops, order)
	if order != nil && args.Error(0) == nil {
		order.ID = "mock-order-id"
	}
	return args.Error(0)
}

func (m *MockOrderRepository) InsertOrderItems(ctx context.Context, dbops database.DBTX, orderID string, items []domain.OrderItem) error {
	args := m.Called(ctx, dbops, orderID, items)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertCustomPCDetail(ctx context.Context, dbops database.DBTX, detail *domain.CustomPCDetail) error {
	args := m.Called(ctx, dbops, detail)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertCustomPCComponents(ctx context.Context, dbops database.DBTX, orderID string, components []domain.CustomPCComponent) error {
	args := m.Called(ctx, dbops, orderID, components)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertDelivery(ctx context.Context, dbops database.DBTX, delivery *domain.OrderDelivery) error {
	args := m.Called(ctx, dbops, delivery)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetOrderForUpdate(ctx context.Context, dbops database.DBTX, id string) (*domain.Order, error) {
	args := m.Called(ctx, dbops, id)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetOrderDetail(ctx context.Context, id string) (*domain.OrderDetail, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*domain.OrderDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	args := m.Called(ctx, status)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListUnpaidOlderThan(ctx context.Context, duration time.Duration) ([]domain.Order, error) {
	args := m.Called(ctx, duration)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetItems(ctx context.Context, dbops database.DBTX, orderID string) ([]domain.OrderItem, error) {
	args := m.Called(ctx, dbops, orderID)
	if it := args.Get(0); it != nil {
		return it.([]domain.OrderItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetComponents(ctx context.Context, dbops database.DBTX, orderID string) ([]domain.CustomPCComponent, error) {
	args := m.Called(ctx, dbops, orderID)
	if cp := args.Get(0); cp != nil {
		return cp.([]domain.CustomPCComponent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetCustomPCDetail(ctx context.Context, dbops database.DBTX, orderID string) (*domain.CustomPCDetail, error) {
	args := m.Called(ctx, dbops, orderID)
	if d := args.Get(0); d != nil {
		return d.(*domain.CustomPCDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetDelivery(ctx context.Context, dbops database.DBTX, orderID string) (*domain.OrderDelivery, error) {
	args := m.Called(ctx, dbops, orderID)
	if d := args.Get(0); d != nil {
		return d.(*domain.OrderDelivery), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, dbops database.DBTX, orderID string, status domain.OrderStatus) error {
	args := m.Called(ctx, dbops, orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) BulkUpdateStatus(ctx context.Context, from, to domain.OrderStatus) ([]domain.Order, error) {
	args := m.Called(ctx, from, to)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateTotalPrice(ctx context.Context, dbops database.DBTX, orderID string, total decimal.Decimal) error {
	args := m.Called(ctx, dbops, orderID, total)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdatePaymentStatus(ctx context.Context, dbops database.DBTX, orderID string, status domain.PaymentStatus, paidAt *time.Time) error {
	args := m.Called(ctx, dbops, orderID, status, paidAt)
	return args.Error(0)
}

func (m *MockOrderRepository) SetFinished(ctx context.Context, dbops database.DBTX, orderID string, finishedAt time.Time) error {
	args := m.Called(ctx, dbops, orderID, finishedAt)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateDeliveryData(ctx context.Context, dbops database.DBTX, delivery *domain.OrderDelivery) error {
	args := m.Called(ctx, dbops, delivery)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateShippingCost(ctx context.Context, dbops database.DBTX, orderID string, cost decimal.Decimal) error {
	args := m.Called(ctx, dbops, orderID, cost)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertConfirmation(ctx context.Context, dbops database.DBTX, confirmation *domain.PaymentConfirmation) error {
	args := m.Called(ctx, dbops, confirmation)
	return args.Error(0)
}

func (m *MockOrderRepository) GetConfirmation(ctx context.Context, orderID string) (*domain.PaymentConfirmation, error) {
	args := m.Called(ctx, orderID)
	if pc := args.Get(0); pc != nil {
		return pc.(*domain.PaymentConfirmation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetConfirmationForUpdate(ctx context.Context, dbops database.DBTX, orderID string) (*domain.PaymentConfirmation, error) {
	args := m.Called(ctx, dbops, orderID)
	if pc := args.Get(0); pc != nil {
		return pc.(*domain.PaymentConfirmation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateConfirmationProof(ctx context.Context, dbops database.DBTX, confirmation *domain.PaymentConfirmation) error {
	args := m.Called(ctx, dbops, confirmation)
	return args.Error(0)
}

func (m *MockOrderRepository) SetConfirmationVerdict(ctx context.Context, dbops database.DBTX, orderID string, verified bool, note string, verifiedAt time.Time) error {
	args := m.Called(ctx, dbops, orderID, verified, note, verifiedAt)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertNote(ctx context.Context, dbops database.DBTX, note *domain.OrderNote) error {
	args := m.Called(ctx, dbops, note)
	return args.Error(0)
}

func (m *MockOrderRepository) ListNotes(ctx context.Context, orderID string) ([]domain.OrderNote, error) {
	args := m.Called(ctx, orderID)
	if n := args.Get(0); n != nil {
		return n.([]domain.OrderNote), args.Error(1)
	}
	return nil, args.Error(1)
}
