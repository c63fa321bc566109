package service

import (
	"context"
	"testing"
	"time"

	"github.com/ridloal/pc-store-commerce/internal/auth"
	inventorySvcMocks "github.com/ridloal/pc-store-commerce/internal/inventory/service/mocks"
	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/order/repository/mocks"
	svcMocks "github.com/ridloal/pc-store-commerce/internal/order/service/mocks"
	dbMocks "github.com/ridloal/pc-store-commerce/internal/platform/database/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type statusFixture struct {
	orderRepo    *mocks.MockOrderRepository
	inventorySvc *inventorySvcMocks.MockInventoryService
	notifier     *svcMocks.MockNotifier
	tx           *dbMocks.MockDBTX
	svc          OrderStatusService
}

func newStatusFixture() *statusFixture {
	f := &statusFixture{
		orderRepo:    new(mocks.MockOrderRepository),
		inventorySvc: new(inventorySvcMocks.MockInventoryService),
		notifier:     new(svcMocks.MockNotifier),
		tx:           new(dbMocks.MockDBTX),
	}
	f.svc = NewOrderStatusService(f.orderRepo, f.inventorySvc, f.notifier)
	f.tx.On("Rollback").Return(nil).Maybe()
	return f
}

func pendingOrder(status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID: "o1", UserID: "user-1", OrderType: domain.TypeProduct,
		InvoiceNumber: "INV/20250314/ABC123", OrderStatus: status,
		PaymentStatus: domain.PaymentBelumBayar, PickupMethod: domain.PickupKirim,
		TotalPrice: decimal.NewFromInt(3000000),
	}
}

func TestOrderStatusService_Approve(t *testing.T) {
	ctx := context.TODO()

	t.Run("approve with shipping cost replaces the total", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusMenungguVerifikasi)
		shippingCost := decimal.NewFromInt(50000)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("UpdateShippingCost", ctx, f.tx, "o1", shippingCost).Return(nil).Once()
		f.orderRepo.On("GetItems", ctx, f.tx, "o1").Return([]domain.OrderItem{
			{Subtotal: decimal.NewFromInt(3000000)},
		}, nil).Once()
		f.orderRepo.On("UpdateTotalPrice", ctx, f.tx, "o1", mock.MatchedBy(func(total decimal.Decimal) bool {
			return total.Equal(decimal.NewFromInt(3050000))
		})).Return(nil).Once()
		f.orderRepo.On("UpdateOrderStatus", ctx, f.tx, "o1", domain.StatusMenungguPembayaran).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyUser", ctx, "user-1", "o1", mock.AnythingOfType("string")).Once()

		updated, err := f.svc.Approve(ctx, "o1", domain.ApproveOrderRequest{ShippingCost: &shippingCost})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusMenungguPembayaran, updated.OrderStatus)
		assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(3050000)))
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("approving a non-pending order is rejected", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDiproses)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()

		_, err := f.svc.Approve(ctx, "o1", domain.ApproveOrderRequest{})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		f.orderRepo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderStatusService_ApproveAll(t *testing.T) {
	ctx := context.TODO()
	f := newStatusFixture()

	approved := []domain.Order{
		{ID: "o1", UserID: "u1", InvoiceNumber: "INV/20250314/AAAAAA"},
		{ID: "o2", UserID: "u2", InvoiceNumber: "INV/20250314/BBBBBB"},
	}
	f.orderRepo.On("BulkUpdateStatus", ctx, domain.StatusMenungguVerifikasi, domain.StatusMenungguPembayaran).
		Return(approved, nil).Once()
	f.notifier.On("NotifyUser", ctx, "u1", "o1", mock.AnythingOfType("string")).Once()
	f.notifier.On("NotifyUser", ctx, "u2", "o2", mock.AnythingOfType("string")).Once()

	count, err := f.svc.ApproveAll(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	f.notifier.AssertExpectations(t)
}

func TestOrderStatusService_Cancel(t *testing.T) {
	ctx := context.TODO()

	t.Run("owner cancels pending order, stock restored in same tx", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusMenungguPembayaran)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("UpdateOrderStatus", ctx, f.tx, "o1", domain.StatusDibatalkan).Return(nil).Once()
		f.inventorySvc.On("RestoreForCancellation", ctx, f.tx, order.InvoiceNumber, "user-1").Return(nil).Once()
		f.orderRepo.On("InsertNote", ctx, f.tx, mock.MatchedBy(func(n *domain.OrderNote) bool {
			return n.Note == "berubah pikiran"
		})).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyAdmins", ctx, "o1", mock.AnythingOfType("string")).Once()

		err := f.svc.Cancel(ctx, "o1", "user-1", domain.CancelOrderRequest{Note: "berubah pikiran"})
		assert.NoError(t, err)
		f.inventorySvc.AssertExpectations(t)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusMenungguPembayaran)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()

		err := f.svc.Cancel(ctx, "o1", "intruder", domain.CancelOrderRequest{})
		assert.ErrorIs(t, err, ErrNotOrderOwner)
	})

	t.Run("processed order can no longer be cancelled", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDiproses)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()

		err := f.svc.Cancel(ctx, "o1", "user-1", domain.CancelOrderRequest{})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		f.inventorySvc.AssertNotCalled(t, "RestoreForCancellation",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderStatusService_Ship(t *testing.T) {
	ctx := context.TODO()
	req := domain.ShipOrderRequest{
		TrackingNumber:   "JNE123",
		EstimatedArrival: time.Now().Add(72 * time.Hour),
		DeliveryImage:    "https://cdn.example.com/bukti.jpg",
	}

	t.Run("pickup order cannot be shipped", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDiproses)
		order.PickupMethod = domain.PickupAmbil

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()

		err := f.svc.Ship(ctx, "o1", req)
		assert.ErrorIs(t, err, ErrPickupOrderNotShippable)
	})

	t.Run("delivery order in diproses moves to dikirim", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDiproses)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("UpdateDeliveryData", ctx, f.tx, mock.MatchedBy(func(d *domain.OrderDelivery) bool {
			return *d.TrackingNumber == "JNE123" && *d.DeliveryImage != ""
		})).Return(nil).Once()
		f.orderRepo.On("UpdateOrderStatus", ctx, f.tx, "o1", domain.StatusDikirim).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyUser", ctx, "user-1", "o1", mock.AnythingOfType("string")).Once()

		assert.NoError(t, f.svc.Ship(ctx, "o1", req))
		f.orderRepo.AssertExpectations(t)
	})
}

func TestOrderStatusService_Finish(t *testing.T) {
	ctx := context.TODO()

	t.Run("delivery order without complete proof is rejected", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDikirim)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("GetDelivery", ctx, f.tx, "o1").Return(&domain.OrderDelivery{OrderID: "o1"}, nil).Once()

		err := f.svc.Finish(ctx, "o1")
		assert.ErrorIs(t, err, ErrIncompleteDeliveryProof)
		f.orderRepo.AssertNotCalled(t, "SetFinished", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pickup order finishes straight from diproses without proof", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDiproses)
		order.PickupMethod = domain.PickupAmbil

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("SetFinished", ctx, f.tx, "o1", mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyUser", ctx, "user-1", "o1", mock.AnythingOfType("string")).Once()

		assert.NoError(t, f.svc.Finish(ctx, "o1"))
		f.orderRepo.AssertNotCalled(t, "GetDelivery", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("shipped order with proof finishes", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDikirim)
		img := "https://cdn.example.com/bukti.jpg"
		eta := time.Now().Add(24 * time.Hour)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("GetDelivery", ctx, f.tx, "o1").Return(&domain.OrderDelivery{
			OrderID: "o1", DeliveryImage: &img, EstimatedArrival: &eta,
		}, nil).Once()
		f.orderRepo.On("SetFinished", ctx, f.tx, "o1", mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyUser", ctx, "user-1", "o1", mock.AnythingOfType("string")).Once()

		assert.NoError(t, f.svc.Finish(ctx, "o1"))
	})
}

func TestOrderStatusService_ConfirmReceipt(t *testing.T) {
	ctx := context.TODO()

	t.Run("customer confirms shipped delivery order", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDikirim)

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("SetFinished", ctx, f.tx, "o1", mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyAdmins", ctx, "o1", mock.AnythingOfType("string")).Once()

		assert.NoError(t, f.svc.ConfirmReceipt(ctx, "o1", "user-1"))
	})

	t.Run("pickup order has no receipt confirmation path", func(t *testing.T) {
		f := newStatusFixture()
		order := pendingOrder(domain.StatusDiproses)
		order.PickupMethod = domain.PickupAmbil

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()

		err := f.svc.ConfirmReceipt(ctx, "o1", "user-1")
		assert.ErrorIs(t, err, ErrReceiptConfirmNotAllowed)
	})
}

func TestOrderStatusService_AddNote(t *testing.T) {
	ctx := context.TODO()

	t.Run("customer cannot note someone else's order", func(t *testing.T) {
		f := newStatusFixture()
		f.orderRepo.On("GetOrderByID", ctx, "o1").Return(pendingOrder(domain.StatusDiproses), nil).Once()

		_, err := f.svc.AddNote(ctx, "o1", "intruder", auth.RoleCustomer, "halo")
		assert.ErrorIs(t, err, ErrNotOrderOwner)
	})

	t.Run("admin notes any order", func(t *testing.T) {
		f := newStatusFixture()
		f.orderRepo.On("GetOrderByID", ctx, "o1").Return(pendingOrder(domain.StatusDiproses), nil).Once()
		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("InsertNote", ctx, f.tx, mock.MatchedBy(func(n *domain.OrderNote) bool {
			return n.UserID == "admin-1" && n.Note == "segera dikirim"
		})).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()

		note, err := f.svc.AddNote(ctx, "o1", "admin-1", auth.RoleAdmin, "segera dikirim")
		assert.NoError(t, err)
		assert.Equal(t, "segera dikirim", note.Note)
	})
}

func TestOrderStatusService_ProcessPaymentReminders(t *testing.T) {
	ctx := context.TODO()
	f := newStatusFixture()

	stale := []domain.Order{
		{ID: "o1", UserID: "u1", InvoiceNumber: "INV/20250314/AAAAAA"},
		{ID: "o2", UserID: "u2", InvoiceNumber: "INV/20250314/BBBBBB"},
	}
	f.orderRepo.On("ListUnpaidOlderThan", ctx, 24*time.Hour).Return(stale, nil).Once()
	f.notifier.On("NotifyUser", ctx, "u1", "o1", mock.AnythingOfType("string")).Once()
	f.notifier.On("NotifyUser", ctx, "u2", "o2", mock.AnythingOfType("string")).Once()

	count, err := f.svc.ProcessPaymentReminders(ctx, 24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	f.notifier.AssertExpectations(t)
}
