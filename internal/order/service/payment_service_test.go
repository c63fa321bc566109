package service

import (
	"context"
	"testing"
	"time"

	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/order/repository"
	"github.com/ridloal/pc-store-commerce/internal/order/repository/mocks"
	svcMocks "github.com/ridloal/pc-store-commerce/internal/order/service/mocks"
	dbMocks "github.com/ridloal/pc-store-commerce/internal/platform/database/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type paymentFixture struct {
	orderRepo *mocks.MockOrderRepository
	notifier  *svcMocks.MockNotifier
	tx        *dbMocks.MockDBTX
	svc       PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orderRepo: new(mocks.MockOrderRepository),
		notifier:  new(svcMocks.MockNotifier),
		tx:        new(dbMocks.MockDBTX),
	}
	f.svc = NewPaymentService(f.orderRepo, f.notifier)
	f.tx.On("Rollback").Return(nil).Maybe()
	return f
}

func payableOrder() *domain.Order {
	return &domain.Order{
		ID: "o1", UserID: "user-1", InvoiceNumber: "INV/20250314/ABC123",
		OrderStatus: domain.StatusMenungguPembayaran, PaymentStatus: domain.PaymentBelumBayar,
	}
}

func proofRequest() domain.SubmitConfirmationRequest {
	return domain.SubmitConfirmationRequest{
		BankName:      "BCA",
		AccountNumber: "1234567890",
		PaymentImage:  "https://cdn.example.com/transfer.jpg",
		TransferTime:  time.Now(),
	}
}

func TestPaymentService_SubmitConfirmation(t *testing.T) {
	ctx := context.TODO()

	t.Run("submit stores proof and flags payment as claimed", func(t *testing.T) {
		f := newPaymentFixture()
		order := payableOrder()

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("InsertConfirmation", ctx, f.tx, mock.MatchedBy(func(pc *domain.PaymentConfirmation) bool {
			return pc.OrderID == "o1" && pc.IsVerified == nil && pc.BankName == "BCA"
		})).Return(nil).Once()
		f.orderRepo.On("UpdatePaymentStatus", ctx, f.tx, "o1", domain.PaymentSudahBayar, (*time.Time)(nil)).
			Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyAdmins", ctx, "o1", mock.AnythingOfType("string")).Once()

		confirmation, err := f.svc.SubmitConfirmation(ctx, "o1", "user-1", proofRequest())
		assert.NoError(t, err)
		assert.Nil(t, confirmation.IsVerified)
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("second submission hits duplicate guard", func(t *testing.T) {
		f := newPaymentFixture()
		order := payableOrder()

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("InsertConfirmation", ctx, f.tx, mock.Anything).
			Return(repository.ErrDuplicateConfirmation).Once()

		_, err := f.svc.SubmitConfirmation(ctx, "o1", "user-1", proofRequest())
		assert.ErrorIs(t, err, ErrDuplicateConfirmation)
		f.tx.AssertNotCalled(t, "Commit")
	})

	t.Run("order not awaiting payment is rejected", func(t *testing.T) {
		f := newPaymentFixture()
		order := payableOrder()
		order.OrderStatus = domain.StatusMenungguVerifikasi

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()

		_, err := f.svc.SubmitConfirmation(ctx, "o1", "user-1", proofRequest())
		assert.ErrorIs(t, err, ErrOrderNotPayable)
	})

	t.Run("non-owner cannot submit", func(t *testing.T) {
		f := newPaymentFixture()
		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(payableOrder(), nil).Once()

		_, err := f.svc.SubmitConfirmation(ctx, "o1", "intruder", proofRequest())
		assert.ErrorIs(t, err, ErrNotOrderOwner)
	})
}

func TestPaymentService_UpdateConfirmation(t *testing.T) {
	ctx := context.TODO()

	t.Run("revising a decided confirmation fails AlreadyVerified", func(t *testing.T) {
		f := newPaymentFixture()

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(payableOrder(), nil).Once()
		f.orderRepo.On("UpdateConfirmationProof", ctx, f.tx, mock.Anything).
			Return(repository.ErrConfirmationImmutable).Once()

		err := f.svc.UpdateConfirmation(ctx, "o1", "user-1", proofRequest())
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})

	t.Run("revising before any submission surfaces not found", func(t *testing.T) {
		f := newPaymentFixture()

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(payableOrder(), nil).Once()
		f.orderRepo.On("UpdateConfirmationProof", ctx, f.tx, mock.Anything).
			Return(repository.ErrConfirmationNotFound).Once()

		err := f.svc.UpdateConfirmation(ctx, "o1", "user-1", proofRequest())
		assert.ErrorIs(t, err, repository.ErrConfirmationNotFound)
		assert.NotErrorIs(t, err, ErrAlreadyVerified)
	})

	t.Run("pending confirmation can be revised", func(t *testing.T) {
		f := newPaymentFixture()

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(payableOrder(), nil).Once()
		f.orderRepo.On("UpdateConfirmationProof", ctx, f.tx, mock.MatchedBy(func(pc *domain.PaymentConfirmation) bool {
			return pc.OrderID == "o1" && pc.BankName == "BCA"
		})).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()

		assert.NoError(t, f.svc.UpdateConfirmation(ctx, "o1", "user-1", proofRequest()))
	})
}

func TestPaymentService_Verify(t *testing.T) {
	ctx := context.TODO()

	pendingConfirmation := func() *domain.PaymentConfirmation {
		return &domain.PaymentConfirmation{OrderID: "o1", UserID: "user-1"}
	}

	t.Run("accept moves order to diproses and stamps paid_at", func(t *testing.T) {
		f := newPaymentFixture()
		order := payableOrder()

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("GetConfirmationForUpdate", ctx, f.tx, "o1").Return(pendingConfirmation(), nil).Once()
		f.orderRepo.On("SetConfirmationVerdict", ctx, f.tx, "o1", true, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		f.orderRepo.On("UpdatePaymentStatus", ctx, f.tx, "o1", domain.PaymentSudahBayar, mock.AnythingOfType("*time.Time")).
			Return(nil).Once()
		f.orderRepo.On("UpdateOrderStatus", ctx, f.tx, "o1", domain.StatusDiproses).Return(nil).Once()
		f.orderRepo.On("InsertNote", ctx, f.tx, mock.Anything).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyUser", ctx, "user-1", "o1", mock.AnythingOfType("string")).Once()

		err := f.svc.Verify(ctx, "o1", "admin-1", domain.VerifyConfirmationRequest{Accept: true})
		assert.NoError(t, err)
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("reject marks payment failed and keeps order awaiting payment", func(t *testing.T) {
		f := newPaymentFixture()
		order := payableOrder()

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("GetConfirmationForUpdate", ctx, f.tx, "o1").Return(pendingConfirmation(), nil).Once()
		f.orderRepo.On("SetConfirmationVerdict", ctx, f.tx, "o1", false, mock.MatchedBy(func(note string) bool {
			return len(note) > 0 && note[:7] == "DITOLAK"
		}), mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.orderRepo.On("UpdatePaymentStatus", ctx, f.tx, "o1", domain.PaymentGagal, (*time.Time)(nil)).
			Return(nil).Once()
		f.orderRepo.On("InsertNote", ctx, f.tx, mock.Anything).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyUser", ctx, "user-1", "o1", mock.AnythingOfType("string")).Once()

		err := f.svc.Verify(ctx, "o1", "admin-1", domain.VerifyConfirmationRequest{Accept: false, Note: "nominal tidak cocok"})
		assert.NoError(t, err)
		// Status order tidak pernah disentuh di jalur tolak.
		f.orderRepo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("verify is one-shot", func(t *testing.T) {
		f := newPaymentFixture()
		order := payableOrder()
		decided := pendingConfirmation()
		verdict := false
		decided.IsVerified = &verdict

		f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
		f.orderRepo.On("GetOrderForUpdate", ctx, f.tx, "o1").Return(order, nil).Once()
		f.orderRepo.On("GetConfirmationForUpdate", ctx, f.tx, "o1").Return(decided, nil).Once()

		err := f.svc.Verify(ctx, "o1", "admin-1", domain.VerifyConfirmationRequest{Accept: true})
		assert.ErrorIs(t, err, ErrAlreadyVerified)
		f.orderRepo.AssertNotCalled(t, "SetConfirmationVerdict",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
