package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/order/repository"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
)

var (
	ErrOrderNotPayable       = errors.New("order is not awaiting payment")
	ErrDuplicateConfirmation = repository.ErrDuplicateConfirmation
	ErrAlreadyVerified       = errors.New("payment confirmation is already verified")
)

// PaymentService menjalankan sub-workflow verifikasi pembayaran.
// Satu konfirmasi per order; begitu diputuskan (is_verified non-null),
// record membeku dan keputusan tidak bisa diulang.
type PaymentService interface {
	SubmitConfirmation(ctx context.Context, orderID, userID string, req domain.SubmitConfirmationRequest) (*domain.PaymentConfirmation, error)
	UpdateConfirmation(ctx context.Context, orderID, userID string, req domain.SubmitConfirmationRequest) error
	Verify(ctx context.Context, orderID, adminID string, req domain.VerifyConfirmationRequest) error
}

type paymentServiceImpl struct {
	orderRepo repository.OrderRepository
	notifier  Notifier
}

func NewPaymentService(or repository.OrderRepository, n Notifier) PaymentService {
	return &paymentServiceImpl{orderRepo: or, notifier: n}
}

// SubmitConfirmation menyimpan bukti transfer dan menandai
// payment_status = sudah_bayar secara optimistis: "mengaku sudah bayar",
// belum "terverifikasi".
func (s *paymentServiceImpl) SubmitConfirmation(ctx context.Context, orderID, userID string, req domain.SubmitConfirmationRequest) (*domain.PaymentConfirmation, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.SubmitConfirmation: begin tx failed", err, nil)
		return nil, err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.OrderStatus != domain.StatusMenungguPembayaran {
		return nil, fmt.Errorf("%w: current status %s", ErrOrderNotPayable, order.OrderStatus)
	}

	confirmation := &domain.PaymentConfirmation{
		OrderID:       orderID,
		UserID:        userID,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		PaymentImage:  req.PaymentImage,
		TransferTime:  req.TransferTime,
	}
	if err := s.orderRepo.InsertConfirmation(ctx, tx, confirmation); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdatePaymentStatus(ctx, tx, orderID, domain.PaymentSudahBayar, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.SubmitConfirmation: commit failed", err, nil)
		return nil, err
	}

	s.notifier.NotifyAdmins(ctx, orderID,
		"Konfirmasi pembayaran masuk untuk order "+order.InvoiceNumber)
	return confirmation, nil
}

// UpdateConfirmation merevisi bukti selama is_verified masih null.
func (s *paymentServiceImpl) UpdateConfirmation(ctx context.Context, orderID, userID string, req domain.SubmitConfirmationRequest) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.UpdateConfirmation: begin tx failed", err, nil)
		return err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return ErrNotOrderOwner
	}

	confirmation := &domain.PaymentConfirmation{
		OrderID:       orderID,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		PaymentImage:  req.PaymentImage,
		TransferTime:  req.TransferTime,
	}
	if err := s.orderRepo.UpdateConfirmationProof(ctx, tx, confirmation); err != nil {
		if errors.Is(err, repository.ErrConfirmationImmutable) {
			return ErrAlreadyVerified
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.UpdateConfirmation: commit failed", err, nil)
		return err
	}
	return nil
}

// Verify adalah keputusan satu kali. Terima: order lanjut diproses,
// paid_at terisi. Tolak: payment_status jadi gagal; order tetap
// menunggu_pembayaran tapi konfirmasi membeku, sehingga pelanggan yang
// ditolak tidak bisa submit ulang lewat endpoint ini. Catatan penolakan
// menyarankan menghubungi toko.
func (s *paymentServiceImpl) Verify(ctx context.Context, orderID, adminID string, req domain.VerifyConfirmationRequest) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.Verify: begin tx failed", err, nil)
		return err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	confirmation, err := s.orderRepo.GetConfirmationForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if confirmation.IsVerified != nil {
		return ErrAlreadyVerified
	}

	now := time.Now()
	auditNote := req.Note
	if req.Accept {
		if !domain.CanTransition(order.OrderStatus, domain.StatusDiproses) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, domain.StatusDiproses)
		}
		if auditNote == "" {
			auditNote = "pembayaran diterima"
		}
		if err := s.orderRepo.SetConfirmationVerdict(ctx, tx, orderID, true, auditNote, now); err != nil {
			return err
		}
		if err := s.orderRepo.UpdatePaymentStatus(ctx, tx, orderID, domain.PaymentSudahBayar, &now); err != nil {
			return err
		}
		if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, domain.StatusDiproses); err != nil {
			return err
		}
	} else {
		auditNote = "DITOLAK: " + req.Note + " (hubungi toko untuk pengiriman ulang bukti)"
		if err := s.orderRepo.SetConfirmationVerdict(ctx, tx, orderID, false, auditNote, now); err != nil {
			return err
		}
		if err := s.orderRepo.UpdatePaymentStatus(ctx, tx, orderID, domain.PaymentGagal, nil); err != nil {
			return err
		}
	}

	note := &domain.OrderNote{OrderID: orderID, UserID: adminID, Note: auditNote}
	if err := s.orderRepo.InsertNote(ctx, tx, note); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.Verify: commit failed", err, nil)
		return err
	}

	if req.Accept {
		s.notifier.NotifyUser(ctx, order.UserID, order.ID,
			"Pembayaran order "+order.InvoiceNumber+" terverifikasi, order sedang diproses")
	} else {
		s.notifier.NotifyUser(ctx, order.UserID, order.ID,
			"Pembayaran order "+order.InvoiceNumber+" ditolak: "+req.Note)
	}
	return nil
}
