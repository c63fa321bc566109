package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/pc-store-commerce/internal/auth"
	inventorySvc "github.com/ridloal/pc-store-commerce/internal/inventory/service"
	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/order/repository"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrNotOrderOwner            = errors.New("order does not belong to this user")
	ErrInvalidTransition        = errors.New("order status transition is not allowed")
	ErrIncompleteDeliveryProof  = errors.New("delivery proof is incomplete")
	ErrPickupOrderNotShippable  = errors.New("pickup orders cannot be shipped")
	ErrReceiptConfirmNotAllowed = errors.New("receipt confirmation is only for delivery orders")
)

// OrderStatusService menjalankan transisi state machine order.
// Setiap transisi berjalan dalam satu transaksi dengan baris order
// terkunci; notifikasi dikirim setelah commit.
type OrderStatusService interface {
	Approve(ctx context.Context, orderID string, req domain.ApproveOrderRequest) (*domain.Order, error)
	ApproveAll(ctx context.Context) (int, error)
	Cancel(ctx context.Context, orderID, userID string, req domain.CancelOrderRequest) error
	Ship(ctx context.Context, orderID string, req domain.ShipOrderRequest) error
	Finish(ctx context.Context, orderID string) error
	ConfirmReceipt(ctx context.Context, orderID, userID string) error
	AddNote(ctx context.Context, orderID, actorID, actorRole, note string) (*domain.OrderNote, error)
	ProcessPaymentReminders(ctx context.Context, olderThan time.Duration) (int, error)

	GetDetail(ctx context.Context, orderID string) (*domain.OrderDetail, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
}

type orderStatusServiceImpl struct {
	orderRepo    repository.OrderRepository
	inventorySvc inventorySvc.InventoryService
	notifier     Notifier
}

func NewOrderStatusService(or repository.OrderRepository, is inventorySvc.InventoryService, n Notifier) OrderStatusService {
	return &orderStatusServiceImpl{orderRepo: or, inventorySvc: is, notifier: n}
}

// Approve: menunggu_verifikasi -> menunggu_pembayaran. Ongkir yang diisi
// saat approve memicu hitung ulang total penuh (replace, bukan tambah).
func (s *orderStatusServiceImpl) Approve(ctx context.Context, orderID string, req domain.ApproveOrderRequest) (*domain.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.Approve: begin tx failed", err, nil)
		return nil, err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.OrderStatus, domain.StatusMenungguPembayaran) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, domain.StatusMenungguPembayaran)
	}

	if req.ShippingCost != nil {
		if err := s.orderRepo.UpdateShippingCost(ctx, tx, orderID, *req.ShippingCost); err != nil {
			return nil, err
		}
		newTotal, err := s.recomputeTotal(ctx, tx, order, *req.ShippingCost)
		if err != nil {
			return nil, err
		}
		if err := s.orderRepo.UpdateTotalPrice(ctx, tx, orderID, newTotal); err != nil {
			return nil, err
		}
		order.TotalPrice = newTotal
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, domain.StatusMenungguPembayaran); err != nil {
		return nil, err
	}
	order.OrderStatus = domain.StatusMenungguPembayaran

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.Approve: commit failed", err, nil)
		return nil, err
	}

	s.notifier.NotifyUser(ctx, order.UserID, order.ID,
		"Order "+order.InvoiceNumber+" disetujui, silakan lakukan pembayaran")
	return order, nil
}

// recomputeTotal: total = jumlah subtotal baris (plus build_fee untuk
// custom PC) + ongkir. Snapshot harga di baris yang dipakai, bukan harga
// katalog saat ini.
func (s *orderStatusServiceImpl) recomputeTotal(ctx context.Context, tx database.DBTX, order *domain.Order, shippingCost decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	if order.OrderType == domain.TypeProduct {
		items, err := s.orderRepo.GetItems(ctx, tx, order.ID)
		if err != nil {
			return decimal.Zero, err
		}
		for _, it := range items {
			total = total.Add(it.Subtotal)
		}
	} else {
		components, err := s.orderRepo.GetComponents(ctx, tx, order.ID)
		if err != nil {
			return decimal.Zero, err
		}
		for _, cp := range components {
			total = total.Add(cp.Subtotal)
		}
		detail, err := s.orderRepo.GetCustomPCDetail(ctx, tx, order.ID)
		if err != nil {
			return decimal.Zero, err
		}
		if detail.BuildByStore {
			total = total.Add(detail.BuildFee)
		}
	}
	return total.Add(shippingCost), nil
}

// ApproveAll memindahkan semua order menunggu_verifikasi sekaligus.
func (s *orderStatusServiceImpl) ApproveAll(ctx context.Context) (int, error) {
	approved, err := s.orderRepo.BulkUpdateStatus(ctx, domain.StatusMenungguVerifikasi, domain.StatusMenungguPembayaran)
	if err != nil {
		return 0, err
	}
	for _, o := range approved {
		s.notifier.NotifyUser(ctx, o.UserID, o.ID,
			"Order "+o.InvoiceNumber+" disetujui, silakan lakukan pembayaran")
	}
	return len(approved), nil
}

// Cancel hanya oleh pemilik order dan hanya sebelum pembayaran
// terverifikasi. Stok yang dikonsumsi checkout dikembalikan lewat entry
// kompensasi di transaksi yang sama.
func (s *orderStatusServiceImpl) Cancel(ctx context.Context, orderID, userID string, req domain.CancelOrderRequest) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.Cancel: begin tx failed", err, nil)
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
	if !domain.CanBeCancelled(order.OrderStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, domain.StatusDibatalkan)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, domain.StatusDibatalkan); err != nil {
		return err
	}
	if err := s.inventorySvc.RestoreForCancellation(ctx, tx, order.InvoiceNumber, userID); err != nil {
		return err
	}
	if req.Note != "" {
		note := &domain.OrderNote{OrderID: orderID, UserID: userID, Note: req.Note}
		if err := s.orderRepo.InsertNote(ctx, tx, note); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.Cancel: commit failed", err, nil)
		return err
	}

	s.notifier.NotifyAdmins(ctx, order.ID, "Order "+order.InvoiceNumber+" dibatalkan oleh pelanggan")
	return nil
}

// Ship mengisi data pengiriman dan memindahkan diproses -> dikirim.
// Order ambil tidak pernah dikirim; dia tetap diproses sampai selesai.
func (s *orderStatusServiceImpl) Ship(ctx context.Context, orderID string, req domain.ShipOrderRequest) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.Ship: begin tx failed", err, nil)
		return err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order.PickupMethod != domain.PickupKirim {
		return ErrPickupOrderNotShippable
	}
	if !domain.CanTransition(order.OrderStatus, domain.StatusDikirim) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, domain.StatusDikirim)
	}

	delivery := &domain.OrderDelivery{
		OrderID:          orderID,
		TrackingNumber:   &req.TrackingNumber,
		EstimatedArrival: &req.EstimatedArrival,
		DeliveryImage:    &req.DeliveryImage,
		Notes:            req.Notes,
	}
	if err := s.orderRepo.UpdateDeliveryData(ctx, tx, delivery); err != nil {
		return err
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, domain.StatusDikirim); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.Ship: commit failed", err, nil)
		return err
	}

	s.notifier.NotifyUser(ctx, order.UserID, order.ID,
		"Order "+order.InvoiceNumber+" sedang dikirim, resi: "+req.TrackingNumber)
	return nil
}

// Finish adalah jalur admin menuju selesai. Order kirim wajib punya bukti
// pengiriman lengkap; order ambil selesai langsung dari diproses.
func (s *orderStatusServiceImpl) Finish(ctx context.Context, orderID string) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.Finish: begin tx failed", err, nil)
		return err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if !domain.CanTransition(order.OrderStatus, domain.StatusSelesai) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, domain.StatusSelesai)
	}

	if order.PickupMethod == domain.PickupKirim {
		delivery, err := s.orderRepo.GetDelivery(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !delivery.HasCompleteProof() {
			return ErrIncompleteDeliveryProof
		}
	}

	if err := s.orderRepo.SetFinished(ctx, tx, orderID, time.Now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.Finish: commit failed", err, nil)
		return err
	}

	s.notifier.NotifyUser(ctx, order.UserID, order.ID, "Order "+order.InvoiceNumber+" telah selesai")
	return nil
}

// ConfirmReceipt adalah jalur pelanggan: hanya order kirim, hanya dari
// status dikirim.
func (s *orderStatusServiceImpl) ConfirmReceipt(ctx context.Context, orderID, userID string) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.ConfirmReceipt: begin tx failed", err, nil)
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
	if order.PickupMethod != domain.PickupKirim {
		return ErrReceiptConfirmNotAllowed
	}
	if order.OrderStatus != domain.StatusDikirim {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, domain.StatusSelesai)
	}

	if err := s.orderRepo.SetFinished(ctx, tx, orderID, time.Now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.ConfirmReceipt: commit failed", err, nil)
		return err
	}

	s.notifier.NotifyAdmins(ctx, order.ID, "Pelanggan mengkonfirmasi penerimaan order "+order.InvoiceNumber)
	return nil
}

// AddNote menambah catatan append-only. Pelanggan hanya boleh menulis
// di ordernya sendiri; admin boleh di order mana pun.
func (s *orderStatusServiceImpl) AddNote(ctx context.Context, orderID, actorID, actorRole, note string) (*domain.OrderNote, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole == auth.RoleCustomer && order.UserID != actorID {
		return nil, ErrNotOrderOwner
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.AddNote: begin tx failed", err, nil)
		return nil, err
	}
	defer tx.Rollback()

	orderNote := &domain.OrderNote{OrderID: orderID, UserID: actorID, Note: note}
	if err := s.orderRepo.InsertNote(ctx, tx, orderNote); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		logger.Error("Svc.AddNote: commit failed", err, nil)
		return nil, err
	}
	return orderNote, nil
}

// ProcessPaymentReminders dipanggil scheduler: order yang masih
// menunggu_pembayaran melewati ambang waktu diingatkan, tidak dibatalkan
// otomatis karena pembatalan milik pelanggan.
func (s *orderStatusServiceImpl) ProcessPaymentReminders(ctx context.Context, olderThan time.Duration) (int, error) {
	orders, err := s.orderRepo.ListUnpaidOlderThan(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	for _, o := range orders {
		s.notifier.NotifyUser(ctx, o.UserID, o.ID,
			"Order "+o.InvoiceNumber+" masih menunggu pembayaran")
	}
	if len(orders) > 0 {
		logger.Info("Svc.ProcessPaymentReminders: reminded %d orders", len(orders))
	}
	return len(orders), nil
}

func (s *orderStatusServiceImpl) GetDetail(ctx context.Context, orderID string) (*domain.OrderDetail, error) {
	return s.orderRepo.GetOrderDetail(ctx, orderID)
}

func (s *orderStatusServiceImpl) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.ListOrdersByUser(ctx, userID)
}

func (s *orderStatusServiceImpl) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return s.orderRepo.ListOrdersByStatus(ctx, status)
}
