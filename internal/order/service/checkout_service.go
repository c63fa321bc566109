package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	cartRepo "github.com/ridloal/pc-store-commerce/internal/cart/repository"
	compatDomain "github.com/ridloal/pc-store-commerce/internal/compat/domain"
	compatSvc "github.com/ridloal/pc-store-commerce/internal/compat/service"
	inventorySvc "github.com/ridloal/pc-store-commerce/internal/inventory/service"
	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/order/repository"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
	productRepo "github.com/ridloal/pc-store-commerce/internal/product/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrProductInactive         = errors.New("product is not active")
	ErrProductOutOfStock       = errors.New("product is out of stock")
	ErrCartItemsNotFound       = errors.New("some cart items were not found")
	ErrShippingAddressRequired = errors.New("shipping address and courier are required for delivery orders")
	ErrTransactionFailure      = errors.New("checkout transaction failed")
)

// invoiceInsertAttempts membatasi regenerate saat nomor invoice tabrakan.
const invoiceInsertAttempts = 3

// Notifier adalah kolaborator notifikasi. Pemanggilan selalu setelah
// commit dan tidak pernah mengembalikan error ke alur bisnis.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, orderID, message string)
	NotifyAdmins(ctx context.Context, orderID, message string)
}

// CheckoutService mengubah cart tervalidasi atau rakitan tervalidasi
// menjadi satu Order, all-or-nothing dalam satu transaksi database.
type CheckoutService interface {
	CheckoutProduct(ctx context.Context, userID string, req domain.CheckoutProductRequest) (*domain.Order, error)
	CheckoutBuild(ctx context.Context, userID string, req domain.CheckoutBuildRequest) (*domain.Order, error)
}

type checkoutServiceImpl struct {
	orderRepo    repository.OrderRepository
	cartRepo     cartRepo.CartRepository
	productRepo  productRepo.ProductRepository
	inventorySvc inventorySvc.InventoryService
	compatSvc    compatSvc.CompatService
	notifier     Notifier
	buildFee     decimal.Decimal
}

func NewCheckoutService(
	or repository.OrderRepository,
	cr cartRepo.CartRepository,
	pr productRepo.ProductRepository,
	is inventorySvc.InventoryService,
	cs compatSvc.CompatService,
	n Notifier,
	buildFee decimal.Decimal,
) CheckoutService {
	return &checkoutServiceImpl{
		orderRepo:    or,
		cartRepo:     cr,
		productRepo:  pr,
		inventorySvc: is,
		compatSvc:    cs,
		notifier:     n,
		buildFee:     buildFee,
	}
}

// checkoutLine adalah satu baris yang sudah dikunci dan tervalidasi.
type checkoutLine struct {
	product  *product.Product
	quantity int
}

func (s *checkoutServiceImpl) CheckoutProduct(ctx context.Context, userID string, req domain.CheckoutProductRequest) (*domain.Order, error) {
	if err := validatePickup(req.PickupMethod, req.ShippingAddressID, req.CourierID); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.CheckoutProduct: begin tx failed", err, nil)
		return nil, ErrTransactionFailure
	}
	defer tx.Rollback()

	cartItems, err := s.cartRepo.GetItemsForCheckout(ctx, tx, userID, req.CartItemIDs)
	if err != nil {
		return nil, err
	}
	if len(cartItems) != len(req.CartItemIDs) {
		return nil, ErrCartItemsNotFound
	}

	quantities := map[string]int{}
	productIDs := make([]string, 0, len(cartItems))
	for _, item := range cartItems {
		quantities[item.ProductID] = item.Quantity
		productIDs = append(productIDs, item.ProductID)
	}

	lines, err := s.lockAndValidate(ctx, tx, productIDs, quantities)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		subtotal := line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity)))
		items = append(items, domain.OrderItem{
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			Price:     line.product.Price,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	order := &domain.Order{
		UserID:            userID,
		OrderType:         domain.TypeProduct,
		TotalPrice:        total,
		OrderStatus:       domain.StatusMenungguVerifikasi,
		PaymentStatus:     domain.PaymentBelumBayar,
		PickupMethod:      domain.PickupMethod(req.PickupMethod),
		ShippingAddressID: req.ShippingAddressID,
		CourierID:         req.CourierID,
		PaymentMethodID:   req.PaymentMethodID,
	}
	if err := s.insertOrderWithRetry(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.InsertOrderItems(ctx, tx, order.ID, items); err != nil {
		return nil, err
	}
	if err := s.orderRepo.InsertDelivery(ctx, tx, &domain.OrderDelivery{
		OrderID:      order.ID,
		PickupMethod: order.PickupMethod,
		ShippingCost: decimal.Zero,
	}); err != nil {
		return nil, err
	}

	if err := s.decrementReadyStock(ctx, tx, lines, order.InvoiceNumber, userID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItems(ctx, tx, req.CartItemIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.CheckoutProduct: commit failed", err, nil)
		return nil, ErrTransactionFailure
	}

	s.notifier.NotifyAdmins(ctx, order.ID, "Order baru "+order.InvoiceNumber+" menunggu verifikasi")
	return order, nil
}

func (s *checkoutServiceImpl) CheckoutBuild(ctx context.Context, userID string, req domain.CheckoutBuildRequest) (*domain.Order, error) {
	if err := validatePickup(req.PickupMethod, req.ShippingAddressID, req.CourierID); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.CheckoutBuild: begin tx failed", err, nil)
		return nil, ErrTransactionFailure
	}
	defer tx.Rollback()

	// Komponen duplikat digabung jadi satu baris; tanpa dedup, produk yang
	// disebut dua kali akan dikunci dua kali dan tagihannya terhitung ganda.
	quantities := map[string]int{}
	productIDs := make([]string, 0, len(req.Components))
	for _, c := range req.Components {
		if _, seen := quantities[c.ProductID]; !seen {
			productIDs = append(productIDs, c.ProductID)
		}
		quantities[c.ProductID] += c.Quantity
	}

	lines, err := s.lockAndValidate(ctx, tx, productIDs, quantities)
	if err != nil {
		return nil, err
	}

	buildComponents := make([]compatDomain.BuildComponent, 0, len(lines))
	for _, line := range lines {
		buildComponents = append(buildComponents, compatDomain.BuildComponent{
			Product:  *line.product,
			Quantity: line.quantity,
		})
	}
	if err := s.compatSvc.ValidateBuild(ctx, buildComponents); err != nil {
		return nil, err
	}

	total := decimal.Zero
	components := make([]domain.CustomPCComponent, 0, len(lines))
	for _, line := range lines {
		subtotal := line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity)))
		components = append(components, domain.CustomPCComponent{
			ProductID:     line.product.ID,
			Quantity:      line.quantity,
			ComponentType: compatDomain.NormalizeType(line.product.Subcategory),
			Price:         line.product.Price,
			Subtotal:      subtotal,
		})
		total = total.Add(subtotal)
	}

	fee := decimal.Zero
	if req.BuildByStore {
		fee = s.buildFee
		total = total.Add(fee)
	}

	order := &domain.Order{
		UserID:            userID,
		OrderType:         domain.TypeCustomPC,
		TotalPrice:        total,
		OrderStatus:       domain.StatusMenungguVerifikasi,
		PaymentStatus:     domain.PaymentBelumBayar,
		PickupMethod:      domain.PickupMethod(req.PickupMethod),
		ShippingAddressID: req.ShippingAddressID,
		CourierID:         req.CourierID,
		PaymentMethodID:   req.PaymentMethodID,
	}
	if err := s.insertOrderWithRetry(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.InsertCustomPCDetail(ctx, tx, &domain.CustomPCDetail{
		OrderID:      order.ID,
		BuildByStore: req.BuildByStore,
		BuildFee:     fee,
	}); err != nil {
		return nil, err
	}
	if err := s.orderRepo.InsertCustomPCComponents(ctx, tx, order.ID, components); err != nil {
		return nil, err
	}
	if err := s.orderRepo.InsertDelivery(ctx, tx, &domain.OrderDelivery{
		OrderID:      order.ID,
		PickupMethod: order.PickupMethod,
		ShippingCost: decimal.Zero,
	}); err != nil {
		return nil, err
	}

	if err := s.decrementReadyStock(ctx, tx, lines, order.InvoiceNumber, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.CheckoutBuild: commit failed", err, nil)
		return nil, ErrTransactionFailure
	}

	s.notifier.NotifyAdmins(ctx, order.ID, "Order rakitan baru "+order.InvoiceNumber+" menunggu verifikasi")
	return order, nil
}

// lockAndValidate mengunci semua baris produk (urut id, mencegah deadlock
// antar checkout yang bersilangan) lalu memvalidasi tiap baris SEBELUM
// decrement mana pun berjalan.
func (s *checkoutServiceImpl) lockAndValidate(ctx context.Context, tx database.DBTX, productIDs []string, quantities map[string]int) ([]checkoutLine, error) {
	ids := append([]string(nil), productIDs...)
	sort.Strings(ids)

	lines := make([]checkoutLine, 0, len(ids))
	for _, id := range ids {
		p, err := s.productRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		qty := quantities[id]

		if !p.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductInactive, p.Name)
		}
		switch p.StockStatus {
		case product.StockOut:
			return nil, fmt.Errorf("%w: %s", ErrProductOutOfStock, p.Name)
		case product.StockReady:
			if qty > p.Stock {
				return nil, fmt.Errorf("%w: product %s has stock %d, requested %d",
					inventorySvc.ErrInsufficientStock, p.Name, p.Stock, qty)
			}
		case product.StockPreOrder:
			// Pre-order boleh melebihi stok; ini mekanisme backlog.
		}

		lines = append(lines, checkoutLine{product: p, quantity: qty})
	}
	return lines, nil
}

// decrementReadyStock menjalankan decrement hanya untuk baris ready_stock.
// Pre-order tidak pernah menyentuh stok.
func (s *checkoutServiceImpl) decrementReadyStock(ctx context.Context, tx database.DBTX, lines []checkoutLine, invoiceNumber, actorID string) error {
	for _, line := range lines {
		if line.product.StockStatus != product.StockReady {
			continue
		}
		if err := s.inventorySvc.DecrementForCheckout(ctx, tx, line.product, line.quantity, invoiceNumber, actorID); err != nil {
			return err
		}
	}
	return nil
}

// insertOrderWithRetry meregenerasi nomor invoice saat tabrakan unik,
// maksimal invoiceInsertAttempts kali. Insert dibungkus savepoint karena
// unique violation membatalkan transaksi Postgres; tanpa savepoint,
// statement berikutnya ikut gagal.
func (s *checkoutServiceImpl) insertOrderWithRetry(ctx context.Context, tx database.DBTX, order *domain.Order) error {
	var err error
	for attempt := 0; attempt < invoiceInsertAttempts; attempt++ {
		if _, spErr := tx.ExecContext(ctx, "SAVEPOINT invoice_insert"); spErr != nil {
			return spErr
		}
		order.InvoiceNumber = domain.GenerateInvoiceNumber(time.Now())
		err = s.orderRepo.InsertOrder(ctx, tx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateInvoice) {
			return err
		}
		if _, spErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT invoice_insert"); spErr != nil {
			return spErr
		}
		logger.Warn("Svc.insertOrderWithRetry: invoice collision, regenerating", map[string]interface{}{
			"attempt": attempt + 1,
		})
	}
	return fmt.Errorf("%w: %v", ErrTransactionFailure, err)
}

func validatePickup(method string, addressID, courierID *string) error {
	if domain.PickupMethod(method) == domain.PickupKirim && (addressID == nil || courierID == nil) {
		return ErrShippingAddressRequired
	}
	return nil
}
