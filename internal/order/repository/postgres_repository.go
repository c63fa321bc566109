package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrDeliveryNotFound      = errors.New("order delivery not found")
	ErrConfirmationNotFound  = errors.New("payment confirmation not found")
	ErrDuplicateInvoice      = errors.New("invoice number already exists")
	ErrDuplicateConfirmation = errors.New("payment confirmation already exists for this order")
	ErrConfirmationImmutable = errors.New("payment confirmation is already verified")
)

type OrderRepository interface {
	BeginTx(ctx context.Context) (database.DBTX, error)

	// --- Checkout writes (selalu di dalam transaksi checkout) ---
	InsertOrder(ctx context.Context, dbops database.DBTX, order *domain.Order) error
	InsertOrderItems(ctx context.Context, dbops database.DBTX, orderID string, items []domain.OrderItem) error
	InsertCustomPCDetail(ctx context.Context, dbops database.DBTX, detail *domain.CustomPCDetail) error
	InsertCustomPCComponents(ctx context.Context, dbops database.DBTX, orderID string, components []domain.CustomPCComponent) error
	InsertDelivery(ctx context.Context, dbops database.DBTX, delivery *domain.OrderDelivery) error

	// --- Reads ---
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	GetOrderForUpdate(ctx context.Context, dbops database.DBTX, id string) (*domain.Order, error)
	GetOrderDetail(ctx context.Context, id string) (*domain.OrderDetail, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListUnpaidOlderThan(ctx context.Context, duration time.Duration) ([]domain.Order, error)
	GetItems(ctx context.Context, dbops database.DBTX, orderID string) ([]domain.OrderItem, error)
	GetComponents(ctx context.Context, dbops database.DBTX, orderID string) ([]domain.CustomPCComponent, error)
	GetCustomPCDetail(ctx context.Context, dbops database.DBTX, orderID string) (*domain.CustomPCDetail, error)
	GetDelivery(ctx context.Context, dbops database.DBTX, orderID string) (*domain.OrderDelivery, error)

	// --- State machine writes ---
	UpdateOrderStatus(ctx context.Context, dbops database.DBTX, orderID string, status domain.OrderStatus) error
	BulkUpdateStatus(ctx context.Context, from, to domain.OrderStatus) ([]domain.Order, error)
	UpdateTotalPrice(ctx context.Context, dbops database.DBTX, orderID string, total decimal.Decimal) error
	UpdatePaymentStatus(ctx context.Context, dbops database.DBTX, orderID string, status domain.PaymentStatus, paidAt *time.Time) error
	SetFinished(ctx context.Context, dbops database.DBTX, orderID string, finishedAt time.Time) error
	UpdateDeliveryData(ctx context.Context, dbops database.DBTX, delivery *domain.OrderDelivery) error
	UpdateShippingCost(ctx context.Context, dbops database.DBTX, orderID string, cost decimal.Decimal) error

	// --- Payment confirmation ---
	InsertConfirmation(ctx context.Context, dbops database.DBTX, confirmation *domain.PaymentConfirmation) error
	GetConfirmation(ctx context.Context, orderID string) (*domain.PaymentConfirmation, error)
	GetConfirmationForUpdate(ctx context.Context, dbops database.DBTX, orderID string) (*domain.PaymentConfirmation, error)
	UpdateConfirmationProof(ctx context.Context, dbops database.DBTX, confirmation *domain.PaymentConfirmation) error
	SetConfirmationVerdict(ctx context.Context, dbops database.DBTX, orderID string, verified bool, note string, verifiedAt time.Time) error

	// --- Notes ---
	InsertNote(ctx context.Context, dbops database.DBTX, note *domain.OrderNote) error
	ListNotes(ctx context.Context, orderID string) ([]domain.OrderNote, error)
}

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepository{db: db}
}

func (r *postgresOrderRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

const orderColumns = `id, user_id, order_type, invoice_number, total_price, order_status, payment_status,
              pickup_method, shipping_address_id, courier_id, payment_method_id, paid_at, finished_at,
              created_at, updated_at`

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}, o *domain.Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.OrderType, &o.InvoiceNumber, &o.TotalPrice,
		&o.OrderStatus, &o.PaymentStatus, &o.PickupMethod, &o.ShippingAddressID, &o.CourierID,
		&o.PaymentMethodID, &o.PaidAt, &o.FinishedAt, &o.CreatedAt, &o.UpdatedAt)
}

func (r *postgresOrderRepository) InsertOrder(ctx context.Context, dbops database.DBTX, order *domain.Order) error {
	query := `INSERT INTO orders (user_id, order_type, invoice_number, total_price, order_status, payment_status,
                  pickup_method, shipping_address_id, courier_id, payment_method_id, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	err := dbops.QueryRowContext(ctx, query,
		order.UserID, order.OrderType, order.InvoiceNumber, order.TotalPrice,
		order.OrderStatus, order.PaymentStatus, order.PickupMethod,
		order.ShippingAddressID, order.CourierID, order.PaymentMethodID, order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation (invoice_number)
			return ErrDuplicateInvoice
		}
		logger.Error("InsertOrder: failed to insert order", err, nil)
		return err
	}
	return nil
}

func (r *postgresOrderRepository) InsertOrderItems(ctx context.Context, dbops database.DBTX, orderID string, items []domain.OrderItem) error {
	stmt, err := dbops.PrepareContext(ctx, `INSERT INTO order_items (order_id, product_id, quantity, price, subtotal)
                                            VALUES ($1, $2, $3, $4, $5) RETURNING id`)
	if err != nil {
		logger.Error("InsertOrderItems: failed to prepare statement", err, nil)
		return err
	}
	defer stmt.Close()

	for i := range items {
		items[i].OrderID = orderID
		err = stmt.QueryRowContext(ctx, orderID, items[i].ProductID, items[i].Quantity, items[i].Price, items[i].Subtotal).
			Scan(&items[i].ID)
		if err != nil {
			logger.Error("InsertOrderItems: failed to insert item", err, map[string]interface{}{"product_id": items[i].ProductID})
			return err
		}
	}
	return nil
}

func (r *postgresOrderRepository) InsertCustomPCDetail(ctx context.Context, dbops database.DBTX, detail *domain.CustomPCDetail) error {
	query := `INSERT INTO custom_pc_orders (order_id, build_by_store, build_fee) VALUES ($1, $2, $3)`
	if _, err := dbops.ExecContext(ctx, query, detail.OrderID, detail.BuildByStore, detail.BuildFee); err != nil {
		logger.Error("InsertCustomPCDetail: insert failed", err, nil)
		return err
	}
	return nil
}

func (r *postgresOrderRepository) InsertCustomPCComponents(ctx context.Context, dbops database.DBTX, orderID string, components []domain.CustomPCComponent) error {
	stmt, err := dbops.PrepareContext(ctx, `INSERT INTO custom_pc_components (order_id, product_id, quantity, component_type, price, subtotal)
                                            VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`)
	if err != nil {
		logger.Error("InsertCustomPCComponents: failed to prepare statement", err, nil)
		return err
	}
	defer stmt.Close()

	for i := range components {
		components[i].OrderID = orderID
		err = stmt.QueryRowContext(ctx, orderID, components[i].ProductID, components[i].Quantity,
			components[i].ComponentType, components[i].Price, components[i].Subtotal).
			Scan(&components[i].ID)
		if err != nil {
			logger.Error("InsertCustomPCComponents: failed to insert component", err, map[string]interface{}{"product_id": components[i].ProductID})
			return err
		}
	}
	return nil
}

func (r *postgresOrderRepository) InsertDelivery(ctx context.Context, dbops database.DBTX, delivery *domain.OrderDelivery) error {
	query := `INSERT INTO order_deliveries (order_id, pickup_method, shipping_cost) VALUES ($1, $2, $3)`
	if _, err := dbops.ExecContext(ctx, query, delivery.OrderID, delivery.PickupMethod, delivery.ShippingCost); err != nil {
		logger.Error("InsertDelivery: insert failed", err, nil)
		return err
	}
	return nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	var o domain.Order
	if err := scanOrder(r.db.QueryRowContext(ctx, query, id), &o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderByID: query failed", err, nil)
		return nil, err
	}
	return &o, nil
}

func (r *postgresOrderRepository) GetOrderForUpdate(ctx context.Context, dbops database.DBTX, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	var o domain.Order
	if err := scanOrder(dbops.QueryRowContext(ctx, query, id), &o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderForUpdate: query failed", err, nil)
		return nil, err
	}
	return &o, nil
}

func (r *postgresOrderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("listOrders: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			logger.Error("listOrders: scan failed", err, nil)
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresOrderRepository) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listOrders(ctx, query, userID)
}

func (r *postgresOrderRepository) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_status = $1 ORDER BY created_at ASC`
	return r.listOrders(ctx, query, status)
}

func (r *postgresOrderRepository) ListUnpaidOlderThan(ctx context.Context, duration time.Duration) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE order_status = $1 AND updated_at < $2 ORDER BY created_at ASC`
	threshold := time.Now().Add(-duration)
	return r.listOrders(ctx, query, domain.StatusMenungguPembayaran, threshold)
}

func (r *postgresOrderRepository) GetItems(ctx context.Context, dbops database.DBTX, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity, price, subtotal FROM order_items WHERE order_id = $1`
	rows, err := dbops.QueryContext(ctx, query, orderID)
	if err != nil {
		logger.Error("GetItems: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.Subtotal); err != nil {
			logger.Error("GetItems: scan failed", err, nil)
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresOrderRepository) GetComponents(ctx context.Context, dbops database.DBTX, orderID string) ([]domain.CustomPCComponent, error) {
	query := `SELECT id, order_id, product_id, quantity, component_type, price, subtotal
              FROM custom_pc_components WHERE order_id = $1`
	rows, err := dbops.QueryContext(ctx, query, orderID)
	if err != nil {
		logger.Error("GetComponents: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	components := []domain.CustomPCComponent{}
	for rows.Next() {
		var cp domain.CustomPCComponent
		if err := rows.Scan(&cp.ID, &cp.OrderID, &cp.ProductID, &cp.Quantity, &cp.ComponentType, &cp.Price, &cp.Subtotal); err != nil {
			logger.Error("GetComponents: scan failed", err, nil)
			return nil, err
		}
		components = append(components, cp)
	}
	return components, rows.Err()
}

func (r *postgresOrderRepository) GetCustomPCDetail(ctx context.Context, dbops database.DBTX, orderID string) (*domain.CustomPCDetail, error) {
	query := `SELECT order_id, build_by_store, build_fee FROM custom_pc_orders WHERE order_id = $1`
	var d domain.CustomPCDetail
	err := dbops.QueryRowContext(ctx, query, orderID).Scan(&d.OrderID, &d.BuildByStore, &d.BuildFee)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetCustomPCDetail: query failed", err, nil)
		return nil, err
	}
	return &d, nil
}

func (r *postgresOrderRepository) GetDelivery(ctx context.Context, dbops database.DBTX, orderID string) (*domain.OrderDelivery, error) {
	query := `SELECT order_id, pickup_method, tracking_number, estimated_arrival, delivery_image, shipping_cost, notes
              FROM order_deliveries WHERE order_id = $1`
	var d domain.OrderDelivery
	err := dbops.QueryRowContext(ctx, query, orderID).Scan(
		&d.OrderID, &d.PickupMethod, &d.TrackingNumber, &d.EstimatedArrival, &d.DeliveryImage, &d.ShippingCost, &d.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeliveryNotFound
		}
		logger.Error("GetDelivery: query failed", err, nil)
		return nil, err
	}
	return &d, nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(ctx context.Context, dbops database.DBTX, orderID string, status domain.OrderStatus) error {
	query := `UPDATE orders SET order_status = $1, updated_at = NOW() WHERE id = $2`
	res, err := dbops.ExecContext(ctx, query, status, orderID)
	if err != nil {
		logger.Error("UpdateOrderStatus: exec failed", err, map[string]interface{}{"order_id": orderID, "new_status": status})
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresOrderRepository) BulkUpdateStatus(ctx context.Context, from, to domain.OrderStatus) ([]domain.Order, error) {
	// Satu statement, atomik: semua order berstatus `from` pindah ke `to`.
	query := `UPDATE orders SET order_status = $2, updated_at = NOW()
              WHERE order_status = $1
              RETURNING ` + orderColumns
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		logger.Error("BulkUpdateStatus: exec failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			logger.Error("BulkUpdateStatus: scan failed", err, nil)
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresOrderRepository) UpdateTotalPrice(ctx context.Context, dbops database.DBTX, orderID string, total decimal.Decimal) error {
	query := `UPDATE orders SET total_price = $1, updated_at = NOW() WHERE id = $2`
	if _, err := dbops.ExecContext(ctx, query, total, orderID); err != nil {
		logger.Error("UpdateTotalPrice: exec failed", err, nil)
		return err
	}
	return nil
}

func (r *postgresOrderRepository) UpdatePaymentStatus(ctx context.Context, dbops database.DBTX, orderID string, status domain.PaymentStatus, paidAt *time.Time) error {
	query := `UPDATE orders SET payment_status = $1, paid_at = COALESCE($2, paid_at), updated_at = NOW() WHERE id = $3`
	if _, err := dbops.ExecContext(ctx, query, status, paidAt, orderID); err != nil {
		logger.Error("UpdatePaymentStatus: exec failed", err, nil)
		return err
	}
	return nil
}

func (r *postgresOrderRepository) SetFinished(ctx context.Context, dbops database.DBTX, orderID string, finishedAt time.Time) error {
	query := `UPDATE orders SET order_status = $1, finished_at = $2, updated_at = NOW() WHERE id = $3`
	if _, err := dbops.ExecContext(ctx, query, domain.StatusSelesai, finishedAt, orderID); err != nil {
		logger.Error("SetFinished: exec failed", err, nil)
		return err
	}
	return nil
}

func (r *postgresOrderRepository) UpdateDeliveryData(ctx context.Context, dbops database.DBTX, delivery *domain.OrderDelivery) error {
	query := `UPDATE order_deliveries
              SET tracking_number = $1, estimated_arrival = $2, delivery_image = $3, notes = COALESCE($4, notes)
              WHERE order_id = $5`
	res, err := dbops.ExecContext(ctx, query,
		delivery.TrackingNumber, delivery.EstimatedArrival, delivery.DeliveryImage, delivery.Notes, delivery.OrderID)
	if err != nil {
		logger.Error("UpdateDeliveryData: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

func (r *postgresOrderRepository) UpdateShippingCost(ctx context.Context, dbops database.DBTX, orderID string, cost decimal.Decimal) error {
	query := `UPDATE order_deliveries SET shipping_cost = $1 WHERE order_id = $2`
	res, err := dbops.ExecContext(ctx, query, cost, orderID)
	if err != nil {
		logger.Error("UpdateShippingCost: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

func (r *postgresOrderRepository) InsertConfirmation(ctx context.Context, dbops database.DBTX, confirmation *domain.PaymentConfirmation) error {
	query := `INSERT INTO payment_confirmations (order_id, user_id, bank_name, account_number, payment_image, transfer_time, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	confirmation.CreatedAt = time.Now()
	_, err := dbops.ExecContext(ctx, query,
		confirmation.OrderID, confirmation.UserID, confirmation.BankName, confirmation.AccountNumber,
		confirmation.PaymentImage, confirmation.TransferTime, confirmation.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // satu konfirmasi per order
			return ErrDuplicateConfirmation
		}
		logger.Error("InsertConfirmation: insert failed", err, nil)
		return err
	}
	return nil
}

const confirmationColumns = `order_id, user_id, bank_name, account_number, payment_image, transfer_time, is_verified, verified_at, note, created_at`

func scanConfirmation(row interface {
	Scan(dest ...interface{}) error
}, pc *domain.PaymentConfirmation) error {
	return row.Scan(&pc.OrderID, &pc.UserID, &pc.BankName, &pc.AccountNumber, &pc.PaymentImage,
		&pc.TransferTime, &pc.IsVerified, &pc.VerifiedAt, &pc.Note, &pc.CreatedAt)
}

func (r *postgresOrderRepository) GetConfirmation(ctx context.Context, orderID string) (*domain.PaymentConfirmation, error) {
	query := `SELECT ` + confirmationColumns + ` FROM payment_confirmations WHERE order_id = $1`
	var pc domain.PaymentConfirmation
	if err := scanConfirmation(r.db.QueryRowContext(ctx, query, orderID), &pc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		logger.Error("GetConfirmation: query failed", err, nil)
		return nil, err
	}
	return &pc, nil
}

func (r *postgresOrderRepository) GetConfirmationForUpdate(ctx context.Context, dbops database.DBTX, orderID string) (*domain.PaymentConfirmation, error) {
	query := `SELECT ` + confirmationColumns + ` FROM payment_confirmations WHERE order_id = $1 FOR UPDATE`
	var pc domain.PaymentConfirmation
	if err := scanConfirmation(dbops.QueryRowContext(ctx, query, orderID), &pc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		logger.Error("GetConfirmationForUpdate: query failed", err, nil)
		return nil, err
	}
	return &pc, nil
}

// UpdateConfirmationProof hanya menyentuh baris yang is_verified masih NULL;
// kekekalan keputusan dijaga di level statement, bukan hanya di service.
func (r *postgresOrderRepository) UpdateConfirmationProof(ctx context.Context, dbops database.DBTX, confirmation *domain.PaymentConfirmation) error {
	query := `UPDATE payment_confirmations
              SET bank_name = $1, account_number = $2, payment_image = $3, transfer_time = $4
              WHERE order_id = $5 AND is_verified IS NULL`
	res, err := dbops.ExecContext(ctx, query,
		confirmation.BankName, confirmation.AccountNumber, confirmation.PaymentImage,
		confirmation.TransferTime, confirmation.OrderID)
	if err != nil {
		logger.Error("UpdateConfirmationProof: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		// Nol baris bisa berarti dua hal: konfirmasi belum pernah dibuat,
		// atau sudah diputuskan. Dibedakan supaya caller tidak menjawab
		// "sudah diverifikasi" untuk order yang belum submit sama sekali.
		var verified sql.NullBool
		checkErr := dbops.QueryRowContext(ctx,
			`SELECT is_verified FROM payment_confirmations WHERE order_id = $1`,
			confirmation.OrderID).Scan(&verified)
		if errors.Is(checkErr, sql.ErrNoRows) {
			return ErrConfirmationNotFound
		}
		if checkErr != nil {
			logger.Error("UpdateConfirmationProof: existence check failed", checkErr, nil)
			return checkErr
		}
		return ErrConfirmationImmutable
	}
	return nil
}

func (r *postgresOrderRepository) SetConfirmationVerdict(ctx context.Context, dbops database.DBTX, orderID string, verified bool, note string, verifiedAt time.Time) error {
	query := `UPDATE payment_confirmations
              SET is_verified = $1, verified_at = $2, note = $3
              WHERE order_id = $4 AND is_verified IS NULL`
	res, err := dbops.ExecContext(ctx, query, verified, verifiedAt, note, orderID)
	if err != nil {
		logger.Error("SetConfirmationVerdict: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrConfirmationImmutable
	}
	return nil
}

func (r *postgresOrderRepository) InsertNote(ctx context.Context, dbops database.DBTX, note *domain.OrderNote) error {
	query := `INSERT INTO order_notes (order_id, user_id, note, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	note.CreatedAt = time.Now()
	err := dbops.QueryRowContext(ctx, query, note.OrderID, note.UserID, note.Note, note.CreatedAt).Scan(&note.ID)
	if err != nil {
		logger.Error("InsertNote: insert failed", err, nil)
		return err
	}
	return nil
}

func (r *postgresOrderRepository) ListNotes(ctx context.Context, orderID string) ([]domain.OrderNote, error) {
	query := `SELECT id, order_id, user_id, note, created_at FROM order_notes WHERE order_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		logger.Error("ListNotes: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	notes := []domain.OrderNote{}
	for rows.Next() {
		var n domain.OrderNote
		if err := rows.Scan(&n.ID, &n.OrderID, &n.UserID, &n.Note, &n.CreatedAt); err != nil {
			logger.Error("ListNotes: scan failed", err, nil)
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// GetOrderDetail memuat agregat penuh untuk halaman detail.
func (r *postgresOrderRepository) GetOrderDetail(ctx context.Context, id string) (*domain.OrderDetail, error) {
	order, err := r.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &domain.OrderDetail{Order: *order}

	// Agregat dibaca dengan koneksi pool biasa; dbtx hanya untuk jalur mutasi.
	plain := plainDB{r.db}

	if order.OrderType == domain.TypeProduct {
		items, err := r.GetItems(ctx, plain, id)
		if err != nil {
			return nil, err
		}
		detail.Items = items
	} else {
		pcDetail, err := r.GetCustomPCDetail(ctx, plain, id)
		if err != nil && !errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		detail.CustomPC = pcDetail
		components, err := r.GetComponents(ctx, plain, id)
		if err != nil {
			return nil, err
		}
		detail.Components = components
	}

	delivery, err := r.GetDelivery(ctx, plain, id)
	if err != nil && !errors.Is(err, ErrDeliveryNotFound) {
		return nil, err
	}
	detail.Delivery = delivery

	confirmation, err := r.GetConfirmation(ctx, id)
	if err != nil && !errors.Is(err, ErrConfirmationNotFound) {
		return nil, err
	}
	detail.Confirmation = confirmation

	notes, err := r.ListNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Notes = notes

	return detail, nil
}

// plainDB membungkus *sql.DB agar memenuhi database.DBTX untuk jalur baca.
// Commit/Rollback jadi no-op karena tidak ada transaksi yang berjalan.
type plainDB struct {
	db *sql.DB
}

func (p plainDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return p.db.ExecContext(ctx, query, args...)
}

func (p plainDB) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return p.db.PrepareContext(ctx, query)
}

func (p plainDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return p.db.QueryContext(ctx, query, args...)
}

func (p plainDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

func (p plainDB) Commit() error   { return nil }
func (p plainDB) Rollback() error { return nil }
