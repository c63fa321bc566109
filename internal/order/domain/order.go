package domain

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	TypeProduct  OrderType = "product"
	TypeCustomPC OrderType = "custom_pc"
)

type OrderStatus string

const (
	StatusMenungguVerifikasi OrderStatus = "menunggu_verifikasi"
	StatusMenungguPembayaran OrderStatus = "menunggu_pembayaran"
	StatusDiproses           OrderStatus = "diproses"
	StatusDikirim            OrderStatus = "dikirim"
	StatusSelesai            OrderStatus = "selesai"
	StatusDibatalkan         OrderStatus = "dibatalkan"
)

type PaymentStatus string

const (
	PaymentBelumBayar PaymentStatus = "belum_bayar"
	PaymentSudahBayar PaymentStatus = "sudah_bayar"
	PaymentGagal      PaymentStatus = "gagal"
)

type PickupMethod string

const (
	PickupAmbil PickupMethod = "ambil"
	PickupKirim PickupMethod = "kirim"
)

// validNext adalah tabel transisi order_status yang sah.
// selesai dan dibatalkan terminal; pembatalan hanya sebelum pembayaran
// terverifikasi (menunggu_verifikasi / menunggu_pembayaran).
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusMenungguVerifikasi: {StatusMenungguPembayaran: true, StatusDibatalkan: true},
	StatusMenungguPembayaran: {StatusDiproses: true, StatusDibatalkan: true},
	StatusDiproses:           {StatusDikirim: true, StatusSelesai: true},
	StatusDikirim:            {StatusSelesai: true},
	StatusSelesai:            {},
	StatusDibatalkan:         {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

func IsTerminal(s OrderStatus) bool {
	return len(validNext[s]) == 0
}

// CanBeCancelled: pembatalan hanya dari dua status awal;
// begitu diproses atau lebih jauh, tidak bisa dibatalkan lagi.
func CanBeCancelled(s OrderStatus) bool {
	return s == StatusMenungguVerifikasi || s == StatusMenungguPembayaran
}

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	OrderType         OrderType       `json:"order_type"`
	InvoiceNumber     string          `json:"invoice_number"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	OrderStatus       OrderStatus     `json:"order_status"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	PickupMethod      PickupMethod    `json:"pickup_method"`
	ShippingAddressID *string         `json:"shipping_address_id,omitempty"`
	CourierID         *string         `json:"courier_id,omitempty"`
	PaymentMethodID   string          `json:"payment_method_id"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	FinishedAt        *time.Time      `json:"finished_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderItem menyimpan snapshot harga saat pembelian; perubahan harga
// katalog setelahnya tidak pernah mengubah order historis.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"-"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CustomPCDetail struct {
	OrderID      string          `json:"-"`
	BuildByStore bool            `json:"build_by_store"`
	BuildFee     decimal.Decimal `json:"build_fee"`
}

type CustomPCComponent struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"-"`
	ProductID     string          `json:"product_id"`
	Quantity      int             `json:"quantity"`
	ComponentType string          `json:"component_type"`
	Price         decimal.Decimal `json:"price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type OrderDelivery struct {
	OrderID          string          `json:"-"`
	PickupMethod     PickupMethod    `json:"pickup_method"`
	TrackingNumber   *string         `json:"tracking_number,omitempty"`
	EstimatedArrival *time.Time      `json:"estimated_arrival,omitempty"`
	DeliveryImage    *string         `json:"delivery_image,omitempty"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	Notes            *string         `json:"notes,omitempty"`
}

// HasCompleteProof: syarat admin boleh menandai selesai.
func (d OrderDelivery) HasCompleteProof() bool {
	return d.DeliveryImage != nil && *d.DeliveryImage != "" && d.EstimatedArrival != nil
}

// PaymentConfirmation: is_verified nil berarti menunggu keputusan admin.
// Begitu non-nil, record ini tidak boleh berubah lagi.
type PaymentConfirmation struct {
	OrderID       string     `json:"-"`
	UserID        string     `json:"user_id"`
	BankName      string     `json:"bank_name"`
	AccountNumber string     `json:"account_number"`
	PaymentImage  string     `json:"payment_image"`
	TransferTime  time.Time  `json:"transfer_time"`
	IsVerified    *bool      `json:"is_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	Note          *string    `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type OrderNote struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"-"`
	UserID    string    `json:"user_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderDetail adalah agregat lengkap untuk halaman detail order.
type OrderDetail struct {
	Order        Order                `json:"order"`
	Items        []OrderItem          `json:"items,omitempty"`
	CustomPC     *CustomPCDetail      `json:"custom_pc,omitempty"`
	Components   []CustomPCComponent  `json:"components,omitempty"`
	Delivery     *OrderDelivery       `json:"delivery,omitempty"`
	Confirmation *PaymentConfirmation `json:"payment_confirmation,omitempty"`
	Notes        []OrderNote          `json:"notes,omitempty"`
}

// --- Request payloads ---

type CheckoutProductRequest struct {
	CartItemIDs       []string `json:"cart_item_ids" binding:"required,min=1"`
	PickupMethod      string   `json:"pickup_method" binding:"required,oneof=ambil kirim"`
	ShippingAddressID *string  `json:"shipping_address_id"`
	CourierID         *string  `json:"courier_id"`
	PaymentMethodID   string   `json:"payment_method_id" binding:"required"`
}

type BuildComponentRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CheckoutBuildRequest struct {
	Components        []BuildComponentRequest `json:"components" binding:"required,min=1,dive"`
	BuildByStore      bool                    `json:"build_by_store"`
	PickupMethod      string                  `json:"pickup_method" binding:"required,oneof=ambil kirim"`
	ShippingAddressID *string                 `json:"shipping_address_id"`
	CourierID         *string                 `json:"courier_id"`
	PaymentMethodID   string                  `json:"payment_method_id" binding:"required"`
}

type ApproveOrderRequest struct {
	ShippingCost *decimal.Decimal `json:"shipping_cost"`
}

type CancelOrderRequest struct {
	Note string `json:"note"`
}

type ShipOrderRequest struct {
	TrackingNumber   string    `json:"tracking_number" binding:"required"`
	EstimatedArrival time.Time `json:"estimated_arrival" binding:"required"`
	DeliveryImage    string    `json:"delivery_image" binding:"required"`
	Notes            *string   `json:"notes"`
}

type SubmitConfirmationRequest struct {
	BankName      string    `json:"bank_name" binding:"required"`
	AccountNumber string    `json:"account_number" binding:"required"`
	PaymentImage  string    `json:"payment_image" binding:"required"`
	TransferTime  time.Time `json:"transfer_time" binding:"required"`
}

type VerifyConfirmationRequest struct {
	Accept bool   `json:"accept"`
	Note   string `json:"note"`
}

type AddNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

const invoiceSuffixCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInvoiceNumber menghasilkan nomor format INV/YYYYMMDD/XXXXXX.
// Keunikan dijaga constraint unik di DB; caller melakukan retry-regenerate
// saat terjadi tabrakan.
func GenerateInvoiceNumber(now time.Time) string {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(invoiceSuffixCharset)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand praktis tidak pernah gagal; fallback deterministik
			// lebih baik daripada panic di tengah checkout.
			suffix[i] = invoiceSuffixCharset[i]
			continue
		}
		suffix[i] = invoiceSuffixCharset[n.Int64()]
	}
	return "INV/" + now.Format("20060102") + "/" + string(suffix)
}
