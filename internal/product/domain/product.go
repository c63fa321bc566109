package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus adalah flag ketersediaan yang dilihat customer.
// Nilainya selalu diturunkan dari stok oleh inventory ledger,
// tidak pernah di-set langsung oleh kode checkout/order.
type StockStatus string

const (
	StockReady    StockStatus = "ready_stock"
	StockPreOrder StockStatus = "pre_order"
	StockOut      StockStatus = "out_of_stock"
)

// Kategori produk yang boleh dipakai sebagai komponen rakitan.
const ComponentCategory = "Komponen"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"` // boleh negatif untuk backlog pre-order
	StockStatus StockStatus     `json:"status_stock"`
	IsActive    bool            `json:"is_active"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"` // tipe komponen untuk kategori Komponen
	HasIGPU     bool            `json:"has_igpu"`    // hanya bermakna untuk processor
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsComponent menentukan apakah produk boleh masuk ke sebuah rakitan.
func (p Product) IsComponent() bool {
	return p.Category == ComponentCategory
}
