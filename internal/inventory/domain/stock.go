package domain

import (
	"time"

	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
)

type EntryType string

const (
	EntryIn  EntryType = "in"
	EntryOut EntryType = "out"
)

// StockEntry adalah satu catatan pergerakan stok, append-only.
// Entry hanya bisa dihapus (bukan diubah), dan penghapusan wajib
// menurunkan ulang stok + status produk.
//
// PriorStatus merekam status_stock produk sesaat sebelum entry
// diterapkan. Penghapusan entry menurunkan status dari snapshot ini,
// bukan dari status saat ini, supaya hapus-setelah-tambah mengembalikan
// produk ke status semula (pre_order tidak berubah jadi out_of_stock).
type StockEntry struct {
	ID          string              `json:"id"`
	ProductID   string              `json:"product_id"`
	Type        EntryType           `json:"type"`
	Quantity    int                 `json:"quantity"`
	Note        string              `json:"note,omitempty"`
	ActorID     string              `json:"actor_id"`
	PriorStatus product.StockStatus `json:"prior_status"`
	CreatedAt   time.Time           `json:"created_at"`
}

type CreateEntryRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=in out"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Note      string `json:"note"`
}

// NextStock menghitung stok setelah sebuah entry diterapkan.
func NextStock(current int, t EntryType, quantity int) int {
	if t == EntryIn {
		return current + quantity
	}
	return current - quantity
}

// RevertStock menghitung stok seolah-olah entry tidak pernah terjadi.
// Hasil di-clamp ke 0 supaya penghapusan entry tidak meninggalkan
// angka negatif artifisial (asimetri yang disengaja).
func RevertStock(current int, t EntryType, quantity int) int {
	var reverted int
	if t == EntryIn {
		reverted = current - quantity
	} else {
		reverted = current + quantity
	}
	if reverted < 0 {
		return 0
	}
	return reverted
}

// DeriveStockStatus adalah satu-satunya aturan penurunan status_stock.
//   - stok > 0  => ready_stock, apapun status sebelumnya
//   - stok <= 0 dan sebelumnya ready_stock => out_of_stock
//   - stok <= 0 dan sebelumnya pre_order / out_of_stock => tidak berubah
//
// pre_order memang dibiarkan bertahan dengan stok negatif/nol sampai
// admin sendiri yang mengubahnya.
func DeriveStockStatus(newStock int, prior product.StockStatus) product.StockStatus {
	if newStock > 0 {
		return product.StockReady
	}
	if prior == product.StockReady {
		return product.StockOut
	}
	return prior
}
