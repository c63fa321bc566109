package domain

import (
	"strings"
	"time"

	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
)

// CompatibilityPair adalah satu sisi dari edge dua arah.
// Storage menyimpan dua baris (A->B dan B->A) supaya lookup cukup
// satu indeks; simetri dijaga dengan menulis keduanya dalam satu transaksi.
type CompatibilityPair struct {
	ProductID        string    `json:"product_id"`
	CompatibleWithID string    `json:"compatible_with_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type PairRequest struct {
	ProductAID string `json:"product_a_id" binding:"required"`
	ProductBID string `json:"product_b_id" binding:"required"`
}

// BuildComponent adalah satu kandidat komponen dalam rakitan yang divalidasi.
type BuildComponent struct {
	Product  product.Product
	Quantity int
}

// ComponentType mengambil tipe komponen dari subkategori produk.
func (b BuildComponent) ComponentType() string {
	return NormalizeType(b.Product.Subcategory)
}

// Tipe komponen wajib untuk satu rakitan utuh.
var RequiredComponentTypes = []string{
	"motherboard", "processor", "ram", "storage", "psu", "casing",
}

const (
	TypeProcessor = "processor"
	TypeGPU       = "gpu"
)

func NormalizeType(subcategory string) string {
	return strings.ToLower(strings.TrimSpace(subcategory))
}
