package domain

import (
	"testing"

	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
	"github.com/stretchr/testify/assert"
)

func TestDeriveStockStatus(t *testing.T) {
	testCases := []struct {
		name     string
		newStock int
		prior    product.StockStatus
		expected product.StockStatus
	}{
		{"positive stock always ready", 5, product.StockOut, product.StockReady},
		{"positive stock keeps ready", 3, product.StockReady, product.StockReady},
		{"positive stock promotes pre_order", 5, product.StockPreOrder, product.StockReady},
		{"zero from ready becomes out", 0, product.StockReady, product.StockOut},
		{"negative from ready becomes out", -2, product.StockReady, product.StockOut},
		{"zero keeps pre_order", 0, product.StockPreOrder, product.StockPreOrder},
		{"negative keeps pre_order", -7, product.StockPreOrder, product.StockPreOrder},
		{"zero keeps out_of_stock", 0, product.StockOut, product.StockOut},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DeriveStockStatus(tc.newStock, tc.prior))
		})
	}
}

func TestNextStock(t *testing.T) {
	assert.Equal(t, 15, NextStock(10, EntryIn, 5))
	assert.Equal(t, 5, NextStock(10, EntryOut, 5))
	// Stok boleh negatif lewat jalur entry (pre_order backlog).
	assert.Equal(t, -3, NextStock(2, EntryOut, 5))
}

func TestRevertStock(t *testing.T) {
	t.Run("reverting in subtracts", func(t *testing.T) {
		assert.Equal(t, 5, RevertStock(10, EntryIn, 5))
	})

	t.Run("reverting out adds back", func(t *testing.T) {
		assert.Equal(t, 15, RevertStock(10, EntryOut, 5))
	})

	t.Run("revert clamps at zero", func(t *testing.T) {
		// Entry in +5 lalu stok sudah terpakai: revert tidak boleh negatif.
		assert.Equal(t, 0, RevertStock(2, EntryIn, 5))
	})
}
