package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridloal/pc-store-commerce/internal/inventory/domain"
	"github.com/ridloal/pc-store-commerce/internal/inventory/repository"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
	productRepo "github.com/ridloal/pc-store-commerce/internal/product/repository"
)

var (
	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrStockNotReady     = errors.New("product is not in ready_stock status")
)

// InventoryService adalah satu-satunya jalan mutasi stock/status_stock.
// Derivasi status selalu lewat domain.DeriveStockStatus setelah setiap mutasi.
type InventoryService interface {
	CreateEntry(ctx context.Context, actorID string, req domain.CreateEntryRequest) (*domain.StockEntry, error)
	DeleteEntry(ctx context.Context, entryID string) error
	ListEntries(ctx context.Context, productID string) ([]domain.StockEntry, error)

	// DecrementForCheckout adalah entry point terbatas untuk checkout:
	// hanya untuk produk ready_stock, kuantitas sudah tervalidasi oleh caller,
	// dan berjalan di dalam transaksi checkout (dbops).
	DecrementForCheckout(ctx context.Context, dbops database.DBTX, p *product.Product, quantity int, invoiceNumber, actorID string) error
	// RestoreForCancellation mengembalikan stok yang dikonsumsi invoice
	// tersebut, dengan entry kompensasi `in` (ledger tetap append-only).
	RestoreForCancellation(ctx context.Context, dbops database.DBTX, invoiceNumber, actorID string) error
}

type inventoryServiceImpl struct {
	stockRepo   repository.StockRepository
	productRepo productRepo.ProductRepository
}

func NewInventoryService(sr repository.StockRepository, pr productRepo.ProductRepository) InventoryService {
	return &inventoryServiceImpl{stockRepo: sr, productRepo: pr}
}

func (s *inventoryServiceImpl) CreateEntry(ctx context.Context, actorID string, req domain.CreateEntryRequest) (*domain.StockEntry, error) {
	tx, err := s.stockRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.CreateEntry: begin tx failed", err, nil)
		return nil, err
	}
	defer tx.Rollback()

	p, err := s.productRepo.GetForUpdate(ctx, tx, req.ProductID)
	if err != nil {
		return nil, err
	}

	entryType := domain.EntryType(req.Type)
	// Penyesuaian manual tidak boleh membuat stok negatif.
	// Decrement checkout dikecualikan karena lewat jalur terpisah.
	if entryType == domain.EntryOut && req.Quantity > p.Stock {
		return nil, fmt.Errorf("%w: product %s has stock %d, requested out %d",
			ErrInsufficientStock, p.Name, p.Stock, req.Quantity)
	}

	newStock := domain.NextStock(p.Stock, entryType, req.Quantity)
	newStatus := domain.DeriveStockStatus(newStock, p.StockStatus)
	if err := s.stockRepo.UpdateProductStock(ctx, tx, p.ID, newStock, newStatus); err != nil {
		return nil, err
	}

	entry := &domain.StockEntry{
		ProductID:   req.ProductID,
		Type:        entryType,
		Quantity:    req.Quantity,
		Note:        req.Note,
		ActorID:     actorID,
		PriorStatus: p.StockStatus,
	}
	if err := s.stockRepo.InsertEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.CreateEntry: commit failed", err, nil)
		return nil, err
	}
	return entry, nil
}

func (s *inventoryServiceImpl) DeleteEntry(ctx context.Context, entryID string) error {
	tx, err := s.stockRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.DeleteEntry: begin tx failed", err, nil)
		return err
	}
	defer tx.Rollback()

	entry, err := s.stockRepo.GetEntryByID(ctx, tx, entryID)
	if err != nil {
		return err
	}

	p, err := s.productRepo.GetForUpdate(ctx, tx, entry.ProductID)
	if err != nil {
		return err
	}

	// Status diturunkan dari snapshot sebelum entry diterapkan, bukan dari
	// status saat ini. Produk pre_order yang sempat naik ke ready_stock
	// kembali ke pre_order saat entry-nya dihapus, bukan ke out_of_stock.
	newStock := domain.RevertStock(p.Stock, entry.Type, entry.Quantity)
	newStatus := domain.DeriveStockStatus(newStock, entry.PriorStatus)
	if err := s.stockRepo.UpdateProductStock(ctx, tx, p.ID, newStock, newStatus); err != nil {
		return err
	}

	if err := s.stockRepo.DeleteEntry(ctx, tx, entryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.DeleteEntry: commit failed", err, nil)
		return err
	}
	return nil
}

func (s *inventoryServiceImpl) ListEntries(ctx context.Context, productID string) ([]domain.StockEntry, error) {
	return s.stockRepo.ListEntriesByProduct(ctx, productID)
}

func (s *inventoryServiceImpl) DecrementForCheckout(ctx context.Context, dbops database.DBTX, p *product.Product, quantity int, invoiceNumber, actorID string) error {
	if p.StockStatus != product.StockReady {
		return fmt.Errorf("%w: product %s", ErrStockNotReady, p.Name)
	}

	if err := s.stockRepo.DecrementStockGuarded(ctx, dbops, p.ID, quantity); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return fmt.Errorf("%w: product %s has stock %d, requested %d",
				ErrInsufficientStock, p.Name, p.Stock, quantity)
		}
		return err
	}

	// Status diturunkan sekali, setelah decrement, dengan aturan yang sama.
	// Baris produk masih terkunci oleh transaksi checkout, jadi p.Stock valid.
	newStock := p.Stock - quantity
	newStatus := domain.DeriveStockStatus(newStock, p.StockStatus)
	if newStatus != p.StockStatus {
		if err := s.stockRepo.UpdateProductStock(ctx, dbops, p.ID, newStock, newStatus); err != nil {
			return err
		}
	}

	entry := &domain.StockEntry{
		ProductID:   p.ID,
		Type:        domain.EntryOut,
		Quantity:    quantity,
		Note:        invoiceNumber,
		ActorID:     actorID,
		PriorStatus: p.StockStatus,
	}
	return s.stockRepo.InsertEntry(ctx, dbops, entry)
}

func (s *inventoryServiceImpl) RestoreForCancellation(ctx context.Context, dbops database.DBTX, invoiceNumber, actorID string) error {
	entries, err := s.stockRepo.ListCheckoutEntries(ctx, dbops, invoiceNumber)
	if err != nil {
		return err
	}

	for _, e := range entries {
		p, err := s.productRepo.GetForUpdate(ctx, dbops, e.ProductID)
		if err != nil {
			return err
		}
		newStock := domain.NextStock(p.Stock, domain.EntryIn, e.Quantity)
		newStatus := domain.DeriveStockStatus(newStock, p.StockStatus)
		if err := s.stockRepo.UpdateProductStock(ctx, dbops, p.ID, newStock, newStatus); err != nil {
			return err
		}

		compensation := &domain.StockEntry{
			ProductID:   e.ProductID,
			Type:        domain.EntryIn,
			Quantity:    e.Quantity,
			Note:        "pembatalan " + invoiceNumber,
			ActorID:     actorID,
			PriorStatus: p.StockStatus,
		}
		if err := s.stockRepo.InsertEntry(ctx, dbops, compensation); err != nil {
			return err
		}
	}
	return nil
}
