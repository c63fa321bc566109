package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ridloal/pc-store-commerce/internal/inventory/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
)

var (
	ErrStockEntryNotFound = errors.New("stock entry not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

type StockRepository interface {
	BeginTx(ctx context.Context) (database.DBTX, error)

	InsertEntry(ctx context.Context, dbops database.DBTX, entry *domain.StockEntry) error
	GetEntryByID(ctx context.Context, dbops database.DBTX, id string) (*domain.StockEntry, error)
	DeleteEntry(ctx context.Context, dbops database.DBTX, id string) error
	ListEntriesByProduct(ctx context.Context, productID string) ([]domain.StockEntry, error)
	// ListCheckoutEntries mengambil entry `out` milik satu invoice,
	// dipakai saat pembatalan untuk mengembalikan stok.
	ListCheckoutEntries(ctx context.Context, dbops database.DBTX, invoiceNumber string) ([]domain.StockEntry, error)

	// UpdateProductStock menulis stok + status hasil derivasi.
	// Hanya boleh dipanggil dari inventory service, dengan baris produk terkunci.
	UpdateProductStock(ctx context.Context, dbops database.DBTX, productID string, stock int, status product.StockStatus) error
	// DecrementStockGuarded adalah decrement checkout: hanya lolos jika
	// status ready_stock dan stok mencukupi, dicek di dalam UPDATE itu sendiri.
	DecrementStockGuarded(ctx context.Context, dbops database.DBTX, productID string, quantity int) error
}

type postgresStockRepository struct {
	db *sql.DB
}

func NewPostgresStockRepository(db *sql.DB) StockRepository {
	return &postgresStockRepository{db: db}
}

func (r *postgresStockRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *postgresStockRepository) InsertEntry(ctx context.Context, dbops database.DBTX, entry *domain.StockEntry) error {
	query := `INSERT INTO stock_entries (product_id, type, quantity, note, actor_id, prior_status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	entry.CreatedAt = time.Now()
	err := dbops.QueryRowContext(ctx, query,
		entry.ProductID, entry.Type, entry.Quantity, entry.Note, entry.ActorID, entry.PriorStatus, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		logger.Error("InsertEntry: failed to insert stock entry", err, nil)
		return err
	}
	return nil
}

func (r *postgresStockRepository) GetEntryByID(ctx context.Context, dbops database.DBTX, id string) (*domain.StockEntry, error) {
	query := `SELECT id, product_id, type, quantity, note, actor_id, prior_status, created_at
              FROM stock_entries WHERE id = $1`
	var e domain.StockEntry
	err := dbops.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.ProductID, &e.Type, &e.Quantity, &e.Note, &e.ActorID, &e.PriorStatus, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStockEntryNotFound
		}
		logger.Error("GetEntryByID: query failed", err, nil)
		return nil, err
	}
	return &e, nil
}

func (r *postgresStockRepository) DeleteEntry(ctx context.Context, dbops database.DBTX, id string) error {
	res, err := dbops.ExecContext(ctx, `DELETE FROM stock_entries WHERE id = $1`, id)
	if err != nil {
		logger.Error("DeleteEntry: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrStockEntryNotFound
	}
	return nil
}

func (r *postgresStockRepository) ListEntriesByProduct(ctx context.Context, productID string) ([]domain.StockEntry, error) {
	query := `SELECT id, product_id, type, quantity, note, actor_id, prior_status, created_at
              FROM stock_entries WHERE product_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		logger.Error("ListEntriesByProduct: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	entries := []domain.StockEntry{}
	for rows.Next() {
		var e domain.StockEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Type, &e.Quantity, &e.Note, &e.ActorID, &e.PriorStatus, &e.CreatedAt); err != nil {
			logger.Error("ListEntriesByProduct: scan failed", err, nil)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresStockRepository) ListCheckoutEntries(ctx context.Context, dbops database.DBTX, invoiceNumber string) ([]domain.StockEntry, error) {
	query := `SELECT id, product_id, type, quantity, note, actor_id, prior_status, created_at
              FROM stock_entries WHERE type = $1 AND note = $2`
	rows, err := dbops.QueryContext(ctx, query, domain.EntryOut, invoiceNumber)
	if err != nil {
		logger.Error("ListCheckoutEntries: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	entries := []domain.StockEntry{}
	for rows.Next() {
		var e domain.StockEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Type, &e.Quantity, &e.Note, &e.ActorID, &e.PriorStatus, &e.CreatedAt); err != nil {
			logger.Error("ListCheckoutEntries: scan failed", err, nil)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresStockRepository) UpdateProductStock(ctx context.Context, dbops database.DBTX, productID string, stock int, status product.StockStatus) error {
	query := `UPDATE products SET stock = $1, status_stock = $2, updated_at = NOW() WHERE id = $3`
	res, err := dbops.ExecContext(ctx, query, stock, status, productID)
	if err != nil {
		logger.Error("UpdateProductStock: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return errors.New("product row not found for stock update")
	}
	return nil
}

func (r *postgresStockRepository) DecrementStockGuarded(ctx context.Context, dbops database.DBTX, productID string, quantity int) error {
	query := `UPDATE products SET stock = stock - $1, updated_at = NOW()
              WHERE id = $2 AND status_stock = $3 AND stock >= $1`
	res, err := dbops.ExecContext(ctx, query, quantity, productID, product.StockReady)
	if err != nil {
		logger.Error("DecrementStockGuarded: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
