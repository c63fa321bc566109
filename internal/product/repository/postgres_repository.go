package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	"github.com/ridloal/pc-store-commerce/internal/product/domain"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository hanya menyediakan pembacaan katalog.
// Mutasi stock/status_stock dimiliki inventory ledger, bukan repo ini.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	// GetForUpdate mengunci baris produk (FOR UPDATE) di dalam transaksi.
	GetForUpdate(ctx context.Context, dbops database.DBTX, id string) (*domain.Product, error)
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

const productColumns = `id, name, price, stock, status_stock, is_active, category, subcategory, has_igpu, created_at, updated_at`

func scanProduct(row interface {
	Scan(dest ...interface{}) error
}, p *domain.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.StockStatus, &p.IsActive,
		&p.Category, &p.Subcategory, &p.HasIGPU, &p.CreatedAt, &p.UpdatedAt)
}

func (r *postgresProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	var p domain.Product
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetByID: query failed", err, nil)
		return nil, err
	}
	return &p, nil
}

func (r *postgresProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.Error("GetByIDs: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			logger.Error("GetByIDs: scan failed", err, nil)
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresProductRepository) GetForUpdate(ctx context.Context, dbops database.DBTX, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	var p domain.Product
	err := scanProduct(dbops.QueryRowContext(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetForUpdate: query failed", err, nil)
		return nil, err
	}
	return &p, nil
}
