package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/ridloal/pc-store-commerce/internal/cart/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartRepository interface {
	AddItem(ctx context.Context, item *domain.CartItem) error
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) error

	// GetItemsForCheckout membaca baris cart milik user di dalam transaksi checkout.
	GetItemsForCheckout(ctx context.Context, dbops database.DBTX, userID string, itemIDs []string) ([]domain.CartItem, error)
	// DeleteItems menghapus baris cart yang sudah dikonsumsi checkout.
	DeleteItems(ctx context.Context, dbops database.DBTX, itemIDs []string) error
}

type postgresCartRepository struct {
	db *sql.DB
}

func NewPostgresCartRepository(db *sql.DB) CartRepository {
	return &postgresCartRepository{db: db}
}

func (r *postgresCartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity, created_at)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (user_id, product_id) DO UPDATE SET
              quantity = cart_items.quantity + EXCLUDED.quantity
              RETURNING id, quantity, created_at`
	item.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query, item.UserID, item.ProductID, item.Quantity, item.CreatedAt).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		logger.Error("AddItem: upsert failed", err, nil)
		return err
	}
	return nil
}

func (r *postgresCartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	query := `SELECT id, user_id, product_id, quantity, created_at
              FROM cart_items WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Error("ListByUser: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
			logger.Error("ListByUser: scan failed", err, nil)
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresCartRepository) RemoveItem(ctx context.Context, userID, itemID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		logger.Error("RemoveItem: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *postgresCartRepository) GetItemsForCheckout(ctx context.Context, dbops database.DBTX, userID string, itemIDs []string) ([]domain.CartItem, error) {
	query := `SELECT id, user_id, product_id, quantity, created_at
              FROM cart_items WHERE user_id = $1 AND id = ANY($2)`
	rows, err := dbops.QueryContext(ctx, query, userID, pq.Array(itemIDs))
	if err != nil {
		logger.Error("GetItemsForCheckout: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
			logger.Error("GetItemsForCheckout: scan failed", err, nil)
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresCartRepository) DeleteItems(ctx context.Context, dbops database.DBTX, itemIDs []string) error {
	_, err := dbops.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, pq.Array(itemIDs))
	if err != nil {
		logger.Error("DeleteItems: exec failed", err, nil)
	}
	return err
}
