package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/ridloal/pc-store-commerce/internal/compat/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
)

var (
	ErrPairAlreadyExists = errors.New("compatibility pair already exists")
	ErrPairNotFound      = errors.New("compatibility pair not found")
)

type CompatRepository interface {
	// AddPair menulis kedua arah edge dalam satu transaksi.
	AddPair(ctx context.Context, productAID, productBID string) error
	// RemovePair menghapus kedua arah edge dalam satu transaksi.
	RemovePair(ctx context.Context, productAID, productBID string) error
	ArePairCompatible(ctx context.Context, productAID, productBID string) (bool, error)
	ListCompatibleIDs(ctx context.Context, productID string) ([]string, error)
	// ListPairsAmong mengambil semua edge di antara satu himpunan produk,
	// dipakai validasi rakitan supaya cukup satu query.
	ListPairsAmong(ctx context.Context, productIDs []string) ([]domain.CompatibilityPair, error)
}

type postgresCompatRepository struct {
	db *sql.DB
}

func NewPostgresCompatRepository(db *sql.DB) CompatRepository {
	return &postgresCompatRepository{db: db}
}

func (r *postgresCompatRepository) AddPair(ctx context.Context, productAID, productBID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("AddPair: begin tx failed", err, nil)
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO product_compatibilities (product_id, compatible_with_id, created_at)
              VALUES ($1, $2, $3), ($2, $1, $3)`
	_, err = tx.ExecContext(ctx, query, productAID, productBID, time.Now())
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return ErrPairAlreadyExists
		}
		logger.Error("AddPair: insert failed", err, nil)
		return err
	}
	return tx.Commit()
}

func (r *postgresCompatRepository) RemovePair(ctx context.Context, productAID, productBID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("RemovePair: begin tx failed", err, nil)
		return err
	}
	defer tx.Rollback()

	query := `DELETE FROM product_compatibilities
              WHERE (product_id = $1 AND compatible_with_id = $2)
                 OR (product_id = $2 AND compatible_with_id = $1)`
	res, err := tx.ExecContext(ctx, query, productAID, productBID)
	if err != nil {
		logger.Error("RemovePair: delete failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrPairNotFound
	}
	return tx.Commit()
}

func (r *postgresCompatRepository) ArePairCompatible(ctx context.Context, productAID, productBID string) (bool, error) {
	query := `SELECT EXISTS (
                SELECT 1 FROM product_compatibilities
                WHERE (product_id = $1 AND compatible_with_id = $2)
                   OR (product_id = $2 AND compatible_with_id = $1))`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, productAID, productBID).Scan(&exists); err != nil {
		logger.Error("ArePairCompatible: query failed", err, nil)
		return false, err
	}
	return exists, nil
}

func (r *postgresCompatRepository) ListCompatibleIDs(ctx context.Context, productID string) ([]string, error) {
	query := `SELECT compatible_with_id FROM product_compatibilities WHERE product_id = $1`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		logger.Error("ListCompatibleIDs: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			logger.Error("ListCompatibleIDs: scan failed", err, nil)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresCompatRepository) ListPairsAmong(ctx context.Context, productIDs []string) ([]domain.CompatibilityPair, error) {
	query := `SELECT product_id, compatible_with_id, created_at
              FROM product_compatibilities
              WHERE product_id = ANY($1) AND compatible_with_id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		logger.Error("ListPairsAmong: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	pairs := []domain.CompatibilityPair{}
	for rows.Next() {
		var p domain.CompatibilityPair
		if err := rows.Scan(&p.ProductID, &p.CompatibleWithID, &p.CreatedAt); err != nil {
			logger.Error("ListPairsAmong: scan failed", err, nil)
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
