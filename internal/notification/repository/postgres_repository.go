package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ridloal/pc-store-commerce/internal/notification/domain"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Insert(ctx context.Context, notification *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	// ListAdminIDs mengembalikan semua user ber-role admin/superadmin
	// sebagai target notifikasi broadcast.
	ListAdminIDs(ctx context.Context) ([]string, error)
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Insert(ctx context.Context, notification *domain.Notification) error {
	query := `INSERT INTO notifications (id, user_id, order_id, message, link, is_read, created_at)
              VALUES ($1, $2, $3, $4, $5, false, $6)`
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		notification.ID, notification.UserID, notification.OrderID,
		notification.Message, notification.Link, notification.CreatedAt)
	if err != nil {
		logger.Error("Insert: failed to insert notification", err, nil)
		return err
	}
	return nil
}

func (r *postgresNotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	query := `SELECT id, user_id, order_id, message, link, is_read, created_at
              FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Error("ListByUser: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			logger.Error("ListByUser: scan failed", err, nil)
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		logger.Error("MarkRead: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) ListAdminIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM users WHERE role IN ('admin', 'superadmin') AND is_active = true`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("ListAdminIDs: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			logger.Error("ListAdminIDs: scan failed", err, nil)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
