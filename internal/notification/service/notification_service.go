package service

import (
	"context"

	"github.com/ridloal/pc-store-commerce/internal/notification/domain"
	"github.com/ridloal/pc-store-commerce/internal/notification/repository"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
)

// NotificationService menulis notifikasi in-app. Semua method pengiriman
// tidak mengembalikan error: kegagalan dicatat lalu ditelan, supaya
// notifikasi tidak pernah menggagalkan (apalagi me-rollback) transaksi
// bisnis yang memicunya.
type NotificationService interface {
	NotifyUser(ctx context.Context, userID, orderID, message string)
	NotifyAdmins(ctx context.Context, orderID, message string)
	ListForUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type notificationServiceImpl struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationServiceImpl{repo: repo}
}

func (s *notificationServiceImpl) NotifyUser(ctx context.Context, userID, orderID, message string) {
	n := &domain.Notification{UserID: userID, Message: message}
	if orderID != "" {
		n.OrderID = &orderID
		link := "/orders/" + orderID
		n.Link = &link
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		logger.Warn("NotifyUser: failed to persist notification, dropped", map[string]interface{}{
			"user_id": userID, "order_id": orderID,
		})
	}
}

func (s *notificationServiceImpl) NotifyAdmins(ctx context.Context, orderID, message string) {
	adminIDs, err := s.repo.ListAdminIDs(ctx)
	if err != nil {
		logger.Warn("NotifyAdmins: failed to resolve admin targets, dropped", map[string]interface{}{
			"order_id": orderID,
		})
		return
	}
	for _, adminID := range adminIDs {
		s.NotifyUser(ctx, adminID, orderID, message)
	}
}

func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}
