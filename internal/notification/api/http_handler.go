package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/pc-store-commerce/internal/auth"
	"github.com/ridloal/pc-store-commerce/internal/notification/repository"
	"github.com/ridloal/pc-store-commerce/internal/notification/service"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
)

type NotificationHandler struct {
	notifSvc service.NotificationService
}

func NewNotificationHandler(ns service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: ns}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/notifications", auth.Require(auth.OpNotificationRead))
	{
		routes.GET("", h.List)
		routes.PATCH("/:id/read", h.MarkRead)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	notifications, err := h.notifSvc.ListForUser(c.Request.Context(), identity.UserID)
	if err != nil {
		logger.Error("Hdl.ListNotifications: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "data": notifications})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), identity.UserID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Hdl.MarkRead: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
