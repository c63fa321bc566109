package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/pc-store-commerce/internal/auth"
	"github.com/ridloal/pc-store-commerce/internal/cart/domain"
	"github.com/ridloal/pc-store-commerce/internal/cart/repository"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
)

type CartHandler struct {
	cartRepo repository.CartRepository
}

func NewCartHandler(cr repository.CartRepository) *CartHandler {
	return &CartHandler{cartRepo: cr}
}

func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cartRoutes := router.Group("/cart", auth.Require(auth.OpCartManage))
	{
		cartRoutes.POST("/items", h.AddItem)
		cartRoutes.GET("/items", h.ListItems)
		cartRoutes.DELETE("/items/:id", h.RemoveItem)
	}
}

func (h *CartHandler) AddItem(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req domain.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	item := &domain.CartItem{
		UserID:    identity.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := h.cartRepo.AddItem(c.Request.Context(), item); err != nil {
		logger.Error("Hdl.AddItem: repo error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add cart item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Cart item added", "data": item})
}

func (h *CartHandler) ListItems(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	items, err := h.cartRepo.ListByUser(c.Request.Context(), identity.UserID)
	if err != nil {
		logger.Error("Hdl.ListItems: repo error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cart items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "data": items})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.cartRepo.RemoveItem(c.Request.Context(), identity.UserID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Hdl.RemoveItem: repo error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}
