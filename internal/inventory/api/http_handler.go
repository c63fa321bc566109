package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/pc-store-commerce/internal/auth"
	"github.com/ridloal/pc-store-commerce/internal/inventory/domain"
	"github.com/ridloal/pc-store-commerce/internal/inventory/repository"
	"github.com/ridloal/pc-store-commerce/internal/inventory/service"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	productRepo "github.com/ridloal/pc-store-commerce/internal/product/repository"
)

type StockHandler struct {
	inventoryService service.InventoryService
}

func NewStockHandler(is service.InventoryService) *StockHandler {
	return &StockHandler{inventoryService: is}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	stockRoutes := router.Group("/stock-entries")
	{
		stockRoutes.POST("", auth.Require(auth.OpStockEntryCreate), h.CreateEntry)
		stockRoutes.DELETE("/:id", auth.Require(auth.OpStockEntryDelete), h.DeleteEntry)
	}
	router.GET("/products/:product_id/stock-entries", auth.Require(auth.OpStockEntryList), h.ListEntries)
}

func (h *StockHandler) CreateEntry(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req domain.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	entry, err := h.inventoryService.CreateEntry(c.Request.Context(), identity.UserID, req)
	if err != nil {
		if errors.Is(err, productRepo.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Hdl.CreateEntry: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stock entry"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Stock entry created", "data": entry})
}

func (h *StockHandler) DeleteEntry(c *gin.Context) {
	id := c.Param("id")
	err := h.inventoryService.DeleteEntry(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStockEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Hdl.DeleteEntry: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete stock entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock entry deleted and product stock rederived"})
}

func (h *StockHandler) ListEntries(c *gin.Context) {
	productID := c.Param("product_id")
	entries, err := h.inventoryService.ListEntries(c.Request.Context(), productID)
	if err != nil {
		logger.Error("Hdl.ListEntries: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stock entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "data": entries})
}
