package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/pc-store-commerce/internal/auth"
	"github.com/ridloal/pc-store-commerce/internal/compat/domain"
	"github.com/ridloal/pc-store-commerce/internal/compat/repository"
	"github.com/ridloal/pc-store-commerce/internal/compat/service"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	productRepo "github.com/ridloal/pc-store-commerce/internal/product/repository"
)

type CompatHandler struct {
	compatService service.CompatService
}

func NewCompatHandler(cs service.CompatService) *CompatHandler {
	return &CompatHandler{compatService: cs}
}

func (h *CompatHandler) RegisterRoutes(router *gin.RouterGroup) {
	compatRoutes := router.Group("/compatibilities")
	{
		compatRoutes.POST("", auth.Require(auth.OpCompatibilityAdd), h.AddPair)
		compatRoutes.DELETE("", auth.Require(auth.OpCompatibilityRemove), h.RemovePair)
	}
	router.GET("/products/:product_id/compatibilities", auth.Require(auth.OpCompatibilityList), h.ListCompatible)
}

func (h *CompatHandler) AddPair(c *gin.Context) {
	var req domain.PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	err := h.compatService.AddPair(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfPair), errors.Is(err, service.ErrInvalidComponentCategory):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, productRepo.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrPairAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Hdl.AddPair: service error", err, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add compatibility pair"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Compatibility pair added"})
}

func (h *CompatHandler) RemovePair(c *gin.Context) {
	var req domain.PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	err := h.compatService.RemovePair(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfPair):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrPairNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Error("Hdl.RemovePair: service error", err, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove compatibility pair"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Compatibility pair removed"})
}

func (h *CompatHandler) ListCompatible(c *gin.Context) {
	productID := c.Param("product_id")
	products, err := h.compatService.ListCompatible(c.Request.Context(), productID)
	if err != nil {
		logger.Error("Hdl.ListCompatible: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list compatible products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "data": products})
}
