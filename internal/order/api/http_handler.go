package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/pc-store-commerce/internal/auth"
	cartRepo "github.com/ridloal/pc-store-commerce/internal/cart/repository"
	compatSvc "github.com/ridloal/pc-store-commerce/internal/compat/service"
	inventorySvc "github.com/ridloal/pc-store-commerce/internal/inventory/service"
	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/order/repository"
	"github.com/ridloal/pc-store-commerce/internal/order/service"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	productRepo "github.com/ridloal/pc-store-commerce/internal/product/repository"
)

type OrderHandler struct {
	checkoutSvc service.CheckoutService
	statusSvc   service.OrderStatusService
	paymentSvc  service.PaymentService
}

func NewOrderHandler(cs service.CheckoutService, ss service.OrderStatusService, ps service.PaymentService) *OrderHandler {
	return &OrderHandler{checkoutSvc: cs, statusSvc: ss, paymentSvc: ps}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/checkout", auth.Require(auth.OpCheckoutProduct), h.CheckoutProduct)
	router.POST("/checkout/custom-pc", auth.Require(auth.OpCheckoutBuild), h.CheckoutBuild)

	orders := router.Group("/orders")
	{
		orders.GET("", auth.Require(auth.OpOrderView), h.ListMine)
		orders.GET("/:id", auth.Require(auth.OpOrderView), h.GetDetail)
		orders.POST("/:id/approve", auth.Require(auth.OpOrderApprove), h.Approve)
		orders.POST("/:id/cancel", auth.Require(auth.OpOrderCancel), h.Cancel)
		orders.POST("/:id/ship", auth.Require(auth.OpOrderShip), h.Ship)
		orders.POST("/:id/finish", auth.Require(auth.OpOrderFinish), h.Finish)
		orders.POST("/:id/receive", auth.Require(auth.OpOrderReceive), h.ConfirmReceipt)
		orders.POST("/:id/notes", auth.Require(auth.OpOrderNoteAdd), h.AddNote)

		orders.POST("/:id/payment-confirmation", auth.Require(auth.OpPaymentSubmit), h.SubmitConfirmation)
		orders.PUT("/:id/payment-confirmation", auth.Require(auth.OpPaymentUpdate), h.UpdateConfirmation)
		orders.POST("/:id/payment-confirmation/verify", auth.Require(auth.OpPaymentVerify), h.VerifyConfirmation)
	}

	admin := router.Group("/admin/orders")
	{
		admin.GET("", auth.Require(auth.OpOrderListAll), h.ListByStatus)
		admin.POST("/approve-all", auth.Require(auth.OpOrderApproveAll), h.ApproveAll)
	}
}

func (h *OrderHandler) CheckoutProduct(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req domain.CheckoutProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.checkoutSvc.CheckoutProduct(c.Request.Context(), identity.UserID, req)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Checkout berhasil", "data": order})
}

func (h *OrderHandler) CheckoutBuild(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req domain.CheckoutBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.checkoutSvc.CheckoutBuild(c.Request.Context(), identity.UserID, req)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Checkout berhasil", "data": order})
}

// respondCheckoutError memetakan error langkah checkout yang gagal ke
// status HTTP; error spesifik langkah dikembalikan apa adanya di body.
func (h *OrderHandler) respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, productRepo.ErrProductNotFound),
		errors.Is(err, service.ErrCartItemsNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrProductOutOfStock),
		errors.Is(err, service.ErrShippingAddressRequired),
		errors.Is(err, inventorySvc.ErrInsufficientStock),
		errors.Is(err, inventorySvc.ErrStockNotReady),
		errors.Is(err, compatSvc.ErrInvalidComponentCategory),
		errors.Is(err, compatSvc.ErrMissingRequiredComponent),
		errors.Is(err, compatSvc.ErrGpuRequired),
		errors.Is(err, compatSvc.ErrIncompatibleComponents):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, cartRepo.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("Hdl.Checkout: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout gagal"})
	}
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	orders, err := h.statusSvc.ListByUser(c.Request.Context(), identity.UserID)
	if err != nil {
		logger.Error("Hdl.ListMine: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "data": orders})
}

func (h *OrderHandler) ListByStatus(c *gin.Context) {
	status := domain.OrderStatus(c.Query("status"))
	if status == "" {
		status = domain.StatusMenungguVerifikasi
	}

	orders, err := h.statusSvc.ListByStatus(c.Request.Context(), status)
	if err != nil {
		logger.Error("Hdl.ListByStatus: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "data": orders})
}

func (h *OrderHandler) GetDetail(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	detail, err := h.statusSvc.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Hdl.GetDetail: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order detail"})
		return
	}
	// Pelanggan hanya boleh melihat order miliknya sendiri.
	if identity.Role == auth.RoleCustomer && detail.Order.UserID != identity.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Order does not belong to this user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "data": detail})
}

func (h *OrderHandler) Approve(c *gin.Context) {
	var req domain.ApproveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.statusSvc.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondStatusError(c, "Hdl.Approve", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order disetujui", "data": order})
}

func (h *OrderHandler) ApproveAll(c *gin.Context) {
	count, err := h.statusSvc.ApproveAll(c.Request.Context())
	if err != nil {
		logger.Error("Hdl.ApproveAll: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Semua order pending disetujui", "data": gin.H{"approved": count}})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	// Note opsional; body kosong diperbolehkan.
	var req domain.CancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.statusSvc.Cancel(c.Request.Context(), c.Param("id"), identity.UserID, req); err != nil {
		h.respondStatusError(c, "Hdl.Cancel", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order dibatalkan"})
}

func (h *OrderHandler) Ship(c *gin.Context) {
	var req domain.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.statusSvc.Ship(c.Request.Context(), c.Param("id"), req); err != nil {
		h.respondStatusError(c, "Hdl.Ship", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order dikirim"})
}

func (h *OrderHandler) Finish(c *gin.Context) {
	if err := h.statusSvc.Finish(c.Request.Context(), c.Param("id")); err != nil {
		h.respondStatusError(c, "Hdl.Finish", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order selesai"})
}

func (h *OrderHandler) ConfirmReceipt(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.statusSvc.ConfirmReceipt(c.Request.Context(), c.Param("id"), identity.UserID); err != nil {
		h.respondStatusError(c, "Hdl.ConfirmReceipt", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Penerimaan order dikonfirmasi"})
}

func (h *OrderHandler) AddNote(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req domain.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	note, err := h.statusSvc.AddNote(c.Request.Context(), c.Param("id"), identity.UserID, identity.Role, req.Note)
	if err != nil {
		h.respondStatusError(c, "Hdl.AddNote", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Catatan ditambahkan", "data": note})
}

func (h *OrderHandler) SubmitConfirmation(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req domain.SubmitConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	confirmation, err := h.paymentSvc.SubmitConfirmation(c.Request.Context(), c.Param("id"), identity.UserID, req)
	if err != nil {
		h.respondPaymentError(c, "Hdl.SubmitConfirmation", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Konfirmasi pembayaran diterima", "data": confirmation})
}

func (h *OrderHandler) UpdateConfirmation(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req domain.SubmitConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.paymentSvc.UpdateConfirmation(c.Request.Context(), c.Param("id"), identity.UserID, req); err != nil {
		h.respondPaymentError(c, "Hdl.UpdateConfirmation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Konfirmasi pembayaran diperbarui"})
}

func (h *OrderHandler) VerifyConfirmation(c *gin.Context) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req domain.VerifyConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.paymentSvc.Verify(c.Request.Context(), c.Param("id"), identity.UserID, req); err != nil {
		h.respondPaymentError(c, "Hdl.VerifyConfirmation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verifikasi pembayaran tersimpan"})
}

func (h *OrderHandler) respondStatusError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrDeliveryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotOrderOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrIncompleteDeliveryProof),
		errors.Is(err, service.ErrPickupOrderNotShippable),
		errors.Is(err, service.ErrReceiptConfirmNotAllowed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(op+": service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

func (h *OrderHandler) respondPaymentError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrConfirmationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotOrderOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateConfirmation),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrOrderNotPayable),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(op+": service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}
