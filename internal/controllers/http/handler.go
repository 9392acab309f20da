package http

import (
	"net/http"
	"strconv"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	actorKey = "actor"
)

type Handler struct {
	carts  *services.CartService
	orders *services.OrderService
	logger *zap.Logger
}

func NewHandler(carts *services.CartService, orders *services.OrderService, logger *zap.Logger) *Handler {
	return &Handler{carts: carts, orders: orders, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", h.identify)

	cart := api.Group("/cart")
	cart.GET("", h.GetCart)
	cart.POST("/items", h.AddItem)
	cart.PUT("/items/:lineId", h.UpdateItem)
	cart.DELETE("/items/:lineId", h.RemoveItem)
	cart.DELETE("", h.ClearCart)
	cart.POST("/merge", h.MergeCart)

	orders := api.Group("/orders")
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id/cancel", h.CancelOrder)
	orders.PUT("/:id/pay", h.PayOrder)
	orders.PUT("/:id/status", h.requireAdmin, h.UpdateOrderStatus)

	api.GET("/admin/orders", h.requireAdmin, h.ListAllOrders)
}

// identify trusts the gateway-supplied identity headers.
func (h *Handler) identify(c *gin.Context) {
	userID := c.GetHeader(HeaderUserID)
	if userID == "" {
		fail(c, http.StatusUnauthorized, "missing user identity")
		return
	}
	c.Set(actorKey, services.Actor{
		UserID: userID,
		Admin:  c.GetHeader(HeaderUserRole) == "admin",
	})
	c.Next()
}

func (h *Handler) requireAdmin(c *gin.Context) {
	if !actor(c).Admin {
		fail(c, http.StatusForbidden, services.ErrNotAuthorized.Error())
		return
	}
	c.Next()
}

func actor(c *gin.Context) services.Actor {
	a, _ := c.MustGet(actorKey).(services.Actor)
	return a
}

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), actor(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.carts.AddLine(c.Request.Context(), actor(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.carts.UpdateLineQuantity(c.Request.Context(), actor(c).UserID, c.Param("lineId"), *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) RemoveItem(c *gin.Context) {
	cart, err := h.carts.RemoveLine(c.Request.Context(), actor(c).UserID, c.Param("lineId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), actor(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) MergeCart(c *gin.Context) {
	var req MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.carts.Merge(c.Request.Context(), actor(c).UserID, req.toService())
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.toCheckout(actor(c).UserID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), actor(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	orders, err := h.orders.ListAllOrders(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, valid := orderID(c)
	if !valid {
		return
	}

	order, err := h.orders.GetOrderById(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, valid := orderID(c)
	if !valid {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) PayOrder(c *gin.Context) {
	id, valid := orderID(c)
	if !valid {
		return
	}
	var req PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.MarkPaid(c.Request.Context(), actor(c), id, domain.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, valid := orderID(c)
	if !valid {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), actor(c), id, status, req.TrackingNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, toOrderResponse(order))
}

func orderID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrUnavailableProduct),
		errors.Is(err, services.ErrInvalidCheckout):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, services.ErrCartChanged),
		errors.Is(err, services.ErrConcurrentUpdate),
		errors.Is(err, repository.ErrOrderConflict):
		return http.StatusConflict
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		fail(c, status, "internal server error")
		return
	}
	fail(c, status, err.Error())
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
