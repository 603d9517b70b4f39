package order

import (
	"errors"
	"net/http"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/catalog"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/middleware"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles order HTTP requests.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new order handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers customer order routes. The checkout route
// accepts both guests and authenticated users, so the group is expected
// to carry optional auth middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.POST("/checkout", h.Checkout)

	orders := r.Group("/orders", requireAuth)
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
	}
}

// RegisterAdminRoutes registers admin order routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.AdminListOrders)
		orders.GET("/:id", h.AdminGetOrder)
		orders.POST("/seed", h.SeedOrder)
	}
}

// Checkout handles POST /checkout
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	var userID *uuid.UUID
	if middleware.IsAuthenticated(c) {
		id := middleware.GetUserID(c)
		userID = &id
	}

	_, resp, err := h.service.Checkout(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}
	p.Normalize()

	orders, total, err := h.service.ListUserOrders(c.Request.Context(), middleware.GetUserID(c), &p)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listResponse(orders, total, &p))
}

// GetOrder handles GET /orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid order id",
		}})
		return
	}

	userID := middleware.GetUserID(c)
	order, err := h.service.GetOrder(c.Request.Context(), id, &userID, middleware.IsAdmin(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// AdminListOrders handles GET /admin/orders
func (h *Handler) AdminListOrders(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}
	p.Normalize()

	orders, total, err := h.service.ListAllOrders(c.Request.Context(), Status(c.Query("status")), &p)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listResponse(orders, total, &p))
}

// AdminGetOrder handles GET /admin/orders/:id
func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid order id",
		}})
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id, nil, true)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// SeedOrder handles POST /admin/orders/seed
func (h *Handler) SeedOrder(c *gin.Context) {
	var req SeedOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	order, err := h.service.SeedSyntheticOrder(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.logger.Info("admin seeded order",
		zap.String("admin_id", middleware.GetUserID(c).String()),
		zap.String("order_id", order.ID.String()))

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) listResponse(orders []*Order, total int64, p *pagination.Pagination) *ListOrdersResponse {
	resp := &ListOrdersResponse{
		Orders:     make([]*OrderResponse, 0, len(orders)),
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(total),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	return resp
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "ORDER_NOT_FOUND",
			"message": "order not found",
		}})
	case errors.Is(err, ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{
			"code":    "FORBIDDEN",
			"message": "access denied",
		}})
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrMissingBuyer),
		errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrProductInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
	case errors.Is(err, ErrGatewayCreate):
		h.logger.Error("checkout gateway failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{
			"code":    "GATEWAY_ERROR",
			"message": "payment gateway unavailable",
		}})
	default:
		h.logger.Error("order request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		}})
	}
}
