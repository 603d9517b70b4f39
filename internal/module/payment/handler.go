package payment

import (
	"errors"
	"net/http"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/middleware"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles the synchronous payment routes and the admin event
// console.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers public payment routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/payments/verify", h.VerifyPayment)
}

// RegisterAdminRoutes registers admin payment routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/webhook-events", h.ListEvents)
	r.GET("/webhook-events/:id", h.GetEvent)
	r.POST("/refunds", h.Refund)
}

// VerifyPayment handles POST /payments/verify
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	o, err := h.service.VerifyPayment(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, &VerifyPaymentResponse{
		OrderID:    o.ID,
		PurchaseID: o.PurchaseID,
		Status:     string(o.Status),
	})
}

// ListEvents handles GET /admin/webhook-events
func (h *Handler) ListEvents(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}
	p.Normalize()

	events, total, err := h.service.ListEvents(c.Request.Context(), EventStatus(c.Query("status")), &p)
	if err != nil {
		h.handleError(c, err)
		return
	}

	out := make([]*WebhookEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{
		"events":      out,
		"total":       total,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total_pages": p.TotalPages(total),
	})
}

// GetEvent handles GET /admin/webhook-events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid event id",
		}})
		return
	}

	event, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Refund handles POST /admin/refunds
func (h *Handler) Refund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	refundID, err := h.service.Refund(c.Request.Context(), req.OrderID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.logger.Info("admin initiated refund",
		zap.String("admin_id", middleware.GetUserID(c).String()),
		zap.String("order_id", req.OrderID.String()),
		zap.String("refund_id", refundID))

	c.JSON(http.StatusAccepted, gin.H{"refund_id": refundID})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_SIGNATURE",
			"message": "payment verification failed",
		}})
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "NOT_FOUND",
			"message": err.Error(),
		}})
	case errors.Is(err, ErrNotRefundable):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{
			"code":    "NOT_REFUNDABLE",
			"message": err.Error(),
		}})
	default:
		h.logger.Error("payment request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		}})
	}
}
