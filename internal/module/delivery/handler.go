package delivery

import (
	"errors"
	"net/http"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles download and resend HTTP requests.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new delivery handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the public download route.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/download", h.Download)
}

// RegisterAdminRoutes registers admin delivery routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/orders/:id/resend", h.ResendConfirmation)
}

// DownloadRequest unlocks the files of a completed order.
type DownloadRequest struct {
	PurchaseID string `json:"purchase_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Download handles POST /download
func (h *Handler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	links, err := h.service.Download(c.Request.Context(), req.PurchaseID, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": links})
}

// ResendConfirmation handles POST /admin/orders/:id/resend
func (h *Handler) ResendConfirmation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid order id",
		}})
		return
	}

	if err := h.service.ResendConfirmation(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	h.logger.Info("admin resent confirmation",
		zap.String("admin_id", middleware.GetUserID(c).String()),
		zap.String("order_id", id.String()))

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, ErrWrongPassword):
		// Same response for both, so the endpoint cannot be used to
		// probe which purchase ids exist.
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "NOT_FOUND",
			"message": "purchase not found or wrong password",
		}})
	case errors.Is(err, ErrOrderNotCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{
			"code":    "ORDER_NOT_COMPLETED",
			"message": "order is not completed",
		}})
	case errors.Is(err, ErrNothingToDeliver):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{
			"code":    "NOTHING_TO_DELIVER",
			"message": "order has no deliverable files",
		}})
	default:
		h.logger.Error("delivery request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		}})
	}
}
