package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives gateway webhook deliveries. The raw body is
// captured before any JSON handling so signature verification always
// sees the exact wire bytes.
type WebhookHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the webhook routes. These routes must not
// sit behind auth or body-parsing middleware.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/razorpay", h.HandleRazorpayWebhook)
	r.POST("/stripe", h.HandleStripeWebhook)
}

// HandleRazorpayWebhook handles POST /webhooks/razorpay
func (h *WebhookHandler) HandleRazorpayWebhook(c *gin.Context) {
	h.handle(c, "razorpay", c.GetHeader("X-Razorpay-Signature"), c.GetHeader("X-Razorpay-Event-Id"))
}

// HandleStripeWebhook handles POST /webhooks/stripe
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	h.handle(c, "stripe", c.GetHeader("Stripe-Signature"), "")
}

func (h *WebhookHandler) handle(c *gin.Context, gatewayName, signature, eventID string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	gw, err := h.service.Gateway(gatewayName)
	if err != nil {
		h.logger.Error("webhook for unconfigured gateway", zap.String("gateway", gatewayName))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown gateway"})
		return
	}

	err = h.service.ProcessWebhook(c.Request.Context(), gw, body, signature, eventID)
	switch {
	case errors.Is(err, ErrInvalidSignature):
		h.logger.Warn("webhook signature rejected",
			zap.String("gateway", gatewayName),
			zap.String("event_id", eventID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
	case errors.Is(err, ErrMalformedPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
	case err != nil:
		// Should not happen: processing failures are recorded, not
		// returned. Acknowledge anyway so the gateway does not retry.
		h.logger.Error("unexpected webhook error", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
