package payment

import (
	"time"

	"github.com/google/uuid"
)

// VerifyPaymentRequest is the client-reported checkout result. Field
// names follow the gateway's checkout callback payload.
type VerifyPaymentRequest struct {
	GatewayOrderID string `json:"razorpay_order_id" binding:"required"`
	PaymentID      string `json:"razorpay_payment_id" binding:"required"`
	Signature      string `json:"razorpay_signature" binding:"required"`
}

// VerifyPaymentResponse reports the settled order status.
type VerifyPaymentResponse struct {
	OrderID    uuid.UUID `json:"order_id"`
	PurchaseID string    `json:"purchase_id"`
	Status     string    `json:"status"`
}

// RefundRequest initiates an admin refund.
type RefundRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// WebhookEventResponse is the admin view of an event row.
type WebhookEventResponse struct {
	ID             uuid.UUID   `json:"id"`
	Gateway        string      `json:"gateway"`
	EventID        string      `json:"event_id"`
	EventType      string      `json:"event_type"`
	Status         EventStatus `json:"status"`
	ErrorMessage   string      `json:"error_message,omitempty"`
	OrderID        *uuid.UUID  `json:"order_id,omitempty"`
	GatewayOrderID string      `json:"gateway_order_id,omitempty"`
	PaymentID      string      `json:"payment_id,omitempty"`
	RefundID       string      `json:"refund_id,omitempty"`
	Amount         int64       `json:"amount,omitempty"`
	Currency       string      `json:"currency,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

func toEventResponse(e *WebhookEvent) *WebhookEventResponse {
	return &WebhookEventResponse{
		ID:             e.ID,
		Gateway:        e.Gateway,
		EventID:        e.EventID,
		EventType:      e.EventType,
		Status:         e.Status,
		ErrorMessage:   e.ErrorMessage,
		OrderID:        e.OrderID,
		GatewayOrderID: e.GatewayOrderID,
		PaymentID:      e.PaymentID,
		RefundID:       e.RefundID,
		Amount:         e.Amount,
		Currency:       e.Currency,
		CreatedAt:      e.CreatedAt,
	}
}
