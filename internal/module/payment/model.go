package payment

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the processing outcome recorded for a webhook delivery.
type EventStatus string

const (
	EventStatusProcessed EventStatus = "processed"
	EventStatusFailed    EventStatus = "failed"
	EventStatusDuplicate EventStatus = "duplicate"
)

// WebhookEvent is the durable audit record of one inbound gateway
// delivery. Every request that reaches the webhook route produces
// exactly one row, including signature failures and duplicates. Rows
// are updated in place when later processing changes the outcome, and
// never deleted.
type WebhookEvent struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Gateway string    `json:"gateway" gorm:"not null;default:razorpay"`

	// EventID is the gateway's delivery identifier, a derived composite,
	// or "unknown" when neither is available.
	EventID   string `json:"event_id" gorm:"index;not null"`
	EventType string `json:"event_type" gorm:"index;not null"`

	Payload   string `json:"payload" gorm:"type:jsonb"`
	Signature string `json:"-"`

	Status       EventStatus `json:"status" gorm:"not null;index"`
	ErrorMessage string      `json:"error_message,omitempty"`

	// Extracted convenience fields, absent when the payload lacks them.
	OrderID        *uuid.UUID `json:"order_id,omitempty" gorm:"type:uuid;index"`
	GatewayOrderID string     `json:"gateway_order_id,omitempty" gorm:"index"`
	PaymentID      string     `json:"payment_id,omitempty" gorm:"index"`
	RefundID       string     `json:"refund_id,omitempty"`
	Amount         int64      `json:"amount,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	Email          string     `json:"email,omitempty"`
	Contact        string     `json:"contact,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
