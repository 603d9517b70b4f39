package order

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the payment status of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// Order represents a purchase attempt.
type Order struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo    string    `json:"order_no" gorm:"uniqueIndex;not null"`
	PurchaseID string    `json:"purchase_id" gorm:"uniqueIndex;not null"`

	// Buyer reference. UserID is set for registered customers, guest
	// fields for everyone else. One of the two must be present.
	UserID     *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	GuestEmail string     `json:"guest_email,omitempty"`
	GuestName  string     `json:"guest_name,omitempty"`

	TotalAmount int64  `json:"total_amount"` // In paise
	Currency    string `json:"currency" gorm:"default:inr"`
	Status      Status `json:"status" gorm:"not null;default:pending;index"`

	// Gateway names the provider that took (or will take) the payment.
	// Refunds route back through it.
	Gateway        string `json:"gateway" gorm:"default:razorpay"`
	GatewayOrderID string `json:"-" gorm:"index"`
	PaymentID      string `json:"-" gorm:"index"`
	Signature      string `json:"-"`
	RefundID       string `json:"-"`

	// Synthetic orders are admin-seeded and excluded from real sales
	// counters.
	IsSynthetic bool `json:"is_synthetic" gorm:"default:false"`

	PDFDelivered     bool       `json:"pdf_delivered" gorm:"default:false"`
	PDFDeliveredAt   *time.Time `json:"pdf_delivered_at,omitempty"`
	EmailSent        bool       `json:"email_sent" gorm:"default:false"`
	EmailSentAt      *time.Time `json:"email_sent_at,omitempty"`
	DownloadPassword string     `json:"-"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsTerminal returns true once no gateway event may move the order to a
// new state other than an explicit refund of a completed order.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusFailed || o.Status == StatusRefunded
}

// IsCompleted returns true if the order has been paid.
func (o *Order) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// BuyerEmail returns the address notifications should go to.
func (o *Order) BuyerEmail(registeredEmail string) string {
	if o.UserID != nil && registeredEmail != "" {
		return registeredEmail
	}
	return o.GuestEmail
}

// OrderItem is a line item with price and title snapshotted at checkout
// time so later catalog edits do not rewrite history.
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Title     string    `json:"title" gorm:"not null"`
	UnitPrice int64     `json:"unit_price"` // In paise
	Quantity  int64     `json:"quantity" gorm:"default:1"`
	Amount    int64     `json:"amount"` // quantity * unit_price
}

// TableName returns the database table name.
func (OrderItem) TableName() string {
	return "order_items"
}
