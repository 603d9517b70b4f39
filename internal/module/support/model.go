package support

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the workflow state of a support ticket.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusAnswered TicketStatus = "answered"
	TicketStatusClosed   TicketStatus = "closed"
)

// Ticket is a customer support request, optionally tied to a purchase.
type Ticket struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNo string    `json:"ticket_no" gorm:"uniqueIndex;not null"`

	UserID *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Email  string     `json:"email" gorm:"not null"`
	Name   string     `json:"name"`

	PurchaseID string       `json:"purchase_id,omitempty"`
	Subject    string       `json:"subject" gorm:"not null"`
	Status     TicketStatus `json:"status" gorm:"not null;default:open;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []TicketMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID"`
}

// TableName returns the database table name.
func (Ticket) TableName() string {
	return "support_tickets"
}

// TicketMessage is one message in a ticket thread.
type TicketMessage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketID  uuid.UUID `json:"ticket_id" gorm:"type:uuid;not null;index"`
	FromAdmin bool      `json:"from_admin" gorm:"default:false"`
	Body      string    `json:"body" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (TicketMessage) TableName() string {
	return "support_ticket_messages"
}
