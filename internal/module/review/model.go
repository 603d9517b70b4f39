package review

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Review is a customer product review. Reviews start pending and only
// count toward the product's rating aggregate once approved.
type Review struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`

	// PurchaseID ties a guest review to an order for the verified badge.
	PurchaseID string `json:"purchase_id,omitempty"`
	Verified   bool   `json:"verified" gorm:"default:false"`

	AuthorName string       `json:"author_name"`
	Rating     int          `json:"rating" gorm:"not null"`
	Body       string       `json:"body"`
	Status     ReviewStatus `json:"status" gorm:"not null;default:pending;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Review) TableName() string {
	return "reviews"
}
