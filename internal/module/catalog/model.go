package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a downloadable prompt pack in the catalog.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	// Price in paise (smallest currency unit).
	Price    int64  `json:"price" gorm:"not null"`
	Currency string `json:"currency" gorm:"default:inr"`

	// FileKey is the object-storage key of the deliverable PDF.
	FileKey         string `json:"-" gorm:"not null"`
	PreviewImageKey string `json:"preview_image_key,omitempty"`

	// SalesCount counts all completed sales; RealSalesCount excludes
	// synthetic/admin-seeded orders. Both are mutated only by the payment
	// reconciliation side effects, never by catalog code.
	SalesCount     int64 `json:"sales_count" gorm:"default:0"`
	RealSalesCount int64 `json:"real_sales_count" gorm:"default:0"`

	RatingAvg   float64 `json:"rating_avg" gorm:"default:0"`
	RatingCount int64   `json:"rating_count" gorm:"default:0"`

	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Product) TableName() string {
	return "products"
}
