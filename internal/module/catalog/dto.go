package catalog

import (
	"time"

	"github.com/google/uuid"
)

// CreateProductRequest is the admin request to create a product.
type CreateProductRequest struct {
	Slug            string `json:"slug" binding:"required,min=3,max=100"`
	Title           string `json:"title" binding:"required,min=3,max=200"`
	Description     string `json:"description"`
	Price           int64  `json:"price" binding:"required,gt=0"`
	Currency        string `json:"currency"`
	FileKey         string `json:"file_key" binding:"required"`
	PreviewImageKey string `json:"preview_image_key"`
	SalesCount      int64  `json:"sales_count"`
	Active          *bool  `json:"active"`
}

// UpdateProductRequest is the admin request to update a product.
// Pointer fields distinguish "not provided" from zero values.
type UpdateProductRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Price           *int64  `json:"price"`
	FileKey         *string `json:"file_key"`
	PreviewImageKey *string `json:"preview_image_key"`
	SalesCount      *int64  `json:"sales_count"`
	Active          *bool   `json:"active"`
}

// ProductResponse is the public product representation.
type ProductResponse struct {
	ID              uuid.UUID `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Price           int64     `json:"price"`
	Currency        string    `json:"currency"`
	PreviewImageKey string    `json:"preview_image_key,omitempty"`
	SalesCount      int64     `json:"sales_count"`
	RatingAvg       float64   `json:"rating_avg"`
	RatingCount     int64     `json:"rating_count"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// AdminProductResponse extends the public representation with fields
// only visible to admins.
type AdminProductResponse struct {
	ProductResponse
	FileKey        string `json:"file_key"`
	RealSalesCount int64  `json:"real_sales_count"`
}

// ListProductsResponse is a paginated product listing.
type ListProductsResponse struct {
	Products   []*ProductResponse `json:"products"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

func toProductResponse(p *Product) *ProductResponse {
	return &ProductResponse{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		Currency:        p.Currency,
		PreviewImageKey: p.PreviewImageKey,
		SalesCount:      p.SalesCount,
		RatingAvg:       p.RatingAvg,
		RatingCount:     p.RatingCount,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
	}
}

func toAdminProductResponse(p *Product) *AdminProductResponse {
	return &AdminProductResponse{
		ProductResponse: *toProductResponse(p),
		FileKey:         p.FileKey,
		RealSalesCount:  p.RealSalesCount,
	}
}
