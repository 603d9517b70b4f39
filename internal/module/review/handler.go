package review

import (
	"context"
	"errors"
	"net/http"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/catalog"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/middleware"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductResolver maps a public product slug to its record.
type ProductResolver interface {
	GetProductBySlug(ctx context.Context, slug string) (*catalog.Product, error)
}

// Handler handles review HTTP requests.
type Handler struct {
	service  *Service
	products ProductResolver
	logger   *zap.Logger
}

// NewHandler creates a new review handler.
func NewHandler(service *Service, products ProductResolver, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers public review routes. Submission accepts
// guests, so the group should carry optional auth.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	products := r.Group("/products/:slug/reviews")
	{
		products.GET("", h.ListReviews)
		products.POST("", h.SubmitReview)
	}
}

// RegisterAdminRoutes registers moderation routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	reviews := r.Group("/reviews")
	{
		reviews.GET("", h.ListForModeration)
		reviews.POST("/:id/approve", h.Approve)
		reviews.POST("/:id/reject", h.Reject)
	}
}

// SubmitReviewRequest is the review submission payload.
type SubmitReviewRequest struct {
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Body       string `json:"body" binding:"omitempty,max=4000"`
	AuthorName string `json:"author_name" binding:"omitempty,max=100"`
	PurchaseID string `json:"purchase_id" binding:"omitempty,max=16"`
}

// ListReviews handles GET /products/:slug/reviews
func (h *Handler) ListReviews(c *gin.Context) {
	product, err := h.products.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}
	p.Normalize()

	reviews, total, err := h.service.ListApproved(c.Request.Context(), product.ID, &p)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":     reviews,
		"total":       total,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total_pages": p.TotalPages(total),
	})
}

// SubmitReview handles POST /products/:slug/reviews
func (h *Handler) SubmitReview(c *gin.Context) {
	product, err := h.products.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	in := &SubmitReviewInput{
		ProductID:  product.ID,
		PurchaseID: req.PurchaseID,
		AuthorName: req.AuthorName,
		Rating:     req.Rating,
		Body:       req.Body,
	}
	if middleware.IsAuthenticated(c) {
		id := middleware.GetUserID(c)
		in.UserID = &id
		if in.AuthorName == "" {
			in.AuthorName = middleware.GetEmail(c)
		}
	}

	review, err := h.service.Submit(c.Request.Context(), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// ListForModeration handles GET /admin/reviews
func (h *Handler) ListForModeration(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}
	p.Normalize()

	status := ReviewStatus(c.DefaultQuery("status", string(ReviewStatusPending)))
	reviews, total, err := h.service.ListForModeration(c.Request.Context(), status, &p)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":     reviews,
		"total":       total,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total_pages": p.TotalPages(total),
	})
}

// Approve handles POST /admin/reviews/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	h.moderate(c, true)
}

// Reject handles POST /admin/reviews/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	h.moderate(c, false)
}

func (h *Handler) moderate(c *gin.Context, approve bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid review id",
		}})
		return
	}

	review, err := h.service.Moderate(c.Request.Context(), id, approve)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "REVIEW_NOT_FOUND",
			"message": "review not found",
		}})
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrProductInactive):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "PRODUCT_NOT_FOUND",
			"message": "product not found",
		}})
	case errors.Is(err, ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
	case errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{
			"code":    "CONFLICT",
			"message": err.Error(),
		}})
	default:
		h.logger.Error("review request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		}})
	}
}
