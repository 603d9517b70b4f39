package catalog

import (
	"errors"
	"net/http"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/middleware"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles catalog HTTP requests.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers public catalog routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	products := r.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:slug", h.GetProduct)
	}
}

// RegisterAdminRoutes registers admin catalog routes. The group is
// expected to carry auth and admin middleware already.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	products := r.Group("/products")
	{
		products.GET("", h.AdminListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.AdminGetProduct)
		products.PATCH("/:id", h.UpdateProduct)
	}
}

// ListProducts handles GET /products
func (h *Handler) ListProducts(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}
	p.Normalize()

	products, total, err := h.service.ListProducts(c.Request.Context(), false, &p)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := &ListProductsResponse{
		Products:   make([]*ProductResponse, 0, len(products)),
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(total),
	}
	for _, product := range products {
		resp.Products = append(resp.Products, toProductResponse(product))
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct handles GET /products/:slug
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

// AdminListProducts handles GET /admin/products
func (h *Handler) AdminListProducts(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}
	p.Normalize()

	products, total, err := h.service.ListProducts(c.Request.Context(), true, &p)
	if err != nil {
		h.handleError(c, err)
		return
	}

	out := make([]*AdminProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, toAdminProductResponse(product))
	}
	c.JSON(http.StatusOK, gin.H{
		"products":    out,
		"total":       total,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total_pages": p.TotalPages(total),
	})
}

// AdminGetProduct handles GET /admin/products/:id
func (h *Handler) AdminGetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid product id",
		}})
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminProductResponse(product))
}

// CreateProduct handles POST /admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.logger.Info("admin created product",
		zap.String("admin_id", middleware.GetUserID(c).String()),
		zap.String("product_id", product.ID.String()))

	c.JSON(http.StatusCreated, toAdminProductResponse(product))
}

// UpdateProduct handles PATCH /admin/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid product id",
		}})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminProductResponse(product))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrProductInactive):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "PRODUCT_NOT_FOUND",
			"message": "product not found",
		}})
	case errors.Is(err, ErrSlugAlreadyTaken):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{
			"code":    "SLUG_TAKEN",
			"message": "a product with this slug already exists",
		}})
	default:
		h.logger.Error("catalog request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		}})
	}
}
