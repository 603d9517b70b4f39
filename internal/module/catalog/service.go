package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles catalog business logic.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateProduct creates a new product. Admin only.
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	if _, err := s.repo.GetProductBySlug(ctx, slug); err == nil {
		return nil, ErrSlugAlreadyTaken
	} else if !errors.Is(err, ErrProductNotFound) {
		return nil, err
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "inr"
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product := &Product{
		Slug:            slug,
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Currency:        currency,
		FileKey:         req.FileKey,
		PreviewImageKey: req.PreviewImageKey,
		SalesCount:      req.SalesCount,
		Active:          active,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugAlreadyTaken
		}
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug))

	return product, nil
}

// GetProduct returns a product by id.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// GetProducts returns products for the given ids.
func (s *Service) GetProducts(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	return s.repo.GetProducts(ctx, ids)
}

// GetProductBySlug returns an active product by slug.
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	product, err := s.repo.GetProductBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, ErrProductInactive
	}
	return product, nil
}

// ListProducts returns products with pagination. When admin is false only
// active products are listed.
func (s *Service) ListProducts(ctx context.Context, admin bool, p *pagination.Pagination) ([]*Product, int64, error) {
	return s.repo.ListProducts(ctx, !admin, p)
}

// UpdateProduct applies a partial update. Admin only.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.FileKey != nil {
		product.FileKey = *req.FileKey
	}
	if req.PreviewImageKey != nil {
		product.PreviewImageKey = *req.PreviewImageKey
	}
	if req.SalesCount != nil {
		product.SalesCount = *req.SalesCount
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.String("product_id", product.ID.String()))
	return product, nil
}

// IncrementSales atomically bumps the displayed sales counter and, when
// includeReal is set, the real counter tracking paid orders.
func (s *Service) IncrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error {
	return s.repo.IncrementSales(ctx, productID, quantity, includeReal)
}

// DecrementSales mirrors IncrementSales for refunds.
func (s *Service) DecrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error {
	return s.repo.DecrementSales(ctx, productID, quantity, includeReal)
}

// SetRatingAggregate replaces the rating aggregate after a review change.
func (s *Service) SetRatingAggregate(ctx context.Context, productID uuid.UUID, avg float64, count int64) error {
	return s.repo.SetRatingAggregate(ctx, productID, avg, count)
}
