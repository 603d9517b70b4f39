package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for catalog data access.
type Repository interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	ListProducts(ctx context.Context, activeOnly bool, p *pagination.Pagination) ([]*Product, int64, error)
	UpdateProduct(ctx context.Context, product *Product) error

	// Counter operations. Increments and decrements are atomic in the
	// database so concurrent webhook deliveries cannot lose updates.
	IncrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error
	DecrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error

	// SetRatingAggregate replaces the product's rating aggregate.
	SetRatingAggregate(ctx context.Context, productID uuid.UUID, avg float64, count int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateProduct(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetProducts(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	var products []*Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *repository) ListProducts(ctx context.Context, activeOnly bool, p *pagination.Pagination) ([]*Product, int64, error) {
	var products []*Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if p != nil {
		query = query.Offset(p.Offset()).Limit(p.Limit())
	}

	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *repository) UpdateProduct(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) IncrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error {
	updates := map[string]interface{}{
		"sales_count": gorm.Expr("sales_count + ?", quantity),
	}
	if includeReal {
		updates["real_sales_count"] = gorm.Expr("real_sales_count + ?", quantity)
	}
	res := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ?", productID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("increment sales: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) DecrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error {
	updates := map[string]interface{}{
		"sales_count": gorm.Expr("sales_count - ?", quantity),
	}
	if includeReal {
		updates["real_sales_count"] = gorm.Expr("real_sales_count - ?", quantity)
	}
	res := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ?", productID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("decrement sales: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) SetRatingAggregate(ctx context.Context, productID uuid.UUID, avg float64, count int64) error {
	return r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating_avg":   avg,
			"rating_count": count,
		}).Error
}
