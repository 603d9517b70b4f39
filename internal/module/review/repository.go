package review

import (
	"context"
	"errors"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for review data access.
type Repository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error)
	ListApproved(ctx context.Context, productID uuid.UUID, p *pagination.Pagination) ([]*Review, int64, error)
	ListByStatus(ctx context.Context, status ReviewStatus, p *pagination.Pagination) ([]*Review, int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to ReviewStatus) (bool, error)
	ApprovedAggregate(ctx context.Context, productID uuid.UUID) (avg float64, count int64, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new review repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, review *Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	var review Review
	err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *repository) ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListApproved(ctx context.Context, productID uuid.UUID, p *pagination.Pagination) ([]*Review, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Model(&Review{}).
		Where("product_id = ? AND status = ?", productID, ReviewStatusApproved), p)
}

func (r *repository) ListByStatus(ctx context.Context, status ReviewStatus, p *pagination.Pagination) ([]*Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&Review{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.list(ctx, query, p)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, p *pagination.Pagination) ([]*Review, int64, error) {
	var reviews []*Review
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if p != nil {
		query = query.Offset(p.Offset()).Limit(p.Limit())
	}
	if err := query.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// SetStatus moves a review between moderation states, conditional on
// its current state so two moderators cannot double-apply a decision.
func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, from, to ReviewStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Review{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ApprovedAggregate(ctx context.Context, productID uuid.UUID) (float64, int64, error) {
	var out struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, ReviewStatusApproved).
		Scan(&out).Error
	return out.Avg, out.Count, err
}
