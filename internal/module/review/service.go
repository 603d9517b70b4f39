package review

import (
	"context"
	"strings"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RatingSink receives the recomputed rating aggregate after moderation.
type RatingSink interface {
	SetRatingAggregate(ctx context.Context, productID uuid.UUID, avg float64, count int64) error
}

// PurchaseLookup resolves a customer-facing purchase reference.
type PurchaseLookup interface {
	GetOrderByPurchaseID(ctx context.Context, purchaseID string) (*order.Order, error)
}

// Service handles review submission and moderation.
type Service struct {
	repo      Repository
	ratings   RatingSink
	purchases PurchaseLookup
	logger    *zap.Logger
}

// NewService creates a new review service.
func NewService(repo Repository, ratings RatingSink, purchases PurchaseLookup, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		ratings:   ratings,
		purchases: purchases,
		logger:    logger,
	}
}

// SubmitReviewInput is the service-level submission payload.
type SubmitReviewInput struct {
	ProductID  uuid.UUID
	UserID     *uuid.UUID
	PurchaseID string
	AuthorName string
	Rating     int
	Body       string
}

// Submit stores a new review in the pending state. A purchase reference
// containing the product marks it verified.
func (s *Service) Submit(ctx context.Context, in *SubmitReviewInput) (*Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if in.UserID != nil {
		exists, err := s.repo.ExistsForUser(ctx, in.ProductID, *in.UserID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrAlreadyReviewed
		}
	}

	review := &Review{
		ProductID:  in.ProductID,
		UserID:     in.UserID,
		PurchaseID: strings.ToUpper(strings.TrimSpace(in.PurchaseID)),
		AuthorName: strings.TrimSpace(in.AuthorName),
		Rating:     in.Rating,
		Body:       strings.TrimSpace(in.Body),
		Status:     ReviewStatusPending,
	}

	if review.PurchaseID != "" {
		if o, err := s.purchases.GetOrderByPurchaseID(ctx, review.PurchaseID); err == nil && o.IsCompleted() {
			for _, item := range o.Items {
				if item.ProductID == in.ProductID {
					review.Verified = true
					break
				}
			}
		}
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("review submitted",
		zap.String("review_id", review.ID.String()),
		zap.String("product_id", review.ProductID.String()),
		zap.Bool("verified", review.Verified))
	return review, nil
}

// ListApproved returns approved reviews for a product.
func (s *Service) ListApproved(ctx context.Context, productID uuid.UUID, p *pagination.Pagination) ([]*Review, int64, error) {
	return s.repo.ListApproved(ctx, productID, p)
}

// ListForModeration returns reviews by moderation state. Admin only.
func (s *Service) ListForModeration(ctx context.Context, status ReviewStatus, p *pagination.Pagination) ([]*Review, int64, error) {
	return s.repo.ListByStatus(ctx, status, p)
}

// Moderate approves or rejects a pending review and, on approval,
// refreshes the product's rating aggregate.
func (s *Service) Moderate(ctx context.Context, id uuid.UUID, approve bool) (*Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	to := ReviewStatusRejected
	if approve {
		to = ReviewStatusApproved
	}

	changed, err := s.repo.SetStatus(ctx, id, ReviewStatusPending, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrAlreadyDecided
	}
	review.Status = to

	if approve {
		if err := s.refreshAggregate(ctx, review.ProductID); err != nil {
			s.logger.Error("failed to refresh rating aggregate",
				zap.String("product_id", review.ProductID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("review moderated",
		zap.String("review_id", id.String()),
		zap.String("status", string(to)))
	return review, nil
}

func (s *Service) refreshAggregate(ctx context.Context, productID uuid.UUID) error {
	avg, count, err := s.repo.ApprovedAggregate(ctx, productID)
	if err != nil {
		return err
	}
	return s.ratings.SetRatingAggregate(ctx, productID, avg, count)
}
