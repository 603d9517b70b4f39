package review

import (
	"context"
	"testing"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReviewRepo struct {
	reviews map[uuid.UUID]*Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*Review)}
}

func (r *fakeReviewRepo) Create(_ context.Context, review *Review) error {
	review.ID = uuid.New()
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) GetByID(_ context.Context, id uuid.UUID) (*Review, error) {
	review, ok := r.reviews[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (r *fakeReviewRepo) ExistsForUser(_ context.Context, productID, userID uuid.UUID) (bool, error) {
	for _, review := range r.reviews {
		if review.ProductID == productID && review.UserID != nil && *review.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReviewRepo) ListApproved(_ context.Context, productID uuid.UUID, _ *pagination.Pagination) ([]*Review, int64, error) {
	var out []*Review
	for _, review := range r.reviews {
		if review.ProductID == productID && review.Status == ReviewStatusApproved {
			out = append(out, review)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeReviewRepo) ListByStatus(_ context.Context, status ReviewStatus, _ *pagination.Pagination) ([]*Review, int64, error) {
	var out []*Review
	for _, review := range r.reviews {
		if status == "" || review.Status == status {
			out = append(out, review)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeReviewRepo) SetStatus(_ context.Context, id uuid.UUID, from, to ReviewStatus) (bool, error) {
	review, ok := r.reviews[id]
	if !ok || review.Status != from {
		return false, nil
	}
	review.Status = to
	return true, nil
}

func (r *fakeReviewRepo) ApprovedAggregate(_ context.Context, productID uuid.UUID) (float64, int64, error) {
	var sum, count int64
	for _, review := range r.reviews {
		if review.ProductID == productID && review.Status == ReviewStatusApproved {
			sum += int64(review.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type fakeRatings struct {
	avg   map[uuid.UUID]float64
	count map[uuid.UUID]int64
}

func newFakeRatings() *fakeRatings {
	return &fakeRatings{avg: make(map[uuid.UUID]float64), count: make(map[uuid.UUID]int64)}
}

func (f *fakeRatings) SetRatingAggregate(_ context.Context, productID uuid.UUID, avg float64, count int64) error {
	f.avg[productID] = avg
	f.count[productID] = count
	return nil
}

type fakePurchases map[string]*order.Order

func (f fakePurchases) GetOrderByPurchaseID(_ context.Context, purchaseID string) (*order.Order, error) {
	o, ok := f[purchaseID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("valid submission lands pending and unverified", func(t *testing.T) {
		svc := NewService(newFakeReviewRepo(), newFakeRatings(), fakePurchases{}, zap.NewNop())

		r, err := svc.Submit(ctx, &SubmitReviewInput{
			ProductID:  productID,
			AuthorName: "  Priya ",
			Rating:     4,
			Body:       "Great pack",
		})
		require.NoError(t, err)
		assert.Equal(t, ReviewStatusPending, r.Status)
		assert.False(t, r.Verified)
		assert.Equal(t, "Priya", r.AuthorName)
	})

	t.Run("rating bounds", func(t *testing.T) {
		svc := NewService(newFakeReviewRepo(), newFakeRatings(), fakePurchases{}, zap.NewNop())
		for _, rating := range []int{0, 6, -1} {
			_, err := svc.Submit(ctx, &SubmitReviewInput{ProductID: productID, Rating: rating})
			assert.ErrorIs(t, err, ErrInvalidRating)
		}
	})

	t.Run("a completed purchase containing the product earns the verified badge", func(t *testing.T) {
		purchases := fakePurchases{
			"XK4P9Q2M": {
				Status: order.StatusCompleted,
				Items:  []order.OrderItem{{ProductID: productID}},
			},
		}
		svc := NewService(newFakeReviewRepo(), newFakeRatings(), purchases, zap.NewNop())

		r, err := svc.Submit(ctx, &SubmitReviewInput{
			ProductID:  productID,
			PurchaseID: " xk4p9q2m ",
			Rating:     5,
		})
		require.NoError(t, err)
		assert.True(t, r.Verified)
	})

	t.Run("a purchase of a different product does not verify", func(t *testing.T) {
		purchases := fakePurchases{
			"XK4P9Q2M": {
				Status: order.StatusCompleted,
				Items:  []order.OrderItem{{ProductID: uuid.New()}},
			},
		}
		svc := NewService(newFakeReviewRepo(), newFakeRatings(), purchases, zap.NewNop())

		r, err := svc.Submit(ctx, &SubmitReviewInput{ProductID: productID, PurchaseID: "XK4P9Q2M", Rating: 5})
		require.NoError(t, err)
		assert.False(t, r.Verified)
	})

	t.Run("an unpaid purchase does not verify", func(t *testing.T) {
		purchases := fakePurchases{
			"XK4P9Q2M": {
				Status: order.StatusPending,
				Items:  []order.OrderItem{{ProductID: productID}},
			},
		}
		svc := NewService(newFakeReviewRepo(), newFakeRatings(), purchases, zap.NewNop())

		r, err := svc.Submit(ctx, &SubmitReviewInput{ProductID: productID, PurchaseID: "XK4P9Q2M", Rating: 5})
		require.NoError(t, err)
		assert.False(t, r.Verified)
	})

	t.Run("one review per user per product", func(t *testing.T) {
		userID := uuid.New()
		svc := NewService(newFakeReviewRepo(), newFakeRatings(), fakePurchases{}, zap.NewNop())

		_, err := svc.Submit(ctx, &SubmitReviewInput{ProductID: productID, UserID: &userID, Rating: 4})
		require.NoError(t, err)
		_, err = svc.Submit(ctx, &SubmitReviewInput{ProductID: productID, UserID: &userID, Rating: 5})
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})
}

func TestModerate(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	submit := func(t *testing.T, svc *Service, rating int) *Review {
		t.Helper()
		r, err := svc.Submit(ctx, &SubmitReviewInput{ProductID: productID, Rating: rating})
		require.NoError(t, err)
		return r
	}

	t.Run("approval refreshes the rating aggregate", func(t *testing.T) {
		repo := newFakeReviewRepo()
		ratings := newFakeRatings()
		svc := NewService(repo, ratings, fakePurchases{}, zap.NewNop())

		first := submit(t, svc, 4)
		second := submit(t, svc, 5)

		_, err := svc.Moderate(ctx, first.ID, true)
		require.NoError(t, err)
		assert.Equal(t, 4.0, ratings.avg[productID])
		assert.Equal(t, int64(1), ratings.count[productID])

		_, err = svc.Moderate(ctx, second.ID, true)
		require.NoError(t, err)
		assert.Equal(t, 4.5, ratings.avg[productID])
		assert.Equal(t, int64(2), ratings.count[productID])
	})

	t.Run("rejection does not touch the aggregate", func(t *testing.T) {
		repo := newFakeReviewRepo()
		ratings := newFakeRatings()
		svc := NewService(repo, ratings, fakePurchases{}, zap.NewNop())

		r := submit(t, svc, 1)
		moderated, err := svc.Moderate(ctx, r.ID, false)
		require.NoError(t, err)
		assert.Equal(t, ReviewStatusRejected, moderated.Status)
		assert.Empty(t, ratings.avg)
	})

	t.Run("a decision cannot be applied twice", func(t *testing.T) {
		repo := newFakeReviewRepo()
		svc := NewService(repo, newFakeRatings(), fakePurchases{}, zap.NewNop())

		r := submit(t, svc, 5)
		_, err := svc.Moderate(ctx, r.ID, true)
		require.NoError(t, err)

		_, err = svc.Moderate(ctx, r.ID, false)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
	})

	t.Run("unknown review", func(t *testing.T) {
		svc := NewService(newFakeReviewRepo(), newFakeRatings(), fakePurchases{}, zap.NewNop())
		_, err := svc.Moderate(ctx, uuid.New(), true)
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
}
