package delivery

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/catalog"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLookup is the slice of order persistence the download flow needs.
type OrderLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	GetByPurchaseID(ctx context.Context, purchaseID string) (*order.Order, error)
	MarkPDFDelivered(ctx context.Context, id uuid.UUID) error
}

// ProductFiles resolves the stored file keys behind purchased items.
type ProductFiles interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error)
}

// Service hands out time-boxed download links for completed orders.
type Service struct {
	orders   OrderLookup
	products ProductFiles
	storage  *Storage
	notifier *Notifier
	expiry   time.Duration
	logger   *zap.Logger
}

// NewService creates a new delivery service.
func NewService(orders OrderLookup, products ProductFiles, storage *Storage, notifier *Notifier, expiry time.Duration, logger *zap.Logger) *Service {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{
		orders:   orders,
		products: products,
		storage:  storage,
		notifier: notifier,
		expiry:   expiry,
		logger:   logger,
	}
}

// DownloadLink is one signed file URL.
type DownloadLink struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Download returns signed URLs for every file in a completed order. The
// password comparison is constant time; a wrong password and a missing
// order look identical to the caller.
func (s *Service) Download(ctx context.Context, purchaseID, password string) ([]DownloadLink, error) {
	o, err := s.orders.GetByPurchaseID(ctx, strings.ToUpper(strings.TrimSpace(purchaseID)))
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(o.DownloadPassword), []byte(strings.TrimSpace(password))) != 1 {
		return nil, ErrWrongPassword
	}
	if !o.IsCompleted() {
		return nil, ErrOrderNotCompleted
	}

	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	links := make([]DownloadLink, 0, len(products))
	for _, p := range products {
		if p.FileKey == "" {
			continue
		}
		signed, err := s.storage.PresignDownload(ctx, p.FileKey, s.expiry)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", p.Slug, err)
		}
		links = append(links, DownloadLink{
			Title:     p.Title,
			URL:       signed.URL,
			ExpiresAt: signed.ExpiresAt,
		})
	}
	if len(links) == 0 {
		return nil, ErrNothingToDeliver
	}

	if err := s.orders.MarkPDFDelivered(ctx, o.ID); err != nil {
		s.logger.Error("failed to flag pdf delivered",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("download links issued",
		zap.String("order_id", o.ID.String()),
		zap.Int("files", len(links)))
	return links, nil
}

// ResendConfirmation re-sends the confirmation email for a completed
// order. Admin recovery path for notification failures.
func (s *Service) ResendConfirmation(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.IsCompleted() {
		return ErrOrderNotCompleted
	}
	return s.notifier.SendOrderConfirmation(ctx, o)
}
