package order

import (
	"context"
	"errors"
	"time"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for order data access.
//
// The state-changing methods (CompletePayment, FailPayment, MarkRefunded)
// are conditional updates scoped by the order's current status. They
// report whether a row actually changed so callers can distinguish a
// genuine transition from a replay absorbed by a terminal state. The
// mutation never happens as read-modify-write in application memory.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByPurchaseID(ctx context.Context, purchaseID string) (*Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, p *pagination.Pagination) ([]*Order, int64, error)
	ListAll(ctx context.Context, status Status, p *pagination.Pagination) ([]*Order, int64, error)

	SetGatewayOrderID(ctx context.Context, id uuid.UUID, gatewayOrderID string) error

	MarkProcessing(ctx context.Context, id uuid.UUID, paymentID string) (bool, error)
	CompletePayment(ctx context.Context, id uuid.UUID, paymentID, signature string) (bool, error)
	FailPayment(ctx context.Context, id uuid.UUID, paymentID string) (bool, error)
	MarkRefunded(ctx context.Context, id uuid.UUID, refundID string) (bool, error)

	MarkEmailSent(ctx context.Context, id uuid.UUID) error
	MarkPDFDelivered(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *repository) GetByPurchaseID(ctx context.Context, purchaseID string) (*Order, error) {
	return r.getOne(ctx, "purchase_id = ?", purchaseID)
}

func (r *repository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error) {
	return r.getOne(ctx, "gateway_order_id = ?", gatewayOrderID)
}

func (r *repository) GetByPaymentID(ctx context.Context, paymentID string) (*Order, error) {
	return r.getOne(ctx, "payment_id = ?", paymentID)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, p *pagination.Pagination) ([]*Order, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID), p)
}

func (r *repository) ListAll(ctx context.Context, status Status, p *pagination.Pagination) ([]*Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.list(ctx, query, p)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, p *pagination.Pagination) ([]*Order, int64, error) {
	var orders []*Order
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if p != nil {
		query = query.Offset(p.Offset()).Limit(p.Limit())
	}
	if err := query.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) SetGatewayOrderID(ctx context.Context, id uuid.UUID, gatewayOrderID string) error {
	return r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Update("gateway_order_id", gatewayOrderID).Error
}

func (r *repository) MarkProcessing(ctx context.Context, id uuid.UUID, paymentID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":     StatusProcessing,
			"payment_id": paymentID,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) CompletePayment(ctx context.Context, id uuid.UUID, paymentID, signature string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status IN ?", id, PayableStates()).
		Updates(map[string]interface{}{
			"status":       StatusCompleted,
			"payment_id":   paymentID,
			"signature":    signature,
			"completed_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FailPayment(ctx context.Context, id uuid.UUID, paymentID string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status IN ?", id, PayableStates()).
		Updates(map[string]interface{}{
			"status":     StatusFailed,
			"payment_id": paymentID,
			"failed_at":  now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) MarkRefunded(ctx context.Context, id uuid.UUID, refundID string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status = ?", id, StatusCompleted).
		Updates(map[string]interface{}{
			"status":      StatusRefunded,
			"refund_id":   refundID,
			"refunded_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) MarkEmailSent(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_sent":    true,
			"email_sent_at": now,
		}).Error
}

func (r *repository) MarkPDFDelivered(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"pdf_delivered":    true,
			"pdf_delivered_at": now,
		}).Error
}
