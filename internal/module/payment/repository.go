package payment

import (
	"context"
	"errors"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for webhook event persistence.
type Repository interface {
	CreateEvent(ctx context.Context, event *WebhookEvent) error
	GetEvent(ctx context.Context, id uuid.UUID) (*WebhookEvent, error)
	UpdateEventOutcome(ctx context.Context, id uuid.UUID, status EventStatus, errorMessage string) error
	SetEventOrder(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error
	ListEvents(ctx context.Context, status EventStatus, p *pagination.Pagination) ([]*WebhookEvent, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetEvent(ctx context.Context, id uuid.UUID) (*WebhookEvent, error) {
	var event WebhookEvent
	err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) UpdateEventOutcome(ctx context.Context, id uuid.UUID, status EventStatus, errorMessage string) error {
	return r.db.WithContext(ctx).
		Model(&WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
		}).Error
}

func (r *repository) SetEventOrder(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&WebhookEvent{}).
		Where("id = ?", id).
		Update("order_id", orderID).Error
}

func (r *repository) ListEvents(ctx context.Context, status EventStatus, p *pagination.Pagination) ([]*WebhookEvent, int64, error) {
	var events []*WebhookEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&WebhookEvent{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if p != nil {
		query = query.Offset(p.Offset()).Limit(p.Limit())
	}
	if err := query.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
