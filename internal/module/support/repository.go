package support

import (
	"context"
	"errors"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for support ticket data access.
type Repository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetByTicketNo(ctx context.Context, ticketNo string) (*Ticket, error)
	List(ctx context.Context, status TicketStatus, p *pagination.Pagination) ([]*Ticket, int64, error)
	AddMessage(ctx context.Context, message *TicketMessage) error
	SetStatus(ctx context.Context, id uuid.UUID, status TicketStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new support repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ticket *Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *repository) GetByTicketNo(ctx context.Context, ticketNo string) (*Ticket, error) {
	return r.getOne(ctx, "ticket_no = ?", ticketNo)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&ticket, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) List(ctx context.Context, status TicketStatus, p *pagination.Pagination) ([]*Ticket, int64, error) {
	var tickets []*Ticket
	var total int64

	query := r.db.WithContext(ctx).Model(&Ticket{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if p != nil {
		query = query.Offset(p.Offset()).Limit(p.Limit())
	}
	if err := query.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *repository) AddMessage(ctx context.Context, message *TicketMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status TicketStatus) error {
	return r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ?", id).
		Update("status", status).Error
}
