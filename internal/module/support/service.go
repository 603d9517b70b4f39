package support

import (
	"context"
	"strings"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/random"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles support ticket business logic.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new support service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// OpenTicketInput is the service-level ticket creation payload.
type OpenTicketInput struct {
	UserID     *uuid.UUID
	Email      string
	Name       string
	PurchaseID string
	Subject    string
	Body       string
}

// Open creates a ticket with its first message.
func (s *Service) Open(ctx context.Context, in *OpenTicketInput) (*Ticket, error) {
	ticket := &Ticket{
		TicketNo:   "TK-" + random.UpperAlphaNum(8),
		UserID:     in.UserID,
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Name:       strings.TrimSpace(in.Name),
		PurchaseID: strings.ToUpper(strings.TrimSpace(in.PurchaseID)),
		Subject:    strings.TrimSpace(in.Subject),
		Status:     TicketStatusOpen,
		Messages: []TicketMessage{
			{Body: strings.TrimSpace(in.Body)},
		},
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info("ticket opened",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("ticket_no", ticket.TicketNo))
	return ticket, nil
}

// Get returns a ticket by its public number.
func (s *Service) Get(ctx context.Context, ticketNo string) (*Ticket, error) {
	return s.repo.GetByTicketNo(ctx, strings.ToUpper(strings.TrimSpace(ticketNo)))
}

// List returns tickets by status. Admin only.
func (s *Service) List(ctx context.Context, status TicketStatus, p *pagination.Pagination) ([]*Ticket, int64, error) {
	return s.repo.List(ctx, status, p)
}

// Reply appends a message to a ticket thread. Customer replies reopen
// an answered ticket; admin replies mark it answered.
func (s *Service) Reply(ctx context.Context, id uuid.UUID, body string, fromAdmin bool) (*Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == TicketStatusClosed {
		return nil, ErrTicketClosed
	}

	if err := s.repo.AddMessage(ctx, &TicketMessage{
		TicketID:  ticket.ID,
		FromAdmin: fromAdmin,
		Body:      strings.TrimSpace(body),
	}); err != nil {
		return nil, err
	}

	status := TicketStatusOpen
	if fromAdmin {
		status = TicketStatusAnswered
	}
	if err := s.repo.SetStatus(ctx, ticket.ID, status); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Close marks a ticket closed.
func (s *Service) Close(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SetStatus(ctx, id, TicketStatusClosed)
}
