package support

import (
	"context"
	"strings"
	"testing"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTicketRepo struct {
	tickets map[uuid.UUID]*Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[uuid.UUID]*Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *Ticket) error {
	ticket.ID = uuid.New()
	for i := range ticket.Messages {
		ticket.Messages[i].TicketID = ticket.ID
	}
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id uuid.UUID) (*Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

func (r *fakeTicketRepo) GetByTicketNo(_ context.Context, ticketNo string) (*Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.TicketNo == ticketNo {
			return ticket, nil
		}
	}
	return nil, ErrTicketNotFound
}

func (r *fakeTicketRepo) List(_ context.Context, status TicketStatus, _ *pagination.Pagination) ([]*Ticket, int64, error) {
	var out []*Ticket
	for _, ticket := range r.tickets {
		if status == "" || ticket.Status == status {
			out = append(out, ticket)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTicketRepo) AddMessage(_ context.Context, message *TicketMessage) error {
	ticket, ok := r.tickets[message.TicketID]
	if !ok {
		return ErrTicketNotFound
	}
	ticket.Messages = append(ticket.Messages, *message)
	return nil
}

func (r *fakeTicketRepo) SetStatus(_ context.Context, id uuid.UUID, status TicketStatus) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	ticket.Status = status
	return nil
}

func TestOpenTicket(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeTicketRepo(), zap.NewNop())

	ticket, err := svc.Open(ctx, &OpenTicketInput{
		Email:      " Buyer@Example.com ",
		Name:       "Priya",
		PurchaseID: " xk4p9q2m ",
		Subject:    "Download link expired",
		Body:       "The link from the email no longer works.",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ticket.TicketNo, "TK-"))
	assert.Equal(t, "buyer@example.com", ticket.Email)
	assert.Equal(t, "XK4P9Q2M", ticket.PurchaseID)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	require.Len(t, ticket.Messages, 1)
	assert.Equal(t, "The link from the email no longer works.", ticket.Messages[0].Body)

	t.Run("lookup by ticket number normalizes", func(t *testing.T) {
		got, err := svc.Get(ctx, "  "+strings.ToLower(ticket.TicketNo)+" ")
		require.NoError(t, err)
		assert.Equal(t, ticket.ID, got.ID)
	})
}

func TestReply(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T, svc *Service) *Ticket {
		t.Helper()
		ticket, err := svc.Open(ctx, &OpenTicketInput{
			Email:   "buyer@example.com",
			Subject: "Help",
			Body:    "First message",
		})
		require.NoError(t, err)
		return ticket
	}

	t.Run("admin reply marks the ticket answered", func(t *testing.T) {
		svc := NewService(newFakeTicketRepo(), zap.NewNop())
		ticket := open(t, svc)

		updated, err := svc.Reply(ctx, ticket.ID, "We re-issued your link.", true)
		require.NoError(t, err)
		assert.Equal(t, TicketStatusAnswered, updated.Status)
		require.Len(t, updated.Messages, 2)
		assert.True(t, updated.Messages[1].FromAdmin)
	})

	t.Run("customer reply reopens an answered ticket", func(t *testing.T) {
		svc := NewService(newFakeTicketRepo(), zap.NewNop())
		ticket := open(t, svc)

		_, err := svc.Reply(ctx, ticket.ID, "Answered.", true)
		require.NoError(t, err)
		updated, err := svc.Reply(ctx, ticket.ID, "Still broken.", false)
		require.NoError(t, err)
		assert.Equal(t, TicketStatusOpen, updated.Status)
	})

	t.Run("closed tickets reject replies", func(t *testing.T) {
		svc := NewService(newFakeTicketRepo(), zap.NewNop())
		ticket := open(t, svc)

		require.NoError(t, svc.Close(ctx, ticket.ID))
		_, err := svc.Reply(ctx, ticket.ID, "Anyone there?", false)
		assert.ErrorIs(t, err, ErrTicketClosed)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		svc := NewService(newFakeTicketRepo(), zap.NewNop())
		_, err := svc.Reply(ctx, uuid.New(), "hello", false)
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})
}
