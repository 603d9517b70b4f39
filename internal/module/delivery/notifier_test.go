package delivery

import (
	"context"
	"fmt"
	"testing"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	to      []string
	subject string
	body    string
	err     error
}

func (s *fakeSender) Send(_ context.Context, to, subject, htmlBody string) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.subject = subject
	s.body = htmlBody
	return nil
}

type fakeResolver map[uuid.UUID]string

func (r fakeResolver) GetEmail(_ context.Context, id uuid.UUID) string { return r[id] }

type fakeFlags struct {
	emailSent []uuid.UUID
}

func (f *fakeFlags) MarkEmailSent(_ context.Context, id uuid.UUID) error {
	f.emailSent = append(f.emailSent, id)
	return nil
}

func completedTestOrder() *order.Order {
	return &order.Order{
		ID:               uuid.New(),
		OrderNo:          "DP-20260831-ABC123",
		PurchaseID:       "XK4P9Q2M",
		GuestEmail:       "guest@example.com",
		GuestName:        "Priya",
		Status:           order.StatusCompleted,
		TotalAmount:      49900,
		Currency:         "inr",
		DownloadPassword: "SECRETPW01",
		Items: []order.OrderItem{
			{ProductID: uuid.New(), Title: "Midjourney Prompt Pack", Quantity: 1, UnitPrice: 49900, Amount: 49900},
		},
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("guest order goes to the guest address", func(t *testing.T) {
		sender := &fakeSender{}
		flags := &fakeFlags{}
		n := NewNotifier(sender, fakeResolver{}, flags, "https://desiprompts.example", zap.NewNop())

		o := completedTestOrder()
		require.NoError(t, n.SendOrderConfirmation(ctx, o))

		require.Equal(t, []string{"guest@example.com"}, sender.to)
		assert.Contains(t, sender.subject, o.OrderNo)
		assert.Contains(t, sender.body, "https://desiprompts.example/download/XK4P9Q2M")
		assert.Contains(t, sender.body, "SECRETPW01")
		assert.Contains(t, sender.body, "Midjourney Prompt Pack")
		assert.Contains(t, sender.body, "₹499.00")
		assert.Equal(t, []uuid.UUID{o.ID}, flags.emailSent)
	})

	t.Run("registered account address wins over the guest field", func(t *testing.T) {
		sender := &fakeSender{}
		userID := uuid.New()
		n := NewNotifier(sender, fakeResolver{userID: "user@example.com"}, &fakeFlags{}, "https://desiprompts.example", zap.NewNop())

		o := completedTestOrder()
		o.UserID = &userID
		require.NoError(t, n.SendOrderConfirmation(ctx, o))
		assert.Equal(t, []string{"user@example.com"}, sender.to)
	})

	t.Run("send failure leaves the email flag unset", func(t *testing.T) {
		flags := &fakeFlags{}
		n := NewNotifier(&fakeSender{err: fmt.Errorf("smtp unavailable")}, fakeResolver{}, flags, "https://desiprompts.example", zap.NewNop())

		err := n.SendOrderConfirmation(ctx, completedTestOrder())
		require.Error(t, err)
		assert.Empty(t, flags.emailSent)
	})

	t.Run("order with no recipient is an error", func(t *testing.T) {
		n := NewNotifier(&fakeSender{}, fakeResolver{}, &fakeFlags{}, "https://desiprompts.example", zap.NewNop())

		o := completedTestOrder()
		o.GuestEmail = ""
		assert.Error(t, n.SendOrderConfirmation(ctx, o))
	})
}
