package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/catalog"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeOrderLookup struct {
	orders    map[string]*order.Order
	delivered []uuid.UUID
}

func (f *fakeOrderLookup) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (f *fakeOrderLookup) GetByPurchaseID(_ context.Context, purchaseID string) (*order.Order, error) {
	o, ok := f.orders[purchaseID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderLookup) MarkPDFDelivered(_ context.Context, id uuid.UUID) error {
	f.delivered = append(f.delivered, id)
	return nil
}

type fakeProductFiles map[uuid.UUID]*catalog.Product

func (f fakeProductFiles) GetProducts(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestDownloadGuards(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	newOrder := func(status order.Status) *order.Order {
		return &order.Order{
			ID:               uuid.New(),
			PurchaseID:       "XK4P9Q2M",
			Status:           status,
			DownloadPassword: "SECRETPW01",
			Items:            []order.OrderItem{{ProductID: productID, Quantity: 1}},
		}
	}

	newService := func(o *order.Order, products fakeProductFiles) (*Service, *fakeOrderLookup) {
		lookup := &fakeOrderLookup{orders: map[string]*order.Order{o.PurchaseID: o}}
		return NewService(lookup, products, nil, nil, time.Hour, zap.NewNop()), lookup
	}

	t.Run("unknown purchase id", func(t *testing.T) {
		svc, _ := newService(newOrder(order.StatusCompleted), fakeProductFiles{})
		_, err := svc.Download(ctx, "NOPE1234", "SECRETPW01")
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, lookup := newService(newOrder(order.StatusCompleted), fakeProductFiles{})
		_, err := svc.Download(ctx, "XK4P9Q2M", "WRONGPASS1")
		assert.ErrorIs(t, err, ErrWrongPassword)
		assert.Empty(t, lookup.delivered)
	})

	t.Run("order not paid yet", func(t *testing.T) {
		svc, _ := newService(newOrder(order.StatusPending), fakeProductFiles{})
		_, err := svc.Download(ctx, "XK4P9Q2M", "SECRETPW01")
		assert.ErrorIs(t, err, ErrOrderNotCompleted)
	})

	t.Run("refunded order no longer downloads", func(t *testing.T) {
		svc, _ := newService(newOrder(order.StatusRefunded), fakeProductFiles{})
		_, err := svc.Download(ctx, "XK4P9Q2M", "SECRETPW01")
		assert.ErrorIs(t, err, ErrOrderNotCompleted)
	})

	t.Run("purchase id is normalized before lookup", func(t *testing.T) {
		o := newOrder(order.StatusCompleted)
		products := fakeProductFiles{productID: {ID: productID, Title: "Pack"}}
		svc, _ := newService(o, products)

		// No file key on the product, so the flow stops after the
		// password and status gates pass.
		_, err := svc.Download(ctx, "  xk4p9q2m ", "SECRETPW01")
		assert.ErrorIs(t, err, ErrNothingToDeliver)
	})

	t.Run("products without files deliver nothing", func(t *testing.T) {
		o := newOrder(order.StatusCompleted)
		products := fakeProductFiles{productID: {ID: productID, Title: "Pack", FileKey: ""}}
		svc, lookup := newService(o, products)

		_, err := svc.Download(ctx, "XK4P9Q2M", "SECRETPW01")
		assert.ErrorIs(t, err, ErrNothingToDeliver)
		assert.Empty(t, lookup.delivered)
	})
}

func TestResendConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects orders that are not completed", func(t *testing.T) {
		o := &order.Order{ID: uuid.New(), PurchaseID: "XK4P9Q2M", Status: order.StatusPending}
		lookup := &fakeOrderLookup{orders: map[string]*order.Order{o.PurchaseID: o}}
		svc := NewService(lookup, fakeProductFiles{}, nil, nil, time.Hour, zap.NewNop())

		assert.ErrorIs(t, svc.ResendConfirmation(ctx, o.ID), ErrOrderNotCompleted)
	})

	t.Run("resends through the notifier", func(t *testing.T) {
		o := &order.Order{
			ID:         uuid.New(),
			OrderNo:    "DP-20260831-ABC123",
			PurchaseID: "XK4P9Q2M",
			GuestEmail: "guest@example.com",
			Status:     order.StatusCompleted,
		}
		lookup := &fakeOrderLookup{orders: map[string]*order.Order{o.PurchaseID: o}}
		sender := &fakeSender{}
		notifier := NewNotifier(sender, fakeResolver{}, &fakeFlags{}, "https://desiprompts.example", zap.NewNop())
		svc := NewService(lookup, fakeProductFiles{}, nil, notifier, time.Hour, zap.NewNop())

		assert.NoError(t, svc.ResendConfirmation(ctx, o.ID))
		assert.Equal(t, []string{"guest@example.com"}, sender.to)
	})
}
