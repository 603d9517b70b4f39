package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/catalog"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/payment/gateway"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	created        []*Order
	gatewayOrderID string
}

func (r *fakeRepo) Create(_ context.Context, o *Order) error {
	o.ID = uuid.New()
	r.created = append(r.created, o)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	for _, o := range r.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *fakeRepo) GetByPurchaseID(_ context.Context, purchaseID string) (*Order, error) {
	for _, o := range r.created {
		if o.PurchaseID == purchaseID {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *fakeRepo) GetByGatewayOrderID(_ context.Context, _ string) (*Order, error) {
	return nil, ErrOrderNotFound
}

func (r *fakeRepo) GetByPaymentID(_ context.Context, _ string) (*Order, error) {
	return nil, ErrOrderNotFound
}

func (r *fakeRepo) ListByUser(_ context.Context, _ uuid.UUID, _ *pagination.Pagination) ([]*Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeRepo) ListAll(_ context.Context, _ Status, _ *pagination.Pagination) ([]*Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeRepo) SetGatewayOrderID(_ context.Context, id uuid.UUID, gatewayOrderID string) error {
	r.gatewayOrderID = gatewayOrderID
	return nil
}

func (r *fakeRepo) MarkProcessing(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

func (r *fakeRepo) CompletePayment(_ context.Context, _ uuid.UUID, _, _ string) (bool, error) {
	return false, nil
}

func (r *fakeRepo) FailPayment(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

func (r *fakeRepo) MarkRefunded(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

func (r *fakeRepo) MarkEmailSent(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeRepo) MarkPDFDelivered(_ context.Context, _ uuid.UUID) error { return nil }

type fakeCatalog struct {
	products   map[uuid.UUID]*catalog.Product
	increments map[uuid.UUID]int64
	realCounts map[uuid.UUID]bool
}

func newFakeCatalog(products ...*catalog.Product) *fakeCatalog {
	c := &fakeCatalog{
		products:   make(map[uuid.UUID]*catalog.Product),
		increments: make(map[uuid.UUID]int64),
		realCounts: make(map[uuid.UUID]bool),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) GetProducts(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) IncrementSales(_ context.Context, productID uuid.UUID, quantity int64, includeReal bool) error {
	c.increments[productID] += quantity
	c.realCounts[productID] = includeReal
	return nil
}

type fakeGateway struct {
	name      string
	keyID     string
	orders    []string
	createErr error
}

func (g *fakeGateway) Name() string {
	if g.name == "" {
		return "razorpay"
	}
	return g.name
}

func (g *fakeGateway) KeyID() string {
	if g.keyID == "" {
		return "rzp_test_key"
	}
	return g.keyID
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, _, receipt string, _ map[string]string) (string, error) {
	if g.createErr != nil {
		return "", g.createErr
	}
	id := fmt.Sprintf("order_gw_%d", len(g.orders)+1)
	g.orders = append(g.orders, id)
	return id, nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, _ string, _ int64, _ map[string]string) (string, error) {
	return "", fmt.Errorf("not supported")
}

func (g *fakeGateway) VerifyWebhookSignature(_ []byte, _ string) bool { return false }

func (g *fakeGateway) VerifyPaymentSignature(_, _, _ string) bool { return false }

func testGateways(gws ...gateway.Gateway) *gateway.Registry {
	reg := gateway.NewRegistry()
	for _, gw := range gws {
		reg.Register(gw)
	}
	return reg
}

func testProduct(price int64) *catalog.Product {
	return &catalog.Product{
		ID:     uuid.New(),
		Slug:   "midjourney-pack",
		Title:  "Midjourney Prompt Pack",
		Price:  price,
		Active: true,
	}
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("computes the total server-side and registers with the gateway", func(t *testing.T) {
		p1 := testProduct(49900)
		p2 := testProduct(29900)
		p2.Slug = "chatgpt-pack"
		repo := &fakeRepo{}
		gw := &fakeGateway{}
		svc := NewService(repo, newFakeCatalog(p1, p2), testGateways(gw), zap.NewNop())

		o, resp, err := svc.Checkout(ctx, &CheckoutRequest{
			GuestEmail: "Buyer@Example.com",
			GuestName:  "Buyer",
			Items: []CheckoutItem{
				{ProductID: p1.ID, Quantity: 2},
				{ProductID: p2.ID, Quantity: 1},
			},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, int64(2*49900+29900), o.TotalAmount)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, "buyer@example.com", o.GuestEmail)
		assert.Equal(t, "inr", o.Currency)
		assert.False(t, o.IsSynthetic)
		require.Len(t, o.Items, 2)
		assert.Equal(t, p1.Title, o.Items[0].Title)
		assert.Equal(t, p1.Price, o.Items[0].UnitPrice)

		assert.Equal(t, "razorpay", o.Gateway)
		assert.Equal(t, "razorpay", resp.Gateway)
		assert.Equal(t, "order_gw_1", resp.GatewayOrderID)
		assert.Equal(t, "rzp_test_key", resp.GatewayKeyID)
		assert.Equal(t, o.TotalAmount, resp.Amount)
		assert.Equal(t, "order_gw_1", repo.gatewayOrderID)
		assert.NotEmpty(t, o.OrderNo)
		assert.NotEmpty(t, o.PurchaseID)
		assert.NotEmpty(t, o.DownloadPassword)
	})

	t.Run("guest checkout requires an email", func(t *testing.T) {
		p := testProduct(49900)
		svc := NewService(&fakeRepo{}, newFakeCatalog(p), testGateways(&fakeGateway{}), zap.NewNop())

		_, _, err := svc.Checkout(ctx, &CheckoutRequest{
			Items: []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		}, nil)
		assert.ErrorIs(t, err, ErrMissingBuyer)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		svc := NewService(&fakeRepo{}, newFakeCatalog(), testGateways(&fakeGateway{}), zap.NewNop())
		_, _, err := svc.Checkout(ctx, &CheckoutRequest{GuestEmail: "b@example.com"}, nil)
		assert.ErrorIs(t, err, ErrEmptyOrder)
	})

	t.Run("rejects unknown products", func(t *testing.T) {
		svc := NewService(&fakeRepo{}, newFakeCatalog(), testGateways(&fakeGateway{}), zap.NewNop())
		_, _, err := svc.Checkout(ctx, &CheckoutRequest{
			GuestEmail: "b@example.com",
			Items:      []CheckoutItem{{ProductID: uuid.New(), Quantity: 1}},
		}, nil)
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})

	t.Run("rejects inactive products", func(t *testing.T) {
		p := testProduct(49900)
		p.Active = false
		svc := NewService(&fakeRepo{}, newFakeCatalog(p), testGateways(&fakeGateway{}), zap.NewNop())

		_, _, err := svc.Checkout(ctx, &CheckoutRequest{
			GuestEmail: "b@example.com",
			Items:      []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		}, nil)
		assert.ErrorIs(t, err, catalog.ErrProductInactive)
	})

	t.Run("zero quantity is treated as one", func(t *testing.T) {
		p := testProduct(49900)
		svc := NewService(&fakeRepo{}, newFakeCatalog(p), testGateways(&fakeGateway{}), zap.NewNop())

		o, _, err := svc.Checkout(ctx, &CheckoutRequest{
			GuestEmail: "b@example.com",
			Items:      []CheckoutItem{{ProductID: p.ID}},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(49900), o.TotalAmount)
		assert.Equal(t, int64(1), o.Items[0].Quantity)
	})

	t.Run("gateway failure surfaces as a gateway error", func(t *testing.T) {
		p := testProduct(49900)
		svc := NewService(&fakeRepo{}, newFakeCatalog(p), testGateways(&fakeGateway{createErr: fmt.Errorf("api error 502")}), zap.NewNop())

		_, _, err := svc.Checkout(ctx, &CheckoutRequest{
			GuestEmail: "b@example.com",
			Items:      []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		}, nil)
		assert.ErrorIs(t, err, ErrGatewayCreate)
	})

	t.Run("routes checkout to the requested gateway", func(t *testing.T) {
		p := testProduct(49900)
		stripe := &fakeGateway{name: "stripe", keyID: "pk_test_key"}
		repo := &fakeRepo{}
		svc := NewService(repo, newFakeCatalog(p), testGateways(&fakeGateway{}, stripe), zap.NewNop())

		o, resp, err := svc.Checkout(ctx, &CheckoutRequest{
			GuestEmail: "b@example.com",
			Gateway:    "stripe",
			Items:      []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "stripe", o.Gateway)
		assert.Equal(t, "stripe", resp.Gateway)
		assert.Equal(t, "pk_test_key", resp.GatewayKeyID)
		require.Len(t, stripe.orders, 1)
		assert.Equal(t, stripe.orders[0], resp.GatewayOrderID)
	})

	t.Run("rejects an unknown gateway", func(t *testing.T) {
		p := testProduct(49900)
		svc := NewService(&fakeRepo{}, newFakeCatalog(p), testGateways(&fakeGateway{}), zap.NewNop())

		_, _, err := svc.Checkout(ctx, &CheckoutRequest{
			GuestEmail: "b@example.com",
			Gateway:    "paypal",
			Items:      []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		}, nil)
		assert.ErrorIs(t, err, ErrUnknownGateway)
	})
}

func TestSeedSyntheticOrder(t *testing.T) {
	ctx := context.Background()

	p := testProduct(49900)
	cat := newFakeCatalog(p)
	repo := &fakeRepo{}
	svc := NewService(repo, cat, testGateways(&fakeGateway{}), zap.NewNop())

	o, err := svc.SeedSyntheticOrder(ctx, &SeedOrderRequest{
		GuestEmail: "seed@example.com",
		Items:      []CheckoutItem{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.True(t, o.IsSynthetic)
	assert.Equal(t, StatusCompleted, o.Status)
	require.NotNil(t, o.CompletedAt)

	// Displayed sales move; real sales never do for seeded orders.
	assert.Equal(t, int64(3), cat.increments[p.ID])
	assert.False(t, cat.realCounts[p.ID])
}

func TestGetOrderOwnership(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	p := testProduct(49900)
	repo := &fakeRepo{}
	svc := NewService(repo, newFakeCatalog(p), testGateways(&fakeGateway{}), zap.NewNop())

	o, _, err := svc.Checkout(ctx, &CheckoutRequest{
		Items: []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	}, &owner)
	require.NoError(t, err)

	t.Run("owner can read", func(t *testing.T) {
		got, err := svc.GetOrder(ctx, o.ID, &owner, false)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, o.ID, &stranger, false)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, o.ID, &stranger, true)
		assert.NoError(t, err)
	})

	t.Run("purchase id lookup is case-insensitive", func(t *testing.T) {
		// Purchase ids are stored upper-case; the lookup normalizes.
		got, err := svc.GetOrderByPurchaseID(ctx, "  "+o.PurchaseID+" ")
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})
}
