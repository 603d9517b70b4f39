package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/catalog"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/payment/gateway"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/random"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductCatalog is the slice of the catalog the checkout path needs:
// price lookups for the server-side total and the synthetic sales
// counter for seeded orders.
type ProductCatalog interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error)
	IncrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error
}

// Service handles order business logic: checkout, lookups, and admin
// seeding. State transitions triggered by gateway events live in the
// payment module, which talks to the repository directly.
type Service struct {
	repo     Repository
	catalog  ProductCatalog
	gateways *gateway.Registry
	logger   *zap.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, catalogSvc ProductCatalog, gateways *gateway.Registry, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalogSvc,
		gateways: gateways,
		logger:   logger,
	}
}

// Checkout creates a pending order with snapshotted prices and registers
// it with the payment gateway. The total is always computed server-side
// from catalog prices, never trusted from the client.
func (s *Service) Checkout(ctx context.Context, req *CheckoutRequest, userID *uuid.UUID) (*Order, *CheckoutResponse, error) {
	if userID == nil && strings.TrimSpace(req.GuestEmail) == "" {
		return nil, nil, ErrMissingBuyer
	}

	gw := s.gateways.Default()
	if req.Gateway != "" {
		var err error
		if gw, err = s.gateways.Get(req.Gateway); err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownGateway, req.Gateway)
		}
	}

	order, err := s.buildOrder(ctx, req.Items, userID, req.GuestEmail, req.GuestName, false)
	if err != nil {
		return nil, nil, err
	}
	order.Gateway = gw.Name()

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("create order: %w", err)
	}

	gatewayOrderID, err := gw.CreateOrder(ctx, order.TotalAmount, order.Currency, order.OrderNo, map[string]string{
		"order_id":    order.ID.String(),
		"purchase_id": order.PurchaseID,
	})
	if err != nil {
		s.logger.Error("gateway order creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrGatewayCreate, err)
	}

	if err := s.repo.SetGatewayOrderID(ctx, order.ID, gatewayOrderID); err != nil {
		return nil, nil, fmt.Errorf("store gateway order id: %w", err)
	}
	order.GatewayOrderID = gatewayOrderID

	s.logger.Info("checkout initiated",
		zap.String("order_id", order.ID.String()),
		zap.String("order_no", order.OrderNo),
		zap.String("gateway", gw.Name()),
		zap.String("gateway_order_id", gatewayOrderID),
		zap.Int64("amount", order.TotalAmount))

	return order, &CheckoutResponse{
		OrderID:        order.ID,
		OrderNo:        order.OrderNo,
		PurchaseID:     order.PurchaseID,
		Gateway:        gw.Name(),
		GatewayOrderID: gatewayOrderID,
		GatewayKeyID:   gw.KeyID(),
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
	}, nil
}

// SeedSyntheticOrder creates a completed synthetic order for admin
// seeding. Only the displayed sales counter moves; real sales counts are
// reserved for paid customer orders.
func (s *Service) SeedSyntheticOrder(ctx context.Context, req *SeedOrderRequest) (*Order, error) {
	order, err := s.buildOrder(ctx, req.Items, nil, req.GuestEmail, req.GuestName, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order.Status = StatusCompleted
	order.CompletedAt = &now

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create synthetic order: %w", err)
	}

	for _, item := range order.Items {
		if err := s.catalog.IncrementSales(ctx, item.ProductID, item.Quantity, false); err != nil {
			s.logger.Error("synthetic sales increment failed",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("synthetic order seeded",
		zap.String("order_id", order.ID.String()),
		zap.String("order_no", order.OrderNo))
	return order, nil
}

func (s *Service) buildOrder(ctx context.Context, items []CheckoutItem, userID *uuid.UUID, guestEmail, guestName string, synthetic bool) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	order := &Order{
		OrderNo:          fmt.Sprintf("DP-%s-%s", time.Now().Format("20060102"), random.UpperAlphaNum(6)),
		PurchaseID:       random.UpperAlphaNum(8),
		UserID:           userID,
		GuestEmail:       strings.ToLower(strings.TrimSpace(guestEmail)),
		GuestName:        strings.TrimSpace(guestName),
		Currency:         "inr",
		Status:           StatusPending,
		IsSynthetic:      synthetic,
		DownloadPassword: random.UpperAlphaNum(10),
	}

	var total int64
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, item.ProductID)
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: %s", catalog.ErrProductInactive, product.Slug)
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		amount := product.Price * qty
		total += amount
		order.Items = append(order.Items, OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			UnitPrice: product.Price,
			Quantity:  qty,
			Amount:    amount,
		})
	}
	order.TotalAmount = total

	return order, nil
}

// GetOrder returns an order by id, enforcing ownership unless admin.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID, userID *uuid.UUID, admin bool) (*Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && !s.owns(order, userID) {
		return nil, ErrAccessDenied
	}
	return order, nil
}

// GetOrderByPurchaseID looks up an order by its customer-facing
// purchase reference. Used by the support flow.
func (s *Service) GetOrderByPurchaseID(ctx context.Context, purchaseID string) (*Order, error) {
	return s.repo.GetByPurchaseID(ctx, strings.ToUpper(strings.TrimSpace(purchaseID)))
}

// ListUserOrders returns orders for an authenticated customer.
func (s *Service) ListUserOrders(ctx context.Context, userID uuid.UUID, p *pagination.Pagination) ([]*Order, int64, error) {
	return s.repo.ListByUser(ctx, userID, p)
}

// ListAllOrders returns all orders, optionally filtered by status. Admin
// only.
func (s *Service) ListAllOrders(ctx context.Context, status Status, p *pagination.Pagination) ([]*Order, int64, error) {
	return s.repo.ListAll(ctx, status, p)
}

func (s *Service) owns(order *Order, userID *uuid.UUID) bool {
	return order.UserID != nil && userID != nil && *order.UserID == *userID
}
