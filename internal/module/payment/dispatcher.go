package payment

import (
	"context"
	"fmt"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the slice of order persistence the dispatcher needs.
// The state-changing methods are conditional on the order's current
// status and report whether a row changed, which is how replayed and
// out-of-order deliveries are absorbed without double-applying side
// effects.
type OrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*order.Order, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, paymentID string) (bool, error)
	CompletePayment(ctx context.Context, id uuid.UUID, paymentID, signature string) (bool, error)
	FailPayment(ctx context.Context, id uuid.UUID, paymentID string) (bool, error)
	MarkRefunded(ctx context.Context, id uuid.UUID, refundID string) (bool, error)
}

// ProductCounter adjusts catalog sales counters. Counter changes happen
// only here, as side effects of order transitions, never in catalog
// code.
type ProductCounter interface {
	IncrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error
	DecrementSales(ctx context.Context, productID uuid.UUID, quantity int64, includeReal bool) error
}

// Notifier sends the post-completion customer notification. Failures
// are logged, never rolled back into the payment outcome.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order) error
}

// Dispatch outcome for the event audit row.
type Outcome struct {
	// Annotation is recorded on the event row even when processing
	// succeeded, e.g. for unhandled event types.
	Annotation string
	// OrderID links the event row to the order it touched.
	OrderID *uuid.UUID
}

// Reconciler routes verified, non-duplicate gateway events to their
// handlers and applies the order transitions and counter updates those
// events imply.
type Reconciler struct {
	orders   OrderStore
	products ProductCounter
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewReconciler creates a new reconciliation dispatcher.
func NewReconciler(orders OrderStore, products ProductCounter, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		orders:   orders,
		products: products,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// Dispatch handles one verified event. The returned error marks the
// event row failed; the HTTP response to the gateway is 200 either way.
// A panic inside a handler is contained here and reported as a failure
// of this event only.
func (r *Reconciler) Dispatch(ctx context.Context, env *Envelope) (out Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
			r.logger.Error("webhook handler panicked",
				zap.String("event_type", env.RawType),
				zap.Any("panic", rec))
		}
	}()

	switch env.Type {
	case EventPaymentCaptured, EventOrderPaid:
		return r.handleCaptured(ctx, env)
	case EventPaymentFailed:
		return r.handleFailed(ctx, env)
	case EventPaymentAuthorized:
		return r.handleAuthorized(ctx, env)
	case EventRefundCreated:
		return r.handleRefund(ctx, env)
	case EventDisputeCreated, EventDisputeWon, EventDisputeLost, EventDisputeClosed:
		return r.handleDispute(ctx, env)
	case EventSubscriptionActivated, EventSubscriptionCancelled:
		r.logger.Info("subscription event acknowledged",
			zap.String("event_type", env.RawType))
		return Outcome{}, nil
	default:
		r.logger.Warn("unhandled webhook event type",
			zap.String("event_type", env.RawType))
		return Outcome{Annotation: "unhandled event type: " + env.RawType}, nil
	}
}

func (r *Reconciler) handleCaptured(ctx context.Context, env *Envelope) (Outcome, error) {
	f := env.Fields
	if f.GatewayOrderID == "" {
		return Outcome{}, fmt.Errorf("capture event carries no order reference")
	}

	o, err := r.orders.GetByGatewayOrderID(ctx, f.GatewayOrderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("order not found for gateway order %s: %w", f.GatewayOrderID, err)
	}
	out := Outcome{OrderID: &o.ID}

	transitioned, err := r.orders.CompletePayment(ctx, o.ID, f.PaymentID, "")
	if err != nil {
		return out, fmt.Errorf("complete payment: %w", err)
	}
	if !transitioned {
		// Replay or out-of-order delivery absorbed by a terminal state.
		r.logger.Info("capture replay absorbed",
			zap.String("order_id", o.ID.String()),
			zap.String("status", string(o.Status)))
		return out, nil
	}

	r.applyCaptureSideEffects(ctx, o, string(o.Status))
	return out, nil
}

// applyCaptureSideEffects runs the counter increments and notification
// for an order that just transitioned to completed. Shared with the
// synchronous verification path.
func (r *Reconciler) applyCaptureSideEffects(ctx context.Context, o *order.Order, fromStatus string) {
	r.metrics.RecordOrderTransition(fromStatus, string(order.StatusCompleted))

	for _, item := range o.Items {
		if err := r.products.IncrementSales(ctx, item.ProductID, item.Quantity, !o.IsSynthetic); err != nil {
			r.logger.Error("sales increment failed",
				zap.String("order_id", o.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		}
	}

	if err := r.notifier.SendOrderConfirmation(ctx, o); err != nil {
		// The order stays completed. Delivery flags remain unset for a
		// manual resend.
		r.logger.Error("order confirmation failed",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	r.logger.Info("order completed",
		zap.String("order_id", o.ID.String()),
		zap.String("order_no", o.OrderNo),
		zap.Int64("amount", o.TotalAmount))
}

func (r *Reconciler) handleFailed(ctx context.Context, env *Envelope) (Outcome, error) {
	f := env.Fields
	if f.GatewayOrderID == "" {
		return Outcome{}, fmt.Errorf("failure event carries no order reference")
	}

	o, err := r.orders.GetByGatewayOrderID(ctx, f.GatewayOrderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("order not found for gateway order %s: %w", f.GatewayOrderID, err)
	}
	out := Outcome{OrderID: &o.ID}

	transitioned, err := r.orders.FailPayment(ctx, o.ID, f.PaymentID)
	if err != nil {
		return out, fmt.Errorf("fail payment: %w", err)
	}
	if transitioned {
		r.metrics.RecordOrderTransition(string(o.Status), string(order.StatusFailed))
		r.logger.Info("order failed",
			zap.String("order_id", o.ID.String()),
			zap.String("payment_id", f.PaymentID))
	}
	return out, nil
}

func (r *Reconciler) handleAuthorized(ctx context.Context, env *Envelope) (Outcome, error) {
	f := env.Fields
	if f.GatewayOrderID == "" {
		return Outcome{}, fmt.Errorf("authorization event carries no order reference")
	}

	o, err := r.orders.GetByGatewayOrderID(ctx, f.GatewayOrderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("order not found for gateway order %s: %w", f.GatewayOrderID, err)
	}
	out := Outcome{OrderID: &o.ID}

	transitioned, err := r.orders.MarkProcessing(ctx, o.ID, f.PaymentID)
	if err != nil {
		return out, fmt.Errorf("mark processing: %w", err)
	}
	if transitioned {
		r.metrics.RecordOrderTransition(string(order.StatusPending), string(order.StatusProcessing))
	}
	return out, nil
}

func (r *Reconciler) handleRefund(ctx context.Context, env *Envelope) (Outcome, error) {
	f := env.Fields
	if f.PaymentID == "" {
		return Outcome{}, fmt.Errorf("refund event carries no payment reference")
	}

	o, err := r.orders.GetByPaymentID(ctx, f.PaymentID)
	if err != nil {
		// Never guess an order for a refund.
		return Outcome{}, fmt.Errorf("order not found for payment %s: %w", f.PaymentID, err)
	}
	out := Outcome{OrderID: &o.ID}

	transitioned, err := r.orders.MarkRefunded(ctx, o.ID, f.RefundID)
	if err != nil {
		return out, fmt.Errorf("mark refunded: %w", err)
	}
	if !transitioned {
		r.logger.Info("refund replay absorbed",
			zap.String("order_id", o.ID.String()),
			zap.String("status", string(o.Status)))
		return out, nil
	}

	r.metrics.RecordOrderTransition(string(order.StatusCompleted), string(order.StatusRefunded))

	// Reverse exactly the quantities added at capture time, from the
	// snapshotted line items, never a recomputed amount.
	for _, item := range o.Items {
		if err := r.products.DecrementSales(ctx, item.ProductID, item.Quantity, !o.IsSynthetic); err != nil {
			r.logger.Error("sales decrement failed",
				zap.String("order_id", o.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		}
	}

	r.logger.Info("order refunded",
		zap.String("order_id", o.ID.String()),
		zap.String("refund_id", f.RefundID))
	return out, nil
}

func (r *Reconciler) handleDispute(ctx context.Context, env *Envelope) (Outcome, error) {
	f := env.Fields
	out := Outcome{}
	if f.PaymentID != "" {
		if o, err := r.orders.GetByPaymentID(ctx, f.PaymentID); err == nil {
			out.OrderID = &o.ID
		}
	}
	r.logger.Warn("payment dispute event",
		zap.String("event_type", env.RawType),
		zap.String("payment_id", f.PaymentID),
		zap.Int64("amount", f.Amount))
	return out, nil
}
