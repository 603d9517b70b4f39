package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/payment/gateway"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/metrics"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service drives the webhook reconciliation pipeline: signature
// verification, deduplication, the durable event log, and dispatch. The
// synchronous client-reported verification path funnels into the same
// order transitions.
type Service struct {
	repo           Repository
	registry       *gateway.Registry
	guard          ProcessedEventStore
	reconciler     *Reconciler
	orders         OrderStore
	processTimeout time.Duration
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	registry *gateway.Registry,
	guard ProcessedEventStore,
	reconciler *Reconciler,
	orders OrderStore,
	processTimeout time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if processTimeout <= 0 {
		processTimeout = 10 * time.Second
	}
	return &Service{
		repo:           repo,
		registry:       registry,
		guard:          guard,
		reconciler:     reconciler,
		orders:         orders,
		processTimeout: processTimeout,
		metrics:        m,
		logger:         logger,
	}
}

// Gateway returns the named gateway, or the default when name is empty.
func (s *Service) Gateway(name string) (gateway.Gateway, error) {
	if name == "" {
		return s.registry.Default(), nil
	}
	return s.registry.Get(name)
}

// ProcessWebhook runs one delivery through the pipeline. The returned
// error is non-nil only for requests that must be rejected with a 400:
// bad signature or a body that does not parse as an event envelope.
// Every other outcome, including processing failures, is recorded on
// the event row and acknowledged so the gateway does not retry.
func (s *Service) ProcessWebhook(ctx context.Context, gw gateway.Gateway, body []byte, signature, headerEventID string) error {
	if !gw.VerifyWebhookSignature(body, signature) {
		s.recordRejected(ctx, gw.Name(), body, signature, headerEventID, "invalid signature")
		s.metrics.RecordWebhookEvent("unknown", "rejected")
		return ErrInvalidSignature
	}

	env, err := DecodeEnvelope(gw.Name(), body)
	if err != nil {
		s.recordRejected(ctx, gw.Name(), body, signature, headerEventID, "malformed payload")
		s.metrics.RecordWebhookEvent("unknown", "rejected")
		return err
	}

	eventID := StableEventID(headerEventID, env)
	if eventID == EventIDUnknown {
		s.logger.Warn("event without stable id, deduplication bypassed",
			zap.String("event_type", env.RawType))
	}

	if !s.guard.ShouldProcess(ctx, eventID) {
		s.storeEvent(ctx, gw.Name(), eventID, env, body, signature, EventStatusDuplicate, "")
		s.metrics.RecordWebhookEvent(env.RawType, "duplicate")
		s.logger.Info("duplicate webhook delivery short-circuited",
			zap.String("event_id", eventID),
			zap.String("event_type", env.RawType))
		return nil
	}

	record := s.storeEvent(ctx, gw.Name(), eventID, env, body, signature, EventStatusProcessed, "")

	dispatchCtx, cancel := context.WithTimeout(ctx, s.processTimeout)
	defer cancel()

	outcome, dispatchErr := s.reconciler.Dispatch(dispatchCtx, env)

	if record != nil && outcome.OrderID != nil {
		if err := s.repo.SetEventOrder(ctx, record.ID, *outcome.OrderID); err != nil {
			s.logger.Error("failed to link event to order", zap.Error(err))
		}
	}

	if dispatchErr != nil {
		if record != nil {
			if err := s.repo.UpdateEventOutcome(ctx, record.ID, EventStatusFailed, dispatchErr.Error()); err != nil {
				s.logger.Error("failed to record event failure", zap.Error(err))
			}
		}
		s.metrics.RecordWebhookEvent(env.RawType, "failed")
		s.logger.Error("webhook processing failed",
			zap.String("event_id", eventID),
			zap.String("event_type", env.RawType),
			zap.Error(dispatchErr))
		// Acknowledged regardless. Failures here need manual
		// reconciliation, not gateway retries.
		return nil
	}

	if outcome.Annotation != "" && record != nil {
		if err := s.repo.UpdateEventOutcome(ctx, record.ID, EventStatusProcessed, outcome.Annotation); err != nil {
			s.logger.Error("failed to annotate event", zap.Error(err))
		}
	}

	s.guard.MarkProcessed(ctx, eventID)
	s.metrics.RecordWebhookEvent(env.RawType, "processed")
	return nil
}

func (s *Service) storeEvent(ctx context.Context, gwName, eventID string, env *Envelope, body []byte, signature string, status EventStatus, errMsg string) *WebhookEvent {
	f := env.Fields
	event := &WebhookEvent{
		Gateway:        gwName,
		EventID:        eventID,
		EventType:      env.RawType,
		Payload:        string(body),
		Signature:      signature,
		Status:         status,
		ErrorMessage:   errMsg,
		GatewayOrderID: f.GatewayOrderID,
		PaymentID:      f.PaymentID,
		RefundID:       f.RefundID,
		Amount:         f.Amount,
		Currency:       f.Currency,
		Email:          f.Email,
		Contact:        f.Contact,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		s.logger.Error("failed to store webhook event",
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil
	}
	return event
}

// recordRejected stores the audit row for a delivery that never reached
// the dispatcher. The payload may not even be JSON at this point.
func (s *Service) recordRejected(ctx context.Context, gwName string, body []byte, signature, headerEventID, reason string) {
	eventID := headerEventID
	if eventID == "" {
		eventID = EventIDUnknown
	}
	event := &WebhookEvent{
		Gateway:      gwName,
		EventID:      eventID,
		EventType:    "unknown",
		Payload:      string(body),
		Signature:    signature,
		Status:       EventStatusFailed,
		ErrorMessage: reason,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		s.logger.Error("failed to store rejected webhook event", zap.Error(err))
	}
}

// VerifyPayment is the synchronous entry point for client-reported
// checkout success. It shares the webhook path's transition and side
// effect logic, so a duplicate report after the webhook already landed
// is a harmless no-op.
func (s *Service) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*order.Order, error) {
	gw := s.registry.Default()
	if !gw.VerifyPaymentSignature(req.GatewayOrderID, req.PaymentID, req.Signature) {
		s.logger.Warn("payment verification signature mismatch",
			zap.String("gateway_order_id", req.GatewayOrderID),
			zap.String("payment_id", req.PaymentID))
		return nil, ErrInvalidSignature
	}

	o, err := s.orders.GetByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: gateway order %s", ErrOrderNotFound, req.GatewayOrderID)
	}

	transitioned, err := s.orders.CompletePayment(ctx, o.ID, req.PaymentID, req.Signature)
	if err != nil {
		return nil, fmt.Errorf("complete payment: %w", err)
	}
	if transitioned {
		s.reconciler.applyCaptureSideEffects(ctx, o, string(o.Status))
		o.Status = order.StatusCompleted
	} else {
		s.logger.Info("verify-payment replay absorbed",
			zap.String("order_id", o.ID.String()),
			zap.String("status", string(o.Status)))
		// Reload so the caller sees the settled status.
		if fresh, err := s.orders.GetByGatewayOrderID(ctx, req.GatewayOrderID); err == nil {
			o = fresh
		}
	}
	return o, nil
}

// Refund initiates a gateway refund for a completed order. The order
// transitions to refunded when the gateway's refund.created event
// arrives, keeping the webhook pipeline the single writer for
// gateway-driven state.
func (s *Service) Refund(ctx context.Context, orderID uuid.UUID) (string, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return "", fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return "", err
	}
	if !o.IsCompleted() || o.PaymentID == "" {
		return "", fmt.Errorf("%w: order %s in status %s", ErrNotRefundable, o.ID, o.Status)
	}

	// Refunds go back through the gateway that took the payment.
	gw, err := s.Gateway(o.Gateway)
	if err != nil {
		return "", fmt.Errorf("resolve gateway %q: %w", o.Gateway, err)
	}
	refundID, err := gw.CreateRefund(ctx, o.PaymentID, o.TotalAmount, map[string]string{
		"order_id": o.ID.String(),
	})
	if err != nil {
		return "", fmt.Errorf("create refund: %w", err)
	}

	s.logger.Info("refund initiated",
		zap.String("order_id", o.ID.String()),
		zap.String("refund_id", refundID))
	return refundID, nil
}

// ListEvents returns stored webhook events for the admin console.
func (s *Service) ListEvents(ctx context.Context, status EventStatus, p *pagination.Pagination) ([]*WebhookEvent, int64, error) {
	return s.repo.ListEvents(ctx, status, p)
}

// GetEvent returns a stored webhook event.
func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (*WebhookEvent, error) {
	return s.repo.GetEvent(ctx, id)
}

// Stop releases pipeline resources.
func (s *Service) Stop() {
	s.guard.Stop()
}
