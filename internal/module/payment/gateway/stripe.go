package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig holds Stripe credentials.
type StripeConfig struct {
	APIKey         string
	PublishableKey string
	WebhookSecret  string
}

// Stripe implements the Gateway interface for card payments routed
// through Stripe. Orders map to payment intents.
type Stripe struct {
	publishableKey string
	webhookSecret  string
}

// NewStripe creates a new Stripe gateway client.
func NewStripe(cfg *StripeConfig) *Stripe {
	stripe.Key = cfg.APIKey
	return &Stripe{
		publishableKey: cfg.PublishableKey,
		webhookSecret:  cfg.WebhookSecret,
	}
}

// Name returns the provider identifier.
func (s *Stripe) Name() string {
	return "stripe"
}

// KeyID returns the publishable key for the client-side widget.
func (s *Stripe) KeyID() string {
	return s.publishableKey
}

// CreateOrder creates a payment intent and returns its id.
func (s *Stripe) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.Metadata = map[string]string{"receipt": receipt}
	for k, v := range notes {
		params.Metadata[k] = v
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create payment intent: %w", err)
	}
	return pi.ID, nil
}

// CreateRefund refunds a payment intent.
func (s *Stripe) CreateRefund(ctx context.Context, paymentID string, amount int64, notes map[string]string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
		Amount:        stripe.Int64(amount),
	}
	params.Context = ctx
	if len(notes) > 0 {
		params.Metadata = notes
	}

	ref, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create refund: %w", err)
	}
	return ref.ID, nil
}

// VerifyWebhookSignature validates the Stripe-Signature header against
// the raw body using Stripe's timestamped scheme. Payload decoding is
// the pipeline's job, so only the signature and tolerance are checked.
func (s *Stripe) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" || len(body) == 0 || signature == "" {
		return false
	}
	return webhook.ValidatePayload(body, signature, s.webhookSecret) == nil
}

// VerifyPaymentSignature always fails: Stripe has no client-reported
// checkout signature, confirmation arrives via webhook only.
func (s *Stripe) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	return false
}
