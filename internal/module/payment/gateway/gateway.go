// Package gateway wraps the payment providers behind a single interface.
// Razorpay is the primary gateway; Stripe is kept for international
// cards. Signature schemes are provider specific, so verification lives
// here rather than in the webhook pipeline.
package gateway

import "context"

// Gateway is the payment provider interface.
type Gateway interface {
	// Name returns the provider identifier used in routes and event rows.
	Name() string

	// KeyID returns the public key the client-side checkout widget needs.
	KeyID() string

	// CreateOrder registers an order with the gateway and returns the
	// gateway's order identifier.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error)

	// CreateRefund issues a refund against a captured payment and
	// returns the gateway's refund identifier.
	CreateRefund(ctx context.Context, paymentID string, amount int64, notes map[string]string) (string, error)

	// VerifyWebhookSignature checks the signature header against the
	// exact raw request body. It never returns an error: a missing
	// secret, empty body, or absent header all fail closed.
	VerifyWebhookSignature(body []byte, signature string) bool

	// VerifyPaymentSignature checks the client-reported checkout
	// signature for the synchronous verification path.
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool
}
