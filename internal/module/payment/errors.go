package payment

import "errors"

// Payment module errors.
var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedPayload = errors.New("malformed event payload")
	ErrEventNotFound    = errors.New("webhook event not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotRefundable    = errors.New("order is not refundable")
)
