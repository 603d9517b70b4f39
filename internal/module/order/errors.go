package order

import "errors"

// Order module errors.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order state transition")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrMissingBuyer      = errors.New("order requires a user or guest contact")
	ErrAccessDenied      = errors.New("access to order denied")
	ErrGatewayCreate     = errors.New("failed to create gateway order")
	ErrUnknownGateway    = errors.New("unknown payment gateway")
)
