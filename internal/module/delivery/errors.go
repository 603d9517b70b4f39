package delivery

import "errors"

// Delivery module errors.
var (
	ErrOrderNotCompleted = errors.New("order is not completed")
	ErrWrongPassword     = errors.New("wrong download password")
	ErrNothingToDeliver  = errors.New("order has no deliverable files")
)
