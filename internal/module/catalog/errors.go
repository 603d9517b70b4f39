package catalog

import "errors"

// Module errors.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInactive  = errors.New("product is not active")
	ErrSlugAlreadyTaken = errors.New("product slug already taken")
)
