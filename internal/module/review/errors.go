package review

import "errors"

// Review module errors.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrAlreadyReviewed = errors.New("product already reviewed")
	ErrAlreadyDecided  = errors.New("review already moderated")
)
