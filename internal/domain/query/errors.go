package query

import "errors"

var (
	// ErrInvalidDate indicates a date bound that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid filter date")
	// ErrInvalidDirection indicates a sort direction other than asc or desc.
	ErrInvalidDirection = errors.New("invalid sort direction")
)
