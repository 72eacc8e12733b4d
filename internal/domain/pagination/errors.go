package pagination

import "errors"

var (
	// ErrInvalidPageSize indicates a page size outside the allowed set.
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrInvalidPage indicates a negative page index.
	ErrInvalidPage = errors.New("invalid page index")
)
