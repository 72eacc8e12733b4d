package record

import "errors"

var (
	// ErrLoadFailed indicates the data provider could not supply the dataset.
	ErrLoadFailed = errors.New("record load failed")
	// ErrMalformedData indicates the provider returned records that violate the model.
	ErrMalformedData = errors.New("malformed record data")
	// ErrDuplicateID indicates two records in one load share an id.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid record status")
	// ErrUnknownField indicates a field that records cannot be ordered by.
	ErrUnknownField = errors.New("unknown record field")
)
