package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/geodash/internal/domain/explorer"
	"github.com/rpggio/geodash/internal/domain/pagination"
	"github.com/rpggio/geodash/internal/domain/query"
	"github.com/rpggio/geodash/internal/domain/record"
)

// ErrUnknownMethod indicates a JSON-RPC method with no matching tool.
var ErrUnknownMethod = errors.New("unknown method")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, record.ErrInvalidStatus):
		return &APIError{Code: "INVALID_STATUS", Message: err.Error(), Details: statusStrings(record.Statuses()), RecoveryHint: "Call list_statuses for valid values"}
	case errors.Is(err, record.ErrUnknownField):
		return &APIError{Code: "UNKNOWN_FIELD", Message: err.Error(), Details: fieldStrings(record.SortableFields()), RecoveryHint: "Sort by one of the listed fields"}
	case errors.Is(err, query.ErrInvalidDate):
		return &APIError{Code: "INVALID_DATE", Message: err.Error(), RecoveryHint: "Use YYYY-MM-DD, or an empty string to clear"}
	case errors.Is(err, pagination.ErrInvalidPageSize):
		return &APIError{Code: "INVALID_PAGE_SIZE", Message: err.Error(), Details: pagination.PageSizes(), RecoveryHint: "Use one of the listed page sizes"}
	case errors.Is(err, pagination.ErrInvalidPage):
		return &APIError{Code: "INVALID_PAGE", Message: err.Error(), RecoveryHint: "Pages start at 0"}
	case errors.Is(err, explorer.ErrSuperseded):
		return &APIError{Code: "LOAD_SUPERSEDED", Message: err.Error(), RecoveryHint: "A newer dataset is already loaded"}
	case errors.Is(err, record.ErrLoadFailed):
		return &APIError{Code: "LOAD_FAILED", Message: record.FailureReason(err), RecoveryHint: "Retry; the dataset is fetched again on the next call"}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "UNKNOWN_METHOD", Message: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func fieldStrings(fields []record.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
