package transport

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest(bytes.NewBufferString(`{"jsonrpc":"2.0","method":"set_page","params":{"page":2},"id":"a1"}`))
	require.NoError(t, err)
	require.Equal(t, "set_page", req.Method)
	require.Equal(t, "a1", req.ID)
	require.JSONEq(t, `{"page":2}`, string(req.Params))

	req, err = ParseRequest(bytes.NewBufferString(`{"jsonrpc":"2.0","method":"get_view"}`))
	require.NoError(t, err)
	require.Nil(t, req.ID)
	require.Empty(t, req.Params)
}

func TestParseRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "truncated", body: `{"jsonrpc":`, want: ErrParse},
		{name: "not json", body: `get_view`, want: ErrParse},
		{name: "missing method", body: `{"jsonrpc":"2.0","id":1}`, want: ErrInvalidRequest},
		{name: "wrong version", body: `{"jsonrpc":"1.0","method":"get_view"}`, want: ErrInvalidRequest},
		{name: "method not a string", body: `{"jsonrpc":"2.0","method":7}`, want: ErrInvalidRequest},
		{name: "object id", body: `{"jsonrpc":"2.0","method":"get_view","id":{"n":1}}`, want: ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(bytes.NewBufferString(tt.body))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 1, ErrApplication, "page size must be one of 10, 25, 50, 100",
		ErrorData{Code: "INVALID_PAGE_SIZE", RecoveryHint: "pick an allowed size"})

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,
		"message":"page size must be one of 10, 25, 50, 100",
		"data":{"code":"INVALID_PAGE_SIZE","recovery_hint":"pick an allowed size"}}}`, rec.Body.String())
}

func TestWriteResult(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteResult(rec, "x", map[string]int{"total": 3})

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, Version, resp.JSONRPC)
	require.Equal(t, "x", resp.ID)
	require.Nil(t, resp.Error)
	require.Equal(t, map[string]any{"total": float64(3)}, resp.Result)
}
