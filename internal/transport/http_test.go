package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/mcp"
	"github.com/rpggio/geodash/internal/source"
	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
}

func (h *testHandler) Handle(_ context.Context, clientID, sessionID, method string, params json.RawMessage) (any, error) {
	h.method = method
	return map[string]string{"client": clientID, "session": sessionID}, nil
}

func postRPC(t *testing.T, url, body string, headers map[string]string) (*http.Response, Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out Response
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	resolver := NewTokenResolver(map[string]string{"token": "client1"})
	server := httptest.NewServer(NewServer(handler, AuthMiddleware(resolver)))
	t.Cleanup(server.Close)

	resp, out := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"get_view","id":1}`, map[string]string{
		"Authorization":  "Bearer token",
		"Mcp-Session-Id": "sess1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "get_view", handler.method)
	require.Equal(t, map[string]any{"client": "client1", "session": "sess1"}, out.Result)
}

func TestHTTPServer_RPCRequiresAuth(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, AuthMiddleware(NewTokenResolver(nil))))
	t.Cleanup(server.Close)

	resp, _ := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"get_view","id":1}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	health, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	_ = health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)
}

func TestHTTPServer_MalformedRequests(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, StaticClientMiddleware("default")))
	t.Cleanup(server.Close)

	_, out := postRPC(t, server.URL, `not json`, nil)
	require.Equal(t, ErrParseCode, out.Error.Code)

	_, out = postRPC(t, server.URL, `{"jsonrpc":"1.0","method":"get_view"}`, nil)
	require.Equal(t, ErrInvalidReq, out.Error.Code)
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, nil))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_ExplorerRoundTrip(t *testing.T) {
	records := []record.Record{
		{ID: 1, ProjectName: "Harbor Bridge - Phase 1", Status: record.StatusActive, Region: "Europe"},
		{ID: 2, ProjectName: "Solar Farm - Phase 1", Status: record.StatusPending, Region: "Asia"},
	}
	workspaces := mcp.NewWorkspaces(mcp.WorkspaceConfig{
		Source: source.NewSnapshot(record.ProviderFunc(func(context.Context) ([]record.Record, error) {
			return records, nil
		})),
		Location: time.UTC,
	})
	server := httptest.NewServer(NewServer(mcp.NewHandler(workspaces), StaticClientMiddleware(mcp.DefaultClient)))
	t.Cleanup(server.Close)

	session := map[string]string{"Mcp-Session-Id": "s1"}

	_, out := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"set_filter","params":{"statuses":["Pending"]},"id":1}`, session)
	require.Nil(t, out.Error)
	result, ok := out.Result.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 1, result["total"])

	_, out = postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"set_page_size","params":{"size":7},"id":2}`, session)
	require.NotNil(t, out.Error)
	require.Equal(t, ErrApplication, out.Error.Code)
	data, ok := out.Error.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "INVALID_PAGE_SIZE", data["code"])

	_, out = postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"drop_table","id":3}`, session)
	require.Equal(t, ErrMethodNotFound, out.Error.Code)

	// Another session starts from an unfiltered view.
	_, out = postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"get_view","id":4}`, map[string]string{"Mcp-Session-Id": "s2"})
	result, ok = out.Result.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 2, result["total"])
}
