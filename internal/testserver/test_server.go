// Package testserver runs the full HTTP stack over a seeded in-memory
// SQLite dataset for end-to-end tests.
package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/mcp"
	"github.com/rpggio/geodash/internal/source"
	"github.com/rpggio/geodash/internal/sqlite"
	"github.com/rpggio/geodash/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server     *httptest.Server
	DB         *sqlite.DB
	Repo       *sqlite.RecordRepository
	Workspaces *mcp.Workspaces
	Token      string
	ClientID   string
}

// New seeds count generated records into a fresh database and serves them
// behind bearer auth for token.
func New(t *testing.T, token, clientID string, count int) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	repo := sqlite.NewRecordRepository(db)
	gen := source.NewGenerator(count, 42)
	gen.Now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.ReplaceAll(context.Background(), gen.Generate()))

	workspaces := mcp.NewWorkspaces(mcp.WorkspaceConfig{
		Source:   source.NewSnapshot(repo),
		Location: time.UTC,
	})
	resolver := transport.NewTokenResolver(map[string]string{token: clientID})
	server := httptest.NewServer(transport.NewServer(mcp.NewHandler(workspaces), transport.AuthMiddleware(resolver)))

	ts := &TestServer{
		Server:     server,
		DB:         db,
		Repo:       repo,
		Workspaces: workspaces,
		Token:      token,
		ClientID:   clientID,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Call posts one JSON-RPC request for session and decodes the result into
// out. A JSON-RPC error is returned as-is with out untouched.
func (ts *TestServer) Call(t *testing.T, session, method string, params, out any) *transport.Error {
	t.Helper()

	body, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "method": method, "params": params, "id": 1})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	req.Header.Set(transport.SessionHeader, session)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Result json.RawMessage  `json:"result"`
		Error  *transport.Error `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	if envelope.Error != nil {
		return envelope.Error
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Result, out))
	}
	return nil
}

// Records returns the seeded dataset in load order.
func (ts *TestServer) Records(t *testing.T) []record.Record {
	t.Helper()
	records, err := ts.Repo.Fetch(context.Background())
	require.NoError(t, err)
	return records
}
