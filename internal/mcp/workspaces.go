package mcp

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/geodash/internal/domain/explorer"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/metrics"
	"github.com/rpggio/geodash/internal/presenter/spatial"
	"github.com/rpggio/geodash/internal/presenter/table"
)

const defaultSession = "default"

// DefaultLoadTimeout bounds a workspace load.
const DefaultLoadTimeout = time.Minute

// WorkspaceConfig configures the explorer created for each session.
type WorkspaceConfig struct {
	// Source is shared by every workspace. Wrap it in a source.Snapshot so
	// the dataset is fetched once per process.
	Source   record.Provider
	PageSize int
	Location *time.Location
	Recorder metrics.Recorder
	Logger   *slog.Logger
	// LoadTimeout bounds the shared load. The load does not end when the
	// caller that started it goes away.
	LoadTimeout time.Duration
}

// Workspace is one client session's explorer with its table and map views.
type Workspace struct {
	Explorer *explorer.Service
	Table    *table.Adapter
	Map      *spatial.Adapter

	ready chan struct{}
	err   error
}

type workspaceKey struct {
	client  string
	session string
}

// Workspaces holds one explorer per (client, session), created and loaded on
// first use.
type Workspaces struct {
	cfg WorkspaceConfig

	mu     sync.Mutex
	spaces map[workspaceKey]*Workspace
}

// NewWorkspaces creates an empty registry.
func NewWorkspaces(cfg WorkspaceConfig) *Workspaces {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Nop{}
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	return &Workspaces{cfg: cfg, spaces: make(map[workspaceKey]*Workspace)}
}

// Get returns the workspace for (client, session), loading it if it is new.
// Concurrent callers for a new workspace wait for the same load, each until
// its own ctx ends. A workspace whose load failed is forgotten so the next
// call retries.
func (w *Workspaces) Get(ctx context.Context, client, session string) (*Workspace, error) {
	if session == "" {
		session = defaultSession
	}
	key := workspaceKey{client: client, session: session}

	w.mu.Lock()
	ws, ok := w.spaces[key]
	if !ok {
		ws = w.newWorkspace(key)
		w.spaces[key] = ws
	}
	w.mu.Unlock()

	if !ok {
		go w.load(context.WithoutCancel(ctx), key, ws)
	}

	select {
	case <-ws.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if ws.err != nil {
		return nil, ws.err
	}
	return ws, nil
}

func (w *Workspaces) load(ctx context.Context, key workspaceKey, ws *Workspace) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.LoadTimeout)
	defer cancel()

	ws.err = ws.Explorer.Load(ctx, w.cfg.Source)
	if ws.err != nil {
		w.mu.Lock()
		if w.spaces[key] == ws {
			delete(w.spaces, key)
		}
		w.mu.Unlock()
	}
	close(ws.ready)
}

// Drop closes and forgets a workspace.
func (w *Workspaces) Drop(client, session string) {
	if session == "" {
		session = defaultSession
	}
	key := workspaceKey{client: client, session: session}

	w.mu.Lock()
	ws, ok := w.spaces[key]
	delete(w.spaces, key)
	w.mu.Unlock()

	if ok {
		ws.Table.Close()
		ws.Map.Close()
	}
}

// Len returns the number of live workspaces.
func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.spaces)
}

// Location is the location dates are shown and filtered in.
func (w *Workspaces) Location() *time.Location {
	return w.cfg.Location
}

func (w *Workspaces) newWorkspace(key workspaceKey) *Workspace {
	logger := w.cfg.Logger.With("client_id", key.client, "session_id", key.session)
	opts := []explorer.Option{
		explorer.WithLogger(logger),
		explorer.WithPageSize(w.cfg.PageSize),
		explorer.WithLocation(w.cfg.Location),
		explorer.WithRecorder(w.cfg.Recorder),
		explorer.WithErrorHandler(func(reason string) {
			logger.Warn("workspace load failed", "reason", reason)
		}),
	}
	if lister, ok := w.cfg.Source.(record.StatusLister); ok {
		opts = append(opts, explorer.WithStatusLister(lister))
	}
	svc := explorer.NewService(opts...)

	return &Workspace{
		Explorer: svc,
		Table: table.NewAdapter(svc, w.cfg.Location, func(target table.RowTarget) {
			logger.Debug("table scroll", "id", target.ID, "in_view", target.InView, "page", target.Page, "row", target.Row)
		}),
		Map: spatial.NewAdapter(svc, func(focus spatial.Focus) {
			logger.Debug("map focus", "id", focus.ID, "lat", focus.Latitude, "lng", focus.Longitude)
		}),
		ready: make(chan struct{}),
	}
}
