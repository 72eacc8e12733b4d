package mcp

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/stretchr/testify/require"
)

type gatedProvider struct {
	release chan struct{}
	calls   atomic.Int32
}

func (p *gatedProvider) Fetch(ctx context.Context) ([]record.Record, error) {
	p.calls.Add(1)
	select {
	case <-p.release:
		return fixtureRecords(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestWorkspaces_ConcurrentGetLoadsOnce(t *testing.T) {
	p := &gatedProvider{release: make(chan struct{})}
	spaces := NewWorkspaces(WorkspaceConfig{Source: p})

	const callers = 5
	var wg sync.WaitGroup
	results := make(chan *Workspace, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws, err := spaces.Get(context.Background(), "c", "s")
			if err == nil {
				results <- ws
			}
		}()
	}

	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(p.release)
	wg.Wait()
	close(results)

	var first *Workspace
	count := 0
	for ws := range results {
		if first == nil {
			first = ws
		}
		require.Same(t, first, ws)
		count++
	}
	require.Equal(t, callers, count)
	require.Equal(t, int32(1), p.calls.Load())
	require.Equal(t, 4, first.Explorer.DatasetSize())
}

func TestWorkspaces_WaitHonoursContext(t *testing.T) {
	p := &gatedProvider{release: make(chan struct{})}
	spaces := NewWorkspaces(WorkspaceConfig{Source: p})

	loading := make(chan struct{})
	go func() {
		defer close(loading)
		_, _ = spaces.Get(context.Background(), "c", "s")
	}()
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := spaces.Get(ctx, "c", "s")
	require.ErrorIs(t, err, context.Canceled)

	close(p.release)
	<-loading
}

func TestWorkspaces_EmptySessionIsDefault(t *testing.T) {
	spaces := NewWorkspaces(WorkspaceConfig{Source: &countingProvider{}})

	a, err := spaces.Get(context.Background(), "c", "")
	require.NoError(t, err)
	b, err := spaces.Get(context.Background(), "c", defaultSession)
	require.NoError(t, err)
	require.Same(t, a, b)

	other, err := spaces.Get(context.Background(), "d", "")
	require.NoError(t, err)
	require.NotSame(t, a, other)
}

func TestWorkspaces_Drop(t *testing.T) {
	spaces := NewWorkspaces(WorkspaceConfig{Source: &countingProvider{}})

	ws, err := spaces.Get(context.Background(), "c", "s")
	require.NoError(t, err)
	ws.Explorer.Select(1)
	require.Equal(t, 1, spaces.Len())

	spaces.Drop("c", "s")
	require.Equal(t, 0, spaces.Len())

	fresh, err := spaces.Get(context.Background(), "c", "s")
	require.NoError(t, err)
	_, selected := fresh.Explorer.SelectedID()
	require.False(t, selected)
}

func TestWorkspaces_LoadOutlivesFirstCaller(t *testing.T) {
	p := &gatedProvider{release: make(chan struct{})}
	spaces := NewWorkspaces(WorkspaceConfig{Source: p})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := spaces.Get(firstCtx, "c", "s")
		first <- err
	}()
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan *Workspace, 1)
	go func() {
		ws, err := spaces.Get(context.Background(), "c", "s")
		if err == nil {
			second <- ws
		}
		close(second)
	}()

	cancelFirst()
	require.ErrorIs(t, <-first, context.Canceled)

	close(p.release)
	ws, ok := <-second
	require.True(t, ok)
	require.Equal(t, 4, ws.Explorer.DatasetSize())
	require.Equal(t, int32(1), p.calls.Load())
}

func TestWorkspaces_LoadTimeout(t *testing.T) {
	p := &gatedProvider{release: make(chan struct{})}
	defer close(p.release)
	spaces := NewWorkspaces(WorkspaceConfig{Source: p, LoadTimeout: 10 * time.Millisecond})

	_, err := spaces.Get(context.Background(), "c", "s")
	require.ErrorIs(t, err, record.ErrLoadFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Eventually(t, func() bool { return spaces.Len() == 0 }, time.Second, 5*time.Millisecond)
}
