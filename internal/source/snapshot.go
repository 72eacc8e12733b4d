package source

import (
	"context"
	"sync"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a shared fetch once no single caller owns it.
const DefaultFetchTimeout = time.Minute

// Snapshot fetches from an underlying provider once and serves the same
// records to every caller afterwards. A failed fetch is not kept, so the
// next caller tries again.
type Snapshot struct {
	next    record.Provider
	timeout time.Duration
	group   singleflight.Group

	mu      sync.Mutex
	records []record.Record
	done    bool
}

// NewSnapshot wraps p.
func NewSnapshot(p record.Provider) *Snapshot {
	return &Snapshot{next: p, timeout: DefaultFetchTimeout}
}

// WithFetchTimeout sets the bound on the shared fetch.
func (s *Snapshot) WithFetchTimeout(d time.Duration) *Snapshot {
	s.timeout = d
	return s
}

// Fetch returns the cached records, fetching them first if needed. Concurrent
// callers share one in-flight fetch; each stops waiting when its own ctx ends,
// without cancelling the fetch for the others. Callers share the returned
// slice and must not modify it.
func (s *Snapshot) Fetch(ctx context.Context) ([]record.Record, error) {
	if records, ok := s.cached(); ok {
		return records, nil
	}

	ch := s.group.DoChan("fetch", func() (any, error) {
		if records, ok := s.cached(); ok {
			return records, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		records, err := s.next.Fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.records = records
		s.done = true
		s.mu.Unlock()
		return records, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]record.Record), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Snapshot) cached() ([]record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records, s.done
}

// ListStatuses delegates to the wrapped provider when it lists statuses.
func (s *Snapshot) ListStatuses() []record.Status {
	if lister, ok := s.next.(record.StatusLister); ok {
		return lister.ListStatuses()
	}
	return record.Statuses()
}

// Reset drops the cached records.
func (s *Snapshot) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.done = false
}
