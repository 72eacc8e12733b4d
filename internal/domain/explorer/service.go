package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/geodash/internal/domain/pagination"
	"github.com/rpggio/geodash/internal/domain/query"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/domain/selection"
	"github.com/rpggio/geodash/internal/metrics"
)

// Service coordinates one explorer session: the dataset, the filter and sort
// specs, the derived view, the page window and the selection. It is the only
// writer of that state and guards all of it with a single mutex.
type Service struct {
	mu        sync.Mutex
	store     *record.Store
	filter    query.FilterSpec
	order     query.SortSpec
	view      []record.Record
	window    *pagination.Window
	selection *selection.Controller

	// started counts loads begun; applied is the number of the load whose
	// dataset is held.
	started uint64
	applied uint64

	statuses record.StatusLister
	loc      *time.Location
	recorder metrics.Recorder
	logger   *slog.Logger
	onReady  DataReadyHandler
	onError  ErrorHandler
}

// NewService creates an unloaded service. Every operation is usable before
// the first load and acts on an empty dataset.
func NewService(opts ...Option) *Service {
	s := &Service{
		store:     record.NewStore(),
		view:      []record.Record{},
		window:    pagination.NewWindow(pagination.DefaultPageSize),
		selection: selection.NewController(),
		loc:       time.Local,
		recorder:  metrics.Nop{},
		logger:    discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the dataset from p. On success the store is replaced, the view
// re-derived with the current specs and the page reset, then the data-ready
// handler runs. On failure the held state is untouched and the error handler
// runs with the reason. A successful result from a load that started before
// the currently held one is dropped and ErrSuperseded returned.
func (s *Service) Load(ctx context.Context, p record.Provider) error {
	s.mu.Lock()
	s.started++
	gen := s.started
	s.mu.Unlock()

	s.logger.Debug("loading dataset", "load", gen)
	start := time.Now()
	records, err := record.Fetch(ctx, p)
	elapsed := time.Since(start)

	if err != nil {
		reason := record.FailureReason(err)
		s.logger.Error("dataset load failed", "load", gen, "reason", reason)
		s.recorder.ObserveLoad(metrics.OutcomeFailure, 0, elapsed)
		if s.onError != nil {
			s.onError(reason)
		}
		return err
	}

	s.mu.Lock()
	if gen < s.applied {
		s.mu.Unlock()
		s.logger.Info("discarding superseded load", "load", gen, "records", len(records))
		s.recorder.ObserveLoad(metrics.OutcomeSuperseded, len(records), elapsed)
		return fmt.Errorf("%w: load %d", ErrSuperseded, gen)
	}
	s.store.Replace(records)
	s.applied = gen
	s.recomputeLocked()
	view, total := s.view, len(s.view)
	s.mu.Unlock()

	s.logger.Info("dataset loaded", "load", gen, "records", len(records), "duration", elapsed)
	s.recorder.ObserveLoad(metrics.OutcomeSuccess, len(records), elapsed)
	if s.onReady != nil {
		s.onReady(view, total)
	}
	return nil
}

// SetFilter merges patch into the current filter, re-derives the view and
// returns to page 0. An invalid result leaves all state unchanged.
func (s *Service) SetFilter(patch query.FilterPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := query.Merge(s.filter, patch)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("set filter: %w", err)
	}
	s.filter = next
	s.recomputeLocked()
	return nil
}

// SetSort picks field as the sort field: the current field flips from asc to
// desc, any other field starts at asc. FieldNone returns to insertion order.
func (s *Service) SetSort(field record.Field) error {
	if !field.Valid() {
		return fmt.Errorf("set sort: %w: %q", record.ErrUnknownField, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if field == record.FieldNone {
		s.order = query.SortSpec{}
	} else {
		s.order = s.order.Toggle(field)
	}
	s.recomputeLocked()
	return nil
}

// ClearFilters resets the filter to the open spec. Sort and selection are
// kept.
func (s *Service) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = query.FilterSpec{}
	s.recomputeLocked()
}

// Select selects id whether or not it is in the current view, then notifies
// subscribers.
func (s *Service) Select(id int64) {
	s.mu.Lock()
	change := s.selection.Select(id)
	s.mu.Unlock()

	s.logger.Debug("record selected", "id", id)
	s.selection.Dispatch(change)
}

// ClearSelection unsets the selection, then notifies subscribers.
func (s *Service) ClearSelection() {
	s.mu.Lock()
	change := s.selection.Clear()
	s.mu.Unlock()

	s.logger.Debug("selection cleared")
	s.selection.Dispatch(change)
}

// Subscribe registers fn for selection changes.
func (s *Service) Subscribe(fn selection.Listener) uuid.UUID {
	return s.selection.Subscribe(fn)
}

// Unsubscribe removes a selection listener.
func (s *Service) Unsubscribe(id uuid.UUID) {
	s.selection.Unsubscribe(id)
}

// SetPage moves to page i.
func (s *Service) SetPage(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.window.SetPage(i); err != nil {
		return fmt.Errorf("set page: %w", err)
	}
	return nil
}

// SetPageSize changes the page size and returns to page 0.
func (s *Service) SetPageSize(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.window.SetPageSize(n); err != nil {
		return fmt.Errorf("set page size: %w", err)
	}
	return nil
}

// CurrentView returns the derived view. The slice is replaced, never
// modified, on recompute; callers must treat it as read-only.
func (s *Service) CurrentView() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// CurrentPageSlice returns the records on the current page.
func (s *Service) CurrentPageSlice() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pagination.Slice(s.window, s.view)
}

// SelectedID returns the selected id, if any.
func (s *Service) SelectedID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Selected()
}

// TotalMatchCount returns the number of records in the view.
func (s *Service) TotalMatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.view)
}

// DatasetSize returns the number of records held.
func (s *Service) DatasetSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Size()
}

// Filter returns a copy of the current filter.
func (s *Service) Filter() query.FilterSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Merge(s.filter, query.FilterPatch{})
}

// Sort returns the current sort spec.
func (s *Service) Sort() query.SortSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

// PageState returns the current page index and size.
func (s *Service) PageState() pagination.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.State()
}

// Statuses lists the status filter choices.
func (s *Service) Statuses() []record.Status {
	if s.statuses != nil {
		if listed := s.statuses.ListStatuses(); len(listed) > 0 {
			return listed
		}
	}
	return record.Statuses()
}

// Lookup finds a held record by id, in or out of the view.
func (s *Service) Lookup(id int64) (record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Lookup(id)
}

// Locate finds id in the current view.
func (s *Service) Locate(id int64) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locateLocked(id)
}

// Snapshot captures the whole session state in one consistent read.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Loaded:      s.store.Loaded(),
		DatasetSize: s.store.Size(),
		Filter:      query.Merge(s.filter, query.FilterPatch{}),
		Sort:        s.order,
		View:        s.view,
		Page:        pagination.Slice(s.window, s.view),
		PageState:   s.window.State(),
		PageCount:   s.window.PageCount(len(s.view)),
		Total:       len(s.view),
	}
	if id, ok := s.selection.Selected(); ok {
		snap.Selected = &id
		if r, ok := s.store.Lookup(id); ok {
			snap.SelectedRecord = &r
		}
		if pos, ok := s.locateLocked(id); ok {
			snap.SelectedPosition = &pos
		}
	}
	return snap
}

func (s *Service) locateLocked(id int64) (Position, bool) {
	i := slices.IndexFunc(s.view, func(r record.Record) bool { return r.ID == id })
	if i < 0 {
		return Position{}, false
	}
	page, row := s.window.PageOf(i)
	return Position{Index: i, Page: page, Row: row}, true
}

// recomputeLocked re-derives the view from the full store and returns to
// page 0. The caller holds s.mu.
func (s *Service) recomputeLocked() {
	start := time.Now()
	s.view = query.Derive(s.store.All(), s.filter, s.order, s.loc)
	s.window.Reset()
	elapsed := time.Since(start)

	s.recorder.ObserveDerive(len(s.view), s.store.Size(), elapsed)
	s.logger.Debug("view derived", "matched", len(s.view), "total", s.store.Size(), "duration", elapsed)
}
