package record

import (
	"context"
	"errors"
	"fmt"
)

// Store holds the full dataset of one session. It is populated by a
// successful load and never mutated in place afterwards; a later load
// replaces the whole sequence.
type Store struct {
	records []Record
	index   map[int64]int
	loaded  bool
}

// NewStore creates an empty, unloaded store.
func NewStore() *Store {
	return &Store{}
}

// Fetch retrieves and validates the dataset from p without touching any store.
// Every failure wraps ErrLoadFailed.
func Fetch(ctx context.Context, p Provider) ([]Record, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrLoadFailed)
	}
	records, err := p.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if err := ValidateAll(records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return records, nil
}

// Load fetches from p and replaces the held dataset on success. On failure the
// store is left as it was.
func (s *Store) Load(ctx context.Context, p Provider) error {
	records, err := Fetch(ctx, p)
	if err != nil {
		return err
	}
	s.Replace(records)
	return nil
}

// Replace swaps in an already validated dataset, keeping the given order.
func (s *Store) Replace(records []Record) {
	index := make(map[int64]int, len(records))
	for i, r := range records {
		index[r.ID] = i
	}
	s.records = records
	s.index = index
	s.loaded = true
}

// All returns the held sequence in insertion order. The slice is shared, not
// copied; callers must treat it as read-only.
func (s *Store) All() []Record {
	return s.records
}

// Size returns the number of held records.
func (s *Store) Size() int {
	return len(s.records)
}

// Loaded reports whether a load has succeeded.
func (s *Store) Loaded() bool {
	return s.loaded
}

// Lookup finds a record by id.
func (s *Store) Lookup(id int64) (Record, bool) {
	i, ok := s.index[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// FailureReason extracts the user-facing reason from a load error.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	// Errors built by Fetch wrap ErrLoadFailed alongside the cause.
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !errors.Is(e, ErrLoadFailed) {
				return e.Error()
			}
		}
	}
	return err.Error()
}
