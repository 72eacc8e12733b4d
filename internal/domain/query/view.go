package query

import (
	"slices"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
)

// Derive computes the view of records under filter and order. It filters in a
// single order-preserving pass into a new slice and then sorts that slice
// stably, so records is never modified and equal keys keep insertion order.
func Derive(records []record.Record, filter FilterSpec, order SortSpec, loc *time.Location) []record.Record {
	pred := NewPredicate(filter, loc)
	view := make([]record.Record, 0, len(records))
	for _, r := range records {
		if pred.Match(r) {
			view = append(view, r)
		}
	}
	if order.Field == record.FieldNone || len(view) < 2 {
		return view
	}

	type keyed struct {
		rec record.Record
		key sortKey
	}
	decorated := make([]keyed, len(view))
	for i, r := range view {
		decorated[i] = keyed{rec: r, key: keyOf(r, order.Field)}
	}
	modifier := order.Direction.modifier()
	slices.SortStableFunc(decorated, func(a, b keyed) int {
		return compareKeys(a.key, b.key, modifier)
	})
	for i := range decorated {
		view[i] = decorated[i].rec
	}
	return view
}

// IDs lists the ids of view in order.
func IDs(view []record.Record) []int64 {
	ids := make([]int64, len(view))
	for i, r := range view {
		ids[i] = r.ID
	}
	return ids
}
