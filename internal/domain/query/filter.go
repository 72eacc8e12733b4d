package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"golang.org/x/text/cases"
)

// FilterSpec is a declarative record filter. Every zero-valued field imposes
// no constraint.
type FilterSpec struct {
	Search   string          `json:"search"`
	Statuses []record.Status `json:"statuses"`
	DateFrom Date            `json:"date_from"`
	DateTo   Date            `json:"date_to"`
}

// IsOpen reports whether spec matches every record.
func (s FilterSpec) IsOpen() bool {
	return s.Search == "" && len(s.Statuses) == 0 && s.DateFrom.IsZero() && s.DateTo.IsZero()
}

// Validate rejects unknown statuses. Date ranges are not checked: an inverted
// range is legal and matches nothing.
func (s FilterSpec) Validate() error {
	for _, st := range s.Statuses {
		if !st.Valid() {
			return fmt.Errorf("%w: %q", record.ErrInvalidStatus, st)
		}
	}
	return nil
}

// FilterPatch is a partial FilterSpec. A nil field leaves the current value in
// place; a non-nil field replaces it, so a pointer to a zero value clears it.
type FilterPatch struct {
	Search   *string
	Statuses *[]record.Status
	DateFrom *Date
	DateTo   *Date
}

// Merge applies patch on top of current and returns the result.
func Merge(current FilterSpec, patch FilterPatch) FilterSpec {
	next := current
	next.Statuses = slices.Clone(current.Statuses)
	if patch.Search != nil {
		next.Search = *patch.Search
	}
	if patch.Statuses != nil {
		next.Statuses = slices.Clone(*patch.Statuses)
	}
	if patch.DateFrom != nil {
		next.DateFrom = *patch.DateFrom
	}
	if patch.DateTo != nil {
		next.DateTo = *patch.DateTo
	}
	return next
}

// Predicate is a FilterSpec prepared for repeated matching in one location.
type Predicate struct {
	needle   string
	statuses map[record.Status]struct{}
	from     *time.Time
	to       *time.Time
}

// NewPredicate prepares spec for matching. Date bounds are resolved against loc,
// which defaults to time.Local.
func NewPredicate(spec FilterSpec, loc *time.Location) Predicate {
	if loc == nil {
		loc = time.Local
	}
	p := Predicate{needle: fold(spec.Search)}
	if len(spec.Statuses) > 0 {
		p.statuses = make(map[record.Status]struct{}, len(spec.Statuses))
		for _, st := range spec.Statuses {
			p.statuses[st] = struct{}{}
		}
	}
	if !spec.DateFrom.IsZero() {
		from := spec.DateFrom.StartOf(loc)
		p.from = &from
	}
	if !spec.DateTo.IsZero() {
		to := spec.DateTo.EndOf(loc)
		p.to = &to
	}
	return p
}

// Match reports whether r satisfies every constraint.
func (p Predicate) Match(r record.Record) bool {
	if p.needle != "" && !strings.Contains(fold(r.ProjectName), p.needle) {
		return false
	}
	if p.statuses != nil {
		if _, ok := p.statuses[r.Status]; !ok {
			return false
		}
	}
	if p.from != nil || p.to != nil {
		if r.LastUpdated == nil {
			return false
		}
		if p.from != nil && r.LastUpdated.Before(*p.from) {
			return false
		}
		if p.to != nil && !r.LastUpdated.Before(*p.to) {
			return false
		}
	}
	return true
}

// Matches reports whether r satisfies spec, resolving dates in loc.
func Matches(r record.Record, spec FilterSpec, loc *time.Location) bool {
	return NewPredicate(spec, loc).Match(r)
}

// fold case-folds s. A Caser carries state, so each call gets its own.
func fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}
