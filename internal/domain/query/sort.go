package query

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection resolves a direction, defaulting an empty value to Asc.
func ParseDirection(value string) (Direction, error) {
	switch Direction(value) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, value)
	}
}

func (d Direction) modifier() int {
	if d == Desc {
		return -1
	}
	return 1
}

// SortSpec orders a view. FieldNone keeps the filtered insertion order.
type SortSpec struct {
	Field     record.Field `json:"field"`
	Direction Direction    `json:"direction"`
}

// Toggle returns the spec that results from picking field: the same field
// flips asc to desc, anything else starts at asc.
func (s SortSpec) Toggle(field record.Field) SortSpec {
	if s.Field == field && s.Direction != Desc {
		return SortSpec{Field: field, Direction: Desc}
	}
	return SortSpec{Field: field, Direction: Asc}
}

// Validate rejects fields records cannot be ordered by.
func (s SortSpec) Validate() error {
	if !s.Field.Valid() {
		return fmt.Errorf("%w: %q", record.ErrUnknownField, s.Field)
	}
	if s.Direction != "" && s.Direction != Asc && s.Direction != Desc {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, s.Direction)
	}
	return nil
}

// sortKey is the comparable form of one record attribute.
type sortKey struct {
	present bool
	numeric bool
	num     float64
	text    string
}

func keyOf(r record.Record, field record.Field) sortKey {
	v, ok := r.Value(field)
	if !ok {
		return sortKey{}
	}
	switch val := v.(type) {
	case int64:
		return sortKey{present: true, numeric: true, num: float64(val), text: strconv.FormatInt(val, 10)}
	case float64:
		return sortKey{present: true, numeric: true, num: val, text: strconv.FormatFloat(val, 'f', -1, 64)}
	case time.Time:
		ms := val.UnixMilli()
		return sortKey{present: true, numeric: true, num: float64(ms), text: strconv.FormatInt(ms, 10)}
	case string:
		k := sortKey{present: true, text: fold(val)}
		if n, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && !math.IsNaN(n) {
			k.numeric = true
			k.num = n
		}
		return k
	default:
		panic(fmt.Sprintf("query: unsupported value %T for field %s", v, field))
	}
}

// compareKeys orders two keys. Absent values come first whatever the
// direction; the modifier applies to value comparisons only.
func compareKeys(a, b sortKey, modifier int) int {
	switch {
	case !a.present && !b.present:
		return 0
	case !a.present:
		return -1
	case !b.present:
		return 1
	}
	if a.numeric && b.numeric {
		return modifier * cmp.Compare(a.num, b.num)
	}
	return modifier * strings.Compare(a.text, b.text)
}

// Compare orders a and b under spec, returning -1, 0 or 1. It panics when
// spec names a field records do not have.
func Compare(a, b record.Record, spec SortSpec) int {
	if spec.Field == record.FieldNone {
		return 0
	}
	return compareKeys(keyOf(a, spec.Field), keyOf(b, spec.Field), spec.Direction.modifier())
}
