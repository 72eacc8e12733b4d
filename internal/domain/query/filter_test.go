package query_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rpggio/geodash/internal/domain/query"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/stretchr/testify/require"
)

func ids(t *testing.T, spec query.FilterSpec, loc *time.Location) []int64 {
	t.Helper()
	return query.IDs(query.Derive(fixture(), spec, query.SortSpec{}, loc))
}

func TestMatches_OpenSpecMatchesEverything(t *testing.T) {
	spec := query.FilterSpec{}
	require.True(t, spec.IsOpen())
	for _, r := range fixture() {
		require.True(t, query.Matches(r, spec, time.UTC))
	}
}

func TestMatches_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	require.Equal(t, []int64{3, 4}, ids(t, query.FilterSpec{Search: "PHASE 2"}, time.UTC))
	require.Equal(t, []int64{3}, ids(t, query.FilterSpec{Search: "Ethics"}, time.UTC))
	require.Empty(t, ids(t, query.FilterSpec{Search: "nowhere"}, time.UTC))
}

func TestMatches_Statuses(t *testing.T) {
	spec := query.FilterSpec{Statuses: []record.Status{record.StatusActive, record.StatusOnHold}}
	require.Equal(t, []int64{1, 3, 5}, ids(t, spec, time.UTC))
}

func TestMatches_DateBoundsAreInclusiveDays(t *testing.T) {
	jan31 := query.Date{Year: 2025, Month: time.January, Day: 31}

	require.Equal(t, []int64{3, 4}, ids(t, query.FilterSpec{DateFrom: jan31}, time.UTC))
	require.Equal(t, []int64{1, 4}, ids(t, query.FilterSpec{DateTo: jan31}, time.UTC))
	require.Equal(t, []int64{4}, ids(t, query.FilterSpec{DateFrom: jan31, DateTo: jan31}, time.UTC))
}

func TestMatches_DateBoundsUseLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	jan31 := query.Date{Year: 2025, Month: time.January, Day: 31}

	// Day-end of Jan 31 in EST is Feb 1 05:00 UTC, which covers record 3.
	require.Equal(t, []int64{1, 3, 4}, ids(t, query.FilterSpec{DateTo: jan31}, est))
}

func TestMatches_InvertedRangeYieldsEmptyView(t *testing.T) {
	spec := query.FilterSpec{
		DateFrom: query.Date{Year: 2025, Month: time.March, Day: 1},
		DateTo:   query.Date{Year: 2025, Month: time.January, Day: 1},
	}
	require.NoError(t, spec.Validate())
	require.Empty(t, ids(t, spec, time.UTC))
}

func TestMatches_MissingTimestampFailsDateBounds(t *testing.T) {
	r := record.Record{ID: 9, Status: record.StatusActive}
	require.True(t, query.Matches(r, query.FilterSpec{}, time.UTC))
	require.False(t, query.Matches(r, query.FilterSpec{DateFrom: query.Date{Year: 1970, Month: 1, Day: 1}}, time.UTC))
}

func TestFilter_Monotonicity(t *testing.T) {
	loose := query.FilterSpec{Search: "phase"}
	strict := query.FilterSpec{Search: "phase", Statuses: []record.Status{record.StatusActive}}

	looseView := ids(t, loose, time.UTC)
	strictView := ids(t, strict, time.UTC)
	require.True(t, isSubsequence(strictView, looseView), "%v not a subsequence of %v", strictView, looseView)
}

func isSubsequence(sub, full []int64) bool {
	i := 0
	for _, id := range full {
		if i < len(sub) && sub[i] == id {
			i++
		}
	}
	return i == len(sub)
}

func TestFilterSpec_ValidateRejectsUnknownStatus(t *testing.T) {
	err := query.FilterSpec{Statuses: []record.Status{"Archived"}}.Validate()
	require.ErrorIs(t, err, record.ErrInvalidStatus)
}

func TestMerge(t *testing.T) {
	current := query.FilterSpec{
		Search:   "bridge",
		Statuses: []record.Status{record.StatusActive},
		DateFrom: query.Date{Year: 2025, Month: 1, Day: 1},
	}

	t.Run("nil fields are untouched", func(t *testing.T) {
		next := query.Merge(current, query.FilterPatch{Search: strPtr("park")})
		require.Equal(t, "park", next.Search)
		require.Equal(t, current.Statuses, next.Statuses)
		require.Equal(t, current.DateFrom, next.DateFrom)
	})

	t.Run("zero values clear", func(t *testing.T) {
		empty := []record.Status{}
		next := query.Merge(current, query.FilterPatch{Statuses: &empty, DateFrom: &query.Date{}})
		require.Empty(t, next.Statuses)
		require.True(t, next.DateFrom.IsZero())
		require.Equal(t, "bridge", next.Search)
	})

	t.Run("result does not alias inputs", func(t *testing.T) {
		statuses := []record.Status{record.StatusPending}
		next := query.Merge(current, query.FilterPatch{Statuses: &statuses})
		statuses[0] = record.StatusCompleted
		require.Equal(t, record.StatusPending, next.Statuses[0])

		next = query.Merge(current, query.FilterPatch{})
		next.Statuses[0] = record.StatusOnHold
		require.Equal(t, record.StatusActive, current.Statuses[0])
	})
}

func TestDate_JSON(t *testing.T) {
	var spec query.FilterSpec
	require.NoError(t, json.Unmarshal([]byte(`{"date_from":"2025-01-31","date_to":null}`), &spec))
	require.Equal(t, query.Date{Year: 2025, Month: time.January, Day: 31}, spec.DateFrom)
	require.True(t, spec.DateTo.IsZero())

	out, err := json.Marshal(spec)
	require.NoError(t, err)
	require.JSONEq(t, `{"search":"","statuses":null,"date_from":"2025-01-31","date_to":null}`, string(out))

	_, err = query.ParseDate("31/01/2025")
	require.ErrorIs(t, err, query.ErrInvalidDate)
	var d query.Date
	require.ErrorIs(t, json.Unmarshal([]byte(`"2025-13-01"`), &d), query.ErrInvalidDate)
}
