package record_test

import (
	"math"
	"testing"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := record.Record{ID: 1, Latitude: 0, Longitude: 0, Status: record.StatusCompleted}
	require.NoError(t, record.Validate(valid))

	cases := map[string]func(r *record.Record){
		"zero id":        func(r *record.Record) { r.ID = 0 },
		"latitude high":  func(r *record.Record) { r.Latitude = 90.5 },
		"latitude nan":   func(r *record.Record) { r.Latitude = math.NaN() },
		"longitude low":  func(r *record.Record) { r.Longitude = -180.01 },
		"unknown status": func(r *record.Record) { r.Status = "Archived" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := valid
			mutate(&r)
			require.ErrorIs(t, record.Validate(r), record.ErrMalformedData)
		})
	}
}

func TestValidate_StatusErrorIsSpecific(t *testing.T) {
	err := record.Validate(record.Record{ID: 4, Status: "nope"})
	require.ErrorIs(t, err, record.ErrInvalidStatus)
}

func TestParseStatus(t *testing.T) {
	s, err := record.ParseStatus("On Hold")
	require.NoError(t, err)
	require.Equal(t, record.StatusOnHold, s)

	_, err = record.ParseStatus("on hold")
	require.ErrorIs(t, err, record.ErrInvalidStatus)
}

func TestStatuses_ReturnsCopy(t *testing.T) {
	first := record.Statuses()
	require.Equal(t, []record.Status{record.StatusActive, record.StatusPending, record.StatusCompleted, record.StatusOnHold}, first)
	first[0] = "mutated"
	require.Equal(t, record.StatusActive, record.Statuses()[0])
}

func TestField_Valid(t *testing.T) {
	require.True(t, record.FieldNone.Valid())
	for _, f := range record.SortableFields() {
		require.True(t, f.Valid(), f)
	}
	require.False(t, record.Field("projectName").Valid())
}

func TestRecord_ValuePanicsOnUnknownField(t *testing.T) {
	require.Panics(t, func() {
		record.Record{ID: 1}.Value("bogus")
	})
}
