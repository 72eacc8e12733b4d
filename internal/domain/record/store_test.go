package record_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/stretchr/testify/require"
)

func sample() []record.Record {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []record.Record{
		{ID: 1, ProjectName: "Alpha", Status: record.StatusActive, Latitude: 10, Longitude: 20, LastUpdated: &ts},
		{ID: 2, ProjectName: "Beta", Status: record.StatusPending, Latitude: -10, Longitude: -20},
		{ID: 3, ProjectName: "Gamma", Status: record.StatusOnHold, Latitude: 45, Longitude: 170},
	}
}

func TestStore_LoadKeepsInsertionOrder(t *testing.T) {
	store := record.NewStore()
	require.False(t, store.Loaded())
	require.Equal(t, 0, store.Size())

	err := store.Load(context.Background(), record.ProviderFunc(func(context.Context) ([]record.Record, error) {
		return sample(), nil
	}))
	require.NoError(t, err)
	require.True(t, store.Loaded())
	require.Equal(t, 3, store.Size())

	ids := make([]int64, 0, store.Size())
	for _, r := range store.All() {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []int64{1, 2, 3}, ids)

	rec, ok := store.Lookup(2)
	require.True(t, ok)
	require.Equal(t, "Beta", rec.ProjectName)
	_, ok = store.Lookup(99)
	require.False(t, ok)
}

func TestStore_LoadFailureKeepsNothing(t *testing.T) {
	store := record.NewStore()
	err := store.Load(context.Background(), record.ProviderFunc(func(context.Context) ([]record.Record, error) {
		return nil, errors.New("upstream unavailable")
	}))
	require.ErrorIs(t, err, record.ErrLoadFailed)
	require.Equal(t, "upstream unavailable", record.FailureReason(err))
	require.False(t, store.Loaded())
	require.Empty(t, store.All())
}

func TestStore_LoadFailureKeepsPreviousData(t *testing.T) {
	store := record.NewStore()
	store.Replace(sample())

	err := store.Load(context.Background(), record.ProviderFunc(func(context.Context) ([]record.Record, error) {
		return nil, errors.New("boom")
	}))
	require.Error(t, err)
	require.Equal(t, 3, store.Size())
}

func TestStore_MalformedDataFailsLoad(t *testing.T) {
	store := record.NewStore()
	bad := sample()
	bad[2].ID = 1

	err := store.Load(context.Background(), record.ProviderFunc(func(context.Context) ([]record.Record, error) {
		return bad, nil
	}))
	require.ErrorIs(t, err, record.ErrLoadFailed)
	require.ErrorIs(t, err, record.ErrMalformedData)
	require.ErrorIs(t, err, record.ErrDuplicateID)
	require.False(t, store.Loaded())
}

func TestStore_NilProvider(t *testing.T) {
	store := record.NewStore()
	err := store.Load(context.Background(), nil)
	require.ErrorIs(t, err, record.ErrLoadFailed)
}

func TestFailureReason_PlainError(t *testing.T) {
	require.Equal(t, "", record.FailureReason(nil))
	require.Equal(t, "plain", record.FailureReason(errors.New("plain")))
}
