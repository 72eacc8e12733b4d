package source_test

import (
	"context"
	"testing"

	"github.com/rpggio/geodash/internal/source"
	"github.com/rpggio/geodash/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func TestSQL_FetchInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	want := generator(50, 5).Generate()
	want[0], want[49] = want[49], want[0]
	want[10].LastUpdated = nil
	require.NoError(t, sqlite.NewRecordRepository(db).ReplaceAll(ctx, want))

	got, err := source.NewSQL(db.DB).Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].ID, got[i].ID)
		require.Equal(t, want[i].Latitude, got[i].Latitude)
		if want[i].LastUpdated == nil {
			require.Nil(t, got[i].LastUpdated)
			continue
		}
		require.True(t, want[i].LastUpdated.Equal(*got[i].LastUpdated))
	}
}

func TestOpenPostgres_RequiresDSN(t *testing.T) {
	_, err := source.OpenPostgres(context.Background(), "")
	require.Error(t, err)
}
