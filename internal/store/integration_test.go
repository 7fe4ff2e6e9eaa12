//go:build integration

package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow/internal/testutil"
	"workflow/pkg/migrations"
)

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()
	s := New(backend, nil)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Record(ctx, "5", notification(id, "text "+id)))
	}
	require.NoError(t, s.Record(ctx, "6", notification("other", "other user")))

	got, err := s.List(ctx, "5")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})

	empty, err := s.List(ctx, "404")
	require.NoError(t, err)
	assert.Empty(t, empty)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Record(ctx, "7", notification(fmt.Sprintf("n%d", i), "concurrent")))
		}(i)
	}
	wg.Wait()

	concurrent, err := s.List(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, concurrent, 20)
}

func TestRedisBackend(t *testing.T) {
	exerciseBackend(t, NewRedisBackend(testutil.Redis(t), ""))
}

func TestPostgresBackend(t *testing.T) {
	exerciseBackend(t, NewPostgresBackend(testutil.Postgres(t), ""))
}

func TestMongoBackend(t *testing.T) {
	db := testutil.Mongo(t)
	require.NoError(t, migrations.EnsureMongoCollection(context.Background(), db, ""))
	exerciseBackend(t, NewMongoBackend(db, "", ""))
}
