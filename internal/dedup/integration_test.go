//go:build integration

package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow/internal/testutil"
)

func TestRedisRepositorySetNX(t *testing.T) {
	repo := NewRedisRepository(testutil.Redis(t))
	ctx := context.Background()

	ok, err := repo.SetNX(ctx, "dedup:test", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetNX(ctx, "dedup:test", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
