//go:build integration

package period

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubcred/internal/platform/config"
	platformredis "pubcred/internal/platform/redis"
	"pubcred/pkg/platform/sentinel"
	"pubcred/pkg/testutil/containers"
)

// countingStore tracks backing-store reads so cache hits are observable.
type countingStore struct {
	*InMemoryStore
	reads int
}

func (s *countingStore) FindByYear(ctx context.Context, year int) (*Period, error) {
	s.reads++
	return s.InMemoryStore.FindByYear(ctx, year)
}

func TestCachedStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	client, err := platformredis.New(config.RedisConfig{URL: rc.URL})
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	backing := &countingStore{InMemoryStore: NewInMemoryStore()}
	cached := NewCachedStore(backing, client, time.Minute)

	require.NoError(t, backing.Save(ctx, &Period{
		Year: 2026, StartDate: now.AddDate(0, -1, 0), ReportingDate: now.AddDate(0, 6, 0),
	}))

	t.Run("read populates the cache", func(t *testing.T) {
		p, err := cached.FindByYear(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, 2026, p.Year)
		assert.Equal(t, 1, backing.reads)

		p, err = cached.FindByYear(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, 2026, p.Year)
		assert.Equal(t, 1, backing.reads, "second read must be served from redis")
	})

	t.Run("save invalidates", func(t *testing.T) {
		newDeadline := now.AddDate(0, 9, 0)
		require.NoError(t, cached.Save(ctx, &Period{
			Year: 2026, StartDate: now.AddDate(0, -1, 0), ReportingDate: newDeadline,
		}))

		p, err := cached.FindByYear(ctx, 2026)
		require.NoError(t, err)
		assert.True(t, p.ReportingDate.Equal(newDeadline))
		assert.Equal(t, 2, backing.reads, "invalidation forces a backing read")
	})

	t.Run("missing year stays a miss", func(t *testing.T) {
		_, err := cached.FindByYear(ctx, 1999)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
