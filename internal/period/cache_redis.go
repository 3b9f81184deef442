package period

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	platformredis "pubcred/internal/platform/redis"
)

// CachedStore is a read-through cache in front of a period store. Periods are
// read on every approval mutation and change a few times a year; a short TTL
// keeps the backing store off the hot path without risking a stale window for
// long.
//
// Cache failures degrade to the backing store, never to request failures.
type CachedStore struct {
	next   Store
	client *platformredis.Client
	ttl    time.Duration
}

// NewCachedStore wraps a store with a redis read-through cache.
func NewCachedStore(next Store, client *platformredis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl}
}

func cacheKey(year int) string {
	return fmt.Sprintf("pubcred:period:%d", year)
}

func (s *CachedStore) FindByYear(ctx context.Context, year int) (*Period, error) {
	key := cacheKey(year)

	// Cache miss, redis trouble and corrupt entries all fall through to the
	// backing store; redis being down is not a reason to fail period
	// resolution.
	if raw, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var p Period
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
	}

	p, err := s.next.FindByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(p); err == nil {
		_ = s.client.Set(ctx, key, encoded, s.ttl).Err()
	}
	return p, nil
}

func (s *CachedStore) Save(ctx context.Context, p *Period) error {
	if err := s.next.Save(ctx, p); err != nil {
		return err
	}
	// Invalidate rather than update: the next read repopulates.
	_ = s.client.Del(ctx, cacheKey(p.Year)).Err()
	return nil
}

var _ Store = (*CachedStore)(nil)
