package tenants

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "tenant:assistant:"

// CachedRepo is a read-through cache in front of a Repository.
//
// Cache failures never fail a lookup; the underlying repository is the source
// of truth and redis outages degrade to direct reads.
type CachedRepo struct {
	inner Repository
	rdb   *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedRepo(inner Repository, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedRepo {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedRepo{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (r *CachedRepo) FindByAssistantID(ctx context.Context, assistantID string) (Tenant, bool, error) {
	key := cacheKeyPrefix + assistantID

	if r.rdb != nil {
		raw, err := r.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var t Tenant
			if err := json.Unmarshal(raw, &t); err == nil && t.ID != "" {
				return t, true, nil
			}
		} else if err != redis.Nil {
			r.log.Warn("tenant cache read failed", "err", err)
		}
	}

	t, ok, err := r.inner.FindByAssistantID(ctx, assistantID)
	if err != nil || !ok {
		return t, ok, err
	}

	if r.rdb != nil {
		if raw, err := json.Marshal(t); err == nil {
			if err := r.rdb.Set(ctx, key, raw, r.ttl).Err(); err != nil {
				r.log.Warn("tenant cache write failed", "err", err)
			}
		}
	}
	return t, true, nil
}

// FirstVoiceEnabled is not cached; the fallback path is rare and stale
// answers here would be hard to reason about.
func (r *CachedRepo) FirstVoiceEnabled(ctx context.Context) (Tenant, bool, error) {
	return r.inner.FirstVoiceEnabled(ctx)
}
