package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
)

const cacheKeyPrefix = "geocode:"

// Cache is a byte store with expiry, satisfied by the Valkey client in internal/cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedProvider memoizes successful lookups of another provider.
// Cache failures are logged and never fail a lookup.
type CachedProvider struct {
	next    Provider
	cache   Cache
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewCachedProvider decorates next with cache. metrics may be nil.
func NewCachedProvider(
	next Provider,
	cache Cache,
	ttl time.Duration,
	log *slog.Logger,
	metrics *metrics.Metrics,
) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, log: log, metrics: metrics}
}

// Geocode serves label from the cache when possible and fills it on a miss.
func (cp *CachedProvider) Geocode(ctx context.Context, label string) (*models.Coordinates, error) {
	key := cacheKeyPrefix + label

	raw, err := cp.cache.Get(ctx, key)
	if err == nil {
		var coords models.Coordinates
		if errDecode := json.Unmarshal(raw, &coords); errDecode == nil {
			cp.observe("hit")
			return &coords, nil
		}
		cp.log.WarnContext(ctx, "Dropping undecodable cache entry", "key", key)
	} else {
		cp.log.DebugContext(ctx, "Geocode cache miss", "key", key, "error", err)
	}
	cp.observe("miss")

	coords, err := cp.next.Geocode(ctx, label)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(coords)
	if err != nil {
		return nil, fmt.Errorf("failed to encode coordinates: %w", err)
	}
	if err = cp.cache.Set(ctx, key, payload, cp.ttl); err != nil {
		cp.log.WarnContext(ctx, "Failed to store geocode result", "key", key, "error", err)
	}

	return coords, nil
}

func (cp *CachedProvider) observe(result string) {
	if cp.metrics != nil {
		cp.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
