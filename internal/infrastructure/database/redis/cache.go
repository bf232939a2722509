package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// ErrSnapshotMiss is returned by Get when no snapshot is cached.
var ErrSnapshotMiss = errors.New(errors.ErrCodeCacheError, "no graph snapshot cached")

// SnapshotCache holds one serialized graph snapshot with a TTL.  Lifecycle is
// explicit: Populate after a full read, Invalidate after any graph write.
// It is an optimization only; callers fall through to the store on miss.
type SnapshotCache struct {
	client *Client
	key    string
	ttl    time.Duration
	log    logging.Logger
}

// SnapshotCacheOption customises a SnapshotCache.
type SnapshotCacheOption func(*SnapshotCache)

// WithSnapshotKey overrides the cache key.
func WithSnapshotKey(key string) SnapshotCacheOption {
	return func(c *SnapshotCache) {
		if key != "" {
			c.key = key
		}
	}
}

// WithSnapshotTTL overrides the snapshot TTL.
func WithSnapshotTTL(ttl time.Duration) SnapshotCacheOption {
	return func(c *SnapshotCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewSnapshotCache constructs a cache with a five-minute default TTL.
func NewSnapshotCache(client *Client, log logging.Logger, opts ...SnapshotCacheOption) *SnapshotCache {
	c := &SnapshotCache{
		client: client,
		key:    "arvore:snapshot:persons",
		ttl:    5 * time.Minute,
		log:    log.Named("snapshot-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Populate stores the snapshot, replacing any previous one.
func (c *SnapshotCache) Populate(ctx context.Context, snapshot []*person.Person) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode snapshot")
	}
	if err := c.client.Underlying().Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to store snapshot")
	}
	c.log.Debug("snapshot cached",
		logging.Int("persons", len(snapshot)),
		logging.Duration("ttl", c.ttl))
	return nil
}

// Get returns the cached snapshot or ErrSnapshotMiss.
func (c *SnapshotCache) Get(ctx context.Context) ([]*person.Person, error) {
	payload, err := c.client.Underlying().Get(ctx, c.key).Bytes()
	if err == goredis.Nil {
		return nil, ErrSnapshotMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read snapshot")
	}

	var snapshot []*person.Person
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode snapshot")
	}
	return snapshot, nil
}

// Invalidate drops the cached snapshot.  Safe to call when nothing is cached.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Underlying().Del(ctx, c.key).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to invalidate snapshot")
	}
	return nil
}
