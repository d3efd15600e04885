package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edutrack/logger"
	"edutrack/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// TrainingCache holds read-through copies of catalog entries. Misses and
// backend failures are indistinguishable to callers, who fall back to the store.
type TrainingCache interface {
	Get(ctx context.Context, id uint) (*models.Training, bool)
	Set(ctx context.Context, t *models.Training)
	Invalidate(ctx context.Context, ids ...uint)
}

// Noop is used when no cache backend is configured.
type Noop struct{}

func (Noop) Get(context.Context, uint) (*models.Training, bool) { return nil, false }
func (Noop) Set(context.Context, *models.Training)              {}
func (Noop) Invalidate(context.Context, ...uint)                {}

// Redis stores trainings as JSON under training:<id>.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New returns a Noop cache when addr is empty, otherwise a Redis cache after a
// successful ping.
func New(ctx context.Context, addr string) (TrainingCache, func() error, error) {
	if addr == "" {
		return Noop{}, func() error { return nil }, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, errors.Wrap(err, "redis ping failed")
	}
	return NewRedis(client, 10*time.Minute), client.Close, nil
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(id uint) string { return fmt.Sprintf("training:%d", id) }

func (r *Redis) Get(ctx context.Context, id uint) (*models.Training, bool) {
	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.For("cache").Warn().Err(err).Uint("training_id", id).Msg("cache read failed")
		}
		return nil, false
	}
	var t models.Training
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false
	}
	return &t, true
}

func (r *Redis) Set(ctx context.Context, t *models.Training) {
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key(t.ID), raw, r.ttl).Err(); err != nil {
		logger.For("cache").Warn().Err(err).Uint("training_id", t.ID).Msg("cache write failed")
	}
}

func (r *Redis) Invalidate(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logger.For("cache").Warn().Err(err).Msg("cache invalidation failed")
	}
}
