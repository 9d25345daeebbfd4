package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/derktes/rc5-remote/server/config"
	"github.com/redis/go-redis/v9"
)

// redisStore keeps the history in a capped Redis list so it survives
// restarts and can be shared with other tools.
type redisStore struct {
	client   *redis.Client
	key      string
	capacity int
}

func newRedisStore(ctx context.Context, cfg config.RedisConfig, capacity int) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: time.Duration(cfg.DialTimeoutSeconds) * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}
	if capacity < 1 {
		capacity = 1
	}
	return &redisStore{client: client, key: cfg.Key, capacity: capacity}, nil
}

func (r *redisStore) insert(ctx context.Context, rec dispatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, data)
	pipe.LTrim(ctx, r.key, 0, int64(r.capacity-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisStore) list(ctx context.Context, limit int) ([]dispatchRecord, error) {
	if limit <= 0 || limit > r.capacity {
		limit = r.capacity
	}
	values, err := r.client.LRange(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]dispatchRecord, 0, len(values))
	for _, v := range values {
		var rec dispatchRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("decoding record from %s: %w", r.key, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *redisStore) kind() string { return "redis" }

func (r *redisStore) close() error {
	return r.client.Close()
}

func openStore(ctx context.Context, cfg *config.Config) (recordStore, error) {
	switch cfg.History.Backend {
	case config.HistoryRedis:
		return newRedisStore(ctx, cfg.Redis, cfg.History.Capacity)
	case config.HistoryMemory:
		return newMemoryStore(cfg.History.Capacity), nil
	}
	return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
}
