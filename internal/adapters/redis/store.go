package redisad

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"litebook/internal/adapters/observability"
)

// Store is the durable key/value store standing in for browser-local
// storage: a handful of well-known keys holding JSON blobs, no TTLs.
type Store struct{ c *redis.Client }

func New(addr, pass string, db int) *Store {
	return &Store{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// Ping is used by the health endpoint to report store status.
func (r *Store) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("store", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("store", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Store) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("store", "set")
	return r.c.Set(ctx, key, b, 0).Err()
}

func (r *Store) Del(ctx context.Context, key string) error {
	observability.ObserveCache("store", "del")
	return r.c.Del(ctx, key).Err()
}
