package codes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "codes:"

// RedisStore shares codes between server instances
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		retention: retention,
	}
}

// NewRedisClient connects to redis and checks that it answers
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping, %w", err)
	}

	return client, nil
}

func (r *RedisStore) Put(ctx context.Context, ns Namespace, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, redisKeyPrefix+ns.Key(), b, r.retention).Err()
}

func (r *RedisStore) Get(ctx context.Context, ns Namespace) (*Entry, error) {
	b, err := r.client.Get(ctx, redisKeyPrefix+ns.Key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("corrupt code entry, %w", err)
	}

	return &e, nil
}

func (r *RedisStore) Delete(ctx context.Context, ns Namespace) error {
	return r.client.Del(ctx, redisKeyPrefix+ns.Key()).Err()
}
