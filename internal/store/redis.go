package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the slot under a single redis key.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewRedis stores the slot at prefix+KeywordsKey.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, key: prefix + KeywordsKey}
}

func (r *Redis) Load(ctx context.Context) ([]string, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}

	return decode(data)
}

func (r *Redis) Save(ctx context.Context, keywords []string) error {
	data, err := encode(keywords)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}

	return nil
}

// Key returns the redis key used for the slot.
func (r *Redis) Key() string {
	return r.key
}

func (r *Redis) Close() error {
	return r.client.Close()
}
