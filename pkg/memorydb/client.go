package memorydb

import (
	"context"
	"time"

	"classroom-api/config"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client redis.UniversalClient
}

// NewRedisClient connects to Redis. UniversalClient works with both
// standalone and cluster deployments.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*RedisClient, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Redis.Addr},
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		ReadTimeout:  time.Second * 5,
		WriteTimeout: time.Second * 5,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFromAddr is a test-friendly constructor for a bare address.
func NewRedisClientFromAddr(addr string) *RedisClient {
	return &RedisClient{client: redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})}
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get retrieves a value from Redis
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Set stores a value in Redis
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Del deletes keys from Redis
func (r *RedisClient) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// IsNil reports whether err is the redis cache-miss sentinel.
func IsNil(err error) bool {
	return err == redis.Nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
