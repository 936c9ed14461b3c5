package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the remote cache backend, used as the primary store
// whenever CACHE_URL points at a reachable redis instance. Counter
// increments send INCR and TTL together in one pipelined transaction;
// the EXPIRE that arms a new (or expiry-less) key is a separate call
// made after that transaction returns.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore dials the redis server named by rawURL (a redis:// or
// rediss:// URL). The connection is lazy; failures surface on first use
// through HealthCheck or the fail-open return values of Incr/Get.
func NewRedisStore(rawURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: redis.NewClient(opts), prefix: prefix}, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string, windowMs int64) (int64, int64) {
	window := time.Duration(windowMs) * time.Millisecond

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 1, windowMs / 1000
	}

	count := incr.Val()
	if count == 1 || ttl.Val() < 0 {
		// First hit, or a key that somehow lost its expiry: (re)arm it.
		s.client.Expire(ctx, key, window)
		return count, windowMs / 1000
	}
	return count, int64(ttl.Val().Seconds())
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, int64) {
	pipe := s.client.TxPipeline()
	get := pipe.Get(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0
	}
	count, err := strconv.ParseInt(get.Val(), 10, 64)
	if err != nil {
		return 0, 0
	}
	remaining := ttl.Val()
	if remaining < 0 {
		return count, 0
	}
	return count, int64(remaining.Seconds())
}

func (s *RedisStore) Reset(ctx context.Context, key string) {
	s.client.Del(ctx, key)
}

func (s *RedisStore) SetCounter(ctx context.Context, name string, delta int64) {
	s.client.IncrBy(ctx, MetricsKey(s.prefix, name), delta)
}

func (s *RedisStore) GetCounter(ctx context.Context, name string) int64 {
	v, err := s.client.Get(ctx, MetricsKey(s.prefix, name)).Int64()
	if err != nil {
		return 0
	}
	return v
}

func (s *RedisStore) TrackLastRequest(ctx context.Context, walletAddress string, ts time.Time, windowMs int64) {
	key := WalletKey(s.prefix, walletAddress)
	window := time.Duration(windowMs) * time.Millisecond
	s.client.Set(ctx, key, ts.UnixNano(), window)
}

func (s *RedisStore) GetLastRequest(ctx context.Context, walletAddress string) (time.Time, bool) {
	key := WalletKey(s.prefix, walletAddress)
	v, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, v), true
}

func (s *RedisStore) SetKV(ctx context.Context, key string, value string, ttl time.Duration) {
	s.client.Set(ctx, key, value, ttl)
}

func (s *RedisStore) GetKV(ctx context.Context, key string) (string, bool) {
	v, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *RedisStore) DeleteKV(ctx context.Context, key string) {
	s.client.Del(ctx, key)
}

func (s *RedisStore) HealthCheck(ctx context.Context) (bool, time.Duration) {
	start := time.Now()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return false, time.Since(start)
	}
	return true, time.Since(start)
}

// Flush scans and deletes every key under this store's prefix using
// SCAN rather than KEYS, so a large keyspace doesn't block the server.
func (s *RedisStore) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 500 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
