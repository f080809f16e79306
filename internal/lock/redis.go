package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/deckduel/internal/dependencies/random"
)

// RedisConfig holds settings for the Redis lock
type RedisConfig struct {
	// KeyPrefix namespaces lock keys
	KeyPrefix string
	// TTL bounds how long a crashed holder can block others
	TTL time.Duration
	// Backoff is the base wait between attempts; random jitter is added
	Backoff time.Duration
}

// DefaultRedisConfig returns sensible defaults for the Redis lock
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		KeyPrefix: "deckduel:lock",
		TTL:       10 * time.Second,
		Backoff:   20 * time.Millisecond,
	}
}

// Redis is a lock shared by every process using the same Redis instance.
// Locks are SET NX PX with a random token; release deletes only if the
// token still matches.
type Redis struct {
	client *redis.Client
	cfg    RedisConfig
	random random.Random
	logger *slog.Logger
}

// NewRedis creates a Redis-backed lock manager
func NewRedis(client *redis.Client, cfg RedisConfig, rnd random.Random, logger *slog.Logger) *Redis {
	return &Redis{
		client: client,
		cfg:    cfg,
		random: rnd,
		logger: logger,
	}
}

// Ensure Redis implements Manager
var _ Manager = (*Redis)(nil)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Acquire retries SET NX until it succeeds or ctx is done
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := r.cfg.KeyPrefix + ":" + key
	token := r.random.Token(16)

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.cfg.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, unavailable(ctx, key)
			}
			return nil, err
		}
		if ok {
			return func() { r.release(ctx, redisKey, token) }, nil
		}

		wait := r.cfg.Backoff + r.random.Jitter(r.cfg.Backoff)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, unavailable(ctx, key)
		}
	}
}

// release runs even if the caller's context has expired
func (r *Redis) release(ctx context.Context, redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil {
		r.logger.Warn("failed to release lock", "key", redisKey, "error", err)
	}
}
