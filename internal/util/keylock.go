package util

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyLock serializes submissions per (user, objective) key with a redis
// SetNX lease. Two near-simultaneous submissions for the same key would
// otherwise both read pre-submission state and both win.
type KeyLock struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewKeyLock(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *KeyLock {
	return &KeyLock{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire takes the lock for key. When redis is unavailable the lock fails
// open: the submission proceeds unserialized rather than being rejected.
func (l *KeyLock) Acquire(ctx context.Context, key string) (release func(), ok bool) {
	lockKey := "lock:submit:" + key

	acquired, err := l.rdb.SetNX(ctx, lockKey, 1, l.ttl).Result()
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("Redis lock unavailable, proceeding without serialization",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return func() {}, true
	}

	if !acquired {
		return func() {}, false
	}

	return func() {
		if err := l.rdb.Del(context.Background(), lockKey).Err(); err != nil && l.logger != nil {
			l.logger.Warn("Failed to release submission lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}, true
}
