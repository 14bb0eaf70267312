// Package lock implements the allocation lock on Redis so that several engine
// instances serialize claims on the same (partner, category, date) key.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTimeout блокировку не удалось получить вовремя. Оборачивает
// context.DeadlineExceeded, как и локальная блокировка.
var ErrTimeout = fmt.Errorf("lock: acquire timeout: %w", context.DeadlineExceeded)

// releaseScript удаляет ключ, только если им всё ещё владеет этот держатель
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	defaultLease         = 10 * time.Second
	defaultRetryInterval = 10 * time.Millisecond
	keyPrefix            = "lock:"
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// RedisLocker распределённая блокировка SET NX PX с освобождением через Lua
type RedisLocker struct {
	client        *redis.Client
	lease         time.Duration
	retryInterval time.Duration
	logger        Logger
}

// NewRedisLocker создает блокировку. lease ограничивает время владения на случай падения держателя.
func NewRedisLocker(client *redis.Client, lease time.Duration, logger Logger) *RedisLocker {
	if lease <= 0 {
		lease = defaultLease
	}
	return &RedisLocker{
		client:        client,
		lease:         lease,
		retryInterval: defaultRetryInterval,
		logger:        logger,
	}
}

// Acquire ждёт освобождения ключа не дольше timeout
func (l *RedisLocker) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	token := uuid.NewString()
	redisKey := keyPrefix + key

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, redisKey, token, l.lease).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("lock: set %s: %w", redisKey, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrTimeout
		case <-ticker.C:
		}
	}
}

// Backend имя для метрик
func (l *RedisLocker) Backend() string {
	return "redis"
}

func (l *RedisLocker) releaser(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		// освобождаем даже если контекст запроса уже отменён
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Lock: release %s: %v", key, err)
		}
	}
}
