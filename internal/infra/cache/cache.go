// Package cache keeps partner schedules and bay inventories in Redis in front
// of Postgres. Admin writes call Invalidate, which bumps a per-partner
// generation; a loader stores its value only if the generation it saw before
// reading Postgres is still current. A stale entry survives only when
// Invalidate itself fails, and then at most until TTL expiry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const (
	scheduleCache = "schedule"
	capacityCache = "capacity"
)

// setIfGenerationScript записывает значение, только если поколение партнёра не менялось
var setIfGenerationScript = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[2] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1
`)

// PartnerConfig read-through кэш расписаний и боксов
type PartnerConfig struct {
	redis     *redis.Client
	ttl       time.Duration
	schedules ScheduleStore
	capacity  CapacityStore
	metrics   Metrics
	logger    Logger
	group     singleflight.Group
}

// NewPartnerConfig создает кэш. С nil клиентом Redis запросы идут напрямую в хранилище.
func NewPartnerConfig(client *redis.Client, ttl time.Duration, schedules ScheduleStore, capacity CapacityStore, metrics Metrics, logger Logger) *PartnerConfig {
	return &PartnerConfig{
		redis:     client,
		ttl:       ttl,
		schedules: schedules,
		capacity:  capacity,
		metrics:   metrics,
		logger:    logger,
	}
}

// GetSchedule возвращает расписание партнёра. Ошибка «не найдено» из хранилища не кэшируется.
func (c *PartnerConfig) GetSchedule(ctx context.Context, partnerID int64) (*domain.WeeklySchedule, error) {
	key := scheduleKey(partnerID)

	var cached domain.WeeklySchedule
	if c.read(ctx, scheduleCache, key, &cached) {
		return &cached, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		gen, genOK := c.generation(ctx, partnerID)
		s, err := c.schedules.Get(ctx, partnerID)
		if err != nil {
			return nil, err
		}
		if genOK {
			c.write(ctx, partnerID, gen, key, s)
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	s := *v.(*domain.WeeklySchedule)
	return &s, nil
}

// GetCapacity возвращает боксы партнёра
func (c *PartnerConfig) GetCapacity(ctx context.Context, partnerID int64) (*domain.CapacityPlan, error) {
	key := capacityKey(partnerID)

	var cached domain.CapacityPlan
	if c.read(ctx, capacityCache, key, &cached) {
		return &cached, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		gen, genOK := c.generation(ctx, partnerID)
		p, err := c.capacity.Get(ctx, partnerID)
		if err != nil {
			return nil, err
		}
		if genOK {
			c.write(ctx, partnerID, gen, key, p)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	p := *v.(*domain.CapacityPlan)
	p.Bays = append([]domain.Bay(nil), p.Bays...)
	return &p, nil
}

// Invalidate удаляет расписание и боксы партнёра из кэша
func (c *PartnerConfig) Invalidate(ctx context.Context, partnerID int64) error {
	if c.redis == nil {
		return nil
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(partnerID))
		pipe.Del(ctx, scheduleKey(partnerID), capacityKey(partnerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: invalidate partner %d: %w", partnerID, err)
	}
	return nil
}

// Ping проверяет доступность Redis
func (c *PartnerConfig) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

func (c *PartnerConfig) read(ctx context.Context, cache, key string, out interface{}) bool {
	if c.redis == nil || c.ttl <= 0 {
		return false
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.IncCache(cache, "miss")
		return false
	}
	if err != nil {
		c.metrics.IncCache(cache, "error")
		c.logger.Warn("Cache: get %s: %v", key, err)
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.metrics.IncCache(cache, "error")
		c.logger.Warn("Cache: decode %s: %v", key, err)
		return false
	}

	c.metrics.IncCache(cache, "hit")
	return true
}

// generation читает поколение партнёра до загрузки из хранилища
func (c *PartnerConfig) generation(ctx context.Context, partnerID int64) (string, bool) {
	if c.redis == nil || c.ttl <= 0 {
		return "", false
	}

	gen, err := c.redis.Get(ctx, generationKey(partnerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", true
	}
	if err != nil {
		c.logger.Warn("Cache: get generation for partner=%d: %v", partnerID, err)
		return "", false
	}
	return gen, true
}

func (c *PartnerConfig) write(ctx context.Context, partnerID int64, gen, key string, val interface{}) {
	data, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn("Cache: encode %s: %v", key, err)
		return
	}

	stored, err := setIfGenerationScript.Run(ctx, c.redis,
		[]string{key, generationKey(partnerID)}, data, gen, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.Warn("Cache: set %s: %v", key, err)
		return
	}
	if stored == 0 {
		c.logger.Debug("Cache: skip %s, partner=%d was invalidated during load", key, partnerID)
	}
}

func scheduleKey(partnerID int64) string {
	return fmt.Sprintf("partner:%d:schedule", partnerID)
}

func capacityKey(partnerID int64) string {
	return fmt.Sprintf("partner:%d:capacity", partnerID)
}

func generationKey(partnerID int64) string {
	return fmt.Sprintf("partner:%d:gen", partnerID)
}
