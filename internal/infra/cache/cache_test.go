package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/logger"
	"github.com/m04kA/SMC-BookingEngine/pkg/metrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

var errMissing = errors.New("missing")

type countingSchedules struct {
	calls atomic.Int32
	data  map[int64]*domain.WeeklySchedule
	// afterRead вызывается после чтения, имитирует параллельное обновление
	afterRead func()
}

func (s *countingSchedules) Get(_ context.Context, partnerID int64) (*domain.WeeklySchedule, error) {
	s.calls.Add(1)
	time.Sleep(5 * time.Millisecond)
	v, ok := s.data[partnerID]
	if s.afterRead != nil {
		s.afterRead()
	}
	if !ok {
		return nil, errMissing
	}
	return v, nil
}

type countingCapacity struct {
	calls atomic.Int32
	data  map[int64]*domain.CapacityPlan
}

func (s *countingCapacity) Get(_ context.Context, partnerID int64) (*domain.CapacityPlan, error) {
	s.calls.Add(1)
	v, ok := s.data[partnerID]
	if !ok {
		return nil, errMissing
	}
	return v, nil
}

func setup(t *testing.T) (*PartnerConfig, *miniredis.Miniredis, *countingSchedules, *countingCapacity) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	schedule := domain.DefaultSchedule(1)
	schedule.Days[time.Monday].TimeBlocks = []domain.TimeBlock{
		{Start: types.MustMinuteOfDay("07:30"), End: types.MustMinuteOfDay("12:00")},
	}

	schedules := &countingSchedules{data: map[int64]*domain.WeeklySchedule{1: schedule}}
	capacity := &countingCapacity{data: map[int64]*domain.CapacityPlan{1: domain.DefaultCapacity(1)}}

	c := NewPartnerConfig(client, time.Minute, schedules, capacity, metrics.NewWithRegistry("test", nil), logger.Nop())
	return c, mr, schedules, capacity
}

func TestPartnerConfig_ReadThrough(t *testing.T) {
	c, mr, schedules, _ := setup(t)
	ctx := context.Background()

	first, err := c.GetSchedule(ctx, 1)
	require.NoError(t, err)
	second, err := c.GetSchedule(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, int32(1), schedules.calls.Load())
	assert.Equal(t, first.Days, second.Days)
	assert.Equal(t, types.MustMinuteOfDay("07:30"), second.Days[time.Monday].TimeBlocks[0].Start)
	assert.True(t, mr.Exists("partner:1:schedule"))

	mr.FastForward(2 * time.Minute)
	_, err = c.GetSchedule(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), schedules.calls.Load())
}

func TestPartnerConfig_Invalidate(t *testing.T) {
	c, mr, schedules, capacity := setup(t)
	ctx := context.Background()

	_, err := c.GetSchedule(ctx, 1)
	require.NoError(t, err)
	_, err = c.GetCapacity(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, 1))
	assert.False(t, mr.Exists("partner:1:schedule"))
	assert.False(t, mr.Exists("partner:1:capacity"))

	_, err = c.GetSchedule(ctx, 1)
	require.NoError(t, err)
	_, err = c.GetCapacity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), schedules.calls.Load())
	assert.Equal(t, int32(2), capacity.calls.Load())
}

func TestPartnerConfig_UpdateDuringLoadIsNotCached(t *testing.T) {
	c, mr, schedules, _ := setup(t)
	ctx := context.Background()

	updated := domain.DefaultSchedule(1)
	updated.BufferMinutes = 30
	schedules.afterRead = func() {
		schedules.data[1] = updated
		require.NoError(t, c.Invalidate(ctx, 1))
	}

	stale, err := c.GetSchedule(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, 30, stale.BufferMinutes)
	assert.False(t, mr.Exists("partner:1:schedule"))

	schedules.afterRead = nil
	fresh, err := c.GetSchedule(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, fresh.BufferMinutes)
	assert.True(t, mr.Exists("partner:1:schedule"))

	cached, err := c.GetSchedule(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, cached.BufferMinutes)
	assert.Equal(t, int32(2), schedules.calls.Load())
}

func TestPartnerConfig_NotFoundIsNotCached(t *testing.T) {
	c, mr, schedules, _ := setup(t)
	ctx := context.Background()

	_, err := c.GetSchedule(ctx, 42)
	assert.ErrorIs(t, err, errMissing)
	_, err = c.GetSchedule(ctx, 42)
	assert.ErrorIs(t, err, errMissing)

	assert.Equal(t, int32(2), schedules.calls.Load())
	assert.False(t, mr.Exists("partner:42:schedule"))
}

func TestPartnerConfig_CollapsesConcurrentMisses(t *testing.T) {
	c, _, schedules, _ := setup(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetSchedule(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, schedules.calls.Load(), int32(2))
}

func TestPartnerConfig_RedisDown(t *testing.T) {
	c, mr, schedules, _ := setup(t)
	mr.SetError("LOADING redis is down")

	s, err := c.GetSchedule(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.PartnerID)
	assert.Equal(t, int32(1), schedules.calls.Load())
}
