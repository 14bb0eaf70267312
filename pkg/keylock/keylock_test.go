package keylock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_SameKeyIsExclusive(t *testing.T) {
	kl := New()
	var inside, maxInside int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := kl.Acquire(context.Background(), "p1|wash|2026-10-20", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, kl.locks)
}

func TestAcquire_DifferentKeysDoNotBlock(t *testing.T) {
	kl := New()

	release1, err := kl.Acquire(context.Background(), "a", time.Second)
	require.NoError(t, err)
	defer release1()

	release2, err := kl.Acquire(context.Background(), "b", 10*time.Millisecond)
	require.NoError(t, err)
	release2()
}

func TestAcquire_Timeout(t *testing.T) {
	kl := New()

	release, err := kl.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer release()

	_, err = kl.Acquire(context.Background(), "k", 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAcquire_ParentCancelled(t *testing.T) {
	kl := New()

	release, err := kl.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = kl.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelease_IsIdempotent(t *testing.T) {
	kl := New()

	release, err := kl.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	release()
	release()

	release, err = kl.Acquire(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	release()
}
