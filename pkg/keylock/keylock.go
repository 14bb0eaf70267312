// Package keylock provides in-process mutual exclusion keyed by string with a bounded wait.
package keylock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ErrTimeout returned when the lock could not be acquired in time. It wraps
// context.DeadlineExceeded so callers can treat every lock backend the same way.
var ErrTimeout = fmt.Errorf("keylock: acquire timeout: %w", context.DeadlineExceeded)

type entry struct {
	ch   chan struct{}
	refs int
}

// KeyLock serializes holders of the same key. Different keys never block each other.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New creates an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Acquire blocks until the key is free, the timeout elapses or ctx is done.
// A non-positive timeout waits only for ctx.
func (k *KeyLock) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	e := k.ref(key)

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				k.unref(key)
			})
		}, nil
	case <-waitCtx.Done():
		k.unref(key)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTimeout
	}
}

// Backend name used in metrics.
func (k *KeyLock) Backend() string {
	return "memory"
}

func (k *KeyLock) ref(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *KeyLock) unref(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}
