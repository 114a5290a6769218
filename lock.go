package hast

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locker guards a Storage against concurrent use. Exclusive excludes every
// other holder; Shared may be held together with other Shared holders.
//
// Both methods block until the lock is acquired or ctx ends, in which case
// they return an error wrapping ErrLockUnavailable. The returned release
// function is safe to call more than once.
type Locker interface {
	Exclusive(ctx context.Context) (release func(), err error)
	Shared(ctx context.Context) (release func(), err error)
}

// SemaphoreLocker implements Locker with a weighted semaphore. Exclusive
// takes the whole capacity, Shared takes a single unit.
type SemaphoreLocker struct {
	sem      *semaphore.Weighted
	capacity int64
	shared   int64
}

// NewExclusiveLocker returns a Locker whose shared mode is as strict as its
// exclusive mode, so every operation runs alone.
func NewExclusiveLocker() *SemaphoreLocker {
	return &SemaphoreLocker{
		sem:      semaphore.NewWeighted(1),
		capacity: 1,
		shared:   1,
	}
}

// NewSharedLocker returns a Locker that lets up to maxReaders shared holders
// run together. Values below 1 are treated as 1.
func NewSharedLocker(maxReaders int) *SemaphoreLocker {
	if maxReaders < 1 {
		maxReaders = 1
	}
	n := int64(maxReaders)
	return &SemaphoreLocker{
		sem:      semaphore.NewWeighted(n),
		capacity: n,
		shared:   1,
	}
}

// Exclusive implements Locker.
func (l *SemaphoreLocker) Exclusive(ctx context.Context) (func(), error) {
	return l.acquire(ctx, l.capacity)
}

// Shared implements Locker.
func (l *SemaphoreLocker) Shared(ctx context.Context) (func(), error) {
	return l.acquire(ctx, l.shared)
}

func (l *SemaphoreLocker) acquire(ctx context.Context, n int64) (func(), error) {
	if err := l.sem.Acquire(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLockUnavailable, err)
	}
	var once sync.Once
	return func() {
		once.Do(func() { l.sem.Release(n) })
	}, nil
}
