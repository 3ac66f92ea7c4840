package segment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Pool hands out a fixed set of resources to concurrent callers.
type Pool[T io.Closer] struct {
	items  chan T
	size   int
	mu     sync.Mutex
	closed bool
}

// NewPool creates size resources with newItem. A size <= 0 is treated as 1.
func NewPool[T io.Closer](size int, newItem func() (T, error)) (*Pool[T], error) {
	if size <= 0 {
		size = 1
	}

	pool := &Pool[T]{
		items: make(chan T, size),
		size:  size,
	}

	for i := 0; i < size; i++ {
		item, err := newItem()
		if err != nil {
			_ = pool.Close() // Best-effort cleanup; original error takes precedence
			return nil, fmt.Errorf("creating pool item %d: %w", i, err)
		}
		pool.items <- item
	}

	return pool, nil
}

// Acquire takes an item from the pool, blocking until one is free.
// Respects context cancellation. Returns ErrPoolClosed if the pool is closed.
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T
	select {
	case item, ok := <-p.items:
		if !ok {
			return zero, ErrPoolClosed
		}
		return item, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Release returns an item to the pool. Items released after Close are closed.
func (p *Pool[T]) Release(item T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = item.Close()
		return
	}

	select {
	case p.items <- item:
	default:
		_ = item.Close() // Pool full; clean up excess item
	}
}

// Close closes every pooled item. It is idempotent.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.items)
	p.mu.Unlock()

	var errs []error
	for item := range p.items {
		if err := item.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Size returns the pool size.
func (p *Pool[T]) Size() int {
	return p.size
}
