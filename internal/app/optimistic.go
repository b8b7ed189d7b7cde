package app

import (
	"context"
	"sync"
)

// OptimisticList applies changes locally before the remote commit and restores the prior
// snapshot when the commit fails.
type OptimisticList[T any] struct {
	mu    sync.Mutex
	items []T
}

func (l *OptimisticList[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

func (l *OptimisticList[T]) Replace(items []T) {
	l.mu.Lock()
	l.items = append([]T(nil), items...)
	l.mu.Unlock()
}

// Apply runs mutate on a copy of the items, publishes the result, then commits.
func (l *OptimisticList[T]) Apply(ctx context.Context, mutate func([]T) []T, commit func(context.Context) error) error {
	l.mu.Lock()
	prior := append([]T(nil), l.items...)
	l.items = mutate(append([]T(nil), l.items...))
	l.mu.Unlock()

	if err := commit(ctx); err != nil {
		l.mu.Lock()
		l.items = prior
		l.mu.Unlock()
		return err
	}
	return nil
}
