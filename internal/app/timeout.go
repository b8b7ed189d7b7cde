package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyguru-quiz-service/internal/domain"
)

// DefaultLookupTimeout bounds every backend-backed step.
const DefaultLookupTimeout = 20 * time.Second

// withTimeout runs fn under a deadline and maps its expiry to domain.ErrNetworkTimeout.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		d = DefaultLookupTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	v, err := fn(callCtx)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return v, fmt.Errorf("%w: %v", domain.ErrNetworkTimeout, err)
	}
	return v, err
}
