package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrModelCallLimit is returned (wrapped) once a ModelLimiter is exhausted.
var ErrModelCallLimit = errors.New("model call limit exceeded")

// ModelLimiter counts model calls against a budget. A zero budget is
// unlimited. It is safe for concurrent use by parallel nodes.
type ModelLimiter struct {
	budget int64
	used   atomic.Int64
}

// NewModelLimiter returns a limiter allowing budget calls.
func NewModelLimiter(budget int) *ModelLimiter {
	return &ModelLimiter{budget: int64(budget)}
}

// Preload records n calls made before the limiter existed.
func (l *ModelLimiter) Preload(n int) *ModelLimiter {
	l.used.Add(int64(n))
	return l
}

// Increment records one call and fails once the budget is exceeded.
func (l *ModelLimiter) Increment() error {
	n := l.used.Add(1)
	if l.budget > 0 && n > l.budget {
		return fmt.Errorf("%w: budget %d", ErrModelCallLimit, l.budget)
	}

	return nil
}

// Count returns the number of recorded calls.
func (l *ModelLimiter) Count() int { return int(l.used.Load()) }

// Remaining returns the calls left, never below zero, or -1 when unlimited.
func (l *ModelLimiter) Remaining() int {
	if l.budget == 0 {
		return -1
	}

	return int(max(l.budget-l.used.Load(), 0))
}

type limiterKey struct{}

// WithModelLimiter attaches l to ctx so every model node of a run shares it.
func WithModelLimiter(ctx context.Context, l *ModelLimiter) context.Context {
	return context.WithValue(ctx, limiterKey{}, l)
}

// ModelLimiterFrom returns the limiter attached to ctx, if any.
func ModelLimiterFrom(ctx context.Context) (*ModelLimiter, bool) {
	l, ok := ctx.Value(limiterKey{}).(*ModelLimiter)
	return l, ok && l != nil
}
