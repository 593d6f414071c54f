// Package wait provides the bounded polling primitive used by every
// step of the automation.
//
// All waiting in nlmpush is either a fixed delay (Sleep) or a bounded poll
// (Poll / Until). Both honor context cancellation so a hard ceiling set
// by a caller stops an in-flight run at its next suspension point.
package wait

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a bounded poll exhausts its budget.
var ErrTimeout = errors.New("wait: budget exhausted")

// Result is the three-valued outcome of one poll tick: still pending, or
// resolved with a value.
type Result[T any] struct {
	resolved bool
	value    T
}

// Pending reports that the condition has not settled yet.
func Pending[T any]() Result[T] {
	return Result[T]{}
}

// Resolved reports that the condition settled with v.
func Resolved[T any](v T) Result[T] {
	return Result[T]{resolved: true, value: v}
}

// Done reports whether the tick resolved.
func (r Result[T]) Done() bool { return r.resolved }

// Value returns the resolved value, or the zero value while pending.
func (r Result[T]) Value() T { return r.value }

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Poll calls check immediately and then every interval until it resolves,
// the budget is spent, or ctx is done. check is always evaluated at least
// once. On exhaustion Poll returns ErrTimeout.
func Poll[T any](ctx context.Context, budget, interval time.Duration, check func(ctx context.Context) Result[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(budget)
	for {
		r := check(ctx)
		if r.Done() {
			return r.Value(), nil
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if !time.Now().Before(deadline) {
			return zero, ErrTimeout
		}
		if err := Sleep(ctx, interval); err != nil {
			return zero, err
		}
	}
}

// Until polls find until it returns a non-nil value. It is the common
// "wait for element" form of Poll: a nil result on budget exhaustion
// means not found, and err is only set when ctx is done.
func Until[T any](ctx context.Context, budget, interval time.Duration, find func(ctx context.Context) *T) (*T, error) {
	v, err := Poll(ctx, budget, interval, func(ctx context.Context) Result[*T] {
		if found := find(ctx); found != nil {
			return Resolved(found)
		}
		return Pending[*T]()
	})
	if errors.Is(err, ErrTimeout) {
		return nil, nil
	}
	return v, err
}
