package wait

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll_ResolvesOnLaterTick(t *testing.T) {
	calls := 0
	v, err := Poll(context.Background(), time.Second, time.Millisecond, func(context.Context) Result[string] {
		calls++
		if calls < 3 {
			return Pending[string]()
		}
		return Resolved("ready")
	})

	require.NoError(t, err)
	assert.Equal(t, "ready", v)
	assert.Equal(t, 3, calls)
}

func TestPoll_EvaluatesAtLeastOnce(t *testing.T) {
	calls := 0
	_, err := Poll(context.Background(), 0, time.Millisecond, func(context.Context) Result[int] {
		calls++
		return Pending[int]()
	})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, calls)
}

func TestPoll_RespectsBudget(t *testing.T) {
	start := time.Now()
	_, err := Poll(context.Background(), 30*time.Millisecond, 5*time.Millisecond, func(context.Context) Result[int] {
		return Pending[int]()
	})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPoll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Poll(ctx, time.Minute, time.Millisecond, func(context.Context) Result[int] {
		calls++
		if calls == 2 {
			cancel()
		}
		return Pending[int]()
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestUntil_NotFoundIsNilWithoutError(t *testing.T) {
	v, err := Until(context.Background(), 10*time.Millisecond, time.Millisecond, func(context.Context) *int {
		return nil
	})
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestUntil_Found(t *testing.T) {
	n := 7
	v, err := Until(context.Background(), time.Second, time.Millisecond, func(context.Context) *int {
		return &n
	})
	require.NoError(t, err)
	assert.Equal(t, 7, *v)
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}

func TestResult(t *testing.T) {
	assert.False(t, Pending[int]().Done())
	r := Resolved(5)
	assert.True(t, r.Done())
	assert.Equal(t, 5, r.Value())
}
