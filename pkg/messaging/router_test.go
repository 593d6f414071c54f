package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shiromatz/yt-to-notebooklm/pkg/automator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_SendToRegisteredTab(t *testing.T) {
	r := NewRouter()
	var got Message
	r.Register("tab-1", ReceiverFunc(func(ctx context.Context, msg Message) (Response, error) {
		got = msg
		return Response{OK: true, Mode: "auto"}, nil
	}))

	resp, err := r.Send(context.Background(), "tab-1", Message{Type: TypeAddSource, URL: "u"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, TypeAddSource, got.Type)
	assert.True(t, r.Registered("tab-1"))
}

func TestRouter_NoReceiver(t *testing.T) {
	r := NewRouter()

	_, err := r.Send(context.Background(), "missing", Message{Type: TypePing})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoReceiver))
	assert.Contains(t, err.Error(), "PING")
}

func TestRouter_Unregister(t *testing.T) {
	r := NewRouter()
	r.Register("tab-1", ReceiverFunc(func(ctx context.Context, msg Message) (Response, error) {
		return OK(), nil
	}))
	r.Unregister("tab-1")

	_, err := r.Send(context.Background(), "tab-1", Message{Type: TypePing})
	assert.True(t, errors.Is(err, ErrNoReceiver))
	assert.False(t, r.Registered("tab-1"))
}

func TestRouter_RegisterIfAbsent(t *testing.T) {
	r := NewRouter()
	pong := ReceiverFunc(func(ctx context.Context, msg Message) (Response, error) {
		return OK(), nil
	})

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.RegisterIfAbsent("tab-1", pong) {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.True(t, r.Registered("tab-1"))
}

func TestFromOutcome(t *testing.T) {
	resp := FromOutcome(automator.Failed(automator.StepSubmit, automator.DetailNoSubmit))
	assert.Equal(t, Response{Mode: "failed", Detail: "submit button not found", Step: "submit"}, resp)
	assert.False(t, resp.LimitReached())

	assert.Equal(t, Response{OK: true, Mode: "auto"}, FromOutcome(automator.Succeeded()))
}
