package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/browser/browsertest"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dashboardURL = "https://notebooklm.google.com/"
	notebookURL  = "https://notebooklm.google.com/notebook/abc"
)

// senderFunc adapts a function to Sender.
type senderFunc func(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error)

func (f senderFunc) Send(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error) {
	return f(ctx, tabID, msg)
}

func testTimeouts() config.Timeouts {
	return config.Timeouts{
		PollMed:         5 * time.Millisecond,
		RedirectWait:    50 * time.Millisecond,
		UIAnimationLong: time.Millisecond,
	}
}

func TestIsNotebook(t *testing.T) {
	assert.True(t, IsNotebook(notebookURL))
	assert.False(t, IsNotebook(dashboardURL))
	assert.False(t, IsNotebook("https://notebooklm.google.com/notebooks"))
}

func TestEnsureNotebook_AlreadyOnNotebook(t *testing.T) {
	page := browsertest.New("nb", notebookURL, "<html></html>")
	sent := 0
	h := New(senderFunc(func(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error) {
		sent++
		return messaging.OK(), nil
	}), testTimeouts(), nil)

	require.NoError(t, h.EnsureNotebook(context.Background(), page))
	assert.Zero(t, sent)
}

func TestEnsureNotebook_Redirects(t *testing.T) {
	page := browsertest.New("nb", dashboardURL, "<html></html>")
	var got messaging.Message
	h := New(senderFunc(func(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error) {
		got = msg
		assert.Equal(t, "nb", tabID)
		go func() {
			time.Sleep(10 * time.Millisecond)
			page.SetURL(notebookURL)
		}()
		return messaging.OK(), nil
	}), testTimeouts(), nil)

	require.NoError(t, h.EnsureNotebook(context.Background(), page))
	assert.Equal(t, messaging.TypeCreateNotebook, got.Type)
}

func TestEnsureNotebook_NoRedirect(t *testing.T) {
	page := browsertest.New("nb", dashboardURL, "<html></html>")
	h := New(senderFunc(func(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error) {
		return messaging.OK(), nil
	}), testTimeouts(), nil)

	err := h.EnsureNotebook(context.Background(), page)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReady))
	assert.Contains(t, err.Error(), "no redirect")
}

func TestEnsureNotebook_CreateFailed(t *testing.T) {
	page := browsertest.New("nb", dashboardURL, "<html></html>")
	h := New(senderFunc(func(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error) {
		return messaging.Response{OK: false, Detail: "create button not found"}, nil
	}), testTimeouts(), nil)

	err := h.EnsureNotebook(context.Background(), page)
	assert.True(t, errors.Is(err, ErrNotReady))
	assert.Contains(t, err.Error(), "create button not found")
}

func TestEnsureNotebook_TransportError(t *testing.T) {
	page := browsertest.New("nb", dashboardURL, "<html></html>")
	h := New(senderFunc(func(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error) {
		return messaging.Response{}, messaging.ErrNoReceiver
	}), testTimeouts(), nil)

	err := h.EnsureNotebook(context.Background(), page)
	assert.True(t, errors.Is(err, messaging.ErrNoReceiver))
}
