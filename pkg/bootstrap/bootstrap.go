// Package bootstrap makes sure a destination tab shows a notebook before
// sources are added to it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/wait"
)

// NotebookPath marks a URL that already points at a notebook.
const NotebookPath = "/notebook/"

// ErrNotReady is returned when the tab never reached a notebook.
var ErrNotReady = errors.New("notebook not ready")

// Page is the part of a tab the helper reads.
type Page interface {
	ID() string
	URL(ctx context.Context) (string, error)
}

// Sender delivers a message to a tab.
type Sender interface {
	Send(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error)
}

// Helper turns a NotebookLM dashboard tab into a fresh notebook.
type Helper struct {
	sender   Sender
	interval time.Duration
	budget   time.Duration
	settle   time.Duration
	log      logging.Leveled
}

// New creates a Helper with the redirect timings from t.
func New(sender Sender, t config.Timeouts, log logging.Leveled) *Helper {
	if log == nil {
		log = logging.Nop()
	}
	return &Helper{
		sender:   sender,
		interval: t.PollMed,
		budget:   t.RedirectWait,
		settle:   t.UIAnimationLong,
		log:      log,
	}
}

// IsNotebook reports whether url points at a notebook.
func IsNotebook(url string) bool {
	return strings.Contains(url, NotebookPath)
}

// EnsureNotebook returns nil when page shows a notebook, creating one
// first when it shows the dashboard. The caller must have a content
// handler registered for the page.
func (h *Helper) EnsureNotebook(ctx context.Context, page Page) error {
	url, err := page.URL(ctx)
	if err != nil {
		return fmt.Errorf("failed to read tab url: %w", err)
	}
	if IsNotebook(url) {
		return nil
	}

	h.log.Infof("tab %s is on the dashboard, creating a notebook", page.ID())
	resp, err := h.sender.Send(ctx, page.ID(), messaging.Message{Type: messaging.TypeCreateNotebook})
	if err != nil {
		return fmt.Errorf("create notebook: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("%w: %s", ErrNotReady, resp.Detail)
	}

	_, err = wait.Poll(ctx, h.budget, h.interval, func(ctx context.Context) wait.Result[string] {
		u, err := page.URL(ctx)
		if err != nil || !IsNotebook(u) {
			return wait.Pending[string]()
		}
		return wait.Resolved(u)
	})
	if errors.Is(err, wait.ErrTimeout) {
		return fmt.Errorf("%w: no redirect after %s", ErrNotReady, h.budget)
	}
	if err != nil {
		return err
	}

	h.log.Debugf("tab %s redirected to a notebook", page.ID())
	return wait.Sleep(ctx, h.settle)
}
