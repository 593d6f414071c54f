package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/automator"
	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
)

// Automation is what a content handler runs against its tab.
type Automation interface {
	TryAutoAdd(ctx context.Context, tab browser.Tab, url string) automator.Outcome
	CloseDialog(ctx context.Context, tab browser.Tab) error
	CreateNotebook(ctx context.Context, tab browser.Tab) automator.Outcome
}

// Logger is the logging capability the handler needs.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

// Handler is the content handler of one NotebookLM tab. It runs one
// request at a time; a request that arrives while another is running
// waits for it, within its own ceiling.
type Handler struct {
	tab     browser.Tab
	auto    Automation
	ceiling time.Duration
	log     Logger

	// busy is a one-slot semaphore held for the whole automation run,
	// including runs that outlived their caller's ceiling.
	busy chan struct{}
}

// NewHandler creates the content handler for tab. ceiling bounds each
// ADD_SOURCE from arrival to response.
func NewHandler(tab browser.Tab, auto Automation, ceiling time.Duration, log Logger) *Handler {
	return &Handler{
		tab:     tab,
		auto:    auto,
		ceiling: ceiling,
		log:     log,
		busy:    make(chan struct{}, 1),
	}
}

// Handle implements Receiver.
func (h *Handler) Handle(ctx context.Context, msg Message) (Response, error) {
	switch msg.Type {
	case TypePing:
		return OK(), nil

	case TypeAddSource:
		return h.addSource(ctx, msg.URL), nil

	case TypeCloseDialog:
		h.exclusive(ctx, h.ceiling, func(ctx context.Context) Response {
			if err := h.auto.CloseDialog(ctx, h.tab); err != nil {
				h.log.Debugf("close dialog: %v", err)
			}
			return OK()
		})
		return OK(), nil

	case TypeCreateNotebook:
		return h.exclusive(ctx, h.ceiling, func(ctx context.Context) Response {
			out := h.auto.CreateNotebook(ctx, h.tab)
			return Response{OK: out.OK, Detail: out.Detail}
		}), nil

	default:
		return Response{}, fmt.Errorf("%w: %s", ErrUnknownType, msg.Type)
	}
}

func (h *Handler) addSource(ctx context.Context, url string) Response {
	h.log.Infof("ADD_SOURCE %s", url)
	resp := h.exclusive(ctx, h.ceiling, func(ctx context.Context) Response {
		return FromOutcome(h.auto.TryAutoAdd(ctx, h.tab, url))
	})
	h.log.Infof("ADD_SOURCE %s -> ok=%t mode=%s %s", url, resp.OK, resp.Mode, resp.Detail)
	return resp
}

// exclusive runs fn while holding the handler, bounded by ceiling when it
// is positive. The caller always gets a response when the ceiling passes,
// even if fn is stuck in a driver call that ignores its context; the slot
// is only released once fn returns.
func (h *Handler) exclusive(ctx context.Context, ceiling time.Duration, fn func(ctx context.Context) Response) Response {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if ceiling > 0 {
		runCtx, cancel = context.WithTimeout(ctx, ceiling)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	select {
	case h.busy <- struct{}{}:
	case <-runCtx.Done():
		cancel()
		return h.expired(ctx, runCtx)
	}

	type result struct {
		resp    Response
		expired bool
	}
	done := make(chan result, 1)
	go func() {
		defer func() { <-h.busy }()
		defer cancel()
		resp := fn(runCtx)
		done <- result{resp: resp, expired: runCtx.Err() != nil}
	}()

	select {
	case r := <-done:
		if r.expired && !r.resp.OK {
			return h.expired(ctx, runCtx)
		}
		return r.resp
	case <-runCtx.Done():
		return h.expired(ctx, runCtx)
	}
}

// expired builds the response for a run cut short by its ceiling or by
// the caller going away.
func (h *Handler) expired(parent, runCtx context.Context) Response {
	if parent.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		h.log.Warnf("automation exceeded its %s ceiling", h.ceiling)
		return FromOutcome(automator.Failed("", automator.DetailAutoAddTimeout))
	}
	return FromOutcome(automator.Failed("", runCtx.Err().Error()))
}
