package browser

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// pageEngine is the small surface each CDP engine provides for one page.
// Everything else in Tab is built on evaluate.
type pageEngine interface {
	evaluate(ctx context.Context, script string, arg interface{}) (interface{}, error)
	url(ctx context.Context) (string, error)
	navigate(ctx context.Context, url string) error
	close() error
}

// scriptTab implements Tab on top of a pageEngine by running the shared
// snapshot and action scripts.
type scriptTab struct {
	id        string
	page      pageEngine
	createdAt time.Time

	mu         sync.Mutex
	lastUsedAt time.Time
}

func newScriptTab(id string, page pageEngine) *scriptTab {
	now := time.Now()
	return &scriptTab{id: id, page: page, createdAt: now, lastUsedAt: now}
}

func (t *scriptTab) touch() {
	t.mu.Lock()
	t.lastUsedAt = time.Now()
	t.mu.Unlock()
}

func (t *scriptTab) lastUsed() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastUsedAt
}

func (t *scriptTab) ID() string { return t.id }

func (t *scriptTab) URL(ctx context.Context) (string, error) {
	t.touch()
	return t.page.url(ctx)
}

func (t *scriptTab) Navigate(ctx context.Context, url string) error {
	t.touch()
	if err := t.page.navigate(ctx, url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (t *scriptTab) Snapshot(ctx context.Context) (string, error) {
	t.touch()
	res, err := t.page.evaluate(ctx, snapshotScript, nil)
	if err != nil {
		return "", fmt.Errorf("snapshot failed: %w", err)
	}
	html, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("snapshot returned %T, want string", res)
	}
	return html, nil
}

// act runs actScript and maps the stale marker to ErrStaleRef.
func (t *scriptTab) act(ctx context.Context, a action) (string, error) {
	t.touch()
	res, err := t.page.evaluate(ctx, actScript, a.asMap())
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", a.Op, err)
	}
	s, _ := res.(string)
	if s == staleMarker {
		return "", fmt.Errorf("%s ref %d: %w", a.Op, a.Ref, ErrStaleRef)
	}
	return s, nil
}

func (t *scriptTab) ScrollIntoView(ctx context.Context, ref int) error {
	_, err := t.act(ctx, action{Op: "scroll", Ref: ref})
	return err
}

func (t *scriptTab) Dispatch(ctx context.Context, ref int, ev Event) error {
	_, err := t.act(ctx, action{Op: "dispatch", Ref: ref, Type: ev.Type, Key: ev.Key})
	return err
}

func (t *scriptTab) Click(ctx context.Context, ref int) error {
	_, err := t.act(ctx, action{Op: "click", Ref: ref})
	return err
}

func (t *scriptTab) Focus(ctx context.Context, ref int) error {
	_, err := t.act(ctx, action{Op: "focus", Ref: ref})
	return err
}

func (t *scriptTab) ExecCommand(ctx context.Context, command, value string) (bool, error) {
	s, err := t.act(ctx, action{Op: "exec", Command: command, Value: value})
	if err != nil {
		return false, err
	}
	return s == "true", nil
}

func (t *scriptTab) SetValue(ctx context.Context, ref int, value string) error {
	_, err := t.act(ctx, action{Op: "set", Ref: ref, Value: value})
	return err
}

func (t *scriptTab) Value(ctx context.Context, ref int) (string, error) {
	return t.act(ctx, action{Op: "value", Ref: ref})
}

func (t *scriptTab) info(ctx context.Context) TabInfo {
	url, _ := t.page.url(ctx)
	return TabInfo{
		ID:         t.id,
		URL:        url,
		CreatedAt:  t.createdAt,
		LastUsedAt: t.lastUsed(),
	}
}
