package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTabNotFound is returned when a tab id is not registered.
	ErrTabNotFound = errors.New("tab not found")

	// ErrStaleRef is returned when an action targets a ref that is no
	// longer in the page. Take a new snapshot and locate the element again.
	ErrStaleRef = errors.New("element ref is stale")
)

// Event is a synthetic DOM event dispatched on an element.
// Types starting with "pointer", "mouse" or "key" are created as
// PointerEvent, MouseEvent and KeyboardEvent; anything else is a plain
// bubbling Event.
type Event struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}

// Tab is one controlled page. Elements are addressed by the refs stamped
// by the most recent Snapshot.
type Tab interface {
	// ID returns the tab's registry id
	ID() string

	// URL returns the current page URL
	URL(ctx context.Context) (string, error)

	// Navigate loads url and waits for the DOM to be ready
	Navigate(ctx context.Context, url string) error

	// Snapshot stamps every element with its ref and measurements and
	// returns the page's outerHTML
	Snapshot(ctx context.Context) (string, error)

	ScrollIntoView(ctx context.Context, ref int) error
	Dispatch(ctx context.Context, ref int, ev Event) error

	// Click invokes the element's native click()
	Click(ctx context.Context, ref int) error
	Focus(ctx context.Context, ref int) error

	// ExecCommand runs document.execCommand against the focused element
	// and reports whether the browser accepted it
	ExecCommand(ctx context.Context, command, value string) (bool, error)

	SetValue(ctx context.Context, ref int, value string) error
	Value(ctx context.Context, ref int) (string, error)
}

// TabInfo contains metadata about an open tab.
type TabInfo struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Manager opens and tracks tabs on one browser.
type Manager interface {
	// Start launches the browser
	Start(ctx context.Context) error

	// OpenTab opens a new tab at url
	OpenTab(ctx context.Context, url string) (Tab, error)

	// Tab returns an open tab by id
	Tab(id string) (Tab, error)

	ListTabs() []TabInfo
	CloseTab(id string) error

	// CleanupIdleTabs closes tabs idle for longer than the idle timeout
	CleanupIdleTabs() error

	// Shutdown closes every tab and the browser
	Shutdown() error
}
