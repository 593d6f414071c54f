// Package interact simulates user input on snapshot elements: a full
// pointer/mouse click sequence, clear-and-insert text entry, and Escape.
package interact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
	"github.com/shiromatz/yt-to-notebooklm/pkg/wait"
)

// ErrNoRef is returned for elements that did not come from a tab snapshot.
var ErrNoRef = errors.New("element has no snapshot ref")

// clickSequence is dispatched before the native click. Some NotebookLM
// controls only listen for the low-level pointer events.
var clickSequence = []string{"pointerdown", "mousedown", "pointerup", "mouseup"}

// Delays are the settle times between simulated inputs.
type Delays struct {
	// Click is waited after scrolling a target into view and after focusing an input
	Click time.Duration

	// InputDebounce is waited after inserting text, before the final notifications
	InputDebounce time.Duration
}

// DelaysFromConfig picks the interaction delays out of the timeout set.
func DelaysFromConfig(t config.Timeouts) Delays {
	return Delays{Click: t.UIClickDelay, InputDebounce: t.UIInputDebounce}
}

func refOf(el *dom.Element) (int, error) {
	if el == nil {
		return 0, fmt.Errorf("nil element: %w", ErrNoRef)
	}
	ref := el.Ref()
	if ref < 0 {
		return 0, fmt.Errorf("%s: %w", el, ErrNoRef)
	}
	return ref, nil
}

// Click scrolls el into view, waits d.Click, dispatches the pointer and
// mouse sequence and finishes with a native click.
func Click(ctx context.Context, tab browser.Tab, el *dom.Element, d Delays) error {
	ref, err := refOf(el)
	if err != nil {
		return err
	}
	if err := tab.ScrollIntoView(ctx, ref); err != nil {
		return err
	}
	if err := wait.Sleep(ctx, d.Click); err != nil {
		return err
	}
	for _, typ := range clickSequence {
		if err := tab.Dispatch(ctx, ref, browser.Event{Type: typ}); err != nil {
			return err
		}
	}
	return tab.Click(ctx, ref)
}

// EnterText replaces the value of the input el with text.
//
// The field is focused and cleared with selectAll+delete; if it still holds
// a value it is reset directly. The text goes in through insertText so the
// page sees a real edit, or through value assignment when the command is
// refused. Input and change are dispatched after the debounce.
func EnterText(ctx context.Context, tab browser.Tab, el *dom.Element, text string, d Delays) error {
	ref, err := refOf(el)
	if err != nil {
		return err
	}
	if err := tab.Focus(ctx, ref); err != nil {
		return err
	}
	if err := wait.Sleep(ctx, d.Click); err != nil {
		return err
	}

	if _, err := tab.ExecCommand(ctx, "selectAll", ""); err != nil {
		return err
	}
	if _, err := tab.ExecCommand(ctx, "delete", ""); err != nil {
		return err
	}

	current, err := tab.Value(ctx, ref)
	if err != nil {
		return err
	}
	if current != "" {
		if err := tab.SetValue(ctx, ref, ""); err != nil {
			return err
		}
		if err := notify(ctx, tab, ref, "input"); err != nil {
			return err
		}
	}

	inserted, err := tab.ExecCommand(ctx, "insertText", text)
	if err != nil {
		return err
	}
	if !inserted {
		if err := tab.SetValue(ctx, ref, text); err != nil {
			return err
		}
		if err := notify(ctx, tab, ref, "input"); err != nil {
			return err
		}
	}

	if err := wait.Sleep(ctx, d.InputDebounce); err != nil {
		return err
	}
	return notify(ctx, tab, ref, "input", "change")
}

// Escape dispatches an Escape keydown and keyup on el.
func Escape(ctx context.Context, tab browser.Tab, el *dom.Element) error {
	ref, err := refOf(el)
	if err != nil {
		return err
	}
	for _, typ := range []string{"keydown", "keyup"} {
		if err := tab.Dispatch(ctx, ref, browser.Event{Type: typ, Key: "Escape"}); err != nil {
			return err
		}
	}
	return nil
}

func notify(ctx context.Context, tab browser.Tab, ref int, types ...string) error {
	for _, typ := range types {
		if err := tab.Dispatch(ctx, ref, browser.Event{Type: typ}); err != nil {
			return err
		}
	}
	return nil
}
