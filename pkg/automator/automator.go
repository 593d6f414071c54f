// Package automator drives one URL through NotebookLM's add-source dialog.
//
// TryAutoAdd runs the states in order: open the dialog, check the source
// limit, select the YouTube source type, locate the URL input, enter the
// value, submit and verify. Every state re-reads the page from a fresh
// snapshot; element refs are never reused across a delay. A failing state
// ends the run with an Outcome tagged with that state's Step.
package automator

import (
	"context"
	"fmt"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
	"github.com/shiromatz/yt-to-notebooklm/pkg/interact"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/wait"
)

// Logger is the logging capability the automator needs.
// *logging.Logger, logging.Nop() and *logging.Recorder satisfy it.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Automator runs the add-source state machine against a browser tab.
// It holds no page state and may be shared by sequential runs.
type Automator struct {
	finder     *dom.Finder
	timeouts   config.Timeouts
	delays     interact.Delays
	strategies []Strategy
	log        Logger
}

// Option configures an Automator.
type Option func(*Automator)

// WithLogger injects the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(a *Automator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithStrategies replaces the source-type strategies, keeping their order.
func WithStrategies(s ...Strategy) Option {
	return func(a *Automator) {
		a.strategies = s
	}
}

// New creates an Automator from the selectors, phrases and timeouts in cfg.
func New(cfg *config.Config, opts ...Option) *Automator {
	a := &Automator{
		finder:     dom.NewFinder(cfg.Selectors, cfg.Texts),
		timeouts:   cfg.Timeouts,
		delays:     interact.DelaysFromConfig(cfg.Timeouts),
		strategies: DefaultStrategies(),
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Finder returns the element finder built from the configuration.
func (a *Automator) Finder() *dom.Finder { return a.finder }

// snapshot captures and parses the tab's current DOM.
func (a *Automator) snapshot(ctx context.Context, tab browser.Tab) (*dom.Document, error) {
	html, err := tab.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return dom.Parse(html)
}

// poll waits for fn to find an element in a fresh snapshot. Snapshot
// errors count as not found for that tick.
func (a *Automator) poll(ctx context.Context, tab browser.Tab, budget, interval time.Duration, fn func(doc *dom.Document) *dom.Element) (*dom.Element, error) {
	return wait.Until(ctx, budget, interval, func(ctx context.Context) *dom.Element {
		doc, err := a.snapshot(ctx, tab)
		if err != nil {
			a.log.Debugf("snapshot failed: %v", err)
			return nil
		}
		return fn(doc)
	})
}

// TryAutoAdd adds url as a source of the notebook open in tab.
func (a *Automator) TryAutoAdd(ctx context.Context, tab browser.Tab, url string) Outcome {
	a.log.Infof("auto add start: %s", url)

	if out := a.openDialog(ctx, tab); !out.OK {
		return a.finish(out)
	}
	if out := a.checkCapacity(ctx, tab); !out.OK {
		return a.finish(out)
	}

	input, out := a.selectSource(ctx, tab)
	if !out.OK {
		return a.finish(out)
	}
	if input == nil {
		if input, out = a.locateInput(ctx, tab); !out.OK {
			return a.finish(out)
		}
	}

	a.log.Debugf("entering url into %s", input)
	if err := interact.EnterText(ctx, tab, input, url, a.delays); err != nil {
		return a.finish(a.aborted(StepEnterValue, err))
	}

	if out := a.submit(ctx, tab); !out.OK {
		return a.finish(out)
	}
	return a.finish(a.verify(ctx, tab))
}

func (a *Automator) finish(out Outcome) Outcome {
	if out.OK {
		a.log.Infof("auto add done: %s", out)
	} else {
		a.log.Warnf("auto add stopped: %s", out)
	}
	return out
}

// proceed is the internal "state passed" result. It is never returned
// from TryAutoAdd.
func proceed() Outcome { return Outcome{OK: true} }

// aborted turns a driver or context error into a failure of step.
func (a *Automator) aborted(step string, err error) Outcome {
	return Failed(step, err.Error())
}

// openDialog clicks the add-source button and waits for the dialog. A
// dialog that is already open is accepted when there is no button.
func (a *Automator) openDialog(ctx context.Context, tab browser.Tab) Outcome {
	a.log.Debugf("step %s", StepOpenDialog)

	doc, err := a.snapshot(ctx, tab)
	if err != nil {
		return a.aborted(StepOpenDialog, err)
	}
	if btn := a.finder.AddSourceButton(doc); btn != nil {
		a.log.Debugf("add source button: %s", btn)
		if err := interact.Click(ctx, tab, btn, a.delays); err != nil {
			return a.aborted(StepOpenDialog, err)
		}
	} else if a.finder.LastVisibleDialog(doc) == nil {
		return Failed(StepOpenDialog, DetailNoAddButton)
	}

	dialog, err := a.poll(ctx, tab, a.timeouts.DialogWait, a.timeouts.PollInterval, a.finder.LastVisibleDialog)
	if err != nil {
		return a.aborted(StepOpenDialog, err)
	}
	if dialog == nil {
		return Failed(StepOpenDialog, DetailDialogNotOpened)
	}

	if err := wait.Sleep(ctx, a.timeouts.UIAnimationMed); err != nil {
		return a.aborted(StepOpenDialog, err)
	}
	return proceed()
}

// checkCapacity stops the run when the dialog's counter reads full.
// An unreadable counter never blocks.
func (a *Automator) checkCapacity(ctx context.Context, tab browser.Tab) Outcome {
	doc, err := a.snapshot(ctx, tab)
	if err != nil {
		return a.aborted(StepCheckCapacity, err)
	}
	dialog := a.finder.LastVisibleDialog(doc)
	if dialog == nil {
		return proceed()
	}
	counter := a.finder.LimitCounter(doc, dialog)
	if counter == nil {
		return proceed()
	}
	c, ok := dom.ParseCapacity(counter.Text())
	if !ok {
		a.log.Debugf("capacity counter unreadable: %q", counter.Text())
		return proceed()
	}
	if c.Full() {
		return LimitReached(c.Current, c.Max)
	}
	a.log.Debugf("capacity %d/%d", c.Current, c.Max)
	return proceed()
}

// selectSource resolves the source type through the strategies. It returns
// the input when the winning strategy matched the input itself, else clicks
// the matched control and returns nil.
func (a *Automator) selectSource(ctx context.Context, tab browser.Tab) (*dom.Element, Outcome) {
	a.log.Debugf("step %s", StepSelectSource)

	m, err := wait.Until(ctx, a.timeouts.ElementWait, a.timeouts.PollInterval, func(ctx context.Context) *Match {
		doc, err := a.snapshot(ctx, tab)
		if err != nil {
			a.log.Debugf("snapshot failed: %v", err)
			return nil
		}
		dialog := a.finder.LastVisibleDialog(doc)
		if dialog == nil {
			return nil
		}
		m, ok := matchFirst(a.strategies, a.finder, doc, dialog)
		if !ok {
			a.log.Debugf("no strategy matched yet")
			return nil
		}
		return &m
	})
	if err != nil {
		return nil, a.aborted(StepSelectSource, err)
	}
	if m == nil {
		return nil, Failed(StepSelectSource, DetailNoSourceOption)
	}

	a.log.Infof("strategy match: %s (%s)", m.Strategy, m.Element)
	if m.Kind == KindInput {
		return m.Element, proceed()
	}
	if err := interact.Click(ctx, tab, m.Element, a.delays); err != nil {
		return nil, a.aborted(StepSelectSource, err)
	}
	return nil, proceed()
}

// locateInput waits for the URL input anywhere in the document; the dialog
// may re-render outside its original subtree after the selection click.
func (a *Automator) locateInput(ctx context.Context, tab browser.Tab) (*dom.Element, Outcome) {
	a.log.Debugf("step %s", StepLocateInput)

	input, err := a.poll(ctx, tab, a.timeouts.ElementWait, a.timeouts.PollMed, func(doc *dom.Document) *dom.Element {
		return a.finder.FindInput(doc, nil)
	})
	if err != nil {
		return nil, a.aborted(StepLocateInput, err)
	}
	if input == nil {
		return nil, Failed(StepLocateInput, DetailNoInput)
	}
	return input, proceed()
}

// submit waits for an enabled affirmative button in the current dialog
// and clicks it.
func (a *Automator) submit(ctx context.Context, tab browser.Tab) Outcome {
	a.log.Debugf("step %s", StepSubmit)

	btn, err := a.poll(ctx, tab, a.timeouts.DialogWait, a.timeouts.PollInterval, func(doc *dom.Document) *dom.Element {
		return a.finder.SubmitButton(doc, a.finder.LastVisibleDialog(doc))
	})
	if err != nil {
		return a.aborted(StepSubmit, err)
	}
	if btn == nil {
		return Failed(StepSubmit, DetailNoSubmit)
	}

	a.log.Debugf("submit button: %s", btn)
	if err := interact.Click(ctx, tab, btn, a.delays); err != nil {
		return a.aborted(StepSubmit, err)
	}
	return proceed()
}

// CloseDialog dismisses the topmost dialog: Escape first, then the close
// button, then the backdrop. It is best effort; the error only reports
// driver failures.
func (a *Automator) CloseDialog(ctx context.Context, tab browser.Tab) error {
	doc, err := a.snapshot(ctx, tab)
	if err != nil {
		return fmt.Errorf("close dialog: %w", err)
	}
	dialog := a.finder.LastVisibleDialog(doc)
	if dialog == nil {
		return nil
	}

	if err := interact.Escape(ctx, tab, dialog); err != nil {
		a.log.Debugf("escape failed: %v", err)
	}
	if err := wait.Sleep(ctx, a.timeouts.UIAnimationShort); err != nil {
		return err
	}

	doc, err = a.snapshot(ctx, tab)
	if err != nil {
		return fmt.Errorf("close dialog: %w", err)
	}
	dialog = a.finder.LastVisibleDialog(doc)
	if dialog == nil {
		return nil
	}

	target := a.finder.CloseButton(doc, dialog)
	if target == nil {
		target = a.finder.Backdrop(doc)
	}
	if target == nil {
		a.log.Debugf("dialog still open and no close control found")
		return nil
	}
	if err := interact.Click(ctx, tab, target, a.delays); err != nil {
		return fmt.Errorf("close dialog: %w", err)
	}
	return nil
}

// CreateNotebook waits for the create-notebook button on the NotebookLM
// home page and clicks it.
func (a *Automator) CreateNotebook(ctx context.Context, tab browser.Tab) Outcome {
	btn, err := a.poll(ctx, tab, a.timeouts.CreateNotebookWait, a.timeouts.PollMed, a.finder.CreateButton)
	if err != nil {
		return a.aborted(StepCreateNotebook, err)
	}
	if btn == nil {
		return Failed(StepCreateNotebook, DetailNoCreateButton)
	}
	a.log.Infof("create notebook: %s", btn)
	if err := interact.Click(ctx, tab, btn, a.delays); err != nil {
		return a.aborted(StepCreateNotebook, err)
	}
	return Succeeded()
}
