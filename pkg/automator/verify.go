package automator

import (
	"context"
	"errors"

	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
	"github.com/shiromatz/yt-to-notebooklm/pkg/wait"
)

// Check is the evaluation of one verification tick.
type Check struct {
	Result wait.Result[Outcome]

	// Toast is the success phrase seen on the page while the dialog was
	// still open. It never resolves the tick on its own.
	Toast string
}

// CheckCompletion classifies the page after submission, in order:
// no visible dialog is success, an error phrase inside the dialog is
// failure, anything else is pending.
func CheckCompletion(f *dom.Finder, doc *dom.Document) Check {
	dialog := f.LastVisibleDialog(doc)
	if dialog == nil {
		return Check{Result: wait.Resolved(Succeeded())}
	}
	if phrase := dom.MatchPhrase(dialog.Text(), f.Texts().ErrorDialogs); phrase != "" {
		return Check{Result: wait.Resolved(Failed(StepVerify, DetailDialogError))}
	}
	return Check{Result: wait.Pending[Outcome](), Toast: successToast(f, doc)}
}

// successToast returns the success phrase found anywhere in the page text.
func successToast(f *dom.Finder, doc *dom.Document) string {
	body := doc.Body()
	if body == nil {
		return ""
	}
	return dom.MatchPhrase(body.Text(), f.Texts().SuccessToasts)
}

// verify polls until the dialog closes or shows an error. When the budget
// runs out a success toast still on the page is accepted as success.
func (a *Automator) verify(ctx context.Context, tab browser.Tab) Outcome {
	a.log.Debugf("step %s", StepVerify)

	toastSeen := false
	out, err := wait.Poll(ctx, a.timeouts.VerifyPollMax, a.timeouts.PollFast, func(ctx context.Context) wait.Result[Outcome] {
		doc, err := a.snapshot(ctx, tab)
		if err != nil {
			a.log.Debugf("snapshot failed: %v", err)
			return wait.Pending[Outcome]()
		}
		c := CheckCompletion(a.finder, doc)
		if c.Toast != "" && !toastSeen {
			toastSeen = true
			a.log.Debugf("success toast %q seen, waiting for the dialog to close", c.Toast)
		}
		return c.Result
	})
	if err == nil {
		return out
	}
	if !errors.Is(err, wait.ErrTimeout) {
		return a.aborted(StepVerify, err)
	}

	doc, err := a.snapshot(ctx, tab)
	if err == nil {
		if toast := successToast(a.finder, doc); toast != "" {
			a.log.Infof("dialog still open but success toast %q present, assuming success", toast)
			return Succeeded()
		}
	}
	return Failed(StepVerify, DetailVerifyTimeout)
}
