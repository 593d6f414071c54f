package automator

import (
	"context"
	"testing"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/browser/browsertest"
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(html)
	require.NoError(t, err)
	return doc
}

func TestCheckCompletion(t *testing.T) {
	f := New(testConfig()).Finder()

	tests := []struct {
		name    string
		html    string
		done    bool
		outcome Outcome
		toast   string
	}{
		{
			name:    "dialog closed",
			html:    page(""),
			done:    true,
			outcome: Succeeded(),
		},
		{
			name:    "dialog closed with toast",
			html:    page(toast),
			done:    true,
			outcome: Succeeded(),
		},
		{
			name:    "error phrase in dialog",
			html:    page(`<mat-dialog-container><p>Can't add this video</p></mat-dialog-container>`),
			done:    true,
			outcome: Failed(StepVerify, DetailDialogError),
		},
		{
			name:    "error wins over toast",
			html:    page(`<mat-dialog-container><p>Invalid URL</p></mat-dialog-container>` + toast),
			done:    true,
			outcome: Failed(StepVerify, DetailDialogError),
		},
		{
			name:  "toast while dialog open stays pending",
			html:  page(urlDialog + toast),
			toast: "added to notebook",
		},
		{
			name: "dialog open without signals",
			html: page(urlDialog),
		},
		{
			name:    "hidden dialog counts as closed",
			html:    page(`<mat-dialog-container data-nlm-box="0,0"><p>Invalid URL</p></mat-dialog-container>`),
			done:    true,
			outcome: Succeeded(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CheckCompletion(f, parse(t, tt.html))
			assert.Equal(t, tt.done, c.Result.Done())
			if tt.done {
				assert.Equal(t, tt.outcome, c.Result.Value())
			}
			assert.Equal(t, tt.toast, c.Toast)
		})
	}
}

func TestVerify_ToastDoesNotEndPolling(t *testing.T) {
	cfg := testConfig()
	cfg.Timeouts.VerifyPollMax = time.Second
	p := browsertest.New("t1", notebookURL, page(urlDialog+toast))
	p.OnSnapshot(func(p *browsertest.Page, n int) {
		if n == 5 {
			p.Load(page(toast))
		}
	})
	rec := logging.NewRecorder()

	out := New(cfg, WithLogger(rec)).verify(context.Background(), p)

	assert.Equal(t, Succeeded(), out)
	assert.Equal(t, 5, p.Snapshots(), "polling must continue until the dialog closes")
	assert.Equal(t, 1, rec.Count("success toast"), "toast is logged once")
}

func TestVerify_TimeoutFallsBackToToast(t *testing.T) {
	p := browsertest.New("t1", notebookURL, page(urlDialog+toast))
	rec := logging.NewRecorder()

	out := New(testConfig(), WithLogger(rec)).verify(context.Background(), p)

	assert.Equal(t, Succeeded(), out)
	assert.Greater(t, p.Snapshots(), 2)
	assert.Equal(t, 1, rec.Count("assuming success"))
}

func TestVerify_TimeoutWithoutToast(t *testing.T) {
	p := browsertest.New("t1", notebookURL, page(urlDialog))

	out := New(testConfig()).verify(context.Background(), p)

	assert.Equal(t, Failed(StepVerify, DetailVerifyTimeout), out)
}

func TestVerify_ToastGoneAtTimeout(t *testing.T) {
	p := browsertest.New("t1", notebookURL, page(urlDialog+toast))
	p.OnSnapshot(func(p *browsertest.Page, n int) {
		if n == 2 {
			p.Load(page(urlDialog))
		}
	})

	out := New(testConfig()).verify(context.Background(), p)

	assert.Equal(t, Failed(StepVerify, DetailVerifyTimeout), out)
}
