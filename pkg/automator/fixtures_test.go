package automator

import (
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/browser/browsertest"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
)

const (
	notebookURL = "https://notebooklm.google.com/notebook/abc"
	videoURL    = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
)

// testConfig keeps every budget in the tens of milliseconds and narrows the
// toast phrases so that fixture text like "Add source" is not a toast.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timeouts = config.Timeouts{
		AutoAddMax:         2 * time.Second,
		PollInterval:       2 * time.Millisecond,
		PollFast:           2 * time.Millisecond,
		PollMed:            2 * time.Millisecond,
		DialogWait:         30 * time.Millisecond,
		ElementWait:        30 * time.Millisecond,
		VerifyPollMax:      30 * time.Millisecond,
		CreateNotebookWait: 30 * time.Millisecond,
	}
	cfg.Texts.SuccessToasts = []string{"added to notebook"}
	return cfg
}

// page renders a notebook page with the add button and the given overlay content.
func page(overlay string) string {
	return `<html><body>
<header><button id="add" aria-label="Add source"><span class="mat-icon">add</span>Add source</button></header>
<div class="cdk-overlay-container">` + overlay + `</div>
</body></html>`
}

func chipDialog(counter string) string {
	return `<mat-dialog-container id="dlg">
<h2>Add sources</h2>
<span class="postfix">` + counter + `</span>
<mat-chip id="drive-chip"><span class="mat-mdc-chip-action-label">Google Drive</span></mat-chip>
<mat-chip id="yt-chip"><span class="mat-icon">smart_display</span><span class="mat-mdc-chip-action-label">YouTube</span></mat-chip>
</mat-dialog-container>`
}

const urlDialog = `<mat-dialog-container id="dlg">
<h2>YouTube URL</h2>
<input id="url" formcontrolname="newUrl" placeholder="Paste YouTube URL">
<button id="cancel">Cancel</button>
<button id="insert">Insert</button>
</mat-dialog-container>`

const toast = `<div class="toast">Source added to notebook</div>`

// scriptFlow wires the usual transitions: add opens the chip dialog, the
// chip opens the URL dialog and insert closes it. The submitted value is
// stored in *submitted.
func scriptFlow(p *browsertest.Page, counter string, submitted *string) {
	p.OnClick("add", func(p *browsertest.Page) { p.Load(page(chipDialog(counter))) })
	p.OnClick("yt-chip", func(p *browsertest.Page) { p.Load(page(urlDialog)) })
	p.OnClick("insert", func(p *browsertest.Page) {
		if submitted != nil {
			*submitted = p.ValueOf("url")
		}
		p.Load(page(toast))
	})
}
