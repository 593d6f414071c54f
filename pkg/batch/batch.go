// Package batch feeds an ordered list of URLs to a NotebookLM tab one at a
// time and aggregates the results.
//
// Items are processed strictly in order and never concurrently. A failed
// item is recorded and the run moves on; a full notebook stops the run.
// Whatever happens, the run ends by asking the tab to close any dialog
// left open.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shiromatz/yt-to-notebooklm/pkg/badge"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/wait"
)

// Status is the terminal state of a run.
type Status string

const (
	// StatusDone means every item was attempted
	StatusDone Status = "DONE"
	// StatusLimit means the notebook filled up and the rest was skipped
	StatusLimit Status = "LIMIT"
	// StatusError means the run could not continue
	StatusError Status = "ERR"
)

// Failure reasons recorded per item.
const (
	ReasonLimit     = "limit"
	ReasonFailed    = "failed"
	ReasonException = "exception"
)

// Sender delivers a message to a tab. *messaging.Router implements it.
type Sender interface {
	Send(ctx context.Context, tabID string, msg messaging.Message) (messaging.Response, error)
}

// Job is one batch run.
type Job struct {
	RunID    string
	URLs     []string
	TargetID string
	SourceID string

	// Processed counts items that got a result
	Processed  int
	// StopReason is ReasonLimit when the run stopped early
	StopReason string
}

// NewJob creates a job with a fresh run id.
func NewJob(urls []string, targetID, sourceID string) *Job {
	return &Job{
		RunID:    uuid.New().String(),
		URLs:     urls,
		TargetID: targetID,
		SourceID: sourceID,
	}
}

// ItemResult is the result of one URL.
type ItemResult struct {
	Index    int           `json:"index"`
	URL      string        `json:"url"`
	OK       bool          `json:"ok"`
	Reason   string        `json:"reason,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Step     string        `json:"step,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Metrics are the counters of a run.
type Metrics struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Summary is the complete record of a run.
type Summary struct {
	RunID     string        `json:"run_id"`
	TargetID  string        `json:"target_id"`
	SourceID  string        `json:"source_id"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Items     []ItemResult  `json:"items"`
	Metrics   Metrics       `json:"metrics"`
}

// Aborted is the summary of a job that could not start.
func Aborted(job *Job, err error) *Summary {
	now := time.Now()
	return &Summary{
		RunID:     job.RunID,
		TargetID:  job.TargetID,
		SourceID:  job.SourceID,
		Status:    StatusError,
		Error:     err.Error(),
		StartTime: now,
		EndTime:   now,
		Metrics:   Metrics{Total: len(job.URLs), Skipped: len(job.URLs)},
	}
}

// Report converts the summary for the console reporter.
func (s *Summary) Report() logging.Report {
	r := logging.Report{
		Title:    "Batch " + s.RunID,
		Status:   string(s.Status),
		Duration: s.Duration,
		Error:    s.Error,
		Metrics: []logging.Metric{
			{Name: "Total", Value: s.Metrics.Total},
			{Name: "Added", Value: s.Metrics.Succeeded},
			{Name: "Failed", Value: s.Metrics.Failed},
			{Name: "Skipped", Value: s.Metrics.Skipped},
		},
	}
	for _, item := range s.Items {
		detail := item.Reason
		if item.Detail != "" {
			detail += ": " + item.Detail
		}
		r.Items = append(r.Items, logging.ReportItem{Label: item.URL, OK: item.OK, Detail: detail})
	}
	return r
}

// Orchestrator runs batch jobs against a destination tab.
type Orchestrator struct {
	sender     Sender
	badges     badge.Sink
	itemDelay  time.Duration
	clearAfter time.Duration
	log        logging.Leveled

	// OnItem, when set, is called after every item
	OnItem func(job *Job, result ItemResult)
}

// NewOrchestrator creates an Orchestrator. The item delay and badge
// display time come from timeouts.
func NewOrchestrator(sender Sender, badges badge.Sink, timeouts config.Timeouts, log logging.Leveled) *Orchestrator {
	if log == nil {
		log = logging.Nop()
	}
	return &Orchestrator{
		sender:     sender,
		badges:     badges,
		itemDelay:  timeouts.BatchItemDelay,
		clearAfter: timeouts.BadgeDisplayLong,
		log:        log,
	}
}

// Run processes every URL of job in order and returns the summary.
func (o *Orchestrator) Run(ctx context.Context, job *Job) *Summary {
	s := &Summary{
		RunID:     job.RunID,
		TargetID:  job.TargetID,
		SourceID:  job.SourceID,
		Status:    StatusDone,
		StartTime: time.Now(),
		Metrics:   Metrics{Total: len(job.URLs)},
	}
	o.log.Infof("batch %s: %d urls -> tab %s", job.RunID, len(job.URLs), job.TargetID)

	for i, url := range job.URLs {
		if err := ctx.Err(); err != nil {
			s.Status = StatusError
			s.Error = err.Error()
			break
		}
		o.badges.Set(job.SourceID, badge.Progress(i, len(job.URLs)), badge.ColorProgress)

		result := o.process(ctx, job, i, url)
		job.Processed++
		s.Items = append(s.Items, result)
		if o.OnItem != nil {
			o.OnItem(job, result)
		}

		if result.Reason == ReasonLimit {
			o.badges.Set(job.SourceID, badge.TextFull, badge.ColorError)
			job.StopReason = ReasonLimit
			s.Status = StatusLimit
			break
		}
	}

	switch s.Status {
	case StatusLimit:
		o.badges.Set(job.SourceID, badge.TextLimit, badge.ColorError)
	case StatusDone:
		o.badges.Set(job.SourceID, badge.TextDone, badge.ColorSuccess)
	default:
		o.badges.Set(job.SourceID, badge.TextError, badge.ColorError)
	}

	o.closeDialog(ctx, job)

	if o.clearAfter > 0 {
		badge.ClearAfter(o.badges, job.SourceID, o.clearAfter)
	}

	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	s.Metrics.Processed = job.Processed
	for _, item := range s.Items {
		if item.OK {
			s.Metrics.Succeeded++
		} else if item.Reason != ReasonLimit {
			s.Metrics.Failed++
		}
	}
	s.Metrics.Skipped = s.Metrics.Total - s.Metrics.Succeeded - s.Metrics.Failed
	o.log.Infof("batch %s: %s (%d added, %d failed, %d skipped)",
		job.RunID, s.Status, s.Metrics.Succeeded, s.Metrics.Failed, s.Metrics.Skipped)
	return s
}

// process submits one URL. The item delay follows successful items only.
func (o *Orchestrator) process(ctx context.Context, job *Job, i int, url string) ItemResult {
	start := time.Now()
	result := ItemResult{Index: i, URL: url}

	resp, err := o.sender.Send(ctx, job.TargetID, messaging.Message{Type: messaging.TypeAddSource, URL: url})
	switch {
	case err != nil:
		o.log.Errorf("exception adding %s: %v", url, err)
		result.Reason = ReasonException
		result.Detail = err.Error()
	case resp.LimitReached():
		o.log.Warnf("notebook full at %s: %s", url, resp.Detail)
		result.Reason = ReasonLimit
		result.Detail = resp.Detail
		result.Step = resp.Step
	case !resp.OK:
		o.log.Warnf("failed to add %s: %s", url, resp.Detail)
		result.Reason = ReasonFailed
		result.Detail = resp.Detail
		if result.Detail == "" {
			result.Detail = "unknown"
		}
		result.Step = resp.Step
	default:
		result.OK = true
	}
	result.Duration = time.Since(start)

	if result.OK {
		_ = wait.Sleep(ctx, o.itemDelay)
	}
	return result
}

// closeDialog asks the tab to close any lingering dialog. Errors are
// logged and dropped.
func (o *Orchestrator) closeDialog(ctx context.Context, job *Job) {
	if _, err := o.sender.Send(ctx, job.TargetID, messaging.Message{Type: messaging.TypeCloseDialog}); err != nil {
		o.log.Debugf("close dialog after batch %s: %v", job.RunID, err)
	}
}
