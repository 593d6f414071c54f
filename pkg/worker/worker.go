// Package worker coordinates single-URL submissions and playlist batches
// between a source (a YouTube page or the command line) and a NotebookLM
// destination tab.
//
// The Coordinator owns the message router. Before it talks to a tab it
// checks that a content handler answers PING and attaches one when none
// does, so every tab opened through the browser manager can be targeted
// by id.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/shiromatz/yt-to-notebooklm/pkg/automator"
	"github.com/shiromatz/yt-to-notebooklm/pkg/badge"
	"github.com/shiromatz/yt-to-notebooklm/pkg/batch"
	"github.com/shiromatz/yt-to-notebooklm/pkg/bootstrap"
	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/urls"
)

// DetailNoVideos is the detail of a playlist request that found nothing.
const DetailNoVideos = "no videos found in playlist"

// Tabs resolves tab ids. browser.Manager implements it.
type Tabs interface {
	Tab(id string) (browser.Tab, error)
}

// Automation is what the coordinator attaches to destination tabs.
type Automation interface {
	messaging.Automation
	Finder() *dom.Finder
}

// Coordinator handles SEND_URL and PROCESS_PLAYLIST and forwards every
// other message to the addressed tab.
type Coordinator struct {
	router     *messaging.Router
	tabs       Tabs
	auto       Automation
	normalizer *urls.Normalizer
	notebooks  *bootstrap.Helper
	batches    *batch.Orchestrator
	reports    *batch.ArtifactWriter
	badges     badge.Sink
	timeouts   config.Timeouts
	clipboard  bool
	copy       func(text string) error
	onBatch    func(s *batch.Summary)
	log        logging.Leveled

	// bg scopes playlist runs, which outlive the request that started them
	bg context.Context
	wg sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Leveled) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithContext sets the context playlist runs are bound to.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.bg = ctx }
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(text string) error) Option {
	return func(c *Coordinator) { c.copy = fn }
}

// WithNormalizer replaces the URL normalizer.
func WithNormalizer(n *urls.Normalizer) Option {
	return func(c *Coordinator) { c.normalizer = n }
}

// WithReports writes an artifact set for every finished playlist run.
func WithReports(w *batch.ArtifactWriter) Option {
	return func(c *Coordinator) { c.reports = w }
}

// OnBatchDone registers a callback for finished playlist runs.
func OnBatchDone(fn func(s *batch.Summary)) Option {
	return func(c *Coordinator) { c.onBatch = fn }
}

// New creates a Coordinator.
func New(cfg *config.Config, router *messaging.Router, tabs Tabs, auto Automation, badges badge.Sink, opts ...Option) (*Coordinator, error) {
	normalizer, err := urls.NewNormalizer(urls.DefaultVideoHosts)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{
		router:     router,
		tabs:       tabs,
		auto:       auto,
		normalizer: normalizer,
		badges:     badges,
		timeouts:   cfg.Timeouts,
		clipboard:  cfg.ClipboardFallback,
		copy:       clipboard.WriteAll,
		log:        logging.Nop(),
		bg:         context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.notebooks = bootstrap.New(router, cfg.Timeouts, c.log)
	c.batches = batch.NewOrchestrator(router, badges, cfg.Timeouts, c.log)
	return c, nil
}

// Handle implements messaging.Receiver.
func (c *Coordinator) Handle(ctx context.Context, msg messaging.Message) (messaging.Response, error) {
	switch msg.Type {
	case messaging.TypeSendURL:
		return c.SendURL(ctx, msg), nil
	case messaging.TypeProcessPlaylist:
		return c.StartPlaylist(ctx, msg), nil
	}

	if err := c.ensureContent(ctx, msg.TargetID); err != nil {
		return messaging.Response{}, err
	}
	return c.router.Send(ctx, msg.TargetID, msg)
}

// Wait blocks until every playlist run started so far has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// SendURL adds one URL to the destination tab and shows the result on
// the source badge.
func (c *Coordinator) SendURL(ctx context.Context, msg messaging.Message) messaging.Response {
	url, ok := c.normalizer.Normalize(msg.URL)
	if !ok {
		c.log.Warnf("rejected url %q", msg.URL)
		c.flash(msg.SourceID, badge.TextError, badge.ColorError)
		return messaging.Response{Mode: messaging.ModeBadURL}
	}

	tab, err := c.prepare(ctx, msg.TargetID)
	if err != nil {
		c.flash(msg.SourceID, badge.TextError, badge.ColorError)
		if errors.Is(err, bootstrap.ErrNotReady) {
			return messaging.Response{Mode: messaging.ModeCreateFailed, Detail: err.Error()}
		}
		return messaging.Response{Mode: messaging.ModeException, Detail: err.Error()}
	}

	resp, err := c.router.Send(ctx, tab.ID(), messaging.Message{Type: messaging.TypeAddSource, URL: url})
	if err != nil {
		c.flash(msg.SourceID, badge.TextError, badge.ColorError)
		if errors.Is(err, messaging.ErrNoReceiver) {
			return messaging.Response{Mode: messaging.ModeNoResponse}
		}
		c.log.Errorf("send %s: %v", url, err)
		return messaging.Response{Mode: messaging.ModeException, Detail: err.Error()}
	}

	if resp.OK && resp.Mode == string(automator.ModeAuto) {
		c.log.Infof("added %s", url)
		c.flash(msg.SourceID, badge.TextOK, badge.ColorSuccess)
		return resp
	}

	c.flash(msg.SourceID, badge.TextError, badge.ColorError)
	if c.clipboard && resp.Mode == string(automator.ModeFailed) {
		if err := c.copy(url); err != nil {
			c.log.Warnf("clipboard fallback failed: %v", err)
			return resp
		}
		c.log.Infof("automation failed (%s), copied %s to the clipboard", resp.Detail, url)
		return messaging.Response{OK: true, Mode: messaging.ModeClipboard}
	}
	return resp
}

// StartPlaylist extracts the videos listed on the source tab and adds
// them to the destination tab in the background. The response only
// acknowledges the start.
func (c *Coordinator) StartPlaylist(ctx context.Context, msg messaging.Message) messaging.Response {
	source, err := c.tabs.Tab(msg.SourceID)
	if err != nil {
		return messaging.Response{Mode: messaging.ModeException, Detail: err.Error()}
	}
	list, err := urls.ExtractPlaylist(ctx, source, c.auto.Finder())
	if err != nil {
		c.log.Errorf("playlist extraction: %v", err)
		return messaging.Response{Mode: messaging.ModeException, Detail: err.Error()}
	}
	if len(list) == 0 {
		return messaging.Response{Detail: DetailNoVideos}
	}

	c.log.Infof("playlist on tab %s: %d videos", msg.SourceID, len(list))
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runPlaylist(c.bg, msg.TargetID, msg.SourceID, list)
	}()
	return messaging.Response{OK: true, Mode: messaging.ModePlaylistStarted, Count: len(list)}
}

func (c *Coordinator) runPlaylist(ctx context.Context, targetID, sourceID string, list []string) {
	job := batch.NewJob(list, targetID, sourceID)

	var s *batch.Summary
	if _, err := c.prepare(ctx, targetID); err != nil {
		c.log.Errorf("playlist destination %s not ready: %v", targetID, err)
		c.badges.Set(sourceID, badge.TextError, badge.ColorError)
		s = batch.Aborted(job, err)
	} else {
		s = c.batches.Run(ctx, job)
		if err := c.reports.WriteAll(s); err != nil {
			c.log.Warnf("batch report: %v", err)
		}
	}

	if c.onBatch != nil {
		c.onBatch(s)
	}
}

// prepare attaches a content handler to the destination tab and makes
// sure it shows a notebook.
func (c *Coordinator) prepare(ctx context.Context, targetID string) (browser.Tab, error) {
	tab, err := c.tabs.Tab(targetID)
	if err != nil {
		return nil, err
	}
	if err := c.ensureContent(ctx, targetID); err != nil {
		return nil, err
	}
	if err := c.notebooks.EnsureNotebook(ctx, tab); err != nil {
		return nil, err
	}
	return tab, nil
}

// ensureContent pings the tab's content handler and attaches one when
// nothing answers.
func (c *Coordinator) ensureContent(ctx context.Context, tabID string) error {
	_, err := c.router.Send(ctx, tabID, messaging.Message{Type: messaging.TypePing})
	if err == nil {
		return nil
	}
	if !errors.Is(err, messaging.ErrNoReceiver) {
		return fmt.Errorf("ping tab %s: %w", tabID, err)
	}

	tab, err := c.tabs.Tab(tabID)
	if err != nil {
		return err
	}
	if c.router.RegisterIfAbsent(tabID, messaging.NewHandler(tab, c.auto, c.timeouts.AutoAddMax, c.log)) {
		c.log.Debugf("content handler attached to tab %s", tabID)
	}
	return nil
}

// flash shows a badge that clears after the short display time.
func (c *Coordinator) flash(tabID, text, color string) {
	c.badges.Set(tabID, text, color)
	if c.timeouts.BadgeDisplay > 0 {
		badge.ClearAfter(c.badges, tabID, c.timeouts.BadgeDisplay)
	}
}
