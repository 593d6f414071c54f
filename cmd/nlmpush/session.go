package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shiromatz/yt-to-notebooklm/pkg/automator"
	"github.com/shiromatz/yt-to-notebooklm/pkg/badge"
	"github.com/shiromatz/yt-to-notebooklm/pkg/batch"
	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/worker"
)

const (
	// sourceCLI labels badges for URLs given on the command line
	sourceCLI = "cli"

	// keepLogs is how many session logs survive a new session
	keepLogs = 20
)

// session is one running browser with a NotebookLM tab and the
// coordinator wired to it.
type session struct {
	cfg     *config.Config
	console *logging.Console
	fileLog *logging.Logger
	log     logging.Leveled
	manager browser.Manager
	router  *messaging.Router
	badges  *badge.Memory
	coord   *worker.Coordinator
	target  browser.Tab

	// summaries receives every finished playlist run
	summaries chan *batch.Summary
}

// newSession launches the browser and opens the notebook tab.
func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	console := logging.NewConsole(logging.ParseLevel(cfg.Logging.Verbosity))

	// NewLogger always returns a usable logger; the error only means it
	// fell back to stderr
	fileLog, err := logging.NewLogger("nlmpush")
	if err != nil {
		console.Warnf("file logging disabled: %v", err)
	} else if dir, err := logging.Dir(); err == nil {
		if _, err := logging.Prune(dir, keepLogs); err != nil {
			fileLog.Warnf("log prune: %v", err)
		}
	}

	s := &session{
		cfg:       cfg,
		console:   console,
		fileLog:   fileLog,
		log:       logging.Tee(fileLog, console),
		router:    messaging.NewRouter(),
		badges:    badge.NewMemory(),
		summaries: make(chan *batch.Summary, 1),
	}

	s.manager, err = browser.NewManager(cfg.Browser)
	if err != nil {
		s.close()
		return nil, err
	}

	console.Step(fmt.Sprintf("Starting %s browser", cfg.Browser.Engine))
	if err := s.manager.Start(ctx); err != nil {
		s.close()
		return nil, err
	}

	auto := automator.New(cfg, automator.WithLogger(fileLog.With("automator")))
	sink := badge.Multi(s.badges, badge.NewConsole(os.Stderr))
	s.coord, err = worker.New(cfg, s.router, s.manager, auto, sink,
		worker.WithContext(ctx),
		worker.WithLogger(s.log),
		worker.WithReports(batch.NewArtifactWriter(cfg.Batch)),
		worker.OnBatchDone(func(sum *batch.Summary) {
			select {
			case s.summaries <- sum:
			default:
			}
		}),
	)
	if err != nil {
		s.close()
		return nil, err
	}

	console.Step("Opening " + cfg.Browser.NotebookURL)
	s.target, err = s.manager.OpenTab(ctx, cfg.Browser.NotebookURL)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to open notebook tab: %w", err)
	}
	s.log.Debugf("notebook tab %s", s.target.ID())
	return s, nil
}

// close waits for background runs and shuts the browser down.
func (s *session) close() {
	if s.coord != nil {
		s.coord.Wait()
	}
	if s.manager != nil {
		if err := s.manager.Shutdown(); err != nil {
			s.log.Warnf("browser shutdown: %v", err)
		}
	}
	if s.fileLog != nil {
		_ = s.fileLog.Close()
	}
}

// message addresses msg to the notebook tab.
func (s *session) message(t messaging.Type, url string) messaging.Message {
	return messaging.Message{Type: t, URL: url, TargetID: s.target.ID(), SourceID: sourceCLI}
}
