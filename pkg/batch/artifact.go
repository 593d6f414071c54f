package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
)

// ArtifactWriter writes run reports under <dir>/<run id>/.
type ArtifactWriter struct {
	dir     string
	jsonOut bool
	mdOut   bool
}

// NewArtifactWriter creates a writer from the batch config. It returns nil
// when no report directory is configured.
func NewArtifactWriter(cfg config.BatchConfig) *ArtifactWriter {
	if cfg.ReportDir == "" {
		return nil
	}
	return &ArtifactWriter{dir: cfg.ReportDir, jsonOut: cfg.JSON, mdOut: cfg.Markdown}
}

// RunDir returns the directory the reports of s are written to.
func (w *ArtifactWriter) RunDir(s *Summary) string {
	return filepath.Join(w.dir, s.RunID)
}

// WriteAll writes every enabled report format.
func (w *ArtifactWriter) WriteAll(s *Summary) error {
	if w == nil {
		return nil
	}
	if err := os.MkdirAll(w.RunDir(s), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if w.jsonOut {
		if err := w.WriteRunJSON(s); err != nil {
			return err
		}
		if err := w.WriteMetricsJSON(s); err != nil {
			return err
		}
	}
	if w.mdOut {
		if err := w.WriteSummaryMarkdown(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteRunJSON writes the full summary as run.json.
func (w *ArtifactWriter) WriteRunJSON(s *Summary) error {
	return writeJSON(filepath.Join(w.RunDir(s), "run.json"), s)
}

// WriteMetricsJSON writes the run counters as metrics.json.
func (w *ArtifactWriter) WriteMetricsJSON(s *Summary) error {
	return writeJSON(filepath.Join(w.RunDir(s), "metrics.json"), s.Metrics)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteSummaryMarkdown writes a human-readable summary.md.
func (w *ArtifactWriter) WriteSummaryMarkdown(s *Summary) error {
	path := filepath.Join(w.RunDir(s), "summary.md")

	var md strings.Builder

	md.WriteString("# NotebookLM Batch Summary\n\n")
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", s.RunID))
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", s.Status))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", s.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Completed:** %s\n\n", s.EndTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", s.Duration))

	if s.Error != "" {
		md.WriteString(fmt.Sprintf("**Error:** %s\n\n", s.Error))
	}

	md.WriteString("## Items\n\n")
	md.WriteString("| # | URL | Result |\n|---|-----|--------|\n")
	for _, item := range s.Items {
		result := "added"
		if !item.OK {
			result = item.Reason
			if item.Detail != "" {
				result += ": " + item.Detail
			}
		}
		md.WriteString(fmt.Sprintf("| %d | %s | %s |\n", item.Index+1, item.URL, result))
	}
	md.WriteString("\n")

	md.WriteString("## Metrics\n\n")
	md.WriteString(fmt.Sprintf("- **Total:** %d\n", s.Metrics.Total))
	md.WriteString(fmt.Sprintf("- **Added:** %d\n", s.Metrics.Succeeded))
	md.WriteString(fmt.Sprintf("- **Failed:** %d\n", s.Metrics.Failed))
	md.WriteString(fmt.Sprintf("- **Skipped:** %d\n", s.Metrics.Skipped))

	if err := os.WriteFile(path, []byte(md.String()), 0600); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}
	return nil
}
