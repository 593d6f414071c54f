package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *Summary {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Summary{
		RunID:     "run-1",
		TargetID:  "nb",
		Status:    StatusDone,
		StartTime: start,
		EndTime:   start.Add(3 * time.Second),
		Duration:  3 * time.Second,
		Items: []ItemResult{
			{Index: 0, URL: "https://www.youtube.com/watch?v=a", OK: true},
			{Index: 1, URL: "https://www.youtube.com/watch?v=b", Reason: ReasonFailed, Detail: "submit button not found"},
		},
		Metrics: Metrics{Total: 2, Processed: 2, Succeeded: 1, Failed: 1},
	}
}

func TestNewArtifactWriter_Disabled(t *testing.T) {
	w := NewArtifactWriter(config.BatchConfig{})
	assert.Nil(t, w)
	assert.NoError(t, w.WriteAll(sampleSummary()))
}

func TestArtifactWriter_WriteAll(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(config.BatchConfig{ReportDir: dir, JSON: true, Markdown: true})
	s := sampleSummary()

	require.NoError(t, w.WriteAll(s))

	runDir := filepath.Join(dir, "run-1")
	assert.Equal(t, runDir, w.RunDir(s))

	data, err := os.ReadFile(filepath.Join(runDir, "run.json"))
	require.NoError(t, err)
	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, StatusDone, decoded.Status)
	assert.Len(t, decoded.Items, 2)

	_, err = os.Stat(filepath.Join(runDir, "metrics.json"))
	assert.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(runDir, "summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "**Status:** DONE")
	assert.Contains(t, string(md), "| 2 | https://www.youtube.com/watch?v=b | failed: submit button not found |")
	assert.Contains(t, string(md), "- **Failed:** 1")
}

func TestArtifactWriter_MarkdownOnly(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(config.BatchConfig{ReportDir: dir, Markdown: true})

	require.NoError(t, w.WriteAll(sampleSummary()))

	_, err := os.Stat(filepath.Join(dir, "run-1", "run.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "run-1", "summary.md"))
	assert.NoError(t, err)
}
