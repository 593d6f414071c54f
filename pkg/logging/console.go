package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogLevel represents the console verbosity level.
type LogLevel int

const (
	// LogLevelQuiet shows only errors, warnings and the final report
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows standard progress (default)
	LogLevelNormal
	// LogLevelVerbose shows detailed step information
	LogLevelVerbose
	// LogLevelDebug shows all internal details
	LogLevelDebug
)

// ParseLevel converts a verbosity string to a LogLevel. Unknown values map to normal.
func ParseLevel(level string) LogLevel {
	switch level {
	case "quiet":
		return LogLevelQuiet
	case "normal":
		return LogLevelNormal
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}

// Report is the renderable form of a finished run.
type Report struct {
	Title    string
	Status   string
	Duration time.Duration
	Metrics  []Metric
	Items    []ReportItem
	Error    string
}

// Metric is one labelled number in a Report.
type Metric struct {
	Name  string
	Value int
}

// ReportItem is one line of per-item results in a Report.
type ReportItem struct {
	Label  string
	OK     bool
	Detail string
}

// Console provides leveled, styled terminal output for CLI runs.
type Console struct {
	mu     sync.Mutex
	level  LogLevel
	writer io.Writer

	header  lipgloss.Style
	section lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style

	stepCount int
}

// NewConsole creates a console logger writing to stdout.
func NewConsole(level LogLevel) *Console {
	return NewConsoleWriter(level, os.Stdout)
}

// NewConsoleWriter creates a console logger writing to w. Colors are
// dropped automatically when w is not a terminal.
func NewConsoleWriter(level LogLevel, w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		level:   level,
		writer:  w,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		section: r.NewStyle().Foreground(lipgloss.Color("6")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#0a7d26")),
		info:    r.NewStyle().Foreground(lipgloss.Color("#005a9c")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#b00020")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (c *Console) println(style lipgloss.Style, s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.writer, style.Render(s))
}

// Header prints a prominent header message.
func (c *Console) Header(message string) {
	if c.level >= LogLevelNormal {
		rule := strings.Repeat("=", 70)
		c.println(c.header, rule)
		c.println(c.header, "  "+message)
		c.println(c.header, rule)
	}
}

// Section prints a section divider.
func (c *Console) Section(title string) {
	if c.level >= LogLevelNormal {
		c.println(c.section, "\n▶ "+title)
		c.println(c.muted, strings.Repeat("─", 50))
	}
}

// Step prints a numbered step.
func (c *Console) Step(message string) {
	if c.level >= LogLevelNormal {
		c.mu.Lock()
		c.stepCount++
		n := c.stepCount
		c.mu.Unlock()
		c.println(c.section, fmt.Sprintf("[%d] %s", n, message))
	}
}

// Successf prints a success message with checkmark.
func (c *Console) Successf(format string, args ...interface{}) {
	if c.level >= LogLevelNormal {
		c.println(c.success, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message.
func (c *Console) Infof(format string, args ...interface{}) {
	if c.level >= LogLevelNormal {
		c.println(c.info, fmt.Sprintf(format, args...))
	}
}

// Warnf prints a warning message.
func (c *Console) Warnf(format string, args ...interface{}) {
	if c.level >= LogLevelQuiet {
		c.println(c.warning, "⚠ Warning: "+fmt.Sprintf(format, args...))
	}
}

// Errorf prints an error message.
func (c *Console) Errorf(format string, args ...interface{}) {
	if c.level >= LogLevelQuiet {
		c.println(c.failure, "✗ Error: "+fmt.Sprintf(format, args...))
	}
}

// Verbosef prints detailed information (only in verbose mode)
func (c *Console) Verbosef(format string, args ...interface{}) {
	if c.level >= LogLevelVerbose {
		c.println(c.muted, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (c *Console) Debugf(format string, args ...interface{}) {
	if c.level >= LogLevelDebug {
		c.println(c.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// Report prints the final summary of a run. Shown at every level.
func (c *Console) Report(r Report) {
	rule := strings.Repeat("=", 70)
	c.println(c.header, "\n"+rule)
	title := r.Title
	if title == "" {
		title = "RUN SUMMARY"
	}
	c.println(c.header, "  "+strings.ToUpper(title))
	c.println(c.header, rule)

	switch r.Status {
	case "DONE", "OK":
		c.println(c.success, "  Status: ✓ "+r.Status)
	case "LIMIT", "FULL":
		c.println(c.warning, "  Status: ⚠ "+r.Status)
	default:
		c.println(c.failure, "  Status: ✗ "+r.Status)
	}
	c.println(lipgloss.NewStyle(), fmt.Sprintf("  Duration: %s", r.Duration.Round(time.Millisecond)))

	if len(r.Metrics) > 0 {
		c.println(lipgloss.NewStyle(), "\n  Metrics:")
		for _, m := range r.Metrics {
			c.println(lipgloss.NewStyle(), fmt.Sprintf("    %s: %d", m.Name, m.Value))
		}
	}

	if c.level >= LogLevelVerbose || hasFailures(r.Items) {
		for _, item := range r.Items {
			if item.OK {
				if c.level >= LogLevelVerbose {
					c.println(c.success, "    ✓ "+item.Label)
				}
				continue
			}
			c.println(c.failure, "    ✗ "+item.Label)
			if item.Detail != "" {
				c.println(c.muted, "      "+item.Detail)
			}
		}
	}

	if r.Error != "" {
		c.println(c.failure, "\n  Error Details:")
		c.println(c.failure, "    "+r.Error)
	}
	c.println(c.header, rule+"\n")
}

func hasFailures(items []ReportItem) bool {
	for _, item := range items {
		if !item.OK {
			return true
		}
	}
	return false
}
