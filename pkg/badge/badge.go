// Package badge shows the short per-tab status text ("3/10", "OK", "FULL",
// "DONE", "ERR") that tracks single adds and batch runs.
package badge

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Badge colors.
const (
	ColorError    = "#b00020"
	ColorSuccess  = "#0a7d26"
	ColorProgress = "#005a9c"
	ColorDefault  = "#000000"
)

// Badge texts with a fixed meaning.
const (
	TextOK    = "OK"
	TextError = "ERR"
	TextFull  = "FULL"
	TextLimit = "LIMIT"
	TextDone  = "DONE"
)

// Sink displays badges. An empty text clears the badge.
type Sink interface {
	Set(tabID, text, color string)
}

// Progress formats the batch progress badge for the zero-based index i.
func Progress(i, total int) string {
	return fmt.Sprintf("%d/%d", i+1, total)
}

// Clear removes the badge of tabID.
func Clear(s Sink, tabID string) {
	s.Set(tabID, "", ColorDefault)
}

// ClearAfter clears the badge of tabID once d has passed. The returned
// timer can be stopped to keep the badge.
func ClearAfter(s Sink, tabID string, d time.Duration) *time.Timer {
	return time.AfterFunc(d, func() { Clear(s, tabID) })
}

// Badge is the current state of one tab's badge.
type Badge struct {
	Text      string    `json:"text"`
	Color     string    `json:"color"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Memory keeps the current badge of every tab. It backs the HTTP badge
// endpoint and tests.
type Memory struct {
	mu      sync.RWMutex
	badges  map[string]Badge
	history map[string][]string
}

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{
		badges:  make(map[string]Badge),
		history: make(map[string][]string),
	}
}

func (m *Memory) Set(tabID, text, color string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[tabID] = append(m.history[tabID], text)
	if text == "" {
		delete(m.badges, tabID)
		return
	}
	m.badges[tabID] = Badge{Text: text, Color: color, UpdatedAt: time.Now()}
}

// Get returns the badge of tabID.
func (m *Memory) Get(tabID string) (Badge, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.badges[tabID]
	return b, ok
}

// All returns a copy of every visible badge.
func (m *Memory) All() map[string]Badge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Badge, len(m.badges))
	for id, b := range m.badges {
		out[id] = b
	}
	return out
}

// History returns every text set for tabID in order, including clears.
func (m *Memory) History(tabID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.history[tabID]...)
}

// Tabs returns the ids of all tabs with a visible badge, sorted.
func (m *Memory) Tabs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.badges))
	for id := range m.badges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Console prints each badge change as a colored tag.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
}

// NewConsole creates a Console sink writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, renderer: lipgloss.NewRenderer(w)}
}

func (c *Console) Set(tabID, text, color string) {
	if text == "" {
		return
	}
	tag := c.renderer.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", tag, tabID)
}

type multi []Sink

// Multi fans every badge change out to all sinks.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Set(tabID, text, color string) {
	for _, s := range m {
		s.Set(tabID, text, color)
	}
}
