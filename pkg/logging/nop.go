package logging

import (
	"fmt"
	"strings"
	"sync"
)

type nop struct{}

func (nop) Debugf(string, ...interface{}) {}
func (nop) Infof(string, ...interface{})  {}
func (nop) Warnf(string, ...interface{})  {}
func (nop) Errorf(string, ...interface{}) {}

// Nop returns a Leveled that discards everything.
func Nop() Leveled { return nop{} }

// Entry is one message captured by a Recorder.
type Entry struct {
	Level   string
	Message string
}

// Recorder keeps every message in memory. Used by tests to assert on log output.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level, format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(format, v...)})
}

func (r *Recorder) Debugf(format string, v ...interface{}) { r.add("DEBUG", format, v...) }
func (r *Recorder) Infof(format string, v ...interface{})  { r.add("INFO", format, v...) }
func (r *Recorder) Warnf(format string, v ...interface{})  { r.add("WARN", format, v...) }
func (r *Recorder) Errorf(format string, v ...interface{}) { r.add("ERROR", format, v...) }

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many recorded messages contain substr.
func (r *Recorder) Count(substr string) int {
	n := 0
	for _, e := range r.Entries() {
		if strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

type tee []Leveled

// Tee fans every message out to all of the given loggers.
func Tee(loggers ...Leveled) Leveled {
	return tee(loggers)
}

func (t tee) Debugf(format string, v ...interface{}) {
	for _, l := range t {
		l.Debugf(format, v...)
	}
}

func (t tee) Infof(format string, v ...interface{}) {
	for _, l := range t {
		l.Infof(format, v...)
	}
}

func (t tee) Warnf(format string, v ...interface{}) {
	for _, l := range t {
		l.Warnf(format, v...)
	}
}

func (t tee) Errorf(format string, v ...interface{}) {
	for _, l := range t {
		l.Errorf(format, v...)
	}
}
