package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Leveled is the logging surface every nlmpush component accepts.
// *Logger, *Console, Nop and *Recorder all satisfy it.
type Leveled interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// EnvLogDir overrides the log directory.
const EnvLogDir = "NLMPUSH_LOG_DIR"

// logSuffix ends every session log file name.
const logSuffix = "-nlmpush.log"

// Logger writes component-tagged lines to the session log file,
//
//	[2006-01-02 15:04:05.000] [automator] [INFO] dialog opened
//
// Every level is written; console filtering is Console's job.
type Logger struct {
	component string
	out       *sink
}

// sink is the file shared by a logger and everything derived from it.
type sink struct {
	mu        sync.Mutex
	w         *log.Logger
	file      *os.File
	path      string
	closeOnce sync.Once
}

var (
	session     string
	sessionOnce sync.Once

	// logDir is resolved once per process; tests point it elsewhere
	logDir     string
	logDirOnce sync.Once
	logDirErr  error
)

// SessionID returns the id shared by every logger of this process.
func SessionID() string {
	sessionOnce.Do(func() {
		session = uuid.New().String()
	})
	return session
}

// Dir returns the log directory, creating it if needed. It is
// $NLMPUSH_LOG_DIR when set, else ~/.nlmpush/logs.
func Dir() (string, error) {
	logDirOnce.Do(func() {
		if logDir == "" {
			logDir = os.Getenv(EnvLogDir)
		}
		if logDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				logDirErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(home, ".nlmpush", "logs")
		}
		if err := os.MkdirAll(logDir, 0750); err != nil {
			logDirErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return logDir, logDirErr
}

// NewLogger opens the session log for component. When the file cannot be
// opened the returned logger writes to stderr and the error says why.
func NewLogger(component string) (*Logger, error) {
	dir, err := Dir()
	if err != nil {
		return stderrLogger(component, err), err
	}

	path := filepath.Join(dir, SessionID()+logSuffix)
	// Every component of the process appends to the same file
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return stderrLogger(component, err), err
	}

	return &Logger{
		component: component,
		out:       &sink{w: log.New(file, "", 0), file: file, path: path},
	}, nil
}

func stderrLogger(component string, cause error) *Logger {
	l := &Logger{component: component, out: &sink{w: log.New(os.Stderr, "", 0)}}
	l.Warnf("file logging unavailable (%v), writing to stderr", cause)
	return l
}

// With returns a logger for another component writing to the same file.
func (l *Logger) With(component string) *Logger {
	return &Logger{component: component, out: l.out}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	line := fmt.Sprintf("[%s] [%s] [%s] %s",
		time.Now().Format("2006-01-02 15:04:05.000"), l.component, level, fmt.Sprintf(format, v...))

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.w.Println(line)
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.write("INFO", format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.write("WARN", format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// Writer returns the underlying file, or stderr for a fallback logger.
func (l *Logger) Writer() io.Writer {
	if l.out.file != nil {
		return l.out.file
	}
	return os.Stderr
}

// LogPath returns the log file path, empty for a fallback logger.
func (l *Logger) LogPath() string {
	return l.out.path
}

// Close closes the shared file. Later calls, including those on derived
// loggers, are no-ops.
func (l *Logger) Close() error {
	var err error
	l.out.closeOnce.Do(func() {
		if l.out.file != nil {
			err = l.out.file.Close()
		}
	})
	return err
}

// Prune deletes all but the newest keep session logs in dir. The current
// session's log is never deleted.
func Prune(dir string, keep int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list log directory: %w", err)
	}

	type logFile struct {
		name string
		mod  time.Time
	}
	var logs []logFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), logSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logFile{e.Name(), info.ModTime()})
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].mod.After(logs[j].mod) })

	current := SessionID() + logSuffix
	removed := 0
	for i, f := range logs {
		if i < keep || f.name == current {
			continue
		}
		if err := os.Remove(filepath.Join(dir, f.name)); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", f.name, err)
		}
		removed++
	}
	return removed, nil
}
