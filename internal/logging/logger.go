// =============================================================================
// ExcelTools - Logging Module
// =============================================================================
//
// This module provides the application logger. Entries are kept in a bounded
// in-memory ring so that long batch runs never grow without limit, while a
// zerolog sink mirrors them to the console and, when enabled, to a per-run
// log file. Registered callbacks receive every retained entry, which is how
// front ends subscribe to live output.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// LEVELS
// =============================================================================

// Level classifies a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
	LevelCritical
)

// String returns the display name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelSuccess:
		return "SUCCESS"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// ParseLevel maps a configuration string to a Level. Unknown values
// fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "success":
		return LevelSuccess
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	case "critical":
		return LevelCritical
	}
	return LevelInfo
}

// zerologLevel maps a Level to the nearest zerolog level for the sinks.
func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo, LevelSuccess:
		return zerolog.InfoLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelCritical:
		return zerolog.FatalLevel
	}
	return zerolog.InfoLevel
}

// =============================================================================
// ENTRIES
// =============================================================================

// Entry is one retained log record.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Source  string
}

// Format renders the entry as a single log line.
func (e Entry) Format(timestamps, source bool) string {
	var b strings.Builder
	if timestamps {
		b.WriteString(e.Time.Format("15:04:05"))
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "[%s] ", e.Level)
	if source && e.Source != "" {
		fmt.Fprintf(&b, "[%s] ", e.Source)
	}
	b.WriteString(e.Message)
	return b.String()
}

// =============================================================================
// LOGGER
// =============================================================================

// Options configures a Logger.
type Options struct {
	// Level is the minimum retained level.
	Level Level

	// MaxEntries bounds the in-memory ring. Zero selects 500.
	MaxEntries int

	// Console receives rendered output. Nil selects os.Stderr.
	Console io.Writer

	// LogDir, when non-empty, enables a per-run log file inside it.
	LogDir string

	ShowTimestamps bool
	ShowSource     bool
}

// Logger is the application-wide leveled logger with a bounded history.
type Logger struct {
	mu        sync.Mutex
	opts      Options
	entries   []Entry
	callbacks []func(Entry)

	errorCount   int
	warningCount int

	zl      zerolog.Logger
	file    *os.File
	logPath string
}

// New creates a logger. When opts.LogDir is set, a log file named
// exceltools_YYYYMMDD_HHMMSS.log is created inside it; failure to create
// the file silently disables the file sink.
func New(opts Options) *Logger {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 500
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	l := &Logger{opts: opts}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        opts.Console,
		TimeFormat: "15:04:05",
		NoColor:    true,
	}}

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0755); err == nil {
			name := fmt.Sprintf("exceltools_%s.log", time.Now().Format("20060102_150405"))
			path := filepath.Join(opts.LogDir, name)
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				l.file = f
				l.logPath = path
				writers = append(writers, f)
			}
		}
	}

	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(opts.Level.zerologLevel()).
		With().Timestamp().Logger()
	return l
}

// LogPath returns the path of the per-run log file, or "" when disabled.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close releases the file sink.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// WithSource returns a view of the logger that stamps every entry with
// the given source name, typically a feature module.
func (l *Logger) WithSource(source string) *SourceLogger {
	return &SourceLogger{l: l, source: source}
}

// OnEntry registers a callback invoked for every retained entry.
func (l *Logger) OnEntry(fn func(Entry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, fn)
}

// Log records a message at the given level.
func (l *Logger) Log(level Level, source, format string, args ...interface{}) {
	if level < l.opts.Level {
		return
	}
	entry := Entry{
		Time:    time.Now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Source:  source,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.opts.MaxEntries {
		l.entries = l.entries[len(l.entries)-l.opts.MaxEntries:]
	}
	switch level {
	case LevelWarning:
		l.warningCount++
	case LevelError, LevelCritical:
		l.errorCount++
	}
	callbacks := append([]func(Entry){}, l.callbacks...)
	l.mu.Unlock()

	ev := l.zl.WithLevel(level.zerologLevel()).Str("level_name", level.String())
	if source != "" {
		ev = ev.Str("source", source)
	}
	ev.Msg(entry.Message)

	for _, fn := range callbacks {
		fn(entry)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, "", format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, "", format, args...)
}

func (l *Logger) Success(format string, args ...interface{}) {
	l.Log(LevelSuccess, "", format, args...)
}

func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LevelWarning, "", format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, "", format, args...)
}

func (l *Logger) Critical(format string, args ...interface{}) {
	l.Log(LevelCritical, "", format, args...)
}

// =============================================================================
// HISTORY
// =============================================================================

// Entries returns a copy of the retained entries, oldest first.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry{}, l.entries...)
}

// Counts returns the number of error-class and warning entries seen,
// including ones that have rotated out of the ring.
func (l *Logger) Counts() (errors, warnings int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorCount, l.warningCount
}

// Clear drops the retained entries and resets the counters.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.errorCount = 0
	l.warningCount = 0
}

// Export writes the retained entries to a text file.
func (l *Logger) Export(path string) error {
	var b strings.Builder
	b.WriteString("ExcelTools Log Export\n")
	b.WriteString("Generated: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	for _, e := range l.Entries() {
		b.WriteString(e.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
		b.WriteString(e.Format(false, true))
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to export log: %w", err)
	}
	return nil
}

// SaveErrorReport writes only the warning and error entries to a report
// file. It returns the number of entries written.
func (l *Logger) SaveErrorReport(path string) (int, error) {
	var b strings.Builder
	b.WriteString("ExcelTools Error Report\n")
	b.WriteString("Generated: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	count := 0
	for _, e := range l.Entries() {
		if e.Level < LevelWarning {
			continue
		}
		b.WriteString(e.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
		b.WriteString(e.Format(false, true))
		b.WriteString("\n")
		count++
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return 0, fmt.Errorf("failed to write error report: %w", err)
	}
	return count, nil
}

// =============================================================================
// SOURCE-SCOPED VIEW
// =============================================================================

// SourceLogger is a Logger view that stamps entries with a fixed source.
type SourceLogger struct {
	l      *Logger
	source string
}

func (s *SourceLogger) Debug(format string, args ...interface{}) {
	s.l.Log(LevelDebug, s.source, format, args...)
}

func (s *SourceLogger) Info(format string, args ...interface{}) {
	s.l.Log(LevelInfo, s.source, format, args...)
}

func (s *SourceLogger) Success(format string, args ...interface{}) {
	s.l.Log(LevelSuccess, s.source, format, args...)
}

func (s *SourceLogger) Warning(format string, args ...interface{}) {
	s.l.Log(LevelWarning, s.source, format, args...)
}

func (s *SourceLogger) Error(format string, args ...interface{}) {
	s.l.Log(LevelError, s.source, format, args...)
}
