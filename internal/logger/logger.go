package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that writes to a file
func NewFileLogger(path string) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	cleanup := func() {
		f.Close()
	}

	return &Logger{Logger: l}, cleanup, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// BuildStarted logs the start of a batch build
func (l *Logger) BuildStarted(srcDir, outDir string) {
	l.Info("build started",
		"src_dir", srcDir,
		"out_dir", outDir)
}

// BuildCompleted logs the completion of a batch build
func (l *Logger) BuildCompleted(converted, skipped, errors int, duration time.Duration) {
	l.Info("build completed",
		"converted", converted,
		"skipped", skipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// DocumentConverted logs a document written to its output
func (l *Logger) DocumentConverted(source, dest string) {
	l.Info("document converted",
		"source", source,
		"dest", dest)
}

// DocumentFailed logs a document that could not be converted
func (l *Logger) DocumentFailed(source string, err error) {
	l.Error("document failed",
		"source", source,
		"error", err)
}

// ImportUnparseable logs an import block left untouched because it could
// not be parsed
func (l *Logger) ImportUnparseable(raw string, err error) {
	l.Warn("import statement not parsed, leaving it unchanged",
		"import", raw,
		"error", err)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(srcDir, outDir string) {
	l.Debug("config loaded",
		"src_dir", srcDir,
		"out_dir", outDir)
}

// Skipped logs when a file is skipped
func (l *Logger) Skipped(file, reason string) {
	l.Debug("file skipped",
		"file", file,
		"reason", reason)
}
