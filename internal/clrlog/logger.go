// Package clrlog is the small leveled logger the CLI and driver use to
// report progress and errors, in the same spirit as the direct
// fmt.Fprintf(os.Stderr, ...) reporting used elsewhere in this module's
// ambient stack, but tagged with a per-run correlation ID so multiple runs'
// output interleaved in a shared log (CI, a daemonized build step) can be
// told apart.
package clrlog

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// Level is the severity of a logged message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes leveled, run-tagged messages to an output stream.
type Logger struct {
	w     io.Writer
	runID uuid.UUID
	min   Level
}

// New creates a Logger writing to w, with a freshly generated run ID, that
// only emits messages at min level or above.
func New(w io.Writer, min Level) Logger {
	return Logger{w: w, runID: uuid.New(), min: min}
}

// Default creates a Logger writing to os.Stderr at LevelInfo. The CLI does
// not use it: it logs at LevelWarn, or LevelInfo with its verbose flag.
func Default() Logger {
	return New(os.Stderr, LevelInfo)
}

// RunID returns the correlation ID this Logger tags every message with.
func (l Logger) RunID() uuid.UUID { return l.runID }

func (l Logger) log(level Level, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.w, "[%s] %s %s\n", l.runID.String()[:8], level, msg)
}

// Debugf logs a debug-level message.
func (l Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }

// Infof logs an info-level message.
func (l Logger) Infof(format string, args ...interface{}) { l.log(LevelInfo, format, args...) }

// Warnf logs a warn-level message.
func (l Logger) Warnf(format string, args ...interface{}) { l.log(LevelWarn, format, args...) }

// Errorf logs an error-level message.
func (l Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, format, args...) }
