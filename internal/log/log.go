// Package log is a thin wrapper around logrus, in the same spirit as the
// upstream log.Logger: a small adapter type that the rest of the module
// depends on instead of the logging library directly, so call sites read
// "log.Fields{...}" rather than reaching into logrus everywhere.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is re-exported so callers never import logrus directly.
type Fields = logrus.Fields

// Logger wraps a *logrus.Logger, mirroring golang-dep's Logger wrapping an
// io.Writer, but with structured fields instead of bare Logf/Logln.
type Logger struct {
	*logrus.Logger
}

// New returns a Logger writing to w at the given level.
func New(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.Out = w
	l.Level = level
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	return &Logger{Logger: l}
}

// Default returns a Logger writing to stderr at Info level, suitable as a
// zero-config fallback for callers that don't wire one up explicitly.
func Default() *Logger {
	return New(os.Stderr, logrus.InfoLevel)
}

// Nop returns a Logger that discards everything, for tests.
func Nop() *Logger {
	l := New(io.Discard, logrus.PanicLevel)
	return l
}
