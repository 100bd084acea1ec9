// Package outlog provides the small structured-logging shim used across the
// outline core. It mirrors the teacher's direct use of the standard
// library "log" package throughout its storage engine
// (_examples/straga-Mimir_lite/nornicdb/pkg/storage) rather than pulling in
// a third-party logging library — no such library appears anywhere in the
// reference corpus's graph-storage code, so none is introduced here (see
// DESIGN.md).
package outlog

import (
	"log"
	"os"
)

// Logger is the minimal logging surface the outline core depends on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// stdLogger adapts a *log.Logger to the Logger interface.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger returns a Logger that writes to stderr with a
// "thortiq-outline:" prefix, analogous to the teacher injecting a
// *log.Logger into its storage engines.
func NewStdLogger() Logger {
	return &stdLogger{l: log.New(os.Stderr, "thortiq-outline: ", log.LstdFlags)}
}

func (s *stdLogger) Debugf(format string, args ...any) { s.l.Printf("DEBUG "+format, args...) }
func (s *stdLogger) Infof(format string, args ...any)  { s.l.Printf("INFO "+format, args...) }
func (s *stdLogger) Warnf(format string, args ...any)  { s.l.Printf("WARN "+format, args...) }

// discardLogger drops everything; used by tests and by Doc when no logger
// is configured.
type discardLogger struct{}

func (discardLogger) Debugf(string, ...any) {}
func (discardLogger) Infof(string, ...any)  {}
func (discardLogger) Warnf(string, ...any)  {}

// Discard is a Logger that does nothing.
var Discard Logger = discardLogger{}
