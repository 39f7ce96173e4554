// Package sklogimpl holds the pluggable backend behind package sklog. It is a
// separate package so that logger implementations can depend on it without
// importing sklog itself.
package sklogimpl

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Severity is the level of a log line.
type Severity int

// Severities in increasing order of importance.
const (
	Debug Severity = iota
	Info
	Warning
	Error
	Fatal
)

// String returns the upper-case name of the severity.
func (s Severity) String() string {
	switch s {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Logger is implemented by every logging backend.
type Logger interface {
	// Log writes a single line. depth is the number of frames between the
	// original sklog call and this method. If format is empty, args are
	// formatted with fmt.Sprint, otherwise with fmt.Sprintf.
	Log(depth int, severity Severity, format string, args ...interface{})

	// Flush writes out any buffered lines.
	Flush()
}

type loggerHolder struct {
	logger Logger
}

var current atomic.Value

// SetLogger changes the backend. It is safe to call concurrently with Log.
func SetLogger(l Logger) {
	current.Store(loggerHolder{logger: l})
}

func getLogger() Logger {
	h, ok := current.Load().(loggerHolder)
	if !ok || h.logger == nil {
		return nil
	}
	return h.logger
}

// Log passes the line to the current backend and exits the process for Fatal.
func Log(depth int, severity Severity, format string, args ...interface{}) {
	if l := getLogger(); l != nil {
		l.Log(depth+1, severity, format, args...)
	}
	if severity == Fatal {
		Flush()
		os.Exit(1)
	}
}

// Flush flushes the current backend.
func Flush() {
	if l := getLogger(); l != nil {
		l.Flush()
	}
}

type nopLogger struct{}

func (nopLogger) Log(int, Severity, string, ...interface{}) {}
func (nopLogger) Flush()                                     {}

// SuppressLogs installs a backend that drops every line. Used by tests that
// would otherwise flood the output.
func SuppressLogs() {
	SetLogger(nopLogger{})
}
