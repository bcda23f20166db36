// Package logger provides charmbracelet/log loggers for the packages of addrserve.
// Loggers write to stderr; stdout carries the IPC stream.
package logger

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu        sync.Mutex
	formatter = log.TextFormatter
	loggers   []*log.Logger
)

// New creates a prefixed logger that follows SetLevel and SetFormatter.
func New(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       formatter,
		Level:           log.GetLevel(),
	})
	loggers = append(loggers, l)
	return l
}

// SetLevel sets the level of the default logger and of every logger made by New.
func SetLevel(level log.Level) {
	mu.Lock()
	defer mu.Unlock()
	log.SetLevel(level)
	for _, l := range loggers {
		l.SetLevel(level)
	}
}

// SetFormatter is SetLevel for the output formatter.
func SetFormatter(f log.Formatter) {
	mu.Lock()
	defer mu.Unlock()
	formatter = f
	log.SetFormatter(f)
	for _, l := range loggers {
		l.SetFormatter(f)
	}
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}
