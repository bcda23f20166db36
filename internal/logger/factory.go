package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

// Discard returns a logger that drops everything, for tests and quiet runs.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseFormatter maps a config value onto a log formatter. Unknown values
// fall back to text.
func ParseFormatter(name string) log.Formatter {
	switch name {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
