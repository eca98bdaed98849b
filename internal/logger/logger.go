// Package logger builds the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger whose level is read from LOG_LEVEL.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
	return l
}

// ParseLevel converts a level name to a logrus level, falling back to info.
func ParseLevel(raw string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything, used by tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
