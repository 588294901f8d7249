package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// New builds a logger writing to w at the named level.
// Unknown or empty levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           ParseLevel(level),
		Prefix:          "spendsync",
	})
}

// ParseLevel is log.ParseLevel with surrounding space ignored and info as the fallback.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
