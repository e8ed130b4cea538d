// Package ui provides terminal styling and logger setup for mindhub.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// InitLogger configures the package-level charm logger.
func InitLogger() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(false)
	log.SetReportTimestamp(false)
}

// SetDebug toggles debug logging.
func SetDebug(enabled bool) {
	if enabled {
		log.SetLevel(log.DebugLevel)
		return
	}
	log.SetLevel(log.InfoLevel)
}

// NewLogger returns a prefixed logger for long-running components such as
// the HTTP server, which log with timestamps.
func NewLogger(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		Level:           log.GetLevel(),
	})
}
