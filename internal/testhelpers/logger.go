// Package testhelpers holds helpers shared by the test suites.
package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/ikigai/internal/logging"
)

// NewLogger logs everything down to debug into logSink. Pass io.Discard to keep test output quiet.
func NewLogger(logSink io.Writer) *slog.Logger {
	return logging.NewLogger(logSink, slog.LevelDebug)
}
