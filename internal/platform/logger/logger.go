package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Handlers add request-scoped attributes
// themselves.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
