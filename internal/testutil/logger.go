package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a slog.Logger that swallows everything, keeping test
// output quiet
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
