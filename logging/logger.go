// Package logging provides the structured logger shared by every capture
// component.
package logging

import (
	"log/slog"
	"os"
)

// New returns a structured slog.Logger writing JSON to stdout at the given
// level.
func New(level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
