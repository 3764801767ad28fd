package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger for the engine's debug records (failed fields,
// schema errors) written to w at level. Attributes passed as "error" are
// emitted under the "err" key.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns the logger used when the context carries none.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
