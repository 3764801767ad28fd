package tarams

import (
	"context"
	"log/slog"

	"github.com/bluzky/tarams/internal/logging"
)

type loggerKey struct{}

var _nop = logging.NewNop()

// WithLogger returns a context whose casts log field failures and hook
// panics to l at debug level.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return _nop
}
