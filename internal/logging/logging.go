// Package logging configures slog and carries request ids through contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type rqIDKey struct{}

// Setup installs a JSON slog handler at the given level as the default logger.
func Setup(level string, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug/info/warning/error to a slog level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID returns ctx carrying a request id, generating one unless ctx
// already has it.
func WithRequestID(ctx context.Context) context.Context {
	if RequestID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, rqIDKey{}, uuid.NewString())
}

// ContextWithRequestID stores an explicit request id, for ids received from a caller.
func ContextWithRequestID(ctx context.Context, rqID string) context.Context {
	if rqID == "" {
		return WithRequestID(ctx)
	}
	return context.WithValue(ctx, rqIDKey{}, rqID)
}

func RequestID(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}
