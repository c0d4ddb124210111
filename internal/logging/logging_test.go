package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(t.Context())
	id := RequestID(ctx)
	require.Len(t, id, 36)
	require.Equal(t, id, RequestID(WithRequestID(ctx)), "existing id is kept")

	require.Equal(t, "abc", RequestID(ContextWithRequestID(t.Context(), "abc")))
	require.Empty(t, RequestID(t.Context()))
}

func TestSetupWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := Setup("warning", &buf)
	logger.Info("dropped")
	logger.Warn("kept", slog.String("rqID", "r1"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["msg"])
	require.Equal(t, "r1", line["rqID"])
}
