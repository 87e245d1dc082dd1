package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrettyHandlerPlain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &Options{Level: slog.LevelInfo, NoColor: true}))

	log.Debug("hidden")
	log.With("request_id", "r1").WithGroup("http").Info("request", "status", 200, slog.Group("user", "id", 7))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.NotContains(t, out, "\033[")
	require.Contains(t, out, "INFO  request request_id=r1 http.status=200 http.user.id=7\n")
}

func TestPrettyHandlerColors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Error("boom")
	require.Contains(t, buf.String(), red)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
