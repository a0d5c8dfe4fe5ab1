package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("verbose")
	require.False(t, ok)
}

// TestContextLogger checks that named and key-value loggers travel through the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "pose-timer-server")
	ctx = WithKV(ctx, "subscriber", "abc")

	InfoKV(ctx, "Timer started", "actor", "o.shokin@desk")
	DebugKV(ctx, "Tick", "remaining", "19:59")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "pose-timer-server", entries[0].LoggerName)
	require.Equal(t, "Timer started", entries[0].Message)
	require.Equal(t, "abc", entries[0].ContextMap()["subscriber"])
	require.Equal(t, "o.shokin@desk", entries[0].ContextMap()["actor"])
	require.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
	require.NotNil(t, FromContext(nil)) //nolint:staticcheck // nil context is handled on purpose.
}
