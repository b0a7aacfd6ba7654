package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)
	l.Info("ignored")
	l.Debug("ignored too")
	require.Empty(t, buf.String())

	l.Warnf("disk at %d%%", 90)
	require.Contains(t, buf.String(), "[WARN] disk at 90%")
}

func TestLoggerNilIsSafe(t *testing.T) {
	var l *Logger
	require.NotPanics(t, func() { l.Error("should be a no-op") })
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", DebugLevel.String())
	require.Equal(t, "ERROR", ErrorLevel.String())
}
