package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symwasm/symwasm/internal/logging"
)

func TestDefaultVerboseLevelGatesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, 0)
	l.Debug(logging.ScopeExplore, "should not appear: below minimum level")
	l.Info(logging.ScopeControl, "should not appear: scope not enabled at verbose 0")
	require.Empty(t, buf.String())

	l.Info(logging.ScopeHostFunc, "model fallback for %s", "foo")
	require.Contains(t, buf.String(), "model fallback for foo")
}

func TestVerboseLevelOneEnablesEveryScope(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, 1)
	l.Info(logging.ScopeControl, "hello %d", 7)
	out := buf.String()
	require.Contains(t, out, "hello 7")
	require.Contains(t, out, "control")
	require.Contains(t, out, "INFO")
}

func TestVerboseLevelTwoEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, 2)
	l.Debug(logging.ScopeMemory, "addr=%d", 42)
	require.True(t, strings.Contains(buf.String(), "DEBUG"))
}

func TestNilLoggerIsSafeNoOp(t *testing.T) {
	var l *logging.Logger
	require.NotPanics(t, func() {
		l.Warn(logging.ScopeCoverage, "unused")
	})
}
