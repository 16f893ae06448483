package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{"WARNING", LogLevelWarn},
		{"INFO", LogLevelInfo},
		{" debug ", LogLevelDebug},
		{"TRACE", LogLevelTrace},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ParseLogLevel(test.input), "input %q", test.input)
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := NewNopLogger()
	l.Error("e %d", 1)
	l.Warn("w")
	l.Info("i")
	l.Debug("d")
	l.Trace("t")
	l.Sync()
	assert.Equal(t, LogLevelError, l.GetLevel())
}
