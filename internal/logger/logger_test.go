package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_WritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	log.Info().Msg("test message")
	log.Debug().Msg("hidden")

	assert.Contains(t, buf.String(), "test message")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.WarnLevel},
		{"unknown", zerolog.WarnLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}

func TestNew_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Pretty: true, Output: &buf})

	log.Debug().Msg("pretty message")

	assert.Contains(t, buf.String(), "pretty message")
	assert.Contains(t, buf.String(), "DBG")
}

func TestAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewAdapter(New(Config{Level: "debug", Output: &buf}))

	adapter.Debugf("plan %s ratio %.2f", "Kaiser", 0.75)
	adapter.Warnf("clamped %d", 1)

	out := buf.String()
	assert.Contains(t, out, "plan Kaiser ratio 0.75")
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, "clamped 1")
	assert.Contains(t, out, `"level":"warn"`)
}
