package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, level Level, jsonOut bool) *DefaultLogger {
	l := New(LoggerConfig{Level: level, JSONOutput: jsonOut, Stderr: buf})
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, InfoLevel, false)

	l.Debug("hidden")
	l.Info("analysed", "template", "Main", "lints", 2)

	assert.Equal(t, "[2026-01-02 03:04:05] INFO: analysed template=Main lints=2\n", buf.String())
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, DebugLevel, true)

	l.Warn("slow template", "paths", 128)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "slow template", entry["message"])
	assert.Equal(t, map[string]interface{}{"paths": float64(128)}, entry["fields"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, ErrorLevel, false)

	l.Warn("dropped")
	assert.Empty(t, buf.String())

	l.SetLevel(DebugLevel)
	l.Debug("kept")
	assert.True(t, strings.Contains(buf.String(), "DEBUG: kept"))
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "msg", formatMessage("msg"))
	assert.Equal(t, "msg extra k=v", formatMessage("msg", "extra", "k", "v"))
	assert.Equal(t, "msg", formatMessage("msg", 1, "skipped"))
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l.Info("nothing", "k", 1)
	l.SetLevel(DebugLevel)
}
