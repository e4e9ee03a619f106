package signpost

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDisabledWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger("test-app")
	l.Output = buf
	l.Enabled = false

	l.Info("foo", "bar")
	assert.Zero(t, buf.Len())
}

func TestLoggerEmitsJSONLine(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger("test-app")
	l.Output = buf

	l.Warnf("value=%d", 42)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "test-app", m["app_name"])
	assert.Equal(t, "WARN", m["level"])
	assert.Equal(t, "value=42", m["message"])
}

func TestLoggerCustomFormatFallsBackToPlainText(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger("test-app")
	l.Output = buf
	l.Format = "{{.level}}:"

	l.Error("boom")

	assert.Equal(t, "ERROR: boom\n", buf.String())
}
