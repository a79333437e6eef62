package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestZerologJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(LogConfig{Level: "debug", Format: "json", Output: &buf})
	log.With(String(KeyRunID, "r1"), Int("inputs", 3)).Info("output written",
		String(KeyOutput, "张三.pdf"),
		Int(KeyPage, 2),
		Duration(KeyElapsed, 1500*time.Millisecond),
		Strings("members", []string{"a.pdf", "b.pdf"}),
		Err(errors.New("boom")),
	)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	got := lines[0]
	assert.Equal(t, "r1", got[KeyRunID])
	assert.Equal(t, float64(3), got["inputs"])
	assert.Equal(t, "张三.pdf", got[KeyOutput])
	assert.Equal(t, float64(2), got[KeyPage])
	assert.Equal(t, []interface{}{"a.pdf", "b.pdf"}, got["members"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, "output written", got["message"])
	assert.Equal(t, "info", got["level"])
	assert.Contains(t, got, KeyElapsed)
}

func TestZerologLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(LogConfig{Level: "warn", Format: "json", Output: &buf})
	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestZerologConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(LogConfig{Format: "console", Output: &buf, NoColor: true})
	log.Info("inputs collected", String(KeyFile, "c.pdf"))
	assert.Contains(t, buf.String(), "inputs collected")
	assert.Contains(t, buf.String(), "file=c.pdf")
}

func TestStringsCopiesInput(t *testing.T) {
	in := []string{"a"}
	f := Strings("k", in)
	in[0] = "b"
	assert.Equal(t, "a", f.Value().([]string)[0])
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, NopLogger{}, OrNop(nil))
	l := NopLogger{}.With(String("k", "v"))
	l.Info("ignored")
}
