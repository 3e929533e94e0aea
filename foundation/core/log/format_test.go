package log

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

func sampleEntry() *Entry {
	entry := NewEntry(LevelWarn, "parse failed")
	entry.Timestamp = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	entry.Logger = "frege"
	entry.Fields["zeta"] = 1
	entry.Fields["alpha"] = "a"
	return entry
}

func TestParseLevelAndFormat(t *testing.T) {
	level, err := ParseLevel(" WARNING ")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.EqualError(t, err, "invalid level: loud")

	format, err := ParseFormat("console")
	require.NoError(t, err)
	assert.Equal(t, FormatConsole, format)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestTextFormatter_SortedFields(t *testing.T) {
	f := &TextFormatter{DisableTimestamp: true}

	out, err := f.Format(sampleEntry())
	require.NoError(t, err)
	assert.Equal(t, "[WRN] {frege} parse failed [alpha=a zeta=1]\n", string(out))
}

func TestJSONFormatter_ErrorDetails(t *testing.T) {
	entry := sampleEntry()
	entry.Error = mdwerror.New("out of tokens").WithCode(mdwerror.CodeParseExhausted)
	entry.Duration = 1500 * time.Microsecond

	out, err := NewJSONFormatter().Format(entry)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(out), "\n"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "out of tokens", decoded["error"])
	assert.InDelta(t, 1.5, decoded["duration_ms"], 0.0001)

	details, ok := decoded["error_details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PARSE_EXHAUSTED", details["code"])
}

func TestJSONFormatter_ErrorFieldsStringified(t *testing.T) {
	entry := sampleEntry()
	entry.Fields["cause"] = errors.New("boom")

	out, err := NewJSONFormatter().Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"cause":"boom"`)
}

func TestConsoleFormatter_Colors(t *testing.T) {
	f := NewConsoleFormatter()
	f.DisableTimestamp = true

	out, err := f.Format(sampleEntry())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), LevelWarn.Color()))

	f.DisableColors = true
	out, err = f.Format(sampleEntry())
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(out), "\033"))
}
