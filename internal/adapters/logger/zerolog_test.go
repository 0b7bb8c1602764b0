package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"verbose", LevelInfo},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseLevel(tc.in), tc.in)
	}
	assert.Equal(t, "WARN", LevelWarn.String())
}

func TestZeroLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf})

	l.Info(context.Background(), "trade created", map[string]interface{}{"tradeID": "t1"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "trade created", entry["message"])
	assert.Equal(t, "t1", entry["tradeID"])
}

func TestZeroLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "hidden too")
	assert.Empty(t, buf.String())

	l.Error(context.Background(), errors.New("boom"), "failed")
	assert.Contains(t, buf.String(), "boom")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestZeroLogger_Pretty(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Pretty: true, Output: &buf})
	l.Debug(context.Background(), "pretty message")
	assert.Contains(t, buf.String(), "pretty message")
}
