package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "text", "debug")
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, tc := range tests {
		assert.Contains(t, out, "level="+tc.level)
		assert.Contains(t, out, "msg="+tc.msg)
		assert.Contains(t, out, tc.attr)
	}
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "text", "warn")
	ctx := context.Background()

	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "text", "info").With("module", "products")
	log.Info(context.Background(), "hello", "k", "v")

	for _, s := range []string{"level=INFO", "msg=hello", "module=products", "k=v"} {
		assert.Contains(t, buf.String(), s)
	}
}

func TestSlogLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "JSON", "").Info(context.Background(), "started", "addr", ":3200")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec))
	assert.Equal(t, "started", rec["msg"])
	assert.Equal(t, ":3200", rec["addr"])
}

func TestNop_DoesNotPanic(t *testing.T) {
	log := Nop()
	ctx := context.TODO()
	log.Debug(ctx, "x")
	log.Info(ctx, "x")
	log.Warn(ctx, "x")
	log.Error(ctx, "x")
	log.With("a", 1).Info(ctx, "x")
}
