// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCtx(t *testing.T) {
	ctx := AppendCtx(context.TODO(), slog.String("meeting_id", "123"))

	attrs, ok := ctx.Value(slogFields).([]slog.Attr)
	require.True(t, ok)
	require.Len(t, attrs, 1)
	assert.Equal(t, "meeting_id", attrs[0].Key)
	assert.Equal(t, "123", attrs[0].Value.String())
}

func TestAppendCtx_SiblingsDoNotShareAttrs(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("event_type", "meeting.started"))
	parent = AppendCtx(parent, slog.String("meeting_id", "1"))

	left := AppendCtx(parent, slog.String("user_id", "left"))
	right := AppendCtx(parent, slog.String("user_id", "right"))

	leftAttrs := left.Value(slogFields).([]slog.Attr)
	rightAttrs := right.Value(slogFields).([]slog.Attr)
	require.Len(t, leftAttrs, 3)
	require.Len(t, rightAttrs, 3)
	assert.Equal(t, "left", leftAttrs[2].Value.String())
	assert.Equal(t, "right", rightAttrs[2].Value.String())
}

func TestNewHandler_IncludesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := AppendCtx(context.Background(), slog.String("event_type", "meeting.ended"))
	logger.With("component", "webhook").InfoContext(ctx, "processing webhook")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "processing webhook", line["msg"])
	assert.Equal(t, "meeting.ended", line["event_type"])
	assert.Equal(t, "webhook", line["component"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelDebug},
		{"verbose", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestInitStructureLogConfig(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	for _, addSource := range []string{"true", "1", "false", ""} {
		t.Run("add_source_"+addSource, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "info")
			t.Setenv("LOG_ADD_SOURCE", addSource)
			assert.NotNil(t, InitStructureLogConfig())
		})
	}
}

func TestPriorityCritical(t *testing.T) {
	attr := PriorityCritical()
	assert.Equal(t, "priority", attr.Key)
	assert.Equal(t, "critical", attr.Value.String())
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "", Redact(""))
	assert.Equal(t, "***", Redact("abc"))
	assert.Equal(t, "*****6789", Redact("123456789"))
}
