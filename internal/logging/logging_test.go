// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendCtx(t *testing.T) {
	tests := []struct {
		name     string
		parent   context.Context
		attrs    []slog.Attr
		expected int
	}{
		{
			name:     "append to fresh context",
			parent:   context.Background(),
			attrs:    []slog.Attr{slog.String("key1", "value1")},
			expected: 1,
		},
		{
			name:     "append to nil context",
			parent:   nil,
			attrs:    []slog.Attr{slog.String("key1", "value1")},
			expected: 1,
		},
		{
			name:   "append multiple attributes",
			parent: context.Background(),
			attrs: []slog.Attr{
				slog.String("key1", "value1"),
				slog.String("key2", "value2"),
				slog.Int("key3", 3),
			},
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.parent
			for _, attr := range tt.attrs {
				ctx = AppendCtx(ctx, attr)
			}

			attrs, ok := ctx.Value(slogFields).([]slog.Attr)
			assert.True(t, ok)
			assert.Len(t, attrs, tt.expected)
		})
	}
}

func TestAppendCtxMultipleAttrsInOneCall(t *testing.T) {
	ctx := AppendCtx(context.Background(),
		slog.String("key1", "value1"),
		slog.String("key2", "value2"),
	)
	ctx = AppendCtx(ctx, slog.Int("key3", 3))

	attrs, ok := ctx.Value(slogFields).([]slog.Attr)
	assert.True(t, ok)
	assert.Len(t, attrs, 3)
	assert.Equal(t, "key1", attrs[0].Key)
	assert.Equal(t, "key3", attrs[2].Key)
}

func TestPriority(t *testing.T) {
	attr := Priority("high")
	assert.Equal(t, "priority", attr.Key)
	assert.Equal(t, "high", attr.Value.String())

	critical := PriorityCritical()
	assert.Equal(t, "priority", critical.Key)
	assert.Equal(t, "critical", critical.Value.String())
}
