package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLogger_WritesJSONWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogrusLoggerWithOutput("debug", &buf)

	ctx := ContextWithFields(context.Background(), map[string]interface{}{"run_id": "r1"})
	log.WithField("component", "pipeline").Info(ctx, "stage finished", map[string]interface{}{"stage": "analysis"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stage finished", entry["msg"])
	assert.Equal(t, "r1", entry["run_id"])
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "analysis", entry["stage"])
}

func TestLogrusLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogrusLoggerWithOutput("not-a-level", &buf)

	log.Debug(context.Background(), "hidden", nil)
	assert.Empty(t, buf.String())

	log.Info(context.Background(), "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestTestLogger_DerivedLoggersShareEntries(t *testing.T) {
	root := NewTestLogger()
	child := root.WithField("vendor", "claude")

	child.Warn(context.Background(), "slow response", map[string]interface{}{"ms": 1200})
	root.Info(context.Background(), "done", nil)

	entries := root.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0].Level)
	assert.Equal(t, "claude", entries[0].Fields["vendor"])
	assert.Equal(t, 1200, entries[0].Fields["ms"])
	assert.Len(t, root.EntriesWithMessage("done"), 1)

	root.Reset()
	assert.Empty(t, root.Entries())
}

func TestContextWithFields_Merges(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]interface{}{"a": 1})
	ctx = ContextWithFields(ctx, map[string]interface{}{"b": 2})

	fields := FieldsFromContext(ctx)
	assert.Equal(t, 1, fields["a"])
	assert.Equal(t, 2, fields["b"])
	assert.Nil(t, FieldsFromContext(context.Background()))
}
