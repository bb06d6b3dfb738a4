package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler(t *testing.T) {
	var all, errorsOnly bytes.Buffer
	h := NewMultiHandler(
		NewStdoutHandler(&all, "debug"),
		NewStdoutHandler(&errorsOnly, "error"),
	)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Debug("noise")
	logger.Error("failure", "action", "messages.create")

	allLines := decodeLines(t, &all)
	require.Len(t, allLines, 2)
	assert.Equal(t, "noise", allLines[0]["msg"])
	assert.Equal(t, "req-1", allLines[0]["request_id"])

	errLines := decodeLines(t, &errorsOnly)
	require.Len(t, errLines, 1)
	assert.Equal(t, "failure", errLines[0]["msg"])
	assert.Equal(t, "req-1", errLines[0]["request_id"])
	assert.Equal(t, "messages.create", errLines[0]["action"])

	assert.False(t, NewMultiHandler(NewStdoutHandler(&all, "error")).Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandler_KeepsDeliveringAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(
		failingHandler{NewStdoutHandler(&bytes.Buffer{}, "info")},
		NewStdoutHandler(&buf, "info"),
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0))
	assert.EqualError(t, err, "sink down")
	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestDBHandler_FlushesErrorRecords(t *testing.T) {
	db := dbtest.New(t)
	h := newDBHandler(db, time.Hour)
	logger := slog.New(h).With("request_id", "req-7")

	logger.Info("not persisted")
	logger.Error("message insert failed",
		"user_id", uint(7),
		"action", "messages.create",
		"error", errors.New("disk full"),
		"latency_ms", 12.6,
		"peer_id", "3",
	)
	h.Stop()
	h.Stop()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "message insert failed", entry.Message)
	assert.Equal(t, "req-7", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.EqualValues(t, 7, *entry.UserID)
	assert.Equal(t, "messages.create", entry.Action)
	assert.Equal(t, "disk full", entry.Error)
	assert.Equal(t, 13, entry.LatencyMs)
	assert.JSONEq(t, `{"peer_id":"3"}`, string(entry.Extra))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", entry.ID.String())
}

func TestDBHandler_LatencyFromDuration(t *testing.T) {
	db := dbtest.New(t)
	h := newDBHandler(db, time.Hour)

	slog.New(h).Error("slow", "latency_ms", 1500*time.Millisecond)
	h.Flush()
	h.Stop()

	var entry models.SystemLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, 1500, entry.LatencyMs)
	assert.Nil(t, entry.UserID)
}
