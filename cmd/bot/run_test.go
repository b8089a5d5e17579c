package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ai-mentor/internal/storage"
	"ai-mentor/internal/telegram"
)

type captureAnnouncer struct {
	texts []string
	err   error
}

func (c *captureAnnouncer) Announce(text string) error {
	c.texts = append(c.texts, text)
	return c.err
}

type sinceRecorder struct {
	storage.Recorder
	since []time.Time
}

func (r *sinceRecorder) LoadSince(t time.Time) ([]storage.Event, error) {
	r.since = append(r.since, t)
	return r.Recorder.LoadSince(t)
}

func TestDailyReport_CountsOnlyToday(t *testing.T) {
	fr, err := storage.NewFileRecorder(filepath.Join(t.TempDir(), "interactions.jsonl"))
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)
	for _, ev := range []storage.Event{
		{Timestamp: now.Add(-20 * time.Hour), UserID: 1, UserMessage: "yesterday"},
		{Timestamp: now.Add(-time.Hour), UserID: 2, UserMessage: "today"},
		{Timestamp: now.Add(-2 * time.Hour), UserID: 3, UserMessage: "also today"},
	} {
		require.NoError(t, fr.AppendInteraction(ev))
	}
	rec := &sinceRecorder{Recorder: fr}
	out := &captureAnnouncer{}

	report := dailyReport(rec, out, zaptest.NewLogger(t), func() time.Time { return now })
	require.NoError(t, report(context.Background()))

	require.Equal(t, []time.Time{time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}, rec.since)
	require.Len(t, out.texts, 1)
	assert.Contains(t, out.texts[0], "- Messages: 2")
	assert.Contains(t, out.texts[0], "- Unique users: 2")
}

func TestDailyReport_NoChannelIsNotAnError(t *testing.T) {
	out := &captureAnnouncer{err: telegram.ErrNoChannel}
	report := dailyReport(storage.Nop{}, out, zaptest.NewLogger(t), time.Now)
	assert.NoError(t, report(context.Background()))
	assert.Len(t, out.texts, 1)
}
