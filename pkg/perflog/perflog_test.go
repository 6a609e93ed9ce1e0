package perflog

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorder_StartEnd(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0), step: 250 * time.Millisecond}
	r := New(10, discardLogger(), WithClock(clock.Now))

	id := r.Start(KindText, map[string]any{"model": "llama"})
	assert.True(t, strings.HasPrefix(id, "text_"))

	pending := r.Logs()
	require.Len(t, pending, 1)
	assert.Equal(t, StatusPending, pending[0].Status)
	assert.Nil(t, pending[0].Duration)

	rec, ok := r.End(id, Outcome{
		Tokens:   &Tokens{Prompt: 1, Completion: 2, Total: 3},
		Metadata: map[string]any{"messages": 2},
	})
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, rec.Status)
	require.NotNil(t, rec.Duration)
	assert.InDelta(t, 250.0, *rec.Duration, 0.001)
	assert.Equal(t, &Tokens{Prompt: 1, Completion: 2, Total: 3}, rec.Tokens)
	assert.Equal(t, map[string]any{"model": "llama", "messages": 2}, rec.Metadata)
}

func TestRecorder_EndErrorOutcome(t *testing.T) {
	r := New(10, discardLogger())
	id := r.Start(KindTTS, nil)

	size, length := 2048, 11
	rec, ok := r.End(id, Outcome{
		Status:     StatusError,
		AudioSize:  &size,
		TextLength: &length,
		Error:      "boom",
	})
	require.True(t, ok)
	assert.Equal(t, StatusError, rec.Status)
	assert.Equal(t, 2048, *rec.AudioSize)
	assert.Equal(t, 11, *rec.TextLength)
	assert.Equal(t, "boom", rec.Error)
	assert.GreaterOrEqual(t, *rec.Duration, 0.0)
}

func TestRecorder_EndUnknownIDWarns(t *testing.T) {
	var buf bytes.Buffer
	r := New(10, slog.New(slog.NewTextHandler(&buf, nil)))

	_, ok := r.End("text_missing", Outcome{})
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "perf timer not found")
	assert.Empty(t, r.Logs())
}

func TestRecorder_EvictsOldest(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0), step: time.Millisecond}
	r := New(3, discardLogger(), WithClock(clock.Now))

	var ids []string
	for i := 0; i < 5; i++ {
		id := r.Start(KindText, nil)
		r.End(id, Outcome{})
		ids = append(ids, id)
	}

	logs := r.Logs()
	require.Len(t, logs, 3)

	kept := make(map[string]bool)
	for _, rec := range logs {
		kept[rec.ID] = true
	}
	assert.False(t, kept[ids[0]])
	assert.False(t, kept[ids[1]])
	assert.True(t, kept[ids[2]])
	assert.True(t, kept[ids[3]])
	assert.True(t, kept[ids[4]])
}

func TestRecorder_LogsAreCopies(t *testing.T) {
	r := New(10, discardLogger())
	id := r.Start(KindText, map[string]any{"k": "v"})

	logs := r.Logs()
	logs[0].Metadata["k"] = "changed"
	logs[0].Status = StatusError

	again := r.Logs()
	assert.Equal(t, "v", again[0].Metadata["k"])
	assert.Equal(t, StatusPending, again[0].Status)

	_, ok := r.End(id, Outcome{})
	assert.True(t, ok)
}

func TestRecorder_Clear(t *testing.T) {
	r := New(10, discardLogger())
	r.End(r.Start(KindText, nil), Outcome{})
	r.Start(KindTTS, nil)

	r.Clear()
	assert.Empty(t, r.Logs())
}

func TestRecorder_ConcurrentUse(t *testing.T) {
	r := New(50, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := r.Start(KindText, nil)
			r.End(id, Outcome{})
		}()
	}
	wg.Wait()

	assert.Len(t, r.Logs(), 50)
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Unix(1700000000, 0)
	records := []Record{
		{ID: "a", StartTime: base},
		{ID: "c", StartTime: base.Add(2 * time.Second)},
		{ID: "b", StartTime: base.Add(time.Second)},
	}

	SortNewestFirst(records)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "a", records[2].ID)
}
