// Package perflog keeps a bounded in-memory log of upstream call timings.
//
// It is a diagnostics aid only. Records may be dropped or cleared at any time
// without affecting request handling.
package perflog

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Vdnsh/groq-qna/pkg/idgen"
)

// DefaultCapacity is the number of records kept when none is configured.
const DefaultCapacity = 100

// Kind identifies the upstream service a record belongs to.
type Kind string

const (
	KindText Kind = "text"
	KindTTS  Kind = "tts"
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Tokens is the token usage reported by the completion service.
type Tokens struct {
	Prompt     int `json:"prompt,omitempty"`
	Completion int `json:"completion,omitempty"`
	Total      int `json:"total,omitempty"`
}

// Record is one timed upstream call.
type Record struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"type"`
	StartTime  time.Time      `json:"startTime"`
	EndTime    *time.Time     `json:"endTime,omitempty"`
	Duration   *float64       `json:"duration,omitempty"` // milliseconds
	Status     Status         `json:"status"`
	Tokens     *Tokens        `json:"tokens,omitempty"`
	AudioSize  *int           `json:"audioSize,omitempty"`  // bytes
	TextLength *int           `json:"textLength,omitempty"` // characters
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`

	seq uint64
}

// Outcome carries the fields merged into a record when its timer ends.
// Zero values leave the record untouched, except Status which defaults to success.
type Outcome struct {
	Status     Status
	Tokens     *Tokens
	AudioSize  *int
	TextLength *int
	Error      string
	Metadata   map[string]any
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// Recorder stores timer records keyed by timer id.
type Recorder struct {
	mu       sync.Mutex
	records  map[string]*Record
	capacity int
	seq      uint64
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Recorder holding at most capacity finished or pending records.
func New(capacity int, logger *slog.Logger, opts ...Option) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		records:  make(map[string]*Record),
		capacity: capacity,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens a pending record and returns its timer id.
func (r *Recorder) Start(kind Kind, metadata map[string]any) string {
	id := idgen.WithPrefix(string(kind))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.records[id] = &Record{
		ID:        id,
		Kind:      kind,
		StartTime: r.now(),
		Status:    StatusPending,
		Metadata:  maps.Clone(metadata),
		seq:       r.seq,
	}
	return id
}

// End closes the record for id. Unknown ids are logged and ignored.
func (r *Recorder) End(id string, out Outcome) (Record, bool) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("perf timer not found", "timer_id", id)
		return Record{}, false
	}

	end := r.now()
	duration := float64(end.Sub(rec.StartTime)) / float64(time.Millisecond)
	if duration < 0 {
		duration = 0
	}
	rec.EndTime = &end
	rec.Duration = &duration

	rec.Status = out.Status
	if rec.Status == "" {
		rec.Status = StatusSuccess
	}
	if out.Tokens != nil {
		tokens := *out.Tokens
		rec.Tokens = &tokens
	}
	if out.AudioSize != nil {
		size := *out.AudioSize
		rec.AudioSize = &size
	}
	if out.TextLength != nil {
		length := *out.TextLength
		rec.TextLength = &length
	}
	if out.Error != "" {
		rec.Error = out.Error
	}
	if len(out.Metadata) > 0 {
		if rec.Metadata == nil {
			rec.Metadata = make(map[string]any, len(out.Metadata))
		}
		maps.Copy(rec.Metadata, out.Metadata)
	}

	snapshot := rec.clone()
	r.evictLocked()
	total := len(r.records)
	r.mu.Unlock()

	r.emit(snapshot, total)
	return snapshot, true
}

// Logs returns copies of all records in unspecified order.
func (r *Recorder) Logs() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.clone())
	}
	return out
}

// Clear drops every record.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]*Record)
}

// evictLocked drops the oldest records by start time until capacity holds.
func (r *Recorder) evictLocked() {
	for len(r.records) > r.capacity {
		var oldest *Record
		for _, rec := range r.records {
			if oldest == nil || rec.before(oldest) {
				oldest = rec
			}
		}
		delete(r.records, oldest.ID)
	}
}

func (r *Recorder) emit(rec Record, total int) {
	attrs := []any{
		"timer_id", rec.ID,
		"type", string(rec.Kind),
		"status", string(rec.Status),
		"duration_ms", *rec.Duration,
		"total_logs", total,
	}
	if rec.Tokens != nil {
		attrs = append(attrs,
			"prompt_tokens", rec.Tokens.Prompt,
			"completion_tokens", rec.Tokens.Completion,
			"total_tokens", rec.Tokens.Total,
		)
	}
	if rec.AudioSize != nil {
		attrs = append(attrs, "audio_size", *rec.AudioSize)
	}
	if rec.TextLength != nil {
		attrs = append(attrs, "text_length", *rec.TextLength)
	}
	if rec.Error != "" {
		attrs = append(attrs, "error", rec.Error)
	}
	if len(rec.Metadata) > 0 {
		attrs = append(attrs, "metadata", rec.Metadata)
	}

	if rec.Status == StatusError {
		r.logger.Warn("perf timer ended", attrs...)
		return
	}
	r.logger.Info("perf timer ended", attrs...)
}

func (rec *Record) before(other *Record) bool {
	if rec.StartTime.Equal(other.StartTime) {
		return rec.seq < other.seq
	}
	return rec.StartTime.Before(other.StartTime)
}

func (rec *Record) clone() Record {
	c := *rec
	if rec.EndTime != nil {
		end := *rec.EndTime
		c.EndTime = &end
	}
	if rec.Duration != nil {
		d := *rec.Duration
		c.Duration = &d
	}
	if rec.Tokens != nil {
		tokens := *rec.Tokens
		c.Tokens = &tokens
	}
	if rec.AudioSize != nil {
		size := *rec.AudioSize
		c.AudioSize = &size
	}
	if rec.TextLength != nil {
		length := *rec.TextLength
		c.TextLength = &length
	}
	c.Metadata = maps.Clone(rec.Metadata)
	return c
}

// SortNewestFirst orders records by start time, most recent first. Records
// started at the same instant keep the order they were started in, reversed.
func SortNewestFirst(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := b.StartTime.Compare(a.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
}
