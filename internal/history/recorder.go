// Package history keeps a bounded in-memory log of toggle evaluations for
// analytics summaries.
package history

import (
	"sync"
	"time"

	"github.com/offerhub/toggles/internal/toggle"
)

// DefaultSize is the number of records kept when no size is given.
const DefaultSize = 1000

// Clock interface for testable time operations
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Recorder is a toggle.Observer that keeps the most recent evaluations in a
// ring buffer. It also implements toggle.ErrorRateSource over every
// evaluation it has seen since the last Reset.
type Recorder struct {
	mu      sync.Mutex
	clock   Clock
	records []toggle.EvaluationRecord
	next    int
	full    bool

	observed     uint64
	configErrors uint64
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the clock used to timestamp records.
func WithClock(c Clock) Option {
	return func(r *Recorder) { r.clock = c }
}

// NewRecorder creates a recorder that retains up to size records.
func NewRecorder(size int, opts ...Option) *Recorder {
	if size <= 0 {
		size = DefaultSize
	}
	r := &Recorder{
		clock:   SystemClock{},
		records: make([]toggle.EvaluationRecord, size),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Observe implements toggle.Observer.
func (r *Recorder) Observe(t toggle.FeatureToggle, result toggle.Evaluation) {
	rec := toggle.EvaluationRecord{
		ToggleKey: t.Key,
		Enabled:   result.IsEnabled,
		Variant:   result.Variant,
		Code:      result.Code,
		Timestamp: r.clock.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[r.next] = rec
	r.next = (r.next + 1) % len(r.records)
	if r.next == 0 {
		r.full = true
	}
	r.observed++
	if result.Code.IsConfigurationError() {
		r.configErrors++
	}
}

// Len returns the number of retained records.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lenLocked()
}

func (r *Recorder) lenLocked() int {
	if r.full {
		return len(r.records)
	}
	return r.next
}

// Records returns the retained records, oldest first.
func (r *Recorder) Records() []toggle.EvaluationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]toggle.EvaluationRecord, 0, r.lenLocked())
	if r.full {
		out = append(out, r.records[r.next:]...)
	}
	return append(out, r.records[:r.next]...)
}

// Since returns the retained records with a timestamp at or after t, oldest first.
func (r *Recorder) Since(t time.Time) []toggle.EvaluationRecord {
	all := r.Records()
	out := all[:0]
	for _, rec := range all {
		if !rec.Timestamp.Before(t) {
			out = append(out, rec)
		}
	}
	return out
}

// ErrorRate implements toggle.ErrorRateSource: the share of observed
// evaluations that failed because of a broken toggle definition.
func (r *Recorder) ErrorRate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.observed == 0 {
		return 0
	}
	return float64(r.configErrors) / float64(r.observed)
}

// Reset drops all records and counters.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.records)
	r.next = 0
	r.full = false
	r.observed = 0
	r.configErrors = 0
}
