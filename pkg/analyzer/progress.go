package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc receives the number of files finished, the number expected
// and the file that just finished.
type ProgressFunc func(done, total int, path string)

// Tracker counts finished and failed files across concurrent workers.
// A nil *Tracker ignores every call, so walks need not check for one.
type Tracker struct {
	total    atomic.Int32
	done     atomic.Int32
	failed   atomic.Int32
	callback ProgressFunc
}

// NewTracker creates a tracker that calls callback after each file.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add expects n more files.
func (t *Tracker) Add(n int) {
	if t == nil {
		return
	}
	t.total.Add(int32(n))
}

// Done records that path finished, failing when err is non-nil.
func (t *Tracker) Done(path string, err error) {
	if t == nil {
		return
	}
	if err != nil {
		t.failed.Add(1)
	}
	done := int(t.done.Add(1))
	if t.callback != nil {
		t.callback(done, int(t.total.Load()), path)
	}
}

// Finished returns how many files have finished, including failures.
func (t *Tracker) Finished() int {
	if t == nil {
		return 0
	}
	return int(t.done.Load())
}

// Failed returns how many files finished with an error.
func (t *Tracker) Failed() int {
	if t == nil {
		return 0
	}
	return int(t.failed.Load())
}

// Total returns how many files are expected.
func (t *Tracker) Total() int {
	if t == nil {
		return 0
	}
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker returns a context that carries t.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker carried by ctx, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}
