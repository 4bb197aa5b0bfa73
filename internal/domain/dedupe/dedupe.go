// Package dedupe tracks seen submission ids so a resubmitted grading job is
// processed at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen submission ids.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id so it may be retried, used when a submission
	// was recorded but could not be enqueued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

const defaultMaxEntries = 50000

// ringDeduper keeps ids in a map backed by a fixed ring of slots; when the
// ring wraps, the oldest id is forgotten. A non-positive capacity disables
// eviction entirely.
type ringDeduper struct {
	mu    sync.Mutex
	index map[string]int
	slots []string
	next  int
	max   int
	size  atomic.Int64
}

// Option configures the deduper.
type Option func(*ringDeduper)

// WithMaxEntries bounds how many ids are remembered. Zero or negative means
// unbounded.
func WithMaxEntries(n int) Option {
	return func(d *ringDeduper) {
		d.max = n
	}
}

// New creates an in-memory deduper.
func New(opts ...Option) Deduper {
	d := &ringDeduper{max: defaultMaxEntries}
	for _, o := range opts {
		o(d)
	}
	d.index = make(map[string]int)
	if d.max > 0 {
		d.slots = make([]string, d.max)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[id]; ok {
		return true
	}

	if d.max > 0 {
		// Evict whatever occupied this slot a full ring ago.
		if old := d.slots[d.next]; old != "" {
			delete(d.index, old)
			d.size.Add(-1)
		}
		d.slots[d.next] = id
		d.index[id] = d.next
		d.next = (d.next + 1) % d.max
	} else {
		d.index[id] = -1
	}
	d.size.Add(1)
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.index[id]
	if !ok {
		return
	}
	delete(d.index, id)
	if slot >= 0 {
		d.slots[slot] = ""
	}
	d.size.Add(-1)
}

func (d *ringDeduper) Size() int64 {
	return d.size.Load()
}
