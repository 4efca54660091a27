// Package breadcrumb provides the snapshot model for in-app diagnostic
// events. A breadcrumb is an opaque structured record emitted elsewhere in
// the application (navigation, click, log line); this package only stores and
// retrieves them — it never creates or interprets them.
package breadcrumb

import (
	"sync"
)

// Record is a single opaque diagnostic event. No schema is assumed beyond
// "arbitrary structured record"; downstream consumers treat each element
// generically.
type Record map[string]any

// Source is a zero-argument accessor yielding the current snapshot of recent
// breadcrumbs. A Source may return nil or an empty slice when it has nothing.
type Source func() []Record

// FirstNonEmpty returns the snapshot from the first source that yields at
// least one record. Later sources are only consulted when every earlier
// source came up empty, preserving the primary-then-mirror ordering
// guarantee. The result is possibly empty but never nil.
func FirstNonEmpty(sources ...Source) []Record {
	for _, src := range sources {
		if src == nil {
			continue
		}
		if records := src(); len(records) > 0 {
			return records
		}
	}
	return []Record{}
}

// DefaultCapacity is the number of records a Buffer retains when constructed
// with a non-positive capacity.
const DefaultCapacity = 100

// Buffer is a bounded, concurrency-safe store of recent breadcrumbs. Once
// full, appending a record evicts the oldest. Applications feed it from
// their instrumentation; the upload pipeline reads it through Snapshot.
type Buffer struct {
	mu       sync.Mutex
	records  []Record
	capacity int
}

// NewBuffer creates a Buffer retaining at most capacity records.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Append adds a record to the buffer, evicting the oldest when full. Nil
// records are ignored.
func (b *Buffer) Append(r Record) {
	if r == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, r)
	if len(b.records) > b.capacity {
		b.records = b.records[len(b.records)-b.capacity:]
	}
}

// Snapshot returns a copy of the buffered records in insertion order. The
// buffer is left untouched; concurrent appends during the copy are either
// fully included or fully excluded.
func (b *Buffer) Snapshot() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Len reports the number of buffered records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
