package events

import "sync"

// DefaultTrackerCapacity bounds how many recent uploads the tracker retains.
const DefaultTrackerCapacity = 100

// UploadTracker keeps a monotonic count of matched uploads plus a bounded
// FIFO ring of the most recent ones, in arrival order. It is the sole owner
// of this state; all access goes through its methods and is safe for
// concurrent use.
type UploadTracker struct {
	mu       sync.Mutex
	capacity int
	total    uint64
	recent   []UploadRecord
}

// NewUploadTracker creates a tracker retaining at most capacity records.
// A non-positive capacity falls back to DefaultTrackerCapacity.
func NewUploadTracker(capacity int) *UploadTracker {
	if capacity <= 0 {
		capacity = DefaultTrackerCapacity
	}
	return &UploadTracker{
		capacity: capacity,
		recent:   make([]UploadRecord, 0, capacity),
	}
}

// Record appends an upload, bumps the total, and evicts the oldest entry
// once the ring exceeds capacity. It returns the new total.
func (t *UploadTracker) Record(upload UploadRecord) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.recent = append(t.recent, upload)
	if len(t.recent) > t.capacity {
		t.recent = t.recent[1:]
	}
	return t.total
}

// Snapshot returns a copy of up to limit records starting at offset, along
// with the all-time total. Offsets past the end yield an empty slice.
func (t *UploadTracker) Snapshot(limit, offset int) ([]UploadRecord, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(t.recent) {
		return []UploadRecord{}, t.total
	}
	end := offset + limit
	if end > len(t.recent) {
		end = len(t.recent)
	}

	out := make([]UploadRecord, end-offset)
	copy(out, t.recent[offset:end])
	return out, t.total
}

// Tracked reports how many records the ring currently holds.
func (t *UploadTracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.recent)
}
