package events

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUpload(i int) UploadRecord {
	return UploadRecord{
		ID:        strconv.Itoa(i),
		FileName:  "file-" + strconv.Itoa(i) + ".pdf",
		Bucket:    "b",
		EventType: "Object:Put",
		Source:    SourceDirectNotification,
	}
}

func TestTrackerRecord(t *testing.T) {
	tracker := NewUploadTracker(DefaultTrackerCapacity)

	assert.Equal(t, uint64(1), tracker.Record(testUpload(1)))
	assert.Equal(t, uint64(2), tracker.Record(testUpload(2)))
	assert.Equal(t, 2, tracker.Tracked())
}

func TestTrackerEviction(t *testing.T) {
	tracker := NewUploadTracker(DefaultTrackerCapacity)

	for i := 1; i <= 101; i++ {
		tracker.Record(testUpload(i))
	}

	recent, total := tracker.Snapshot(200, 0)
	assert.Equal(t, uint64(101), total)
	require.Len(t, recent, 100)

	// The oldest record was evicted; arrival order is preserved.
	assert.Equal(t, "file-2.pdf", recent[0].FileName)
	assert.Equal(t, "file-101.pdf", recent[99].FileName)
}

func TestTrackerSnapshotPagination(t *testing.T) {
	tracker := NewUploadTracker(DefaultTrackerCapacity)
	for i := 1; i <= 5; i++ {
		tracker.Record(testUpload(i))
	}

	tt := []struct {
		name   string
		limit  int
		offset int
		files  []string
	}{
		{"first page", 2, 0, []string{"file-1.pdf", "file-2.pdf"}},
		{"second page", 2, 2, []string{"file-3.pdf", "file-4.pdf"}},
		{"partial last page", 10, 4, []string{"file-5.pdf"}},
		{"offset past end", 10, 99, []string{}},
		{"zero limit", 0, 0, []string{}},
		{"negative values clamp", -1, -1, []string{}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			recent, total := tracker.Snapshot(tc.limit, tc.offset)
			assert.Equal(t, uint64(5), total)
			require.Len(t, recent, len(tc.files))
			for i, f := range tc.files {
				assert.Equal(t, f, recent[i].FileName)
			}
		})
	}
}

func TestTrackerSnapshotIsACopy(t *testing.T) {
	tracker := NewUploadTracker(DefaultTrackerCapacity)
	tracker.Record(testUpload(1))

	recent, _ := tracker.Snapshot(10, 0)
	recent[0].FileName = "mutated"

	again, _ := tracker.Snapshot(10, 0)
	assert.Equal(t, "file-1.pdf", again[0].FileName)
}

func TestTrackerConcurrentRecord(t *testing.T) {
	tracker := NewUploadTracker(DefaultTrackerCapacity)

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tracker.Record(testUpload(w*perWorker + i))
			}
		}(w)
	}
	wg.Wait()

	recent, total := tracker.Snapshot(200, 0)
	assert.Equal(t, uint64(workers*perWorker), total)
	assert.Len(t, recent, DefaultTrackerCapacity)
}
