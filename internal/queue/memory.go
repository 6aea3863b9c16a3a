package queue

import (
	"sort"
	"sync"
	"time"

	"tclock-go/internal/tclock"
)

// MemoryQueue is an in-memory Queue implementation for tests and
// ephemeral setups. Same semantics as FileQueue, no durability.
type MemoryQueue struct {
	mu      sync.Mutex
	records []*tclock.PunchRecord
	clock   tclock.Clock
}

var _ tclock.Queue = (*MemoryQueue)(nil)

func NewMemoryQueue(clock tclock.Clock) *MemoryQueue {
	return &MemoryQueue{clock: clock}
}

func (q *MemoryQueue) Append(employeeID string, punchTime time.Time, imageFilename string) (*tclock.PunchRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec := &tclock.PunchRecord{
		ID:            nextID(q.records),
		EmployeeID:    employeeID,
		PunchTime:     punchTime,
		PunchType:     tclock.PunchTypeOffline,
		ImageFilename: imageFilename,
		Synced:        false,
		CreatedAt:     q.clock.Now(),
	}
	q.records = append(q.records, rec)
	return rec, nil
}

func (q *MemoryQueue) UnsyncedRecords() ([]*tclock.PunchRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var unsynced []*tclock.PunchRecord
	for _, rec := range q.records {
		if !rec.Synced {
			unsynced = append(unsynced, rec)
		}
	}
	sort.Slice(unsynced, func(i, j int) bool {
		return unsynced[i].PunchTime.Before(unsynced[j].PunchTime)
	})
	return unsynced, nil
}

func (q *MemoryQueue) Records() ([]*tclock.PunchRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*tclock.PunchRecord(nil), q.records...), nil
}

func (q *MemoryQueue) MarkSynced(id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, rec := range q.records {
		if rec.ID == id {
			now := q.clock.Now()
			rec.Synced = true
			rec.SyncedAt = &now
			return nil
		}
	}
	return tclock.ErrNotFound
}

func (q *MemoryQueue) CleanupOlderThan(retentionDays int) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := dayStart(q.clock.Now()).AddDate(0, 0, -retentionDays)

	kept := q.records[:0]
	for _, rec := range q.records {
		if dayStart(rec.CreatedAt).After(cutoff) {
			kept = append(kept, rec)
		}
	}

	deleted := len(q.records) - len(kept)
	q.records = kept
	return deleted, nil
}

func (q *MemoryQueue) Count() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records), nil
}

func (q *MemoryQueue) Close() error { return nil }
