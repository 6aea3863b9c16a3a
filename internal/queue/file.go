package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"tclock-go/internal/tclock"
)

// FileQueue is the default Queue implementation: a JSON array of punch
// records in a single file, rewritten whole on every mutation.
//
// Durability: mutations write the complete list to a temporary file in
// the same directory, fsync it, then atomically rename it over the
// target. The on-disk file is always either the old complete version or
// the new complete version, even under a crash or power loss; this
// runs on unattended kiosk hardware.
//
// The file is single-writer (one kiosk process); the mutex serializes
// foreground appends against background sync mutations.
type FileQueue struct {
	mu         sync.Mutex
	path       string
	maxRecords int
	clock      tclock.Clock
	logger     tclock.Logger
}

var _ tclock.Queue = (*FileQueue)(nil)

// NewFileQueue creates a file-backed queue at the given path, creating
// the parent directory if needed. maxRecords bounds the total record
// count; zero or negative means unbounded.
func NewFileQueue(path string, maxRecords int, clock tclock.Clock, logger tclock.Logger) (*FileQueue, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating queue directory: %w", err)
	}
	return &FileQueue{
		path:       path,
		maxRecords: maxRecords,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Append stores a new unsynced punch. When the queue is at its cap,
// the oldest already-synced records are pruned to make room; if every
// record is still unsynced the append proceeds anyway, since dropping
// an accepted punch is never acceptable.
func (q *FileQueue) Append(employeeID string, punchTime time.Time, imageFilename string) (*tclock.PunchRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load()
	if err != nil {
		return nil, err
	}

	records = q.pruneForCap(records)

	rec := &tclock.PunchRecord{
		ID:            nextID(records),
		EmployeeID:    employeeID,
		PunchTime:     punchTime,
		PunchType:     tclock.PunchTypeOffline,
		ImageFilename: imageFilename,
		Synced:        false,
		CreatedAt:     q.clock.Now(),
	}
	records = append(records, rec)

	if err := q.save(records); err != nil {
		return nil, err
	}
	return rec, nil
}

func (q *FileQueue) UnsyncedRecords() ([]*tclock.PunchRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load()
	if err != nil {
		return nil, err
	}

	var unsynced []*tclock.PunchRecord
	for _, rec := range records {
		if !rec.Synced {
			unsynced = append(unsynced, rec)
		}
	}
	sort.Slice(unsynced, func(i, j int) bool {
		return unsynced[i].PunchTime.Before(unsynced[j].PunchTime)
	})
	return unsynced, nil
}

func (q *FileQueue) Records() ([]*tclock.PunchRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

func (q *FileQueue) MarkSynced(id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load()
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.ID == id {
			now := q.clock.Now()
			rec.Synced = true
			rec.SyncedAt = &now
			return q.save(records)
		}
	}
	return tclock.ErrNotFound
}

// CleanupOlderThan deletes records whose createdAt, truncated to the
// day boundary, falls more than retentionDays before today.
func (q *FileQueue) CleanupOlderThan(retentionDays int) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load()
	if err != nil {
		return 0, err
	}

	cutoff := dayStart(q.clock.Now()).AddDate(0, 0, -retentionDays)

	kept := records[:0]
	for _, rec := range records {
		if dayStart(rec.CreatedAt).After(cutoff) {
			kept = append(kept, rec)
		}
	}

	deleted := len(records) - len(kept)
	if deleted > 0 {
		if err := q.save(kept); err != nil {
			return 0, err
		}
	}
	return deleted, nil
}

func (q *FileQueue) Count() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (q *FileQueue) Close() error { return nil }

// pruneForCap drops the oldest synced records until the queue is below
// its cap. Unsynced records are never pruned here.
func (q *FileQueue) pruneForCap(records []*tclock.PunchRecord) []*tclock.PunchRecord {
	if q.maxRecords <= 0 || len(records) < q.maxRecords {
		return records
	}

	kept := records[:0]
	toDrop := len(records) - q.maxRecords + 1
	for _, rec := range records {
		if toDrop > 0 && rec.Synced {
			toDrop--
			continue
		}
		kept = append(kept, rec)
	}

	if len(kept) >= q.maxRecords {
		q.logger.Warn("offline queue over capacity with unsynced punches",
			"count", len(kept), "max", q.maxRecords)
	}
	return kept
}

// load reads the full record list. A missing file is an empty queue.
func (q *FileQueue) load() ([]*tclock.PunchRecord, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading queue file: %w", err)
	}

	var records []*tclock.PunchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing queue file %s: %w", q.path, err)
	}
	return records, nil
}

// save writes the complete record list with an atomic replace.
func (q *FileQueue) save(records []*tclock.PunchRecord) error {
	if records == nil {
		records = []*tclock.PunchRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding queue: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(q.path), "punches_*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp queue file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp queue file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp queue file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp queue file: %w", err)
	}

	if err := os.Rename(tmpPath, q.path); err != nil {
		return fmt.Errorf("replacing queue file: %w", err)
	}

	success = true
	return nil
}

// nextID returns one past the highest id ever assigned, so ids are
// never reused even after retention cleanup removes old records.
func nextID(records []*tclock.PunchRecord) int64 {
	var max int64
	for _, rec := range records {
		if rec.ID > max {
			max = rec.ID
		}
	}
	return max + 1
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
