package queue_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tclock-go/internal/queue"
	"tclock-go/internal/tclock"
	"tclock-go/internal/testutil"
)

func newSQLiteQueue(t *testing.T, clock tclock.Clock, maxRecords int) *queue.SQLiteQueue {
	t.Helper()
	path := filepath.Join(t.TempDir(), "punches.db")
	q, err := queue.NewSQLiteQueue(path, maxRecords, clock, tclock.NewNopLogger())
	if err != nil {
		t.Fatalf("NewSQLiteQueue() error = %v", err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

func TestSQLiteQueue_AppendAndQuery(t *testing.T) {
	clock := testutil.FixedClock()
	q := newSQLiteQueue(t, clock, 0)

	punchTime := time.Date(2024, 1, 14, 8, 0, 0, 0, time.UTC)
	rec, err := q.Append("12345", punchTime, "12345__20240114_080000.jpg")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if rec.ID != 1 {
		t.Errorf("first id = %d, want 1", rec.ID)
	}

	records, err := q.Records()
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	got := records[0]
	if got.EmployeeID != "12345" || !got.PunchTime.Equal(punchTime) {
		t.Errorf("stored record = %+v", got)
	}
	if got.PunchType != tclock.PunchTypeOffline {
		t.Errorf("PunchType = %q, want %q", got.PunchType, tclock.PunchTypeOffline)
	}
	if got.ImageFilename != "12345__20240114_080000.jpg" {
		t.Errorf("ImageFilename = %q", got.ImageFilename)
	}
	if got.Synced || got.SyncedAt != nil {
		t.Errorf("new record synced = %v, syncedAt = %v", got.Synced, got.SyncedAt)
	}
}

func TestSQLiteQueue_UnsyncedRecordsOldestFirst(t *testing.T) {
	clock := testutil.FixedClock()
	q := newSQLiteQueue(t, clock, 0)

	base := time.Date(2024, 1, 14, 8, 0, 0, 0, time.UTC)
	q.Append("200", base.Add(time.Hour), "")
	q.Append("100", base, "")

	records, err := q.UnsyncedRecords()
	if err != nil {
		t.Fatalf("UnsyncedRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("unsynced = %d, want 2", len(records))
	}
	if records[0].EmployeeID != "100" || records[1].EmployeeID != "200" {
		t.Errorf("order = %s, %s; want oldest punch first",
			records[0].EmployeeID, records[1].EmployeeID)
	}
}

func TestSQLiteQueue_MarkSynced(t *testing.T) {
	clock := testutil.FixedClock()
	q := newSQLiteQueue(t, clock, 0)

	rec, _ := q.Append("12345", time.Date(2024, 1, 14, 8, 0, 0, 0, time.UTC), "")

	clock.Advance(time.Hour)
	if err := q.MarkSynced(rec.ID); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}

	records, _ := q.Records()
	if !records[0].Synced {
		t.Error("record not synced after MarkSynced")
	}
	if records[0].SyncedAt == nil || !records[0].SyncedAt.Equal(clock.Now()) {
		t.Errorf("SyncedAt = %v, want %v", records[0].SyncedAt, clock.Now())
	}

	unsynced, _ := q.UnsyncedRecords()
	if len(unsynced) != 0 {
		t.Errorf("unsynced = %d, want 0", len(unsynced))
	}
}

func TestSQLiteQueue_MarkSyncedUnknownID(t *testing.T) {
	q := newSQLiteQueue(t, testutil.FixedClock(), 0)

	if err := q.MarkSynced(42); !errors.Is(err, tclock.ErrNotFound) {
		t.Errorf("MarkSynced(42) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteQueue_CleanupOlderThan(t *testing.T) {
	clock := testutil.FixedClock()
	q := newSQLiteQueue(t, clock, 0)

	q.Append("100", clock.Now(), "")
	clock.Advance(40 * 24 * time.Hour)
	recent, _ := q.Append("200", clock.Now(), "")

	deleted, err := q.CleanupOlderThan(30)
	if err != nil {
		t.Fatalf("CleanupOlderThan() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	records, _ := q.Records()
	if len(records) != 1 || records[0].ID != recent.ID {
		t.Errorf("remaining = %+v, want only record %d", records, recent.ID)
	}

	deleted, _ = q.CleanupOlderThan(30)
	if deleted != 0 {
		t.Errorf("second pass deleted = %d, want 0", deleted)
	}
}

func TestSQLiteQueue_IDsNotReusedAfterCleanup(t *testing.T) {
	clock := testutil.FixedClock()
	q := newSQLiteQueue(t, clock, 0)

	q.Append("100", clock.Now(), "")
	clock.Advance(40 * 24 * time.Hour)
	if _, err := q.CleanupOlderThan(30); err != nil {
		t.Fatalf("CleanupOlderThan() error = %v", err)
	}

	// AUTOINCREMENT keeps counting past deleted rows.
	next, _ := q.Append("200", clock.Now(), "")
	if next.ID != 2 {
		t.Errorf("id after cleanup = %d, want 2", next.ID)
	}
}

func TestSQLiteQueue_CapPrunesOldestSynced(t *testing.T) {
	clock := testutil.FixedClock()
	q := newSQLiteQueue(t, clock, 3)

	base := time.Date(2024, 1, 14, 8, 0, 0, 0, time.UTC)
	first, _ := q.Append("100", base, "")
	second, _ := q.Append("200", base.Add(time.Hour), "")
	q.Append("300", base.Add(2*time.Hour), "")
	q.MarkSynced(first.ID)
	q.MarkSynced(second.ID)

	fourth, err := q.Append("400", base.Add(3*time.Hour), "")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	records, _ := q.Records()
	if len(records) != 3 {
		t.Fatalf("count = %d, want 3: cap enforced", len(records))
	}
	ids := map[int64]bool{}
	for _, rec := range records {
		ids[rec.ID] = true
	}
	if ids[first.ID] {
		t.Error("oldest synced record not pruned")
	}
	if !ids[fourth.ID] {
		t.Error("new record missing after cap prune")
	}
}

func TestSQLiteQueue_CapNeverDropsUnsynced(t *testing.T) {
	clock := testutil.FixedClock()
	q := newSQLiteQueue(t, clock, 2)

	base := time.Date(2024, 1, 14, 8, 0, 0, 0, time.UTC)
	q.Append("100", base, "")
	q.Append("200", base.Add(time.Hour), "")

	if _, err := q.Append("300", base.Add(2*time.Hour), ""); err != nil {
		t.Fatalf("Append() over cap error = %v", err)
	}

	n, _ := q.Count()
	if n != 3 {
		t.Errorf("count = %d, want 3: unsynced punches are never dropped", n)
	}
}
