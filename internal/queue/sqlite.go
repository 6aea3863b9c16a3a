package queue

import (
	"database/sql"
	"fmt"
	"time"

	"tclock-go/internal/queue/migrations"
	"tclock-go/internal/tclock"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteQueue implements the Queue interface on SQLite, for kiosks that
// accumulate bigger offline backlogs than the JSON file comfortably
// handles. Same contract as FileQueue: sync flips the flag, only
// retention cleanup deletes, AUTOINCREMENT ids are never reused.
type SQLiteQueue struct {
	db         *sql.DB
	maxRecords int
	clock      tclock.Clock
	logger     tclock.Logger
}

var _ tclock.Queue = (*SQLiteQueue)(nil)

// NewSQLiteQueue opens (and migrates) a SQLite-backed punch queue.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteQueue(path string, maxRecords int, clock tclock.Clock, logger tclock.Logger) (*SQLiteQueue, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Wait for locks instead of failing when a background sync pass
	// overlaps a foreground punch.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating punch queue schema: %w", err)
	}

	return &SQLiteQueue{
		db:         db,
		maxRecords: maxRecords,
		clock:      clock,
		logger:     logger,
	}, nil
}

func (q *SQLiteQueue) Append(employeeID string, punchTime time.Time, imageFilename string) (*tclock.PunchRecord, error) {
	if err := q.pruneForCap(); err != nil {
		return nil, err
	}

	createdAt := q.clock.Now()
	res, err := q.db.Exec(
		`INSERT INTO punches (employee_id, punch_time, punch_type, image_filename, synced, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		employeeID, punchTime, tclock.PunchTypeOffline, imageFilename, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting punch: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading punch id: %w", err)
	}

	return &tclock.PunchRecord{
		ID:            id,
		EmployeeID:    employeeID,
		PunchTime:     punchTime,
		PunchType:     tclock.PunchTypeOffline,
		ImageFilename: imageFilename,
		Synced:        false,
		CreatedAt:     createdAt,
	}, nil
}

func (q *SQLiteQueue) UnsyncedRecords() ([]*tclock.PunchRecord, error) {
	rows, err := q.db.Query(
		`SELECT id, employee_id, punch_time, punch_type, image_filename, synced, created_at, synced_at
		 FROM punches WHERE synced = 0 ORDER BY punch_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying unsynced punches: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (q *SQLiteQueue) Records() ([]*tclock.PunchRecord, error) {
	rows, err := q.db.Query(
		`SELECT id, employee_id, punch_time, punch_type, image_filename, synced, created_at, synced_at
		 FROM punches ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying punches: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (q *SQLiteQueue) MarkSynced(id int64) error {
	res, err := q.db.Exec(
		`UPDATE punches SET synced = 1, synced_at = ? WHERE id = ? AND synced = 0`,
		q.clock.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("marking punch synced: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking synced update: %w", err)
	}
	if affected == 0 {
		return tclock.ErrNotFound
	}
	return nil
}

func (q *SQLiteQueue) CleanupOlderThan(retentionDays int) (int, error) {
	cutoff := dayStart(q.clock.Now()).AddDate(0, 0, -retentionDays)

	res, err := q.db.Exec(`DELETE FROM punches WHERE created_at < ?`, cutoff.AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("deleting old punches: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted punches: %w", err)
	}
	return int(deleted), nil
}

func (q *SQLiteQueue) Count() (int, error) {
	var count int
	if err := q.db.QueryRow(`SELECT COUNT(*) FROM punches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting punches: %w", err)
	}
	return count, nil
}

func (q *SQLiteQueue) Close() error { return q.db.Close() }

// pruneForCap deletes the oldest synced records when the table is at
// its cap, matching FileQueue behavior. Unsynced records are never
// deleted here.
func (q *SQLiteQueue) pruneForCap() error {
	if q.maxRecords <= 0 {
		return nil
	}

	count, err := q.Count()
	if err != nil {
		return err
	}
	if count < q.maxRecords {
		return nil
	}

	toDrop := count - q.maxRecords + 1
	if _, err := q.db.Exec(
		`DELETE FROM punches WHERE id IN
		 (SELECT id FROM punches WHERE synced = 1 ORDER BY id ASC LIMIT ?)`,
		toDrop,
	); err != nil {
		return fmt.Errorf("pruning synced punches: %w", err)
	}

	count, err = q.Count()
	if err != nil {
		return err
	}
	if count >= q.maxRecords {
		q.logger.Warn("offline queue over capacity with unsynced punches",
			"count", count, "max", q.maxRecords)
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]*tclock.PunchRecord, error) {
	var records []*tclock.PunchRecord
	for rows.Next() {
		rec := &tclock.PunchRecord{}
		var syncedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.PunchTime, &rec.PunchType,
			&rec.ImageFilename, &rec.Synced, &rec.CreatedAt, &syncedAt); err != nil {
			return nil, fmt.Errorf("scanning punch row: %w", err)
		}
		if syncedAt.Valid {
			t := syncedAt.Time
			rec.SyncedAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating punch rows: %w", err)
	}
	return records, nil
}
