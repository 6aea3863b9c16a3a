package tclock

import (
	"context"
	"errors"
	"time"
)

// PunchRecord is the unit of durable state in the offline queue.
// IDs are assigned at append time, are unique within a queue, and are
// never reused or reassigned.
type PunchRecord struct {
	ID            int64      `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	PunchTime     time.Time  `json:"punchTime"`
	PunchType     string     `json:"punchType"`
	ImageFilename string     `json:"imageFilename,omitempty"`
	Synced        bool       `json:"synced"`
	CreatedAt     time.Time  `json:"createdAt"`
	SyncedAt      *time.Time `json:"syncedAt,omitempty"`
}

// PunchTypeOffline is the punch type recorded for queued punches. The
// remote service reports "checkin"/"checkout" for online punches.
const PunchTypeOffline = "OFFLINE"

// ErrNotFound is returned by Queue.MarkSynced when no record has the
// given id. Callers treat it as a warning, not a fatal condition.
var ErrNotFound = errors.New("punch record not found")

// Queue is the durable offline punch queue.
//
// Append must either persist the record or return a *StorageError; it
// never silently drops an accepted punch. Sync never deletes records,
// it only flips the synced flag; deletion happens through retention
// cleanup alone.
type Queue interface {
	// Append stores a new unsynced punch and returns the stored record.
	Append(employeeID string, punchTime time.Time, imageFilename string) (*PunchRecord, error)

	// UnsyncedRecords returns all records with synced=false, oldest
	// punchTime first.
	UnsyncedRecords() ([]*PunchRecord, error)

	// Records returns every record in the queue, synced or not.
	Records() ([]*PunchRecord, error)

	// MarkSynced sets synced=true and syncedAt on the record with the
	// given id. Returns ErrNotFound if the id is unknown.
	MarkSynced(id int64) error

	// CleanupOlderThan deletes records whose createdAt day is more than
	// retentionDays before today. Returns the number deleted.
	CleanupOlderThan(retentionDays int) (int, error)

	// Count returns the total number of records in the queue.
	Count() (int, error)

	Close() error
}

// SwipeResponse is the decoded result of a RecordSwipeSummary call.
// Optional remote fields are pointers so an absent field is an explicit
// case rather than a zero-value guess.
type SwipeResponse struct {
	PunchSuccess    bool
	PunchType       string
	FirstName       string
	LastName        string
	PunchException  *int
	SystemErrorCode *int
	WeeklyHours     *float64
}

// SwipeService is the remote punch-recording operation pair. A transport
// failure (network error, deadline exceeded) is returned as an error;
// business rejections and system error codes come back inside the
// response.
type SwipeService interface {
	RecordSwipe(ctx context.Context, swipeInput string) (*SwipeResponse, error)
	RecordSwipeDepartmentOverride(ctx context.Context, swipeInput string) (*SwipeResponse, error)
}

// ImageService uploads punch photos to the remote service.
type ImageService interface {
	SaveImage(ctx context.Context, fileName string, data []byte) error
}

// PhotoStore keeps local backup copies of punch photos so they can be
// replayed after an offline punch syncs.
type PhotoStore interface {
	Save(fileName string, data []byte) error
	// Load returns the stored photo bytes, or ErrNotFound if no backup
	// exists under that name.
	Load(fileName string) ([]byte, error)
}

// Prober checks that the remote services are reachable and expose the
// required operations. Used by Connection.TryReconnect.
type Prober interface {
	Probe(ctx context.Context) error
}
