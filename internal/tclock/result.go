package tclock

import "fmt"

// PunchStatus is the outcome variant of a Record call. Keeping the
// variants distinct means a caller cannot treat a definitive business
// rejection as retryable, or a connectivity fallback as a rejection.
type PunchStatus int

const (
	// StatusAccepted means the remote service recorded the punch.
	StatusAccepted PunchStatus = iota
	// StatusStoredOffline means the service was unreachable; the punch
	// was appended to the offline queue and will be replayed by sync.
	StatusStoredOffline
	// StatusRejected means the remote service answered with a business
	// punch exception. Definitive; never queued, never retried.
	StatusRejected
	// StatusSystemError means the remote service answered with a
	// negative system error code. Definitive; never queued.
	StatusSystemError
)

// PunchResult is the outcome of a Punch Gateway Record call.
type PunchResult struct {
	Status PunchStatus

	// Populated on StatusAccepted.
	PunchType   string
	FirstName   string
	LastName    string
	WeeklyHours *float64

	// Populated on StatusRejected.
	ExceptionCode int
	Message       Message
	// Throttled marks a rejection served from the throttle cache
	// without a remote call.
	Throttled bool

	// Populated on StatusSystemError.
	SystemErrorCode int
	SystemMessage   string
}

// Accepted reports whether the punch was recorded, either remotely or
// into the offline queue.
func (r *PunchResult) Accepted() bool {
	return r.Status == StatusAccepted || r.Status == StatusStoredOffline
}

// Offline reports whether the punch went to the offline queue.
func (r *PunchResult) Offline() bool { return r.Status == StatusStoredOffline }

// ConnectivityError marks a transport-level failure: network fault, DNS
// failure, or call deadline expiry. Recoverable: the punch falls back
// to the offline queue and the periodic reconnect/sync tasks retry.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// StorageError marks a local queue write failure. It propagates as a
// hard failure: once a punch is accepted from the caller there is no
// other copy of the data.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
