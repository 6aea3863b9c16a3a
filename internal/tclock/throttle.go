package tclock

import (
	"sync"
	"time"
)

// ThrottleWindow is how long a not-authorized rejection suppresses
// repeat swipes for the same employee. Card readers and keypads can
// generate duplicate rapid submissions; retrying a definitive
// authorization failure only loads the backend.
const ThrottleWindow = 5 * time.Second

type throttleEntry struct {
	lastAttemptAt time.Time
	exceptionCode *int
}

// Throttle is a per-employee short-circuit cache for rejected swipes.
// It is instance-owned: each gateway carries its own map, so tests and
// multiple gateways stay isolated.
type Throttle struct {
	mu      sync.Mutex
	entries map[string]throttleEntry
	clock   Clock
}

func NewThrottle(clock Clock) *Throttle {
	return &Throttle{
		entries: make(map[string]throttleEntry),
		clock:   clock,
	}
}

// ShouldSuppress reports whether a swipe for this employee should be
// short-circuited: a prior attempt inside the window that ended in a
// not-authorized rejection. It also returns how long ago that attempt
// was, for logging.
func (t *Throttle) ShouldSuppress(employeeID string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[employeeID]
	if !ok {
		return false, 0
	}

	elapsed := t.clock.Now().Sub(entry.lastAttemptAt)
	if elapsed < ThrottleWindow && entry.exceptionCode != nil && *entry.exceptionCode == ExceptionNotAuthorized {
		return true, elapsed
	}
	return false, 0
}

// Record overwrites the entry for this employee with the current time
// and the exception code of the attempt. Pass nil for a clean punch.
func (t *Throttle) Record(employeeID string, exceptionCode *int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[employeeID] = throttleEntry{
		lastAttemptAt: t.clock.Now(),
		exceptionCode: exceptionCode,
	}
}
