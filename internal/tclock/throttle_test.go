package tclock_test

import (
	"testing"
	"time"

	"tclock-go/internal/tclock"
	"tclock-go/internal/testutil"
)

func TestThrottle_suppressesNotAuthorizedWithinWindow(t *testing.T) {
	clock := testutil.FixedClock()
	th := tclock.NewThrottle(clock)

	code := tclock.ExceptionNotAuthorized
	th.Record("12345", &code)

	clock.Advance(2 * time.Second)
	suppress, elapsed := th.ShouldSuppress("12345")
	if !suppress {
		t.Fatal("ShouldSuppress = false at 2s, want suppression")
	}
	if elapsed != 2*time.Second {
		t.Errorf("elapsed = %v, want 2s", elapsed)
	}
}

func TestThrottle_expiresAfterWindow(t *testing.T) {
	clock := testutil.FixedClock()
	th := tclock.NewThrottle(clock)

	code := tclock.ExceptionNotAuthorized
	th.Record("12345", &code)

	clock.Advance(6 * time.Second)
	if suppress, _ := th.ShouldSuppress("12345"); suppress {
		t.Error("ShouldSuppress = true at 6s, want expiry after the 5s window")
	}
}

func TestThrottle_windowBoundary(t *testing.T) {
	clock := testutil.FixedClock()
	th := tclock.NewThrottle(clock)

	code := tclock.ExceptionNotAuthorized
	th.Record("12345", &code)

	// Exactly at the window the swipe goes through.
	clock.Advance(tclock.ThrottleWindow)
	if suppress, _ := th.ShouldSuppress("12345"); suppress {
		t.Error("ShouldSuppress = true at exactly the window, want no suppression")
	}
}

func TestThrottle_ignoresOtherCodes(t *testing.T) {
	clock := testutil.FixedClock()
	th := tclock.NewThrottle(clock)

	code := 1
	th.Record("12345", &code)

	clock.Advance(time.Second)
	if suppress, _ := th.ShouldSuppress("12345"); suppress {
		t.Error("ShouldSuppress = true for exception 1, only not-authorized throttles")
	}
}

func TestThrottle_cleanPunchClearsSuppression(t *testing.T) {
	clock := testutil.FixedClock()
	th := tclock.NewThrottle(clock)

	code := tclock.ExceptionNotAuthorized
	th.Record("12345", &code)
	th.Record("12345", nil)

	clock.Advance(time.Second)
	if suppress, _ := th.ShouldSuppress("12345"); suppress {
		t.Error("ShouldSuppress = true after a clean punch overwrote the entry")
	}
}

func TestThrottle_unknownEmployee(t *testing.T) {
	th := tclock.NewThrottle(testutil.FixedClock())
	if suppress, elapsed := th.ShouldSuppress("99999"); suppress || elapsed != 0 {
		t.Errorf("ShouldSuppress(unknown) = %v, %v, want false, 0", suppress, elapsed)
	}
}
