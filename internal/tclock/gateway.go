package tclock

import (
	"context"
	"fmt"
	"time"
)

const (
	// maxSwipeTimeout caps the per-call deadline for punch calls no
	// matter what the config says; the kiosk must stay responsive.
	maxSwipeTimeout = 8 * time.Second
	// maxImageTimeout caps photo uploads, which are best-effort.
	maxImageTimeout = 5 * time.Second

	// swipeTimeLayout is the timestamp format inside the swipe input
	// payload, second precision and no zone.
	swipeTimeLayout = "2006-01-02T15:04:05"
)

// Gateway records punches against the remote service, falling back to
// the offline queue when the service is unreachable. It coordinates the
// throttle, connection state, photo backup/upload, and response
// classification.
type Gateway struct {
	swipe    SwipeService
	images   ImageService
	queue    Queue
	photos   PhotoStore
	conn     *Connection
	throttle *Throttle
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	timeout  time.Duration
}

// NewGateway creates a Gateway with the provided dependencies. timeout
// is the configured per-call deadline; it is capped at 8 seconds.
func NewGateway(swipe SwipeService, images ImageService, queue Queue, photos PhotoStore, conn *Connection, logger Logger, clock Clock, idgen IDGenerator, timeout time.Duration) *Gateway {
	if timeout <= 0 || timeout > maxSwipeTimeout {
		timeout = maxSwipeTimeout
	}
	return &Gateway{
		swipe:    swipe,
		images:   images,
		queue:    queue,
		photos:   photos,
		conn:     conn,
		throttle: NewThrottle(clock),
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		timeout:  timeout,
	}
}

// PhotoFilename builds the upload filename for a punch photo:
// "{employeeId}__{YYYYMMDD_HHMMSS}.jpg". Badge ids may carry a leading
// two-letter prefix that is not part of the server-side employee id;
// it is stripped here so filenames correlate with the punch.
func PhotoFilename(employeeID string, punchTime time.Time) string {
	id := employeeID
	if len(id) > 2 && isLetter(id[0]) && isLetter(id[1]) {
		id = id[2:]
	}
	return fmt.Sprintf("%s__%s.jpg", id, punchTime.Format("20060102_150405"))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Record records a punch for an employee. punchTime is the moment of
// physical presentation, not the time of this call. departmentOverride
// of zero means no override; photo may be nil.
//
// The returned error is non-nil only for storage failures: losing an
// accepted punch is never acceptable. Every remote outcome, including
// rejections and offline fallback, is expressed in the PunchResult.
func (g *Gateway) Record(ctx context.Context, employeeID string, punchTime time.Time, departmentOverride int, photo []byte) (*PunchResult, error) {
	if suppress, elapsed := g.throttle.ShouldSuppress(employeeID); suppress {
		g.logger.Warn("throttling repeated punch",
			"employee", employeeID, "elapsed", elapsed.Round(time.Millisecond))
		return &PunchResult{
			Status:        StatusRejected,
			ExceptionCode: ExceptionNotAuthorized,
			Message:       ExceptionMessage(ExceptionNotAuthorized),
			Throttled:     true,
		}, nil
	}

	attemptID := g.idgen.New()

	// A backup copy of the photo is written before anything touches the
	// network, so the photo survives whichever path the punch takes.
	fileName := ""
	if len(photo) > 0 {
		fileName = PhotoFilename(employeeID, punchTime)
		if err := g.photos.Save(fileName, photo); err != nil {
			g.logger.Warn("saving photo backup failed",
				"employee", employeeID, "file", fileName, "error", err)
			fileName = ""
		}
	}

	g.logger.Info("punch send",
		"attempt", attemptID,
		"employee", employeeID,
		"time", punchTime.Format(time.RFC3339),
		"file", fileName)

	if !g.conn.IsOnline() {
		if !g.conn.TryReconnect(ctx) {
			g.logger.Info("reconnect failed, storing punch locally",
				"attempt", attemptID, "employee", employeeID)
			return g.storeOffline(employeeID, punchTime, fileName)
		}
	}

	resp, err := g.call(ctx, employeeID, punchTime, departmentOverride)
	if err != nil {
		g.logger.Warn("online punch failed, storing offline",
			"attempt", attemptID, "employee", employeeID, "error", err)
		g.conn.SetOffline(err.Error())
		return g.storeOffline(employeeID, punchTime, fileName)
	}

	// A completed call means the transport works, whatever the answer.
	g.conn.SetOnline()

	result := g.classify(resp, employeeID)
	switch result.Status {
	case StatusAccepted:
		g.throttle.Record(employeeID, nil)
		if fileName != "" {
			if err := g.uploadPhoto(ctx, fileName, photo); err != nil {
				// The punch is already recorded; the upload failure only
				// degrades the connection state so the next punch probes
				// before trusting the link.
				g.logger.Warn("photo upload failed",
					"employee", employeeID, "file", fileName, "error", err)
				g.conn.SetOffline(err.Error())
			}
		}
		g.logger.Info("punch response",
			"attempt", attemptID,
			"employee", employeeID,
			"lastName", result.LastName,
			"firstName", result.FirstName,
			"punchType", result.PunchType)
	case StatusRejected:
		code := result.ExceptionCode
		g.throttle.Record(employeeID, &code)
	default:
		g.throttle.Record(employeeID, nil)
	}

	return result, nil
}

// replay re-sends a queued punch with its original employee id and
// punch time. Unlike Record it never re-queues: a transport failure
// comes back as a *ConnectivityError so the record stays untouched for
// the next sync cycle.
func (g *Gateway) replay(ctx context.Context, rec *PunchRecord) (*PunchResult, error) {
	resp, err := g.call(ctx, rec.EmployeeID, rec.PunchTime, 0)
	if err != nil {
		g.conn.SetOffline(err.Error())
		return nil, &ConnectivityError{Op: fmt.Sprintf("replaying punch %d", rec.ID), Err: err}
	}

	g.conn.SetOnline()
	return g.classify(resp, rec.EmployeeID), nil
}

// call formats the swipe input and executes the bounded remote call.
func (g *Gateway) call(ctx context.Context, employeeID string, punchTime time.Time, departmentOverride int) (*SwipeResponse, error) {
	swipeInput := fmt.Sprintf("%s|*|%s", employeeID, punchTime.Format(swipeTimeLayout))

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if departmentOverride != 0 {
		swipeInput = fmt.Sprintf("%s|*|%d", swipeInput, departmentOverride)
		return g.swipe.RecordSwipeDepartmentOverride(callCtx, swipeInput)
	}
	return g.swipe.RecordSwipe(callCtx, swipeInput)
}

// classify turns a decoded remote response into a tagged PunchResult.
func (g *Gateway) classify(resp *SwipeResponse, employeeID string) *PunchResult {
	if resp.SystemErrorCode != nil {
		code := *resp.SystemErrorCode
		msg, known := SystemErrorMessage(code)
		if !known {
			msg = fmt.Sprintf("Unknown system error (code %d)", code)
		}
		g.logger.Error("remote system error",
			"employee", employeeID, "code", code, "message", msg)
		return &PunchResult{
			Status:          StatusSystemError,
			SystemErrorCode: code,
			SystemMessage:   msg,
		}
	}

	if resp.PunchException != nil {
		code := *resp.PunchException
		msg := ExceptionMessage(code)
		g.logger.Info("punch exception",
			"employee", employeeID, "code", code, "message", msg.English)
		if code == ExceptionNotAuthorized {
			g.logger.Warn("not-authorized rejection, may indicate an invalid employee id",
				"employee", employeeID)
		}
		return &PunchResult{
			Status:        StatusRejected,
			ExceptionCode: code,
			Message:       msg,
		}
	}

	// Only an explicit success flag counts as recorded. A response with
	// no codes and no success is still a refusal; treating it as
	// accepted would let sync mark an unconfirmed punch synced.
	if !resp.PunchSuccess {
		g.logger.Error("remote service refused the punch without a code",
			"employee", employeeID)
		return &PunchResult{
			Status:  StatusRejected,
			Message: ExceptionMessage(0),
		}
	}

	return &PunchResult{
		Status:      StatusAccepted,
		PunchType:   resp.PunchType,
		FirstName:   resp.FirstName,
		LastName:    resp.LastName,
		WeeklyHours: resp.WeeklyHours,
	}
}

// storeOffline appends the punch to the durable queue. A queue failure
// is a hard error: there is no other copy of an accepted punch.
func (g *Gateway) storeOffline(employeeID string, punchTime time.Time, fileName string) (*PunchResult, error) {
	rec, err := g.queue.Append(employeeID, punchTime, fileName)
	if err != nil {
		return nil, &StorageError{Op: "storing punch offline", Err: err}
	}
	g.logger.Info("punch stored offline", "employee", employeeID, "id", rec.ID)
	return &PunchResult{Status: StatusStoredOffline}, nil
}

// uploadPhoto sends the photo to the remote service under its own,
// shorter deadline.
func (g *Gateway) uploadPhoto(ctx context.Context, fileName string, data []byte) error {
	timeout := g.timeout
	if timeout > maxImageTimeout {
		timeout = maxImageTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return g.images.SaveImage(callCtx, fileName, data)
}
