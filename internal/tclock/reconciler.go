package tclock

import (
	"context"
	"errors"
)

// SyncStats summarizes one reconciliation pass over the offline queue.
type SyncStats struct {
	Total  int
	Synced int
	Failed int
	// Err carries the connection error when the reconnect gate failed
	// and nothing was attempted.
	Err string
}

// Reconciler drains the offline queue through the gateway when the
// service is reachable, replaying each punch with its original employee
// id and punch time.
type Reconciler struct {
	gateway *Gateway
	queue   Queue
	photos  PhotoStore
	images  ImageService
	conn    *Connection
	logger  Logger
}

func NewReconciler(gateway *Gateway, queue Queue, photos PhotoStore, images ImageService, conn *Connection, logger Logger) *Reconciler {
	return &Reconciler{
		gateway: gateway,
		queue:   queue,
		photos:  photos,
		images:  images,
		conn:    conn,
		logger:  logger,
	}
}

// Sync replays unsynced punches, oldest first. A per-record failure is
// isolated: it is counted and the record is left for the next cycle,
// never aborting the rest of the batch. Only a confirmed remote success
// marks a record synced.
func (r *Reconciler) Sync(ctx context.Context) *SyncStats {
	if !r.conn.IsOnline() {
		if !r.conn.TryReconnect(ctx) {
			r.logger.Warn("sync skipped, reconnect failed", "error", r.conn.LastError())
			return &SyncStats{Err: r.conn.LastError()}
		}
	}

	records, err := r.queue.UnsyncedRecords()
	if err != nil {
		r.logger.Error("reading unsynced punches failed", "error", err)
		return &SyncStats{Err: err.Error()}
	}

	stats := &SyncStats{Total: len(records)}
	if len(records) == 0 {
		r.logger.Debug("no offline punches to sync")
		return stats
	}

	for _, rec := range records {
		if err := r.syncOne(ctx, rec); err != nil {
			r.logger.Error("failed to sync punch",
				"id", rec.ID, "employee", rec.EmployeeID, "error", err)
			stats.Failed++
			continue
		}
		stats.Synced++
	}

	r.logger.Info("sync complete",
		"total", stats.Total, "synced", stats.Synced, "failed", stats.Failed)
	return stats
}

// syncOne replays a single record and, on success, uploads its photo
// backup and marks it synced.
func (r *Reconciler) syncOne(ctx context.Context, rec *PunchRecord) error {
	result, err := r.gateway.replay(ctx, rec)
	if err != nil {
		return err
	}
	if result.Status != StatusAccepted {
		return errors.New("remote service did not accept the punch")
	}

	// The punch itself is authoritative; the photo is best-effort.
	// An upload failure never blocks marking the punch synced.
	if rec.ImageFilename != "" {
		r.uploadBackupPhoto(ctx, rec)
	}

	if err := r.queue.MarkSynced(rec.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Warn("synced punch missing from queue", "id", rec.ID)
			return nil
		}
		return err
	}

	r.logger.Info("punch synced", "id", rec.ID, "employee", rec.EmployeeID)
	return nil
}

func (r *Reconciler) uploadBackupPhoto(ctx context.Context, rec *PunchRecord) {
	data, err := r.photos.Load(rec.ImageFilename)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Warn("photo backup not found for synced punch",
				"id", rec.ID, "file", rec.ImageFilename)
		} else {
			r.logger.Error("reading photo backup failed",
				"id", rec.ID, "file", rec.ImageFilename, "error", err)
		}
		return
	}

	if err := r.gateway.uploadPhoto(ctx, rec.ImageFilename, data); err != nil {
		r.logger.Error("uploading photo for synced punch failed",
			"id", rec.ID, "file", rec.ImageFilename, "error", err)
		return
	}

	r.logger.Info("uploaded photo for synced punch",
		"id", rec.ID, "file", rec.ImageFilename)
}
