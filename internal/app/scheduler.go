package app

import (
	"context"
	"time"
)

// Run is the long-lived kiosk agent loop. It schedules the background
// tasks on fixed intervals (reconnect probe, offline sync drain, and
// retention cleanup) and blocks until the context is cancelled. The
// tasks are independent and may overlap foreground punches; every
// shared structure they touch is internally synchronized.
func (a *App) Run(ctx context.Context) error {
	reconnect := time.NewTicker(time.Duration(a.cfg.Agent.ReconnectIntervalSeconds) * time.Second)
	defer reconnect.Stop()
	sync := time.NewTicker(time.Duration(a.cfg.Agent.SyncIntervalSeconds) * time.Second)
	defer sync.Stop()
	cleanup := time.NewTicker(time.Duration(a.cfg.Agent.CleanupIntervalSeconds) * time.Second)
	defer cleanup.Stop()

	a.logger.Info("agent started",
		"reconnectInterval", a.cfg.Agent.ReconnectIntervalSeconds,
		"syncInterval", a.cfg.Agent.SyncIntervalSeconds,
		"cleanupInterval", a.cfg.Agent.CleanupIntervalSeconds)

	// Probe once at startup so the first punch doesn't pay for the
	// initial reconnect attempt.
	a.checkConnection(ctx)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("agent stopping")
			return ctx.Err()
		case <-reconnect.C:
			a.checkConnection(ctx)
		case <-sync.C:
			a.syncOfflineData(ctx)
		case <-cleanup.C:
			a.cleanupOldRecords()
		}
	}
}

// checkConnection probes the service when the clock believes it is
// offline. When the probe succeeds, queued punches are drained right
// away instead of waiting for the next sync tick.
func (a *App) checkConnection(ctx context.Context) {
	if a.conn.IsOnline() {
		return
	}
	if a.conn.TryReconnect(ctx) {
		a.syncOfflineData(ctx)
	}
}

func (a *App) syncOfflineData(ctx context.Context) {
	stats := a.reconciler.Sync(ctx)
	if stats.Total > 0 || stats.Err != "" {
		a.logger.Info("offline sync pass",
			"total", stats.Total, "synced", stats.Synced,
			"failed", stats.Failed, "error", stats.Err)
	}
}

func (a *App) cleanupOldRecords() {
	count, err := a.queue.CleanupOlderThan(a.cfg.Storage.RetentionDays)
	if err != nil {
		a.logger.Error("retention cleanup failed", "error", err)
		return
	}
	if count > 0 {
		a.logger.Info("retention cleanup removed old punches", "count", count)
	}
}
