package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"tclock-go/internal/config"
	"tclock-go/internal/encryption"
	"tclock-go/internal/photo"
	"tclock-go/internal/queue"
	"tclock-go/internal/soap"
	"tclock-go/internal/tclock"
)

// App is the application layer between the CLI and the punch engine.
// It constructs all dependencies from config, exposes the high-level
// operations the CLI needs, and manages resource lifecycle on Close.
type App struct {
	cfg        *config.Config
	queue      tclock.Queue
	photos     tclock.PhotoStore
	client     *soap.Client
	conn       *tclock.Connection
	gateway    *tclock.Gateway
	reconciler *tclock.Reconciler
	logger     tclock.Logger
	logFile    *os.File
}

// New creates a fully wired App from the given config. The caller must
// call Close when done. The initial connection probe runs in the
// background of the first punch; a fresh App starts offline.
func New(cfg *config.Config) (*App, error) {
	sessionID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, sessionID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	encryptor, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	if cfg.Photos.Encrypt && !encryptor.IsConfigured() {
		logFile.Close()
		return nil, fmt.Errorf("photo encryption enabled but key files are missing; run \"tclock config init\"")
	}

	photos, err := photo.NewStoreFromConfig(cfg.Photos, encryptor)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating photo store: %w", err)
	}

	clock := tclock.RealClock{}
	q, err := queue.NewQueueFromConfig(cfg.Storage, cfg.KioskID, clock, logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating offline queue: %w", err)
	}

	client := soap.NewClient(cfg.Soap, logger)
	conn := tclock.NewConnection(client, logger)

	timeout := time.Duration(cfg.Soap.TimeoutSeconds) * time.Second
	gateway := tclock.NewGateway(client, client, q, photos, conn, logger,
		clock, tclock.UUIDGenerator{}, timeout)
	reconciler := tclock.NewReconciler(gateway, q, photos, client, conn, logger)

	return &App{
		cfg:        cfg,
		queue:      q,
		photos:     photos,
		client:     client,
		conn:       conn,
		gateway:    gateway,
		reconciler: reconciler,
		logger:     logger,
		logFile:    logFile,
	}, nil
}

// Punch records a punch for an employee at the current moment.
// departmentOverride of zero means none; photoPath may be empty.
func (a *App) Punch(ctx context.Context, employeeID string, departmentOverride int, photoPath string) (*tclock.PunchResult, error) {
	var photoData []byte
	if photoPath != "" {
		data, err := os.ReadFile(photoPath)
		if err != nil {
			return nil, fmt.Errorf("reading photo: %w", err)
		}
		photoData = data
	}

	punchTime := time.Now()
	return a.gateway.Record(ctx, employeeID, punchTime, departmentOverride, photoData)
}

// Sync drains the offline queue through the gateway.
func (a *App) Sync(ctx context.Context) *tclock.SyncStats {
	return a.reconciler.Sync(ctx)
}

// Reconnect probes the remote services and returns the resulting
// online state.
func (a *App) Reconnect(ctx context.Context) bool {
	return a.conn.TryReconnect(ctx)
}

// Cleanup applies the retention policy to the offline queue and
// returns the number of deleted records.
func (a *App) Cleanup() (int, error) {
	return a.queue.CleanupOlderThan(a.cfg.Storage.RetentionDays)
}

// Status describes the current connection and queue state.
type Status struct {
	Online    bool
	LastError string
	Total     int
	Unsynced  int
}

// GetStatus reports connection state and queue counts.
func (a *App) GetStatus() (*Status, error) {
	total, err := a.queue.Count()
	if err != nil {
		return nil, fmt.Errorf("counting queue records: %w", err)
	}
	unsynced, err := a.queue.UnsyncedRecords()
	if err != nil {
		return nil, fmt.Errorf("reading unsynced records: %w", err)
	}
	return &Status{
		Online:    a.conn.IsOnline(),
		LastError: a.conn.LastError(),
		Total:     total,
		Unsynced:  len(unsynced),
	}, nil
}

// QueueRecords returns queue contents for display. With unsyncedOnly,
// only records still waiting for replay are returned.
func (a *App) QueueRecords(unsyncedOnly bool) ([]*tclock.PunchRecord, error) {
	if unsyncedOnly {
		return a.queue.UnsyncedRecords()
	}
	return a.queue.Records()
}

// Close releases the queue and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.queue.Close(); err != nil {
		firstErr = fmt.Errorf("closing queue: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
