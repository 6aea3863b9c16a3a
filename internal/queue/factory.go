package queue

import (
	"fmt"
	"path/filepath"

	"tclock-go/internal/config"
	"tclock-go/internal/tclock"
)

// NewQueueFromConfig creates a Queue implementation based on the storage config type.
func NewQueueFromConfig(cfg config.StorageConfig, kioskID string, clock tclock.Clock, logger tclock.Logger) (tclock.Queue, error) {
	switch cfg.Type {
	case "file", "":
		if cfg.QueuePath == "" {
			return nil, fmt.Errorf("queue_path required for file storage")
		}
		return NewFileQueue(cfg.QueuePath, cfg.MaxOfflineRecords, clock, logger)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite storage")
		}
		dbPath := filepath.Join(cfg.DataDir, kioskID+".db")
		return NewSQLiteQueue(dbPath, cfg.MaxOfflineRecords, clock, logger)
	case "memory":
		return NewMemoryQueue(clock), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
