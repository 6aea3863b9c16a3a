package queue_test

import (
	"path/filepath"
	"testing"

	"tclock-go/internal/config"
	"tclock-go/internal/queue"
	"tclock-go/internal/tclock"
	"tclock-go/internal/testutil"
)

func TestNewQueueFromConfig(t *testing.T) {
	clock := testutil.FixedClock()
	logger := tclock.NewNopLogger()

	t.Run("file", func(t *testing.T) {
		q, err := queue.NewQueueFromConfig(config.StorageConfig{
			Type:      "file",
			QueuePath: filepath.Join(t.TempDir(), "punches.json"),
		}, "kiosk-1", clock, logger)
		if err != nil {
			t.Fatalf("NewQueueFromConfig() error = %v", err)
		}
		if _, ok := q.(*queue.FileQueue); !ok {
			t.Errorf("queue type = %T, want *FileQueue", q)
		}
	})

	t.Run("empty type defaults to file", func(t *testing.T) {
		q, err := queue.NewQueueFromConfig(config.StorageConfig{
			QueuePath: filepath.Join(t.TempDir(), "punches.json"),
		}, "kiosk-1", clock, logger)
		if err != nil {
			t.Fatalf("NewQueueFromConfig() error = %v", err)
		}
		if _, ok := q.(*queue.FileQueue); !ok {
			t.Errorf("queue type = %T, want *FileQueue", q)
		}
	})

	t.Run("file requires queue_path", func(t *testing.T) {
		if _, err := queue.NewQueueFromConfig(config.StorageConfig{Type: "file"}, "kiosk-1", clock, logger); err == nil {
			t.Error("error = nil, want missing queue_path error")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		q, err := queue.NewQueueFromConfig(config.StorageConfig{
			Type:    "sqlite",
			DataDir: t.TempDir(),
		}, "kiosk-1", clock, logger)
		if err != nil {
			t.Fatalf("NewQueueFromConfig() error = %v", err)
		}
		defer q.Close()
		if _, ok := q.(*queue.SQLiteQueue); !ok {
			t.Errorf("queue type = %T, want *SQLiteQueue", q)
		}
	})

	t.Run("memory", func(t *testing.T) {
		q, err := queue.NewQueueFromConfig(config.StorageConfig{Type: "memory"}, "kiosk-1", clock, logger)
		if err != nil {
			t.Fatalf("NewQueueFromConfig() error = %v", err)
		}
		if _, ok := q.(*queue.MemoryQueue); !ok {
			t.Errorf("queue type = %T, want *MemoryQueue", q)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := queue.NewQueueFromConfig(config.StorageConfig{Type: "redis"}, "kiosk-1", clock, logger); err == nil {
			t.Error("error = nil, want unknown type error")
		}
	})
}
