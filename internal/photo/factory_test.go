package photo

import (
	"testing"

	"tclock-go/internal/config"
	"tclock-go/internal/encryption"
)

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("filesystem", func(t *testing.T) {
		store, err := NewStoreFromConfig(config.PhotoConfig{
			Type: "filesystem",
			Dir:  t.TempDir(),
		}, nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*FileSystemStore); !ok {
			t.Errorf("store type = %T, want *FileSystemStore", store)
		}
	})

	t.Run("empty type defaults to filesystem", func(t *testing.T) {
		store, err := NewStoreFromConfig(config.PhotoConfig{Dir: t.TempDir()}, nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*FileSystemStore); !ok {
			t.Errorf("store type = %T, want *FileSystemStore", store)
		}
	})

	t.Run("filesystem requires dir", func(t *testing.T) {
		if _, err := NewStoreFromConfig(config.PhotoConfig{Type: "filesystem"}, nil); err == nil {
			t.Error("error = nil, want missing dir error")
		}
	})

	t.Run("encryption requires an encryptor", func(t *testing.T) {
		_, err := NewStoreFromConfig(config.PhotoConfig{
			Type:    "filesystem",
			Dir:     t.TempDir(),
			Encrypt: true,
		}, nil)
		if err == nil {
			t.Error("error = nil, want missing encryptor error")
		}
	})

	t.Run("encrypted filesystem round trips", func(t *testing.T) {
		store, err := NewStoreFromConfig(config.PhotoConfig{
			Type:    "filesystem",
			Dir:     t.TempDir(),
			Encrypt: true,
		}, encryption.NewTestEncryptor())
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if err := store.Save("a.jpg", []byte("jpeg")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := store.Load("a.jpg")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if string(got) != "jpeg" {
			t.Errorf("Load() = %q", got)
		}
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		if _, err := NewStoreFromConfig(config.PhotoConfig{Type: "s3"}, nil); err == nil {
			t.Error("error = nil, want missing bucket error")
		}
	})

	t.Run("memory", func(t *testing.T) {
		store, err := NewStoreFromConfig(config.PhotoConfig{Type: "memory"}, nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("store type = %T, want *MemoryStore", store)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewStoreFromConfig(config.PhotoConfig{Type: "gcs"}, nil); err == nil {
			t.Error("error = nil, want unknown type error")
		}
	})
}
