package photo

import (
	"fmt"

	"tclock-go/internal/config"
	"tclock-go/internal/tclock"
)

// NewStoreFromConfig creates a PhotoStore based on the photo config type.
// encryptor is only used by the filesystem store, and only when the
// config asks for at-rest encryption.
func NewStoreFromConfig(cfg config.PhotoConfig, encryptor tclock.Encryptor) (tclock.PhotoStore, error) {
	switch cfg.Type {
	case "filesystem", "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("dir required for filesystem photo store")
		}
		if !cfg.Encrypt {
			encryptor = nil
		} else if encryptor == nil {
			return nil, fmt.Errorf("photo encryption enabled but no encryptor configured")
		}
		return NewFileSystemStore(cfg.Dir, encryptor)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 photo store requires s3_bucket to be set")
		}
		return NewS3Store(cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown photo store type: %s", cfg.Type)
	}
}
