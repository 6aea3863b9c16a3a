package photo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tclock-go/internal/tclock"
)

// FileSystemStore keeps punch photo backups as files in a single
// directory, named "{employeeId}__{YYYYMMDD_HHMMSS}.jpg". With an
// encryptor configured, files are age-encrypted at rest: employee
// photos sit on unattended kiosk hardware.
type FileSystemStore struct {
	dir       string
	encryptor tclock.Encryptor // nil means plaintext
}

var _ tclock.PhotoStore = (*FileSystemStore)(nil)

// NewFileSystemStore creates a photo store rooted at dir, creating the
// directory if needed. encryptor may be nil for plaintext storage.
func NewFileSystemStore(dir string, encryptor tclock.Encryptor) (*FileSystemStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &FileSystemStore{dir: dir, encryptor: encryptor}, nil
}

// Save writes the photo bytes using atomic write (temp file + rename).
func (s *FileSystemStore) Save(fileName string, data []byte) error {
	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if s.encryptor != nil {
		err = s.encryptor.Encrypt(bytes.NewReader(data), tmpFile)
	} else {
		_, err = io.Copy(tmpFile, bytes.NewReader(data))
	}
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write photo: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, fileName)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Load reads a stored photo back, decrypting if an encryptor is
// configured. Returns tclock.ErrNotFound when no backup exists.
func (s *FileSystemStore) Load(fileName string) ([]byte, error) {
	f, err := os.Open(filepath.Join(s.dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tclock.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open photo: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if s.encryptor != nil {
		err = s.encryptor.Decrypt(f, &buf)
	} else {
		_, err = io.Copy(&buf, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %s: %w", fileName, err)
	}
	return buf.Bytes(), nil
}
