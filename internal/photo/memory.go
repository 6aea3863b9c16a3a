package photo

import (
	"sync"

	"tclock-go/internal/tclock"
)

// MemoryStore is an in-memory PhotoStore for tests.
type MemoryStore struct {
	mu     sync.Mutex
	photos map[string][]byte
}

var _ tclock.PhotoStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{photos: make(map[string][]byte)}
}

func (s *MemoryStore) Save(fileName string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[fileName] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Load(fileName string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.photos[fileName]
	if !ok {
		return nil, tclock.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Count returns the number of stored photos. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}
