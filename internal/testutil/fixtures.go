package testutil

import (
	"tclock-go/internal/photo"
	"tclock-go/internal/queue"
	"tclock-go/internal/tclock"
)

// NewTestQueue creates an in-memory punch queue driven by the given clock.
func NewTestQueue(clock tclock.Clock) *queue.MemoryQueue {
	return queue.NewMemoryQueue(clock)
}

// NewTestPhotoStore creates an in-memory photo store.
func NewTestPhotoStore() *photo.MemoryStore {
	return photo.NewMemoryStore()
}
