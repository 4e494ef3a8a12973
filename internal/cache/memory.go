package cache

import (
	"context"
	"time"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	items *TTL[[]byte]
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: NewTTL[[]byte](time.Hour)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.items.Get(key)
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.items.PutFor(key, value, ttl)
	return nil
}

// StartCleaner sweeps expired bodies until stop is closed.
func (s *MemoryStore) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	s.items.StartCleaner(interval, stop)
}
