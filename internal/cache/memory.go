package cache

import (
	"context"
	"encoding/json"
	"time"
)

const defaultMemoryCapacity = 4096

// MemoryStore is an in-process Store used when no Redis endpoint is
// configured, and by tests. Values round-trip through JSON exactly like the
// Redis-backed store so both exercise the same (de)serialization behavior.
type MemoryStore struct {
	entries *lru
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: newLRU(defaultMemoryCapacity, ttl)}
}

func (s *MemoryStore) GetJSON(_ context.Context, key string, dest any) bool {
	raw, ok := s.entries.get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *MemoryStore) SetJSON(_ context.Context, key string, val any) bool {
	raw, err := json.Marshal(val)
	if err != nil {
		return false
	}
	s.entries.put(key, raw)
	return true
}

func (s *MemoryStore) Delete(_ context.Context, key string) bool {
	s.entries.remove(key)
	return true
}

func (s *MemoryStore) FlushAll(_ context.Context) bool {
	s.entries.purge()
	return true
}

func (s *MemoryStore) Connected(context.Context) bool {
	return true
}

// Len reports the number of live entries; used by tests.
func (s *MemoryStore) Len() int {
	return s.entries.len()
}

var _ Store = (*MemoryStore)(nil)
