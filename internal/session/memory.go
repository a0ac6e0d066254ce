package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Entries are stored encoded
// so callers never share mutable state with the store. Expired entries are
// swept on Save at most once per ttl.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]memoryEntry
	lastSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Data, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNoSession
	}
	var d Data
	if err := json.Unmarshal(e.data, &d); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &d, nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, data *Data) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.ttl > 0 && now.Sub(s.lastSweep) >= s.ttl {
		s.sweep(now)
	}
	s.entries[id] = memoryEntry{data: b, expires: now.Add(s.ttl)}
	return nil
}

// sweep drops expired entries. s.mu must be held.
func (s *MemoryStore) sweep(now time.Time) {
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
	s.lastSweep = now
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
