package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	expireAt time.Time
}

// MemoryStore is an in-process Store. Expired entries are dropped lazily on read
// and by Sweep.
type MemoryStore struct {
	data   map[string]entry
	mutext sync.RWMutex
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mutext.RLock()
	e, exists := m.data[key]
	m.mutext.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if !m.now().Before(e.expireAt) {
		m.mutext.Lock()
		if current, ok := m.data[key]; ok && !m.now().Before(current.expireAt) {
			delete(m.data, key)
		}
		m.mutext.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mutext.Lock()
	defer m.mutext.Unlock()
	m.data[key] = entry{value: value, expireAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mutext.Lock()
	defer m.mutext.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mutext.Lock()
	defer m.mutext.Unlock()
	m.data = make(map[string]entry)
	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mutext.Lock()
	defer m.mutext.Unlock()

	removed := 0
	now := m.now()
	for key, e := range m.data {
		if !now.Before(e.expireAt) {
			delete(m.data, key)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Close() error {
	return nil
}
