// Package cache holds normalized message content for the process lifetime so
// a link requested twice is fetched at most once.
package cache

import (
	"fmt"
	"sync"

	"github.com/tgrelay/relaybot/internal/core/domain"
)

// Store is the content cache consulted before every fetch. Implementations
// may bound or evict entries; the dispatch logic does not care.
type Store interface {
	Get(key string) (domain.ContentRecord, bool)
	Put(key string, rec domain.ContentRecord)
}

// Key builds the cache key for a reference: "{chat}_{message}". The chat half
// is the numeric id for private links and the username for public ones.
func Key(ref domain.Reference) string {
	return fmt.Sprintf("%s_%d", ref.ChatKey(), ref.MessageID)
}

// Memory is an unbounded in-process Store. Entries live until the process
// exits; there is no eviction, TTL, or persistence.
type Memory struct {
	mu      sync.RWMutex
	records map[string]domain.ContentRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]domain.ContentRecord)}
}

func (m *Memory) Get(key string) (domain.ContentRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]

	return rec, ok
}

func (m *Memory) Put(key string, rec domain.ContentRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[key] = rec
}
