package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache fronts read-mostly reference data (departments, roles, labels).
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	// Invalidate removes an exact key, or every key under a prefix when the
	// pattern ends with '*'.
	Invalidate(pattern string)
	Close()
}

type entry struct {
	value  interface{}
	expiry time.Time
}

// Memory is an in-process TTL cache with a background purge sweep.
type Memory struct {
	mu    sync.RWMutex
	store map[string]entry
	stop  chan struct{}
	once  sync.Once
}

func NewMemory(sweepInterval time.Duration) *Memory {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	m := &Memory{
		store: make(map[string]entry),
		stop:  make(chan struct{}),
	}
	go m.sweep(sweepInterval)
	return m
}

func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	e, ok := m.store[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiry) {
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	m.store[key] = entry{value: value, expiry: time.Now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Invalidate(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		for key := range m.store {
			if strings.HasPrefix(key, prefix) {
				delete(m.store, key)
			}
		}
		return
	}
	delete(m.store, pattern)
}

func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, e := range m.store {
				if now.After(e.expiry) {
					delete(m.store, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Disabled is a no-op cache for tests and opt-out deployments.
type Disabled struct{}

func (Disabled) Get(string) (interface{}, bool)             { return nil, false }
func (Disabled) Set(string, interface{}, time.Duration)     {}
func (Disabled) Invalidate(string)                          {}
func (Disabled) Close()                                     {}
