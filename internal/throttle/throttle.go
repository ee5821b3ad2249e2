// Package throttle enforces a minimum pause between repeated hardware commands.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Throttle reports whether an action keyed by key may run now. An allowed call
// starts a new pause window for that key.
type Throttle interface {
	Allow(ctx context.Context, key string, pause time.Duration) (bool, error)
}

// Memory is a process local Throttle.
type Memory struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		until: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string, pause time.Duration) (bool, error) {
	if pause <= 0 {
		return true, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.until[key]; ok && now.Before(until) {
		return false, nil
	}
	m.until[key] = now.Add(pause)

	// drop expired windows so the map stays bounded by active keys
	for k, until := range m.until {
		if !now.Before(until) {
			delete(m.until, k)
		}
	}
	return true, nil
}
