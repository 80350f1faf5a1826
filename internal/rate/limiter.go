// Package rate implements fixed-window write limits keyed by action and
// client address.
package rate

import (
	"sync"
	"time"
)

// Rule is a budget of Limit hits per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// PerMinute is shorthand for a one-minute window.
func PerMinute(n int) Rule {
	return Rule{Limit: n, Window: time.Minute}
}

type Limiter interface {
	// Allow consumes one hit from key's window. When the budget is spent it
	// reports false with the time left until the window resets.
	Allow(key string, rule Rule) (bool, time.Duration)
}

type MemoryLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	now       func() time.Time
	lastSweep time.Time
}

type window struct {
	hits    int
	resetAt time.Time
	length  time.Duration
}

func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window), now: time.Now}
}

// WithClock swaps the time source.
func (m *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	m.now = now
	return m
}

func (m *MemoryLimiter) Allow(key string, rule Rule) (bool, time.Duration) {
	if rule.Limit <= 0 {
		return true, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) || w.length != rule.Window {
		w = &window{resetAt: now.Add(rule.Window), length: rule.Window}
		m.windows[key] = w
	}
	if w.hits >= rule.Limit {
		return false, w.resetAt.Sub(now)
	}
	w.hits++
	return true, w.resetAt.Sub(now)
}

// sweep drops expired windows at most once a minute.
func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < time.Minute {
		return
	}
	m.lastSweep = now
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
		}
	}
}

func (m *MemoryLimiter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
