// Package cache holds optional caches for read-mostly dashboard data.
//
// Entries are keyed by a generation counter that writers bump through
// Invalidate. A reader takes the slot before computing and stores into that
// slot afterwards, so a value computed before a write can only land in a
// generation no later reader will look at.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

// StatsCache caches computed dashboard statistics
type StatsCache interface {
	// Get returns the cached value for filter if any, and the slot a freshly
	// computed value should be stored in.
	Get(ctx context.Context, filter models.StatsFilter) (stats *models.DashboardStats, slot string, ok bool)
	// Put stores stats in a slot returned by Get
	Put(ctx context.Context, slot string, stats *models.DashboardStats)
	// Invalidate makes every previously stored value unreachable
	Invalidate(ctx context.Context) error
}

func slotKey(generation int64, filter models.StatsFilter) string {
	return fmt.Sprintf("stats:%d:%s", generation, filter.Key())
}

// Noop never caches
type Noop struct{}

func (Noop) Get(context.Context, models.StatsFilter) (*models.DashboardStats, string, bool) {
	return nil, "", false
}

func (Noop) Put(context.Context, string, *models.DashboardStats) {}

func (Noop) Invalidate(context.Context) error { return nil }

// maxMemoryEntries caps Memory so callers cycling through filters cannot
// grow it without bound
const maxMemoryEntries = 1024

type memoryEntry struct {
	stats   models.DashboardStats
	expires time.Time
}

// Memory is an in-process StatsCache for single-instance deployments
type Memory struct {
	mu         sync.Mutex
	ttl        time.Duration
	generation int64
	entries    map[string]memoryEntry
	lastSweep  time.Time
	now        func() time.Time
}

// NewMemory creates an in-process cache
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, filter models.StatsFilter) (*models.DashboardStats, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := slotKey(m.generation, filter)
	entry, ok := m.entries[slot]
	if !ok {
		return nil, slot, false
	}
	if m.now().After(entry.expires) {
		delete(m.entries, slot)
		return nil, slot, false
	}
	stats := entry.stats
	return &stats, slot, true
}

func (m *Memory) Put(_ context.Context, slot string, stats *models.DashboardStats) {
	if slot == "" || stats == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if _, exists := m.entries[slot]; !exists {
		if len(m.entries) >= maxMemoryEntries || now.Sub(m.lastSweep) >= m.ttl {
			m.sweep(now)
		}
		if len(m.entries) >= maxMemoryEntries {
			m.evictOldest()
		}
	}
	m.entries[slot] = memoryEntry{stats: *stats, expires: now.Add(m.ttl)}
}

// sweep drops expired entries. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	for key, entry := range m.entries {
		if now.After(entry.expires) {
			delete(m.entries, key)
		}
	}
	m.lastSweep = now
}

// evictOldest drops the entry closest to expiry. Callers hold mu.
func (m *Memory) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range m.entries {
		if oldestKey == "" || entry.expires.Before(oldest) {
			oldestKey, oldest = key, entry.expires
		}
	}
	delete(m.entries, oldestKey)
}

func (m *Memory) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	clear(m.entries)
	return nil
}
