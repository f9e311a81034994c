package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

func TestMemoryGetPut(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	filter := models.StatsFilter{}

	_, slot, ok := c.Get(ctx, filter)
	assert.False(t, ok)
	require.NotEmpty(t, slot)

	c.Put(ctx, slot, &models.DashboardStats{TotalReports: 3})

	got, _, ok := c.Get(ctx, filter)
	require.True(t, ok)
	assert.Equal(t, 3, got.TotalReports)

	stateID := 4
	_, _, ok = c.Get(ctx, models.StatsFilter{StateID: &stateID})
	assert.False(t, ok, "different filter must miss")
}

func TestMemoryInvalidateDropsInFlightSlot(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	filter := models.StatsFilter{}

	// A reader takes a slot, a writer invalidates, then the reader stores.
	_, staleSlot, _ := c.Get(ctx, filter)
	require.NoError(t, c.Invalidate(ctx))
	c.Put(ctx, staleSlot, &models.DashboardStats{TotalReports: 1})

	_, _, ok := c.Get(ctx, filter)
	assert.False(t, ok, "value computed before the write must not be served")
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, slot, _ := c.Get(ctx, models.StatsFilter{})
	c.Put(ctx, slot, &models.DashboardStats{TotalReports: 1})

	now = now.Add(2 * time.Minute)
	_, _, ok := c.Get(ctx, models.StatsFilter{})
	assert.False(t, ok)
}

func TestMemoryDropsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := range 500 {
		c.Put(ctx, fmt.Sprintf("slot-%d", i), &models.DashboardStats{TotalReports: i})
	}
	require.Len(t, c.entries, 500)

	now = now.Add(2 * time.Minute)
	c.Put(ctx, "fresh", &models.DashboardStats{TotalReports: 1})
	assert.Len(t, c.entries, 1, "expired entries must be swept on write")

	_, slot, _ := c.Get(ctx, models.StatsFilter{})
	c.Put(ctx, slot, &models.DashboardStats{TotalReports: 2})
	now = now.Add(2 * time.Minute)
	_, _, ok := c.Get(ctx, models.StatsFilter{})
	assert.False(t, ok)
	assert.NotContains(t, c.entries, slot, "expired entry must be removed on read")
}

func TestMemoryIsBounded(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := range maxMemoryEntries + 50 {
		now = now.Add(time.Millisecond)
		c.Put(ctx, fmt.Sprintf("slot-%d", i), &models.DashboardStats{TotalReports: i})
	}

	assert.Len(t, c.entries, maxMemoryEntries)
	assert.NotContains(t, c.entries, "slot-0", "oldest entry is evicted first")
	assert.Contains(t, c.entries, fmt.Sprintf("slot-%d", maxMemoryEntries+49))
}

func TestMemoryReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	_, slot, _ := c.Get(ctx, models.StatsFilter{})
	c.Put(ctx, slot, &models.DashboardStats{TotalReports: 1})

	got, _, _ := c.Get(ctx, models.StatsFilter{})
	got.TotalReports = 99

	again, _, _ := c.Get(ctx, models.StatsFilter{})
	assert.Equal(t, 1, again.TotalReports)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c StatsCache = Noop{}
	c.Put(ctx, "x", &models.DashboardStats{})
	_, _, ok := c.Get(ctx, models.StatsFilter{})
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx))
}
