package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/AhmedTrying/malaysiasafd/internal/cache"
	"github.com/AhmedTrying/malaysiasafd/internal/caseid"
	"github.com/AhmedTrying/malaysiasafd/internal/config"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
)

func getContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// newAllocators picks the pending and canonical case id allocators for the
// configured strategy
func newAllocators(
	cfg *config.Config,
	db *sql.DB,
	pendingRepo *repository.PendingReportRepository,
	fraudRepo *repository.FraudReportRepository,
) (pending, canonical caseid.Allocator) {
	if cfg.CaseID.Strategy == "latest" {
		return caseid.NewLatestAllocator(caseid.Pending, pendingRepo.LatestCaseID),
			caseid.NewLatestAllocator(caseid.Canonical, fraudRepo.LatestCaseID)
	}
	return caseid.NewSequenceAllocator(db, caseid.Pending),
		caseid.NewSequenceAllocator(db, caseid.Canonical)
}

// newStatsCache builds the configured statistics cache and its cleanup
func newStatsCache(cfg *config.Config) (cache.StatsCache, func()) {
	switch cfg.Cache.Backend {
	case "memory":
		slog.Info("Using in-process stats cache", "ttl", cfg.Cache.TTL)
		return cache.NewMemory(cfg.Cache.TTL), func() {}
	case "redis":
		c := cache.NewRedis(&cfg.Cache)
		return c, func() {
			if err := c.Close(); err != nil {
				slog.Error("Failed to close stats cache", "error", err)
			}
		}
	default:
		return cache.Noop{}, func() {}
	}
}
