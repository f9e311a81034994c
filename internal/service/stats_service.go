package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/cache"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

const (
	DefaultRecentLimit = 5
	maxRecentLimit     = 100
)

// Dashboard bundles the statistics with the newest reports
type Dashboard struct {
	Stats         *models.DashboardStats `json:"stats"`
	RecentReports []models.FraudReport   `json:"recentReports"`
}

// StatsService computes dashboard aggregates over canonical reports
type StatsService struct {
	fraudRepo  FraudReportStore
	statsCache cache.StatsCache
}

// NewStatsService creates a new statistics service
func NewStatsService(fraudRepo FraudReportStore, statsCache cache.StatsCache) *StatsService {
	if statsCache == nil {
		statsCache = cache.Noop{}
	}
	return &StatsService{fraudRepo: fraudRepo, statsCache: statsCache}
}

// ParseStatsFilter builds a filter from query values. Empty values and "all"
// mean no filter.
func ParseStatsFilter(startDate, endDate, state, scamType string) (models.StatsFilter, error) {
	var filter models.StatsFilter

	parseDate := func(field, v string) (*models.Date, error) {
		if isUnset(v) {
			return nil, nil
		}
		d, err := models.ParseDate(v)
		if err != nil {
			return nil, apperrors.Validation(field, "must be a date in YYYY-MM-DD format")
		}
		return &d, nil
	}
	parseID := func(field, v string) (*int, error) {
		if isUnset(v) {
			return nil, nil
		}
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || id <= 0 {
			return nil, apperrors.Validation(field, "must be a positive id or 'all'")
		}
		return &id, nil
	}

	var err error
	if filter.StartDate, err = parseDate("start_date", startDate); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDate("end_date", endDate); err != nil {
		return filter, err
	}
	if filter.StateID, err = parseID("state_filter", state); err != nil {
		return filter, err
	}
	if filter.ScamTypeID, err = parseID("scam_type_filter", scamType); err != nil {
		return filter, err
	}
	return filter, validateFilter(filter)
}

func isUnset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

func validateFilter(f models.StatsFilter) error {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(f.EndDate.Time) {
		return apperrors.Validation("start_date", "must not be after end_date")
	}
	return nil
}

// Compute aggregates the canonical reports matching filter. It is read-only;
// identical filters with no intervening writes give identical results.
func (s *StatsService) Compute(ctx context.Context, filter models.StatsFilter) (*models.DashboardStats, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	cached, slot, ok := s.statsCache.Get(ctx, filter)
	if ok {
		return cached, nil
	}

	rows, err := s.fraudRepo.StatsRows(ctx, filter)
	if err != nil {
		return nil, apperrors.Persistence("load statistics", err)
	}

	result := Aggregate(rows)
	s.statsCache.Put(ctx, slot, &result)
	return &result, nil
}

// Aggregate folds report rows into dashboard statistics. An empty input gives
// all zeros.
func Aggregate(rows []models.StatsRow) models.DashboardStats {
	var (
		out        models.DashboardStats
		losses     stats.Float64Data
		scamStates = make(map[int]struct{})
	)

	for _, row := range rows {
		out.TotalReports++
		switch row.CaseStatus {
		case models.CaseScam:
			out.DetectedScams++
			if row.StateID != nil {
				scamStates[*row.StateID] = struct{}{}
			}
		case models.CaseLegitimate:
			out.LegitimateCases++
		case models.CaseUnderReview:
			out.UnderReview++
		}
		if row.AmountLost != nil {
			out.FinancialLoss += *row.AmountLost
			losses = append(losses, *row.AmountLost)
		}
	}

	if out.TotalReports > 0 {
		out.DetectionRate = round2(float64(out.DetectedScams) / float64(out.TotalReports) * 100)
	}
	out.FinancialLoss = round2(out.FinancialLoss)
	out.ActiveCases = out.DetectedScams
	out.HighRiskAreas = len(scamStates)

	if len(losses) > 0 {
		if mean, err := losses.Mean(); err == nil {
			out.AverageLoss = round2(mean)
		}
		if median, err := losses.Median(); err == nil {
			out.MedianLoss = round2(median)
		}
	}

	return out
}

// RecentReports returns the newest canonical reports
func (s *StatsService) RecentReports(ctx context.Context, limit int) ([]models.FraudReport, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	reports, err := s.fraudRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.Persistence("list recent reports", err)
	}
	return reports, nil
}

// Dashboard loads the statistics and the recent reports concurrently
func (s *StatsService) Dashboard(ctx context.Context, filter models.StatsFilter, limit int) (*Dashboard, error) {
	var result Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		st, err := s.Compute(gctx, filter)
		result.Stats = st
		return err
	})
	g.Go(func() error {
		reports, err := s.RecentReports(gctx, limit)
		result.RecentReports = reports
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}
