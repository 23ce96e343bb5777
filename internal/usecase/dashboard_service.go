package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"adsight/internal/dates"
	"adsight/internal/domain"
	"adsight/pkg/logger"
	"adsight/pkg/metrics"
)

// DashboardService assembles dashboard statistics: the current period,
// the immediately preceding period of equal length, and the comparison
// between them. The two period fetches have no data dependency and run
// concurrently.
type DashboardService struct {
	performance *PerformanceService
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

func NewDashboardService(performance *PerformanceService, logger *logger.Logger, metrics *metrics.Metrics) *DashboardService {
	return &DashboardService{
		performance: performance,
		logger:      logger,
		metrics:     metrics,
	}
}

// GetDashboardStats runs the full pipeline for the requested range and its
// previous period. Dashboard rendering prefers a populated chart over a
// hard failure, so simulated fallback is always permitted here.
func (s *DashboardService) GetDashboardStats(ctx context.Context, startDate, endDate, accountID string) (*domain.DashboardStats, error) {
	start := time.Now()
	log := s.logger.WithContext(ctx)

	currentRange, err := dates.NewTimeRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	previousRange, err := PreviousPeriod(currentRange)
	if err != nil {
		return nil, err
	}

	var currentRecords, previousRecords []domain.DailyMetricRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		currentRecords, err = s.performance.GetAccountPerformance(gctx, currentRange.Since, currentRange.Until, true, 1, accountID)
		if err != nil {
			return fmt.Errorf("current period: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		previousRecords, err = s.performance.GetAccountPerformance(gctx, previousRange.Since, previousRange.Until, true, 1, accountID)
		if err != nil {
			return fmt.Errorf("previous period: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dense, currentAgg := FillAndAggregate(currentRecords, currentRange)
	_, previousAgg := FillAndAggregate(previousRecords, previousRange)
	comparison := CompareAggregates(currentAgg, previousAgg, currentRange, previousRange)

	log.WithFields(map[string]any{
		"since":       currentRange.Since,
		"until":       currentRange.Until,
		"data_points": currentAgg.DataPointsCount,
		"duration":    time.Since(start),
	}).Info("Dashboard stats assembled")

	return &domain.DashboardStats{
		Current:    currentAgg,
		Previous:   previousAgg,
		DailyData:  dense,
		Comparison: comparison,
	}, nil
}
