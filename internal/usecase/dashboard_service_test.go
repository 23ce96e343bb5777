package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsight/internal/domain"
	"adsight/pkg/logger"
)

func TestGetDashboardStats(t *testing.T) {
	client := &fakeInsightsClient{rows: []domain.InsightRow{
		{DateStart: "2024-03-11", Impressions: "1000", Clicks: "100", Spend: "40", Conversions: "4",
			Actions:      []domain.ActionEntry{{ActionType: "purchase", Value: "3"}},
			ActionValues: []domain.ActionEntry{{ActionType: "purchase", Value: "90"}}},
	}}
	perf := newTestService(client, activeAccount(), "2024-03-25")
	svc := NewDashboardService(perf, logger.New("fatal"), sharedMetrics())

	stats, err := svc.GetDashboardStats(context.Background(), "2024-03-10", "2024-03-14", "")

	require.NoError(t, err)
	require.NotNil(t, stats)

	// dense chart series covers the whole current range
	require.Len(t, stats.DailyData, 5)

	// both periods ran the same pipeline: the fake returns the same row
	// for either range, so only the 2024-03-11 day lands in current
	assert.EqualValues(t, 1000, stats.Current.Impressions)
	assert.EqualValues(t, 3, stats.Current.Purchases)
	assert.Equal(t, 1, stats.Current.DataPointsCount)

	assert.Equal(t, domain.TimeRange{Since: "2024-03-10", Until: "2024-03-14"}, stats.Comparison.CurrentRange)
	assert.Equal(t, domain.TimeRange{Since: "2024-03-05", Until: "2024-03-09"}, stats.Comparison.PreviousRange)

	// two independent upstream fetches, one per period
	require.Len(t, client.calls, 2)
	ranges := map[domain.TimeRange]bool{}
	for _, rng := range client.calls {
		ranges[rng] = true
	}
	assert.True(t, ranges[domain.TimeRange{Since: "2024-03-10", Until: "2024-03-14"}])
	assert.True(t, ranges[domain.TimeRange{Since: "2024-03-05", Until: "2024-03-09"}])
}

func TestGetDashboardStats_InvalidRange(t *testing.T) {
	perf := newTestService(&fakeInsightsClient{}, activeAccount(), "2024-03-25")
	svc := NewDashboardService(perf, logger.New("fatal"), sharedMetrics())

	_, err := svc.GetDashboardStats(context.Background(), "2024-03-14", "2024-03-10", "")

	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
