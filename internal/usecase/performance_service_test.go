package usecase

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsight/internal/domain"
	"adsight/pkg/logger"
	"adsight/pkg/metrics"
)

// promauto registers into the default registry, so the test binary builds
// the Metrics set once.
var (
	testMetrics     *metrics.Metrics
	testMetricsOnce sync.Once
)

func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.New()
	})
	return testMetrics
}

type fakeInsightsClient struct {
	mu     sync.Mutex
	rows   []domain.InsightRow
	err    error
	calls  []domain.TimeRange
	fields []string
}

func (f *fakeInsightsClient) FetchInsights(ctx context.Context, account domain.AdAccount, entityType string, rng domain.TimeRange, fields []string, increment int) ([]domain.InsightRow, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rng)
	f.fields = fields
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeAccountRepo struct {
	account *domain.AdAccount
	err     error
}

func (f *fakeAccountRepo) Upsert(ctx context.Context, account domain.AdAccount) error { return nil }

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*domain.AdAccount, error) {
	return f.account, f.err
}

func (f *fakeAccountRepo) GetActive(ctx context.Context) (*domain.AdAccount, error) {
	return f.account, f.err
}

func (f *fakeAccountRepo) List(ctx context.Context) ([]domain.AdAccount, error) {
	if f.account == nil {
		return nil, f.err
	}
	return []domain.AdAccount{*f.account}, nil
}

func newTestService(client *fakeInsightsClient, repo *fakeAccountRepo, today string) *PerformanceService {
	svc := NewPerformanceService(
		client,
		repo,
		NewFallbackGenerator(8000, 15000, rand.New(rand.NewSource(7))),
		logger.New("fatal"),
		sharedMetrics(),
	)
	if today != "" {
		svc.today = func() string { return today }
	}
	return svc
}

func activeAccount() *fakeAccountRepo {
	return &fakeAccountRepo{account: &domain.AdAccount{ID: "act_1", Name: "Main", AccessToken: "token", Active: true}}
}

func TestGetAccountPerformance_InvalidDateRejectedBeforeFetch(t *testing.T) {
	client := &fakeInsightsClient{}
	svc := newTestService(client, activeAccount(), "2024-03-20")

	_, err := svc.GetAccountPerformance(context.Background(), "2024-02-30", "2024-03-05", true, 1, "")

	assert.ErrorIs(t, err, domain.ErrInvalidDate)
	assert.Empty(t, client.calls, "no upstream call may happen for invalid input")
}

func TestGetAccountPerformance_AuthMissingIsFatal(t *testing.T) {
	client := &fakeInsightsClient{}
	repo := &fakeAccountRepo{account: &domain.AdAccount{ID: "act_1", Active: true}} // no token
	svc := newTestService(client, repo, "2024-03-20")

	_, err := svc.GetAccountPerformance(context.Background(), "2024-03-01", "2024-03-05", true, 1, "")

	assert.ErrorIs(t, err, domain.ErrAuthMissing)
	assert.Empty(t, client.calls)
}

func TestGetAccountPerformance_NoActiveAccount(t *testing.T) {
	client := &fakeInsightsClient{}
	repo := &fakeAccountRepo{err: domain.ErrNoActiveAccount}
	svc := newTestService(client, repo, "2024-03-20")

	_, err := svc.GetAccountPerformance(context.Background(), "2024-03-01", "2024-03-05", true, 1, "")

	assert.ErrorIs(t, err, domain.ErrNoActiveAccount)
}

func TestGetAccountPerformance_ReconcilesUpstreamRows(t *testing.T) {
	client := &fakeInsightsClient{rows: []domain.InsightRow{
		{
			DateStart:   "2024-03-01T00:00:00Z",
			DateStop:    "2024-03-01",
			Impressions: "1000",
			Clicks:      "50",
			Spend:       "25.40",
			Conversions: "2",
			Actions: []domain.ActionEntry{
				{ActionType: "purchase", Value: "3"},
				{ActionType: "offsite_conversion.fb_pixel_purchase", Value: "5"},
				{ActionType: "lead", Value: "2"},
			},
			ActionValues: []domain.ActionEntry{
				{ActionType: "offsite_conversion.fb_pixel_purchase", Value: "120.50"},
			},
		},
	}}
	svc := newTestService(client, activeAccount(), "2024-03-20")

	records, err := svc.GetAccountPerformance(context.Background(), "2024-03-01", "2024-03-03", true, 1, "")

	require.NoError(t, err)
	require.Len(t, records, 3)

	rec := records[0]
	assert.Equal(t, "2024-03-01", rec.DateStart)
	assert.EqualValues(t, 1000, rec.Impressions)
	assert.EqualValues(t, 50, rec.Clicks)
	assert.True(t, rec.Spend.Equal(dec("25.40")))
	assert.EqualValues(t, 5, rec.Purchases, "pixel signal wins, counts not summed")
	assert.True(t, rec.Revenue.Equal(dec("120.50")))
	// raw 2 + lead 2 = 4, widened to the purchase count of 5
	assert.EqualValues(t, 5, rec.Conversions)
	assert.False(t, rec.IsSimulated)

	// 2024-03-02 and 2024-03-03 are zero-filled, not simulated
	for _, gap := range records[1:] {
		assert.False(t, gap.IsSimulated)
		assert.False(t, gap.HasActivity())
	}
}

func TestGetAccountPerformance_ROASRevenueFallback(t *testing.T) {
	client := &fakeInsightsClient{rows: []domain.InsightRow{
		{
			DateStart:    "2024-03-01",
			Spend:        "100",
			PurchaseROAS: []domain.ActionEntry{{ActionType: "omni_purchase", Value: "2.5"}},
		},
	}}
	svc := newTestService(client, activeAccount(), "2024-03-20")

	records, err := svc.GetAccountPerformance(context.Background(), "2024-03-01", "2024-03-01", true, 1, "")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Revenue.Equal(dec("250")), "got %s", records[0].Revenue)
}

func TestGetAccountPerformance_MalformedEventsAreNoEvents(t *testing.T) {
	client := &fakeInsightsClient{rows: []domain.InsightRow{
		{
			DateStart:   "2024-03-01",
			Impressions: "500",
			Actions: []domain.ActionEntry{
				{ActionType: "purchase", Value: "not-a-number"},
				{ActionType: "", Value: "3"},
			},
			ActionValues: []domain.ActionEntry{
				{ActionType: "purchase", Value: "NaNish"},
			},
		},
	}}
	svc := newTestService(client, activeAccount(), "2024-03-20")

	records, err := svc.GetAccountPerformance(context.Background(), "2024-03-01", "2024-03-01", true, 1, "")

	require.NoError(t, err, "malformed event shapes are degraded, never fatal")
	require.Len(t, records, 1)
	assert.EqualValues(t, 0, records[0].Purchases)
	assert.True(t, records[0].Revenue.IsZero())
	assert.EqualValues(t, 500, records[0].Impressions)
}

func TestGetAccountPerformance_SplitsAroundToday(t *testing.T) {
	client := &fakeInsightsClient{rows: []domain.InsightRow{
		{DateStart: "2024-03-12", Impressions: "100", Clicks: "10", Spend: "5"},
	}}
	svc := newTestService(client, activeAccount(), "2024-03-15")

	records, err := svc.GetAccountPerformance(context.Background(), "2024-03-10", "2024-03-15", true, 1, "")

	require.NoError(t, err)
	require.Len(t, records, 6)

	// real fetch is bounded at yesterday
	require.Len(t, client.calls, 1)
	assert.Equal(t, domain.TimeRange{Since: "2024-03-10", Until: "2024-03-14"}, client.calls[0])

	byDate := make(map[string]domain.DailyMetricRecord)
	for _, rec := range records {
		byDate[rec.DateStart] = rec
	}
	assert.True(t, byDate["2024-03-15"].IsSimulated, "today is simulated")
	assert.False(t, byDate["2024-03-12"].IsSimulated, "upstream day is real")
	assert.False(t, byDate["2024-03-11"].IsSimulated, "gap day before today is zero-filled, not simulated")
	assert.False(t, byDate["2024-03-11"].HasActivity())
}

func TestGetAccountPerformance_RangeEntirelyToday(t *testing.T) {
	client := &fakeInsightsClient{}
	svc := newTestService(client, activeAccount(), "2024-03-15")

	records, err := svc.GetAccountPerformance(context.Background(), "2024-03-15", "2024-03-15", false, 1, "")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsSimulated)
	assert.Empty(t, client.calls, "nothing upstream can serve today")
}

func TestGetAccountPerformance_UpstreamFailureWithFallback(t *testing.T) {
	client := &fakeInsightsClient{err: domain.ErrUpstreamUnavailable}
	svc := newTestService(client, activeAccount(), "2024-03-20")

	records, err := svc.GetAccountPerformance(context.Background(), "2024-03-01", "2024-03-05", true, 1, "")

	require.NoError(t, err)
	require.Len(t, records, 5)
	for _, rec := range records {
		assert.True(t, rec.IsSimulated)
	}
}

func TestGetAccountPerformance_UpstreamFailureWithoutFallback(t *testing.T) {
	client := &fakeInsightsClient{err: domain.ErrUpstreamUnavailable}
	svc := newTestService(client, activeAccount(), "2024-03-20")

	_, err := svc.GetAccountPerformance(context.Background(), "2024-03-01", "2024-03-05", false, 1, "")

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestGetAccountPerformance_AuthErrorNeverSimulated(t *testing.T) {
	client := &fakeInsightsClient{err: domain.ErrAuthMissing}
	svc := newTestService(client, activeAccount(), "2024-03-20")

	_, err := svc.GetAccountPerformance(context.Background(), "2024-03-01", "2024-03-05", true, 1, "")

	assert.ErrorIs(t, err, domain.ErrAuthMissing)
}
