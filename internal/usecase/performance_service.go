package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"adsight/internal/dates"
	"adsight/internal/domain"
	"adsight/pkg/logger"
	"adsight/pkg/metrics"
)

// defaultInsightFields is the field list requested from the upstream
// insights endpoint for account-level daily rows.
var defaultInsightFields = []string{
	"date_start",
	"date_stop",
	"impressions",
	"clicks",
	"spend",
	"conversions",
	"actions",
	"action_values",
	"purchase_roas",
}

// PerformanceService runs the reconciliation pipeline: canonical dates in,
// reconciled daily records out. It wraps the raw insights transport,
// normalizes every upstream date, delegates event dedup to the classifier
// and applies the caller's fallback policy.
type PerformanceService struct {
	insights  domain.InsightsClient
	accounts  domain.AccountRepository
	generator *FallbackGenerator
	logger    *logger.Logger
	metrics   *metrics.Metrics

	// today is swappable for tests
	today func() string
}

func NewPerformanceService(
	insights domain.InsightsClient,
	accounts domain.AccountRepository,
	generator *FallbackGenerator,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *PerformanceService {
	return &PerformanceService{
		insights:  insights,
		accounts:  accounts,
		generator: generator,
		logger:    logger,
		metrics:   metrics,
		today:     dates.Today,
	}
}

// GetAccountPerformance is the single entry point of the pipeline. Dates
// are validated before any network activity. When the range reaches into
// today, the request splits into a real fetch for [since, yesterday] and a
// simulated tail for [today, until]; days strictly before today are only
// ever simulated when the upstream call failed and allowSimulated permits
// it. The result is a dense ascending series covering every day of the
// range.
func (s *PerformanceService) GetAccountPerformance(ctx context.Context, startDate, endDate string, allowSimulated bool, increment int, accountID string) ([]domain.DailyMetricRecord, error) {
	start := time.Now()
	log := s.logger.WithContext(ctx)

	rng, err := dates.NewTimeRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	account, err := s.resolveAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	records, source, err := s.collectRecords(ctx, *account, rng, allowSimulated, increment)
	if err != nil {
		s.metrics.RecordPipelineRun("failed", source, time.Since(start))
		return nil, err
	}

	dense := FillDaily(records, rng)

	s.metrics.RecordPipelineRun("success", source, time.Since(start))
	log.WithFields(map[string]any{
		"account_id": account.ID,
		"since":      rng.Since,
		"until":      rng.Until,
		"days":       len(dense),
		"source":     source,
	}).Info("Account performance pipeline completed")

	return dense, nil
}

// collectRecords decides which days are servable upstream and which need
// the generator, and returns the undensified record set.
func (s *PerformanceService) collectRecords(ctx context.Context, account domain.AdAccount, rng domain.TimeRange, allowSimulated bool, increment int) ([]domain.DailyMetricRecord, string, error) {
	today := s.today()

	// Whole range is today or later: the platform has nothing final yet.
	if rng.Since >= today {
		records := s.generator.Generate(rng)
		s.metrics.RecordSimulatedDays(len(records))
		return records, "simulated", nil
	}

	// Range reaches into today: two explicit sub-requests, real then
	// simulated, composed here rather than by self-recursion.
	if rng.Until >= today {
		yesterday, err := dates.AddDays(today, -1)
		if err != nil {
			return nil, "mixed", err
		}
		realRange := domain.TimeRange{Since: rng.Since, Until: yesterday}
		simRange := domain.TimeRange{Since: today, Until: rng.Until}

		real, err := s.fetchRealRecords(ctx, account, realRange, increment)
		if err != nil {
			if allowSimulated && errors.Is(err, domain.ErrUpstreamUnavailable) {
				s.logger.WithContext(ctx).WithError(err).Warn("Upstream unavailable, simulating full range")
				records := s.generator.Generate(rng)
				s.metrics.RecordSimulatedDays(len(records))
				return records, "simulated", nil
			}
			return nil, "mixed", err
		}

		sim := s.generator.Generate(simRange)
		s.metrics.RecordSimulatedDays(len(sim))
		return append(real, sim...), "mixed", nil
	}

	records, err := s.fetchRealRecords(ctx, account, rng, increment)
	if err != nil {
		if allowSimulated && errors.Is(err, domain.ErrUpstreamUnavailable) {
			s.logger.WithContext(ctx).WithError(err).Warn("Upstream unavailable, simulating full range")
			sim := s.generator.Generate(rng)
			s.metrics.RecordSimulatedDays(len(sim))
			return sim, "simulated", nil
		}
		return nil, "real", err
	}
	return records, "real", nil
}

// fetchRealRecords pulls raw rows from the upstream transport and
// reconciles each into a DailyMetricRecord. Rows with unparseable dates
// are skipped with a warning; everything else degrades field by field.
func (s *PerformanceService) fetchRealRecords(ctx context.Context, account domain.AdAccount, rng domain.TimeRange, increment int) ([]domain.DailyMetricRecord, error) {
	if increment <= 0 {
		increment = 1
	}

	rows, err := s.insights.FetchInsights(ctx, account, "account", rng, defaultInsightFields, increment)
	if err != nil {
		return nil, err
	}

	records := make([]domain.DailyMetricRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := s.reconcileRow(ctx, row)
		if err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("date_start", row.DateStart).Warn("Skipping unreconcilable insight row")
			s.metrics.RecordRowFailure("date_parse")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// reconcileRow normalizes one upstream row into a reconciled record. Input
// is never mutated; a fresh record is returned.
func (s *PerformanceService) reconcileRow(ctx context.Context, row domain.InsightRow) (domain.DailyMetricRecord, error) {
	dateStart, err := dates.Normalize(row.DateStart)
	if err != nil {
		return domain.DailyMetricRecord{}, err
	}
	dateStop := dateStart
	if row.DateStop != "" {
		if normalized, err := dates.Normalize(row.DateStop); err == nil {
			dateStop = normalized
		}
	}

	log := s.logger.WithContext(ctx)
	spend := s.parseMoney(log, "spend", row.Spend)
	events := s.buildEvents(ctx, row)
	roasRatio := s.parseROASRatio(ctx, row.PurchaseROAS)

	cls := Classify(events, spend, roasRatio)
	rawConversions := s.parseCount(log, "conversions", row.Conversions)

	return domain.DailyMetricRecord{
		DateStart:   dateStart,
		DateStop:    dateStop,
		Impressions: s.parseCount(log, "impressions", row.Impressions),
		Clicks:      s.parseCount(log, "clicks", row.Clicks),
		Spend:       spend,
		Conversions: ReconcileConversions(rawConversions, cls.FunnelConversions, cls.Purchases),
		Purchases:   cls.Purchases,
		Revenue:     cls.Revenue,
		IsSimulated: false,
	}, nil
}

// buildEvents merges the actions list (occurrence counts) and the
// action_values list (monetary attribution) into raw events keyed by
// action type. Malformed entries are logged and dropped, never fatal.
func (s *PerformanceService) buildEvents(ctx context.Context, row domain.InsightRow) []domain.RawActionEvent {
	log := s.logger.WithContext(ctx)
	events := make([]domain.RawActionEvent, 0, len(row.Actions)+len(row.ActionValues))

	for _, action := range row.Actions {
		if action.ActionType == "" {
			continue
		}
		count, err := strconv.ParseFloat(action.Value, 64)
		if err != nil || count < 0 {
			log.WithField("action_type", action.ActionType).Warn("Malformed action count, treating as no events")
			s.metrics.RecordRowFailure("action_parse")
			continue
		}
		events = append(events, domain.RawActionEvent{
			ActionType: action.ActionType,
			Count:      int64(count),
			Value:      decimal.Zero,
		})
	}

	for _, av := range row.ActionValues {
		if av.ActionType == "" {
			continue
		}
		value, err := decimal.NewFromString(av.Value)
		if err != nil || value.IsNegative() {
			log.WithField("action_type", av.ActionType).Warn("Malformed action value, treating as no value")
			s.metrics.RecordRowFailure("action_value_parse")
			continue
		}
		events = append(events, domain.RawActionEvent{
			ActionType: av.ActionType,
			Value:      value,
		})
	}

	return events
}

func (s *PerformanceService) parseROASRatio(ctx context.Context, entries []domain.ActionEntry) decimal.Decimal {
	for _, entry := range entries {
		ratio, err := decimal.NewFromString(entry.Value)
		if err != nil || ratio.IsNegative() {
			s.logger.WithContext(ctx).WithField("action_type", entry.ActionType).Warn("Malformed purchase_roas entry")
			s.metrics.RecordRowFailure("roas_parse")
			continue
		}
		if !ratio.IsZero() {
			return ratio
		}
	}
	return decimal.Zero
}

func (s *PerformanceService) parseCount(log logger.Entry, field, value string) int64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		log.WithField("field", field).WithField("value", value).Warn("Malformed numeric field, using zero")
		s.metrics.RecordRowFailure("number_parse")
		return 0
	}
	return n
}

func (s *PerformanceService) parseMoney(log logger.Entry, field, value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		log.WithField("field", field).WithField("value", value).Warn("Malformed money field, using zero")
		s.metrics.RecordRowFailure("money_parse")
		return decimal.Zero
	}
	return d
}

// resolveAccount maps an optional explicit account id to a configured
// account with a usable credential.
func (s *PerformanceService) resolveAccount(ctx context.Context, accountID string) (*domain.AdAccount, error) {
	var (
		account *domain.AdAccount
		err     error
	)
	if accountID != "" {
		account, err = s.accounts.GetByID(ctx, accountID)
	} else {
		account, err = s.accounts.GetActive(ctx)
	}
	if err != nil {
		return nil, err
	}
	if account.AccessToken == "" {
		return nil, fmt.Errorf("account %s: %w", account.ID, domain.ErrAuthMissing)
	}
	return account, nil
}
