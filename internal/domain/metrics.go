package domain

import "github.com/shopspring/decimal"

// TimeRange is a validated inclusive (since, until) pair of canonical
// YYYY-MM-DD dates. Construct through dates.NewTimeRange so the
// since <= until invariant holds.
type TimeRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

// DailyMetricRecord is one calendar day of performance for an ad account.
// DateStart == DateStop for day-granularity records. Records are transient
// request-scoped views, never persisted.
type DailyMetricRecord struct {
	DateStart   string          `json:"date_start"`
	DateStop    string          `json:"date_stop"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Spend       decimal.Decimal `json:"spend"`
	Conversions int64           `json:"conversions"`
	Purchases   int64           `json:"purchases"`
	Revenue     decimal.Decimal `json:"revenue"`
	IsSimulated bool            `json:"is_simulated"`
}

// HasActivity reports whether any metric on the record is non-zero.
// Zero-filled padding days return false.
func (r DailyMetricRecord) HasActivity() bool {
	return r.Impressions != 0 || r.Clicks != 0 || r.Conversions != 0 ||
		r.Purchases != 0 || !r.Spend.IsZero() || !r.Revenue.IsZero()
}

// RawActionEvent is one event-type entry within a day's upstream payload.
// Count carries the upstream occurrence count for that type; value-only
// entries (monetary attribution without a count) leave it zero.
type RawActionEvent struct {
	ActionType string
	Count      int64
	Value      decimal.Decimal
}

// PeriodAggregate holds sums over a TimeRange plus rates derived from the
// totals. DataPointsCount is the number of days with at least one non-zero
// metric, distinguishing "no data" from "zero activity".
type PeriodAggregate struct {
	Impressions     int64           `json:"impressions"`
	Clicks          int64           `json:"clicks"`
	Spend           decimal.Decimal `json:"spend"`
	Conversions     int64           `json:"conversions"`
	Purchases       int64           `json:"purchases"`
	Revenue         decimal.Decimal `json:"revenue"`
	DataPointsCount int             `json:"data_points_count"`

	// Derived rates, always computed from the period totals, never
	// averaged from per-day rates.
	CTR               float64 `json:"ctr"`
	CPC               float64 `json:"cpc"`
	CPM               float64 `json:"cpm"`
	ConversionRate    float64 `json:"conversion_rate"`
	CostPerConversion float64 `json:"cost_per_conversion"`
	ROAS              float64 `json:"roas"`
}

// MetricChanges holds period-over-period percentage deltas. A delta is 0
// whenever the previous value is 0, regardless of the current value.
type MetricChanges struct {
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Spend       float64 `json:"spend"`
	Conversions float64 `json:"conversions"`
	Purchases   float64 `json:"purchases"`
	Revenue     float64 `json:"revenue"`
	ROAS        float64 `json:"roas"`
}

// ComparisonResult pairs a current and previous PeriodAggregate with their
// ranges and the computed deltas.
type ComparisonResult struct {
	Current       PeriodAggregate `json:"current"`
	Previous      PeriodAggregate `json:"previous"`
	CurrentRange  TimeRange       `json:"current_range"`
	PreviousRange TimeRange       `json:"previous_range"`
	Changes       MetricChanges   `json:"changes"`
}

// DashboardStats is the full dashboard payload for one requested range.
type DashboardStats struct {
	Current    PeriodAggregate     `json:"current"`
	Previous   PeriodAggregate     `json:"previous"`
	DailyData  []DailyMetricRecord `json:"daily_data"`
	Comparison ComparisonResult    `json:"comparison"`
}
