package usecase

import (
	"adsight/internal/dates"
	"adsight/internal/domain"
)

// PreviousPeriod computes the immediately preceding period of equal
// inclusive length: previous.until is the day before current.since.
func PreviousPeriod(current domain.TimeRange) (domain.TimeRange, error) {
	until, err := dates.AddDays(current.Since, -1)
	if err != nil {
		return domain.TimeRange{}, err
	}
	since, err := dates.AddDays(until, -(dates.Length(current) - 1))
	if err != nil {
		return domain.TimeRange{}, err
	}
	return domain.TimeRange{Since: since, Until: until}, nil
}

// CompareAggregates produces current-vs-previous percentage deltas.
func CompareAggregates(current, previous domain.PeriodAggregate, currentRange, previousRange domain.TimeRange) domain.ComparisonResult {
	return domain.ComparisonResult{
		Current:       current,
		Previous:      previous,
		CurrentRange:  currentRange,
		PreviousRange: previousRange,
		Changes: domain.MetricChanges{
			Impressions: percentChange(float64(current.Impressions), float64(previous.Impressions)),
			Clicks:      percentChange(float64(current.Clicks), float64(previous.Clicks)),
			Spend:       percentChange(current.Spend.InexactFloat64(), previous.Spend.InexactFloat64()),
			Conversions: percentChange(float64(current.Conversions), float64(previous.Conversions)),
			Purchases:   percentChange(float64(current.Purchases), float64(previous.Purchases)),
			Revenue:     percentChange(current.Revenue.InexactFloat64(), previous.Revenue.InexactFloat64()),
			ROAS:        percentChange(current.ROAS, previous.ROAS),
		},
	}
}

// percentChange is 0 when the previous value is 0, never a division fault.
func percentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
