package usecase

import (
	"github.com/shopspring/decimal"

	"adsight/internal/dates"
	"adsight/internal/domain"
)

// FillDaily produces a dense day-by-day series for the range: indexed
// input records where present, zero-valued records elsewhere. A zero-filled
// day is a "no activity" day, not a simulated one. Output is ascending and
// covers every calendar day of the range exactly once.
func FillDaily(records []domain.DailyMetricRecord, rng domain.TimeRange) []domain.DailyMetricRecord {
	byDate := make(map[string]domain.DailyMetricRecord, len(records))
	for _, rec := range records {
		byDate[rec.DateStart] = rec
	}

	days := dates.Days(rng)
	dense := make([]domain.DailyMetricRecord, 0, len(days))
	for _, day := range days {
		if rec, ok := byDate[day]; ok {
			dense = append(dense, rec)
			continue
		}
		dense = append(dense, domain.DailyMetricRecord{
			DateStart:   day,
			DateStop:    day,
			Spend:       decimal.Zero,
			Revenue:     decimal.Zero,
			IsSimulated: false,
		})
	}
	return dense
}

// Aggregate reduces a daily series to period totals and derives the rates
// from those totals. Zero denominators yield zero rates.
func Aggregate(records []domain.DailyMetricRecord) domain.PeriodAggregate {
	agg := domain.PeriodAggregate{
		Spend:   decimal.Zero,
		Revenue: decimal.Zero,
	}
	for _, rec := range records {
		agg.Impressions += rec.Impressions
		agg.Clicks += rec.Clicks
		agg.Spend = agg.Spend.Add(rec.Spend)
		agg.Conversions += rec.Conversions
		agg.Purchases += rec.Purchases
		agg.Revenue = agg.Revenue.Add(rec.Revenue)
		if rec.HasActivity() {
			agg.DataPointsCount++
		}
	}
	computeRates(&agg)
	return agg
}

// FillAndAggregate is the gap-filling aggregator: dense series plus totals.
func FillAndAggregate(records []domain.DailyMetricRecord, rng domain.TimeRange) ([]domain.DailyMetricRecord, domain.PeriodAggregate) {
	dense := FillDaily(records, rng)
	return dense, Aggregate(dense)
}

// computeRates derives CTR/CPC/CPM/conversion-rate/cost-per-conversion/ROAS
// from the period totals with division-by-zero guards.
func computeRates(agg *domain.PeriodAggregate) {
	spend := agg.Spend.InexactFloat64()
	revenue := agg.Revenue.InexactFloat64()

	if agg.Impressions > 0 {
		agg.CTR = float64(agg.Clicks) / float64(agg.Impressions) * 100
		agg.CPM = spend / float64(agg.Impressions) * 1000
	}
	if agg.Clicks > 0 {
		agg.CPC = spend / float64(agg.Clicks)
		agg.ConversionRate = float64(agg.Conversions) / float64(agg.Clicks) * 100
	}
	if agg.Conversions > 0 {
		agg.CostPerConversion = spend / float64(agg.Conversions)
	}
	if !agg.Spend.IsZero() {
		agg.ROAS = revenue / spend
	}
}
