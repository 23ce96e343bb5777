package usecase

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"adsight/internal/dates"
	"adsight/internal/domain"
)

// FallbackGenerator produces plausible synthetic metrics for days the
// upstream platform cannot serve. It never decides when to run; that is
// always the caller's policy.
type FallbackGenerator struct {
	minImpressions int
	maxImpressions int
	rnd            *rand.Rand
}

// NewFallbackGenerator builds a generator with the given impressions band.
// A nil source seeds from the wall clock.
func NewFallbackGenerator(minImpressions, maxImpressions int, rnd *rand.Rand) *FallbackGenerator {
	if minImpressions <= 0 {
		minImpressions = 5000
	}
	if maxImpressions <= minImpressions {
		maxImpressions = minImpressions * 3
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FallbackGenerator{
		minImpressions: minImpressions,
		maxImpressions: maxImpressions,
		rnd:            rnd,
	}
}

// Generate produces one simulated record per day of the range. Shape is
// deterministic, magnitudes are randomized within bounds: clicks are a
// small fraction of impressions, spend follows clicks, conversions follow
// clicks, purchases stay a subset of conversions and revenue follows spend.
func (g *FallbackGenerator) Generate(rng domain.TimeRange) []domain.DailyMetricRecord {
	days := dates.Days(rng)
	records := make([]domain.DailyMetricRecord, 0, len(days))
	for _, day := range days {
		records = append(records, g.generateDay(day))
	}
	return records
}

func (g *FallbackGenerator) generateDay(day string) domain.DailyMetricRecord {
	impressions := int64(g.minImpressions + g.rnd.Intn(g.maxImpressions-g.minImpressions+1))

	ctr := 0.01 + g.rnd.Float64()*0.02 // 1-3%
	clicks := int64(float64(impressions) * ctr)
	if clicks < 1 {
		clicks = 1
	}

	cpc := 0.30 + g.rnd.Float64()*0.50
	spend := decimal.NewFromFloat(float64(clicks) * cpc).Round(2)

	conversionRate := 0.02 + g.rnd.Float64()*0.04 // 2-6% of clicks
	conversions := int64(float64(clicks) * conversionRate)
	if conversions < 1 {
		conversions = 1
	}

	purchases := int64(float64(conversions) * (0.5 + g.rnd.Float64()*0.4))
	if purchases > conversions {
		purchases = conversions
	}

	roas := 1.5 + g.rnd.Float64()*2.0
	revenue := spend.Mul(decimal.NewFromFloat(roas)).Round(2)

	return domain.DailyMetricRecord{
		DateStart:   day,
		DateStop:    day,
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       spend,
		Conversions: conversions,
		Purchases:   purchases,
		Revenue:     revenue,
		IsSimulated: true,
	}
}
