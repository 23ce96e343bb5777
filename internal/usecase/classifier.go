package usecase

import (
	"github.com/shopspring/decimal"

	"adsight/internal/domain"
)

// The upstream platform reports the same underlying transaction under
// several purchase action types depending on attribution path. The most
// authoritative signal wins; counts are never summed across purchase
// types. Order matters.
var purchasePriority = []string{
	"offsite_conversion.fb_pixel_purchase",
	"purchase",
	"omni_purchase",
	"onsite_web_purchase",
	"onsite_app_purchase",
	"web_in_store_purchase",
}

// Funnel action types are genuinely distinct events and accumulate
// additively into the general conversions counter.
var funnelActionTypes = []string{
	"lead",
	"offsite_conversion.fb_pixel_lead",
	"add_to_cart",
	"offsite_conversion.fb_pixel_add_to_cart",
	"initiate_checkout",
}

// Classification is the reconciled view of one day's raw events.
type Classification struct {
	Purchases         int64
	Revenue           decimal.Decimal
	FunnelConversions int64
}

// Classify deduplicates a day's raw events into a single purchase count
// and revenue figure. When the day carries a non-zero return-on-spend
// ratio, revenue is spend*ratio and itemized revenue reconciliation is
// skipped for that day. Pure function.
func Classify(events []domain.RawActionEvent, spend, roasRatio decimal.Decimal) Classification {
	counts := make(map[string]int64, len(events))
	values := make(map[string]decimal.Decimal, len(events))
	for _, ev := range events {
		counts[ev.ActionType] += ev.Count
		values[ev.ActionType] = values[ev.ActionType].Add(ev.Value)
	}

	var c Classification
	c.Revenue = decimal.Zero

	for _, actionType := range purchasePriority {
		if n := counts[actionType]; n > 0 {
			c.Purchases = n
			break
		}
	}

	if !roasRatio.IsZero() {
		c.Revenue = spend.Mul(roasRatio)
	} else {
		for _, actionType := range purchasePriority {
			if v, ok := values[actionType]; ok && !v.IsZero() {
				c.Revenue = v
				break
			}
		}
	}

	for _, actionType := range funnelActionTypes {
		c.FunnelConversions += counts[actionType]
	}

	return c
}

// ReconcileConversions widens the raw conversions figure so purchases are
// always a subset of conversions, even when upstream under-reports.
func ReconcileConversions(rawConversions, funnelConversions, purchases int64) int64 {
	conversions := rawConversions + funnelConversions
	if purchases > conversions {
		return purchases
	}
	return conversions
}
