package domain

// Upstream insights payload shapes. Every field the platform sends is
// optional in practice, so all numerics arrive as strings and are parsed
// defensively by the pipeline.

// ActionEntry is one action_type entry inside actions, action_values or
// purchase_roas. For actions the value is an occurrence count, for
// action_values a monetary sum, for purchase_roas a revenue/spend ratio.
type ActionEntry struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// InsightRow is one row of the upstream insights response, daily
// granularity when requested with time_increment=1.
type InsightRow struct {
	DateStart    string        `json:"date_start"`
	DateStop     string        `json:"date_stop"`
	Impressions  string        `json:"impressions"`
	Clicks       string        `json:"clicks"`
	Spend        string        `json:"spend"`
	Conversions  string        `json:"conversions"`
	Actions      []ActionEntry `json:"actions,omitempty"`
	ActionValues []ActionEntry `json:"action_values,omitempty"`
	PurchaseROAS []ActionEntry `json:"purchase_roas,omitempty"`
}

// InsightsResponse is the upstream envelope. A missing data field means an
// empty result, not an error.
type InsightsResponse struct {
	Data   []InsightRow    `json:"data"`
	Paging *InsightsPaging `json:"paging,omitempty"`
}

type InsightsPaging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}

// AdAccount is a configured ads-platform account. The access token is the
// credential attached to every upstream call for that account.
type AdAccount struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
	AccessToken string `json:"-"`
	Active      bool   `json:"active"`
}
