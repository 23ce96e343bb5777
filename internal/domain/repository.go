package domain

import "context"

// InsightsClient is the transport to the upstream insights endpoint. It
// returns raw rows; date normalization and event reconciliation happen in
// the pipeline, not here. Implementations must not retry.
type InsightsClient interface {
	FetchInsights(ctx context.Context, account AdAccount, entityType string, rng TimeRange, fields []string, increment int) ([]InsightRow, error)
}

// AccountRepository is the read path to configured ad accounts.
type AccountRepository interface {
	Upsert(ctx context.Context, account AdAccount) error
	GetByID(ctx context.Context, id string) (*AdAccount, error)
	GetActive(ctx context.Context) (*AdAccount, error)
	List(ctx context.Context) ([]AdAccount, error)
}
