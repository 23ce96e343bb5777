package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"adsight/internal/domain"
	"adsight/pkg/logger"
	"adsight/pkg/metrics"
)

// InsightsClient implements domain.InsightsClient against the ads
// platform's insights endpoint. No retries; the 30s client timeout is the
// cancellation ceiling for the whole request.
type InsightsClient struct {
	client      *http.Client
	baseURL     string
	apiVersion  string
	pageLimit   int
	logger      *logger.Logger
	metrics     *metrics.Metrics
	rateLimiter *rate.Limiter
}

func NewInsightsClient(baseURL, apiVersion string, pageLimit int, timeout time.Duration, ratePerSecond int, logger *logger.Logger, metrics *metrics.Metrics) *InsightsClient {
	if pageLimit <= 0 {
		pageLimit = 500
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	return &InsightsClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiVersion:  apiVersion,
		pageLimit:   pageLimit,
		logger:      logger,
		metrics:     metrics,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
}

// FetchInsights requests daily rows for the account over the range. A
// response without a data field is an empty result, not an error.
func (c *InsightsClient) FetchInsights(ctx context.Context, account domain.AdAccount, entityType string, rng domain.TimeRange, fields []string, increment int) ([]domain.InsightRow, error) {
	if account.AccessToken == "" {
		c.metrics.RecordUpstreamFailure("auth_missing")
		return nil, fmt.Errorf("account %s: %w", account.ID, domain.ErrAuthMissing)
	}

	start := time.Now()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordUpstreamFailure("rate_limit")
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamUnavailable, err)
	}

	endpoint, err := c.buildURL(account, entityType, rng, fields, increment)
	if err != nil {
		c.metrics.RecordUpstreamFailure("request_creation")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.metrics.RecordUpstreamFailure("request_creation")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamFailure("network_error")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.metrics.RecordUpstreamCall(fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, fmt.Errorf("%w: insights API returned status %d", domain.ErrAuthMissing, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordUpstreamCall(fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, fmt.Errorf("%w: insights API returned status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordUpstreamFailure("read_body")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	var payload domain.InsightsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.metrics.RecordUpstreamFailure("json_parse")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	c.metrics.RecordUpstreamCall("success", duration)

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"account_id": account.ID,
		"since":      rng.Since,
		"until":      rng.Until,
		"duration":   duration,
		"rows":       len(payload.Data),
	}).Info("Fetched insights")

	if payload.Data == nil {
		return []domain.InsightRow{}, nil
	}
	return payload.Data, nil
}

func (c *InsightsClient) buildURL(account domain.AdAccount, entityType string, rng domain.TimeRange, fields []string, increment int) (string, error) {
	timeRange, err := json.Marshal(map[string]string{"since": rng.Since, "until": rng.Until})
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("fields", strings.Join(fields, ","))
	q.Set("time_range", string(timeRange))
	q.Set("level", entityType)
	if increment > 0 {
		q.Set("time_increment", strconv.Itoa(increment))
	}
	q.Set("limit", strconv.Itoa(c.pageLimit))
	q.Set("access_token", account.AccessToken)

	return fmt.Sprintf("%s/%s/%s/insights?%s", c.baseURL, c.apiVersion, account.ID, q.Encode()), nil
}
