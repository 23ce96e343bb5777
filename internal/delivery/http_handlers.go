package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"adsight/internal/dates"
	"adsight/internal/domain"
	"adsight/internal/usecase"
	"adsight/pkg/config"
	"adsight/pkg/logger"
	"adsight/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// handles HTTP requests
type HTTPHandlers struct {
	performance *usecase.PerformanceService
	dashboard   *usecase.DashboardService
	accounts    domain.AccountRepository
	pipelineCfg config.PipelineConfig
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

func NewHTTPHandlers(
	performance *usecase.PerformanceService,
	dashboard *usecase.DashboardService,
	accounts domain.AccountRepository,
	pipelineCfg config.PipelineConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		performance: performance,
		dashboard:   dashboard,
		accounts:    accounts,
		pipelineCfg: pipelineCfg,
		logger:      logger,
		metrics:     metrics,
	}
}

// GetAccountPerformance returns the reconciled daily series for a range.
func (h *HTTPHandlers) GetAccountPerformance(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := c.Request.Context()

	rng, ok := h.parseRange(c, "/performance", start, requestID)
	if !ok {
		return
	}

	allowSimulated := h.pipelineCfg.AllowSimulatedDefault
	if simStr := c.Query("simulated"); simStr != "" {
		parsed, err := strconv.ParseBool(simStr)
		if err != nil {
			h.metrics.RecordHTTPRequest("GET", "/performance", "400", time.Since(start))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid parameter",
				"message":    "simulated must be a boolean",
				"request_id": requestID,
			})
			return
		}
		allowSimulated = parsed
	}

	increment := 1
	if incStr := c.Query("increment"); incStr != "" {
		parsed, err := strconv.Atoi(incStr)
		if err != nil || parsed < 1 {
			h.metrics.RecordHTTPRequest("GET", "/performance", "400", time.Since(start))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid parameter",
				"message":    "increment must be a positive integer",
				"request_id": requestID,
			})
			return
		}
		increment = parsed
	}

	records, err := h.performance.GetAccountPerformance(ctx, rng.Since, rng.Until, allowSimulated, increment, c.Query("account_id"))
	if err != nil {
		h.respondError(c, "/performance", start, requestID, err)
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/performance", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"data":       records,
		"since":      rng.Since,
		"until":      rng.Until,
		"request_id": requestID,
	})
}

// GetDashboardStats returns period totals, previous-period totals, the
// dense daily series and the comparison between the two periods.
func (h *HTTPHandlers) GetDashboardStats(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := c.Request.Context()

	rng, ok := h.parseRange(c, "/dashboard", start, requestID)
	if !ok {
		return
	}

	stats, err := h.dashboard.GetDashboardStats(ctx, rng.Since, rng.Until, c.Query("account_id"))
	if err != nil {
		h.respondError(c, "/dashboard", start, requestID, err)
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/dashboard", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"current":    stats.Current,
		"previous":   stats.Previous,
		"daily_data": stats.DailyData,
		"comparison": stats.Comparison,
		"request_id": requestID,
	})
}

// ListAccounts returns the configured ad accounts.
func (h *HTTPHandlers) ListAccounts(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")

	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, "/accounts", start, requestID, err)
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/accounts", "200", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"data":       accounts,
		"total":      len(accounts),
		"request_id": requestID,
	})
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "adsight",
		"version":   "1.0.0",
	})
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api_version": "v1",
		"service":     "adsight",
		"description": "Ads performance reconciliation and dashboard aggregation",
		"endpoints": gin.H{
			"performance": gin.H{
				"path":        "/api/v1/performance",
				"description": "Reconciled daily performance series for a date range",
				"parameters": gin.H{
					"start_date": "Required: YYYY-MM-DD",
					"end_date":   "Required: YYYY-MM-DD",
					"simulated":  "Optional: allow simulated fallback on upstream failure",
					"increment":  "Optional: upstream time increment in days (default 1)",
					"account_id": "Optional: explicit ad account",
				},
				"example": "/api/v1/performance?start_date=2025-01-01&end_date=2025-01-31",
			},
			"dashboard": gin.H{
				"path":        "/api/v1/dashboard",
				"description": "Period totals, previous-period comparison and daily chart data",
				"parameters": gin.H{
					"start_date": "Required: YYYY-MM-DD",
					"end_date":   "Required: YYYY-MM-DD",
					"account_id": "Optional: explicit ad account",
				},
				"example": "/api/v1/dashboard?start_date=2025-01-01&end_date=2025-01-31",
			},
			"accounts": gin.H{
				"path":        "/api/v1/accounts",
				"description": "Configured ad accounts",
			},
		},
	})
}

// parseRange validates the start_date/end_date query pair before anything
// else runs, including the configured span ceiling.
func (h *HTTPHandlers) parseRange(c *gin.Context, endpoint string, start time.Time, requestID string) (domain.TimeRange, bool) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		h.metrics.RecordHTTPRequest("GET", endpoint, "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing required parameter",
			"message":    "start_date and end_date are required (YYYY-MM-DD)",
			"request_id": requestID,
		})
		return domain.TimeRange{}, false
	}

	rng, err := dates.NewTimeRange(startDate, endDate)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", endpoint, "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid date range",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return domain.TimeRange{}, false
	}

	if maxDays := h.pipelineCfg.MaxRangeDays; maxDays > 0 && dates.Length(rng) > maxDays {
		h.metrics.RecordHTTPRequest("GET", endpoint, "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Date range too large",
			"message":    "range exceeds " + strconv.Itoa(maxDays) + " days",
			"request_id": requestID,
		})
		return domain.TimeRange{}, false
	}

	return rng, true
}

// respondError maps the pipeline error taxonomy to HTTP statuses.
func (h *HTTPHandlers) respondError(c *gin.Context, endpoint string, start time.Time, requestID string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthMissing):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoActiveAccount):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	}

	h.metrics.RecordHTTPRequest("GET", endpoint, strconv.Itoa(status), time.Since(start))
	h.logger.WithContext(c.Request.Context()).WithError(err).Error("Request failed")
	c.JSON(status, gin.H{
		"error":      http.StatusText(status),
		"message":    err.Error(),
		"request_id": requestID,
	})
}
