package commission

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/scenenow/boost-metrics/internal/metrics"
)

// LiveSourceStrategy queries the authoritative rate service for the
// business's current commission percent. Any failure (network, non-200,
// malformed body, out-of-range percent) degrades to the next strategy
// with a warning. The call carries its own short timeout so a slow rate
// service cannot stall aggregation.
type LiveSourceStrategy struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewLiveSourceStrategy creates the live strategy. timeout bounds each
// lookup; zero falls back to two seconds.
func NewLiveSourceStrategy(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *LiveSourceStrategy {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &LiveSourceStrategy{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

func (s *LiveSourceStrategy) Name() string { return "live_source" }

type liveRateResponse struct {
	BusinessID string `json:"business_id"`
	Percent    int    `json:"percent"`
}

func (s *LiveSourceStrategy) Resolve(ctx context.Context, businessID string) (int, bool) {
	if s.baseURL == "" {
		return 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/rates/%s", s.baseURL, businessID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false
	}
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.degraded(businessID, err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.degraded(businessID, fmt.Errorf("rate service returned %d", resp.StatusCode))
		return 0, false
	}

	var body liveRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.degraded(businessID, fmt.Errorf("decode rate response: %w", err))
		return 0, false
	}
	if body.Percent < 0 || body.Percent > 100 {
		s.degraded(businessID, fmt.Errorf("rate out of range: %d", body.Percent))
		return 0, false
	}
	return body.Percent, true
}

func (s *LiveSourceStrategy) degraded(businessID string, err error) {
	s.logger.Warn("live commission source unavailable, falling back",
		zap.String("business_id", businessID),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.CommissionFallbacks.WithLabelValues(s.Name()).Inc()
	}
}
