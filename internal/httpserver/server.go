package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scenenow/boost-metrics/internal/analytics"
	"github.com/scenenow/boost-metrics/internal/commission"
	"github.com/scenenow/boost-metrics/internal/config"
	"github.com/scenenow/boost-metrics/internal/database"
	"github.com/scenenow/boost-metrics/internal/metrics"
	"github.com/scenenow/boost-metrics/internal/models"
	"github.com/scenenow/boost-metrics/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	ClickHouse *database.ClickHouseDB
	Redis      *database.RedisDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server wraps HTTP handlers around the analytics service.
type Server struct {
	analytics *analytics.Service
	campaigns storage.CampaignRepo
	logger    *zap.Logger
	config    *config.Config
	metrics   *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
// Missing backing stores fall back to in-memory implementations so the
// service stays usable in development.
func NewServer(deps *Dependencies) http.Handler {
	mem := storage.NewInMemoryStore()

	var campaignRepo storage.CampaignRepo = mem
	var planRepo storage.PlanHistoryRepo = mem
	var visitSource storage.VisitSource = mem
	var engagementSource storage.EngagementSource = mem

	if deps.DB != nil {
		campaignRepo = storage.NewPostgresCampaignRepo(deps.DB.Pool)
		planRepo = storage.NewPostgresPlanHistoryRepo(deps.DB.Pool)
		visitSource = storage.NewPostgresVisitSource(deps.DB.Pool)
	}
	if deps.ClickHouse != nil {
		engagementSource = storage.NewClickHouseEngagementSource(deps.ClickHouse.Conn)
	}

	// Commission chain: live source, then the plan table, ending at the
	// static free-tier rate so resolution can never fail.
	chain := commission.NewChain(deps.Logger,
		commission.NewLiveSourceStrategy(
			deps.Config.Commission.LiveURL,
			deps.Config.Commission.APIKey,
			deps.Config.Commission.LiveTimeout,
			deps.Logger,
			deps.Metrics,
		),
		commission.NewPlanTableStrategy(planRepo, deps.Logger),
		commission.StaticDefault{},
	)

	var rates analytics.RateResolver = chain
	var overviewCache *redis.Client
	if deps.Redis != nil {
		overviewCache = deps.Redis.Client
		rates = commission.NewCachedChain(chain, deps.Redis.Client, deps.Config.Commission.CacheTTL, deps.Logger)
	}

	svc := analytics.NewService(
		campaignRepo,
		planRepo,
		engagementSource,
		visitSource,
		rates,
		overviewCache,
		deps.Config.Analytics.OverviewCacheTTL,
		deps.Logger,
		deps.Metrics,
	)

	s := &Server{
		analytics: svc,
		campaigns: campaignRepo,
		logger:    deps.Logger,
		config:    deps.Config,
		metrics:   deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Business metrics
	mux.HandleFunc("/v1/businesses/", s.handleBusiness)

	// Campaign management
	mux.HandleFunc("/v1/campaigns", s.handleCampaigns)
	mux.HandleFunc("/v1/campaigns/", s.handleCampaignByID)

	return mux
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Business metrics routing ----

// handleBusiness dispatches /v1/businesses/{id}/{operation}.
func (s *Server) handleBusiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/businesses/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		s.errorResponse(w, "not found", http.StatusNotFound)
		return
	}
	businessID, op := parts[0], parts[1]

	start := time.Now()
	var status int
	switch op {
	case "overview":
		status = s.handleOverview(w, r, businessID)
	case "attribution":
		status = s.handleAttribution(w, r, businessID)
	case "plan-attribution":
		status = s.handlePlanAttribution(w, r, businessID)
	case "guidance":
		status = s.handleGuidance(w, r, businessID)
	case "commission":
		status = s.handleCommission(w, r, businessID)
	default:
		s.errorResponse(w, "not found", http.StatusNotFound)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordRequest(op, status, time.Since(start))
	}
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request, businessID string) int {
	dr, err := s.parseRange(r)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	}

	ov, err := s.analytics.ComputeOverview(r.Context(), businessID, dr)
	if err != nil {
		return s.unavailable(w, "overview", businessID, err)
	}
	s.jsonResponse(w, ov)
	return http.StatusOK
}

func (s *Server) handleAttribution(w http.ResponseWriter, r *http.Request, businessID string) int {
	dr, err := s.parseRange(r)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	}

	results, err := s.analytics.ComputeAttribution(r.Context(), businessID, dr)
	if err != nil {
		return s.unavailable(w, "attribution", businessID, err)
	}
	s.jsonResponse(w, map[string]interface{}{"results": results})
	return http.StatusOK
}

func (s *Server) handlePlanAttribution(w http.ResponseWriter, r *http.Request, businessID string) int {
	dr, err := s.parseRange(r)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	}

	results, err := s.analytics.ComputePlanAttribution(r.Context(), businessID, dr)
	if err != nil {
		return s.unavailable(w, "plan-attribution", businessID, err)
	}
	s.jsonResponse(w, map[string]interface{}{"results": results})
	return http.StatusOK
}

func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request, businessID string) int {
	lookback := s.config.Analytics.GuidanceLookback
	if v := r.URL.Query().Get("lookback"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			s.errorResponse(w, "invalid lookback", http.StatusBadRequest)
			return http.StatusBadRequest
		}
		lookback = d
	}

	g, err := s.analytics.ComputeGuidance(r.Context(), businessID, lookback)
	if err != nil {
		return s.unavailable(w, "guidance", businessID, err)
	}
	s.jsonResponse(w, g)
	return http.StatusOK
}

func (s *Server) handleCommission(w http.ResponseWriter, r *http.Request, businessID string) int {
	pct := s.analytics.ResolveCommissionPercent(r.Context(), businessID)
	s.jsonResponse(w, map[string]interface{}{
		"business_id": businessID,
		"percent":     pct,
	})
	return http.StatusOK
}

// ---- Campaign management ----

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var c models.Campaign
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now().UTC()
		}
		if c.Status == "" {
			c.Status = models.CampaignStatusActive
		}
		if err := c.Validate(); err != nil {
			s.errorResponse(w, "invalid campaign: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.campaigns.Upsert(r.Context(), &c); err != nil {
			s.logger.Error("failed to upsert campaign", zap.Error(err))
			s.errorResponse(w, "storage error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(&c); err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
		}
	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCampaignByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/campaigns/")
	if id == "" || strings.Contains(id, "/") {
		s.errorResponse(w, "not found", http.StatusNotFound)
		return
	}

	c, err := s.campaigns.GetByID(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to get campaign", zap.String("campaign_id", id), zap.Error(err))
		s.errorResponse(w, "storage error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		s.errorResponse(w, "campaign not found", http.StatusNotFound)
		return
	}
	s.jsonResponse(w, c)
}

// ---- Helpers ----

// parseRange reads from/to query params, accepting RFC3339 instants or
// plain dates, and bounds the range per config.
func (s *Server) parseRange(r *http.Request) (models.DateRange, error) {
	from, err := parseInstant(r.URL.Query().Get("from"))
	if err != nil {
		return models.DateRange{}, errInvalidRange
	}
	to, err := parseInstant(r.URL.Query().Get("to"))
	if err != nil {
		return models.DateRange{}, errInvalidRange
	}
	if !to.After(from) {
		return models.DateRange{}, errInvalidRange
	}
	if int(to.Sub(from).Hours()/24) > s.config.Analytics.MaxRangeDays {
		return models.DateRange{}, errRangeTooWide
	}
	return models.DateRange{From: from, To: to}, nil
}

var (
	errInvalidRange = &rangeError{"from and to must be valid instants with to > from"}
	errRangeTooWide = &rangeError{"date range exceeds the configured maximum"}
)

type rangeError struct{ msg string }

func (e *rangeError) Error() string { return e.msg }

func parseInstant(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// unavailable reports a failed raw-data fetch. Partial metrics are
// never synthesized; the dashboard shows an explicit unavailable state
// and the caller retries the whole request.
func (s *Server) unavailable(w http.ResponseWriter, op, businessID string, err error) int {
	s.logger.Error("metrics request failed",
		zap.String("operation", op),
		zap.String("business_id", businessID),
		zap.Error(err),
	)
	s.errorResponse(w, "metrics unavailable", http.StatusServiceUnavailable)
	return http.StatusServiceUnavailable
}

func (s *Server) jsonResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
