// Package analytics orchestrates metrics requests: it fans out the
// independent raw-data fetches, then runs the pure attribution core
// over the fetched rows. A request is all-or-nothing: any raw fetch
// failure fails the whole request rather than synthesizing partial
// numbers.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scenenow/boost-metrics/internal/attribution"
	"github.com/scenenow/boost-metrics/internal/commission"
	"github.com/scenenow/boost-metrics/internal/metrics"
	"github.com/scenenow/boost-metrics/internal/models"
	"github.com/scenenow/boost-metrics/internal/storage"
)

// RateResolver resolves the business-level commission percent. It can
// never fail; unavailable sources degrade internally.
type RateResolver interface {
	Percent(ctx context.Context, businessID string) int
}

// Service computes attribution and overview metrics for one business
// at a time.
type Service struct {
	campaigns   storage.CampaignRepo
	plans       storage.PlanHistoryRepo
	engagements storage.EngagementSource
	visits      storage.VisitSource
	rates       RateResolver

	cache    *redis.Client
	cacheTTL time.Duration

	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService assembles the analytics service. cache may be nil; the
// overview snapshot cache is then disabled.
func NewService(
	campaigns storage.CampaignRepo,
	plans storage.PlanHistoryRepo,
	engagements storage.EngagementSource,
	visits storage.VisitSource,
	rates RateResolver,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		campaigns:   campaigns,
		plans:       plans,
		engagements: engagements,
		visits:      visits,
		rates:       rates,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		metrics:     m,
		now:         time.Now,
	}
}

// WithClock overrides the clock; used by tests and status evaluation.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// fetched bundles everything one request pulls from storage.
type fetched struct {
	raw        models.RawEvents
	orderRates map[string]int
	campaigns  []*models.Campaign
	intervals  []models.PlanInterval
}

// fetch runs every raw-data fetch concurrently under one errgroup.
// The first failure cancels the rest and aborts the request.
func (s *Service) fetch(ctx context.Context, businessID string, r models.DateRange) (*fetched, error) {
	var f fetched
	g, ctx := errgroup.WithContext(ctx)

	g.Go(s.timed("engagements", func() error {
		rows, err := s.engagements.ListEngagements(ctx, businessID, r)
		f.raw.Engagements = rows
		return err
	}))
	g.Go(s.timed("followers", func() error {
		rows, err := s.engagements.ListFollowers(ctx, businessID, r)
		f.raw.Followers = rows
		return err
	}))
	g.Go(s.timed("offer_redemptions", func() error {
		rows, err := s.visits.ListOfferRedemptions(ctx, businessID, r)
		f.raw.OfferRedemptions = rows
		return err
	}))
	g.Go(s.timed("ticket_checkins", func() error {
		rows, err := s.visits.ListTicketCheckins(ctx, businessID, r)
		f.raw.TicketCheckins = rows
		return err
	}))
	g.Go(s.timed("reservation_checkins", func() error {
		rows, err := s.visits.ListReservationCheckins(ctx, businessID, r)
		f.raw.ReservationCheckins = rows
		return err
	}))
	g.Go(s.timed("order_rates", func() error {
		rates, err := s.visits.OrderCommissionRates(ctx, businessID, r)
		f.orderRates = rates
		return err
	}))
	g.Go(s.timed("campaigns", func() error {
		cs, err := s.campaigns.ListByBusiness(ctx, businessID, r)
		f.campaigns = cs
		return err
	}))
	g.Go(s.timed("plan_history", func() error {
		ps, err := s.plans.ListIntervals(ctx, businessID)
		f.intervals = ps
		return err
	}))

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch raw data: %w", err)
	}
	return &f, nil
}

func (s *Service) timed(source string, fn func() error) func() error {
	return func() error {
		start := time.Now()
		err := fn()
		if s.metrics != nil {
			s.metrics.RecordFetch(source, time.Since(start), err)
		}
		return err
	}
}

// ComputeAttribution returns one AttributionResult per campaign whose
// window resolved. Malformed campaigns are skipped with a warning; they
// never abort the request. Canceled campaigns still attribute for the
// window that genuinely ran.
func (s *Service) ComputeAttribution(ctx context.Context, businessID string, r models.DateRange) ([]models.AttributionResult, error) {
	f, err := s.fetch(ctx, businessID, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	events := attribution.Normalize(f.raw)
	businessPct := s.rates.Percent(ctx, businessID)
	lookup := commission.OrderLookup(f.orderRates, businessPct)

	results := make([]models.AttributionResult, 0, len(f.campaigns))
	for _, c := range f.campaigns {
		w, ok := attribution.ResolveWindow(c)
		if !ok {
			s.logger.Warn("campaign has no resolvable window, skipping",
				zap.String("campaign_id", c.ID),
				zap.String("duration_mode", string(c.DurationMode)),
			)
			continue
		}

		match := attribution.ForEntity(attribution.InWindow(w), c.TargetID)
		agg := attribution.Aggregate(events, match)
		rev := attribution.ComputeRevenue(events, match, lookup, businessPct)

		res := models.AttributionResult{
			CampaignID:        c.ID,
			TotalVisits:       agg.VerifiedVisits,
			UniqueVisitorIDs:  attribution.UniqueVisitorIDs(events, match),
			GrossRevenueCents: rev.GrossCents,
			NetRevenueCents:   rev.NetCents,
			CommissionPercent: rev.EffectivePercent,
		}
		if c.TotalCostCents > 0 {
			if agg.VerifiedVisits > 0 {
				res.CostPerVisitCents = c.TotalCostCents / int64(agg.VerifiedVisits)
			}
			res.ROI = float64(rev.NetCents) / float64(c.TotalCostCents)
		}
		results = append(results, res)
	}

	if s.metrics != nil {
		s.metrics.RecordCompute("attribution", len(events), time.Since(start))
	}
	return results, nil
}

// ComputePlanAttribution splits verified-visit activity across the
// business's plan intervals. Events falling in a gap of the history
// attribute to no tier at all.
func (s *Service) ComputePlanAttribution(ctx context.Context, businessID string, r models.DateRange) ([]models.AttributionResult, error) {
	f, err := s.fetch(ctx, businessID, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	events := attribution.Normalize(f.raw)
	businessPct := s.rates.Percent(ctx, businessID)
	lookup := commission.OrderLookup(f.orderRates, businessPct)

	results := make([]models.AttributionResult, 0, len(f.intervals))
	for _, iv := range f.intervals {
		iv := iv
		match := func(e models.CanonicalEvent) bool {
			if !r.Contains(e.Timestamp) {
				return false
			}
			slug, ok := attribution.WithinPlanHistory(e.Timestamp, f.intervals)
			return ok && slug == iv.PlanSlug && iv.Contains(e.Timestamp)
		}
		agg := attribution.Aggregate(events, match)
		rev := attribution.ComputeRevenue(events, match, lookup, businessPct)

		results = append(results, models.AttributionResult{
			PlanSlug:          iv.PlanSlug,
			TotalVisits:       agg.VerifiedVisits,
			UniqueVisitorIDs:  attribution.UniqueVisitorIDs(events, match),
			GrossRevenueCents: rev.GrossCents,
			NetRevenueCents:   rev.NetCents,
			CommissionPercent: rev.EffectivePercent,
		})
	}

	if s.metrics != nil {
		s.metrics.RecordCompute("plan_attribution", len(events), time.Since(start))
	}
	return results, nil
}

// Overview is the dashboard payload for one business and range.
type Overview struct {
	BusinessID string                        `json:"business_id"`
	From       time.Time                     `json:"from"`
	To         time.Time                     `json:"to"`
	Metrics    attribution.OverviewMetrics   `json:"metrics"`
	Daily      []attribution.TimeSeriesPoint `json:"daily"`
}

// ComputeOverview aggregates the range into dashboard metrics, with a
// short-TTL snapshot cache in front. Cache errors are misses.
func (s *Service) ComputeOverview(ctx context.Context, businessID string, r models.DateRange) (*Overview, error) {
	key := overviewKey(businessID, r)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var ov Overview
			if jerr := json.Unmarshal(raw, &ov); jerr == nil {
				if s.metrics != nil {
					s.metrics.CacheHits.WithLabelValues("overview").Inc()
				}
				return &ov, nil
			}
		} else if err != redis.Nil {
			s.logger.Debug("overview cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.CacheMisses.WithLabelValues("overview").Inc()
		}
	}

	f, err := s.fetch(ctx, businessID, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	events := attribution.Normalize(f.raw)
	ov := &Overview{
		BusinessID: businessID,
		From:       r.From,
		To:         r.To,
		Metrics:    attribution.Aggregate(events, attribution.InRange(r)),
		Daily:      attribution.DailySeries(events, r),
	}
	if s.metrics != nil {
		s.metrics.RecordCompute("overview", len(events), time.Since(start))
	}

	if s.cache != nil {
		if raw, jerr := json.Marshal(ov); jerr == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Debug("overview cache write failed", zap.Error(err))
			}
		}
	}
	return ov, nil
}

func overviewKey(businessID string, r models.DateRange) string {
	return fmt.Sprintf("overview:%s:%d:%d", businessID, r.From.Unix(), r.To.Unix())
}

// Guidance holds the recommended publish windows per category plus the
// best overall pair.
type Guidance struct {
	Views        []attribution.SlotRecommendation `json:"views"`
	Interactions []attribution.SlotRecommendation `json:"interactions"`
	Visits       []attribution.SlotRecommendation `json:"visits"`
	Overall      []attribution.SlotRecommendation `json:"overall"`
}

// ComputeGuidance ranks (weekday, two-hour slot) cells over the
// lookback and recommends the two strongest windows per category and
// overall. Every slice always carries exactly two entries.
func (s *Service) ComputeGuidance(ctx context.Context, businessID string, lookback time.Duration) (*Guidance, error) {
	now := s.now()
	r := models.DateRange{From: now.Add(-lookback), To: now}

	f, err := s.fetch(ctx, businessID, r)
	if err != nil {
		return nil, err
	}

	events := attribution.Normalize(f.raw)
	var views, interactions, visits, all []time.Time
	for _, e := range events {
		all = append(all, e.Timestamp)
		switch {
		case e.Kind == models.EventKindView:
			views = append(views, e.Timestamp)
		case e.Kind == models.EventKindInteraction:
			interactions = append(interactions, e.Timestamp)
		case e.Kind.VerifiedVisit():
			visits = append(visits, e.Timestamp)
		}
	}

	return &Guidance{
		Views:        attribution.RecommendSlots(views),
		Interactions: attribution.RecommendSlots(interactions),
		Visits:       attribution.RecommendSlots(visits),
		Overall:      attribution.RecommendSlots(all),
	}, nil
}

// ResolveCommissionPercent resolves the business-level commission rate
// through the configured chain.
func (s *Service) ResolveCommissionPercent(ctx context.Context, businessID string) int {
	return s.rates.Percent(ctx, businessID)
}
