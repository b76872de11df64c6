package models

import (
	"errors"
	"time"
)

type TargetType string

const (
	TargetTypeOffer TargetType = "offer"
	TargetTypeEvent TargetType = "event"
)

type DurationMode string

const (
	// DurationModeDaily boosts run over an inclusive calendar date range.
	DurationModeDaily DurationMode = "daily"
	// DurationModeHourly boosts run for a fixed number of hours from purchase.
	DurationModeHourly DurationMode = "hourly"
)

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusCanceled  CampaignStatus = "canceled"
	CampaignStatusPaused    CampaignStatus = "paused"
)

// Campaign is a paid promotional boost for a single offer or event.
// Exactly one of {StartDate, EndDate} or {DurationHours} is meaningful,
// selected by DurationMode. The resolved window is derived and stays
// valid for historical attribution even after the campaign is canceled.
type Campaign struct {
	ID         string     `json:"id"`
	TargetType TargetType `json:"target_type"`
	TargetID   string     `json:"target_id"`
	BusinessID string     `json:"business_id"`

	DurationMode  DurationMode `json:"duration_mode"`
	StartDate     *time.Time   `json:"start_date,omitempty"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
	DurationHours int          `json:"duration_hours,omitempty"`

	Status         CampaignStatus `json:"status"`
	TotalCostCents int64          `json:"total_cost_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (c *Campaign) Validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	if c.BusinessID == "" {
		return errors.New("business_id is required")
	}
	if c.TargetID == "" {
		return errors.New("target_id is required")
	}
	if c.TargetType != TargetTypeOffer && c.TargetType != TargetTypeEvent {
		return errors.New("target_type must be offer or event")
	}
	switch c.DurationMode {
	case DurationModeDaily, DurationModeHourly:
	default:
		return errors.New("duration_mode must be daily or hourly")
	}
	if c.TotalCostCents < 0 {
		return errors.New("total_cost_cents must be >= 0")
	}
	return nil
}

// ResolvedWindow is the concrete half-open interval [Start, End) a
// campaign ran over. Derived, never persisted.
type ResolvedWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the window length.
func (w ResolvedWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// AttributionResult holds the attributed outcome for one campaign or one
// plan interval.
type AttributionResult struct {
	CampaignID string `json:"campaign_id,omitempty"`
	PlanSlug   string `json:"plan_slug,omitempty"`

	TotalVisits      int      `json:"total_visits"`
	UniqueVisitorIDs []string `json:"unique_visitor_ids"`

	GrossRevenueCents int64 `json:"gross_revenue_cents"`
	NetRevenueCents   int64 `json:"net_revenue_cents"`
	CommissionPercent int   `json:"commission_percent"`

	// Derived boost performance; only populated for campaigns with a cost.
	CostPerVisitCents int64   `json:"cost_per_visit_cents,omitempty"`
	ROI               float64 `json:"roi,omitempty"`
}
