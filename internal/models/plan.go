package models

import (
	"errors"
	"time"
)

// Subscription plan tiers a business can hold.
const (
	PlanFree  = "free"
	PlanBasic = "basic"
	PlanPro   = "pro"
	PlanElite = "elite"
)

// DefaultCommissionPercents maps a plan slug to the commission percent
// charged on verified-visit revenue when no live or per-order rate is
// available. Unrecognized slugs fall back to the free tier.
var DefaultCommissionPercents = map[string]int{
	PlanFree:  12,
	PlanBasic: 10,
	PlanPro:   8,
	PlanElite: 6,
}

// CommissionPercentForPlan returns the static commission percent for a
// plan slug.
func CommissionPercentForPlan(slug string) int {
	if pct, ok := DefaultCommissionPercents[slug]; ok {
		return pct
	}
	return DefaultCommissionPercents[PlanFree]
}

// PlanInterval is one contiguous period a business held a subscription
// tier. Coverage is half-open [ValidFrom, ValidTo); a nil ValidTo with
// OpenEnded set means the interval runs to +infinity (still current).
// Sequences for a business are ordered by ValidFrom and adjacent
// intervals may touch without double-claiming the shared instant.
type PlanInterval struct {
	BusinessID string     `json:"business_id"`
	PlanSlug   string     `json:"plan_slug"`
	ValidFrom  time.Time  `json:"valid_from"`
	ValidTo    *time.Time `json:"valid_to,omitempty"`
	OpenEnded  bool       `json:"open_ended"`
}

func (p *PlanInterval) Validate() error {
	if p.BusinessID == "" {
		return errors.New("business_id is required")
	}
	if p.PlanSlug == "" {
		return errors.New("plan_slug is required")
	}
	if p.ValidFrom.IsZero() {
		return errors.New("valid_from is required")
	}
	if p.ValidTo == nil && !p.OpenEnded {
		return errors.New("bounded interval requires valid_to")
	}
	if p.ValidTo != nil && !p.ValidTo.After(p.ValidFrom) {
		return errors.New("valid_to must be after valid_from")
	}
	return nil
}

// Contains reports whether the interval covers ts under half-open
// semantics.
func (p *PlanInterval) Contains(ts time.Time) bool {
	if ts.Before(p.ValidFrom) {
		return false
	}
	if p.ValidTo == nil {
		return p.OpenEnded
	}
	return ts.Before(*p.ValidTo)
}
