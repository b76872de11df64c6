package attribution

import (
	"github.com/scenenow/boost-metrics/internal/models"
)

// RevenueSummary is the commission-adjusted revenue for one set of
// attributed monetary events.
type RevenueSummary struct {
	GrossCents      int64 `json:"gross_cents"`
	NetCents        int64 `json:"net_cents"`
	CommissionCents int64 `json:"commission_cents"`
	// EffectivePercent is the blended commission over the set, or the
	// business-level rate when the set produced no revenue.
	EffectivePercent int `json:"effective_percent"`
}

// CommissionLookup returns the commission percent to apply to a single
// event's order. Implementations consult per-order frozen rates first
// and fall back to the business-level rate.
type CommissionLookup func(orderID string) int

// FixedPercent is a CommissionLookup that applies one rate to every
// event.
func FixedPercent(pct int) CommissionLookup {
	return func(string) int { return pct }
}

// commissionCents rounds half-up on the single event's amount. Rounding
// happens per event, never on the aggregate, so gross = net + commission
// holds exactly over any set.
func commissionCents(amountCents int64, pct int) int64 {
	if amountCents <= 0 || pct <= 0 {
		return 0
	}
	return (amountCents*int64(pct) + 50) / 100
}

// ComputeRevenue applies the commission to every matching monetary
// event. Events without an amount contribute nothing. fallbackPercent
// is the resolved business-level rate, reported as the effective rate
// for zero-revenue periods so a quiet period still shows a sensible
// percentage.
func ComputeRevenue(events []models.CanonicalEvent, match EventFilter, lookup CommissionLookup, fallbackPercent int) RevenueSummary {
	var s RevenueSummary
	for _, e := range events {
		if !match(e) || !e.Kind.VerifiedVisit() || e.AmountCents <= 0 {
			continue
		}
		pct := lookup(e.OrderID)
		c := commissionCents(e.AmountCents, pct)
		s.GrossCents += e.AmountCents
		s.CommissionCents += c
		s.NetCents += e.AmountCents - c
	}
	if s.GrossCents > 0 {
		s.EffectivePercent = int((s.CommissionCents*100 + s.GrossCents/2) / s.GrossCents)
	} else {
		s.EffectivePercent = fallbackPercent
	}
	return s
}
