package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scenenow/boost-metrics/internal/models"
)

func monetary(kind models.EventKind, amountCents int64, orderID string, day int) models.CanonicalEvent {
	return models.CanonicalEvent{
		Timestamp:   time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC),
		Kind:        kind,
		EntityID:    "biz1",
		UserID:      "u1",
		AmountCents: amountCents,
		OrderID:     orderID,
	}
}

func TestComputeRevenuePerEventRounding(t *testing.T) {
	// 8% of 1050 is 84 exactly; 8% of 333 is 26.64, rounded half-up to
	// 27. The rounding happens per event, so the commission total is the
	// sum of the two rounded values, not the rounded sum.
	events := []models.CanonicalEvent{
		monetary(models.EventKindCheckin, 1050, "", 5),
		monetary(models.EventKindRedemption, 333, "", 6),
	}

	s := ComputeRevenue(events, InRange(marchRange()), FixedPercent(8), 8)
	require.Equal(t, int64(1383), s.GrossCents)
	require.Equal(t, int64(111), s.CommissionCents)
	require.Equal(t, int64(1272), s.NetCents)
}

func TestComputeRevenueConservation(t *testing.T) {
	events := []models.CanonicalEvent{
		monetary(models.EventKindCheckin, 999, "", 1),
		monetary(models.EventKindCheckin, 1, "", 2),
		monetary(models.EventKindVisit, 12345, "", 3),
		monetary(models.EventKindRedemption, 77, "", 4),
	}

	for _, pct := range []int{0, 1, 6, 8, 10, 12, 99, 100} {
		s := ComputeRevenue(events, InRange(marchRange()), FixedPercent(pct), pct)
		require.Equal(t, s.GrossCents, s.NetCents+s.CommissionCents, "pct=%d", pct)
	}
}

func TestComputeRevenueIgnoresNonMonetary(t *testing.T) {
	events := []models.CanonicalEvent{
		monetary(models.EventKindCheckin, 2000, "", 5),
		// Views carry no amount and interactions are not visits; neither
		// contributes revenue even with an amount attached.
		monetary(models.EventKindView, 500, "", 5),
		monetary(models.EventKindInteraction, 500, "", 5),
		monetary(models.EventKindVisit, 0, "", 6),
	}

	s := ComputeRevenue(events, InRange(marchRange()), FixedPercent(10), 10)
	require.Equal(t, int64(2000), s.GrossCents)
	require.Equal(t, int64(200), s.CommissionCents)
}

func TestComputeRevenueBlendedPercent(t *testing.T) {
	// Two orders at different frozen rates produce a blended effective
	// percent between the two.
	rates := map[string]int{"o-old": 12, "o-new": 6}
	lookup := func(orderID string) int {
		if pct, ok := rates[orderID]; ok {
			return pct
		}
		return 8
	}
	events := []models.CanonicalEvent{
		monetary(models.EventKindCheckin, 10000, "o-old", 5),
		monetary(models.EventKindCheckin, 10000, "o-new", 6),
	}

	s := ComputeRevenue(events, InRange(marchRange()), lookup, 8)
	require.Equal(t, int64(1800), s.CommissionCents)
	require.Equal(t, 9, s.EffectivePercent)
}

func TestComputeRevenueZeroGrossFallback(t *testing.T) {
	s := ComputeRevenue(nil, InRange(marchRange()), FixedPercent(10), 12)
	require.Zero(t, s.GrossCents)
	require.Equal(t, 12, s.EffectivePercent)
}

func TestComputeRevenueOrderRatePrecedence(t *testing.T) {
	// An order with a frozen rate keeps it even when the current
	// business rate differs.
	lookup := func(orderID string) int {
		if orderID == "o-frozen" {
			return 12
		}
		return 6
	}
	events := []models.CanonicalEvent{
		monetary(models.EventKindRedemption, 1000, "o-frozen", 5),
		monetary(models.EventKindRedemption, 1000, "", 6),
	}

	s := ComputeRevenue(events, InRange(marchRange()), lookup, 6)
	require.Equal(t, int64(180), s.CommissionCents)
}
