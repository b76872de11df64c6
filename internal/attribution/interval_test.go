package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scenenow/boost-metrics/internal/models"
)

func planHistory() []models.PlanInterval {
	feb1 := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	return []models.PlanInterval{
		{
			BusinessID: "biz1",
			PlanSlug:   models.PlanFree,
			ValidFrom:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:    &feb1,
		},
		{
			BusinessID: "biz1",
			PlanSlug:   models.PlanPro,
			ValidFrom:  feb1,
			OpenEnded:  true,
		},
	}
}

func TestWithinPlanHistoryBoundary(t *testing.T) {
	intervals := planHistory()

	// The shared boundary instant belongs to the later interval only.
	slug, ok := WithinPlanHistory(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), intervals)
	require.True(t, ok)
	require.Equal(t, models.PlanPro, slug)

	// One second before the boundary is still the free tier.
	slug, ok = WithinPlanHistory(time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC), intervals)
	require.True(t, ok)
	require.Equal(t, models.PlanFree, slug)
}

func TestWithinPlanHistoryOpenEnded(t *testing.T) {
	intervals := planHistory()

	slug, ok := WithinPlanHistory(time.Date(2030, time.June, 15, 12, 0, 0, 0, time.UTC), intervals)
	require.True(t, ok)
	require.Equal(t, models.PlanPro, slug)
}

func TestWithinPlanHistoryBeforeHistory(t *testing.T) {
	intervals := planHistory()

	_, ok := WithinPlanHistory(time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC), intervals)
	require.False(t, ok)
}

func TestWithinPlanHistoryGap(t *testing.T) {
	feb1 := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	mar1 := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	intervals := []models.PlanInterval{
		{
			BusinessID: "biz1",
			PlanSlug:   models.PlanBasic,
			ValidFrom:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:    &feb1,
		},
		// Gap: the business lapsed during February.
		{
			BusinessID: "biz1",
			PlanSlug:   models.PlanPro,
			ValidFrom:  mar1,
			OpenEnded:  true,
		},
	}

	// Events in the gap attribute to neither tier.
	_, ok := WithinPlanHistory(time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), intervals)
	require.False(t, ok)
}

func TestWithinPlanHistoryAtMostOneMatch(t *testing.T) {
	intervals := planHistory()

	// Sweep across the boundary minute by minute; every instant must
	// resolve to exactly one tier or none.
	start := time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC)
	for ts := start; ts.Before(start.Add(2 * time.Hour)); ts = ts.Add(time.Minute) {
		matches := 0
		for _, iv := range intervals {
			if iv.Contains(ts) {
				matches++
			}
		}
		require.LessOrEqual(t, matches, 1, "timestamp %s claimed by %d intervals", ts, matches)
	}
}
