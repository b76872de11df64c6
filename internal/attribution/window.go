// Package attribution contains the pure computation core: resolving
// boost windows, matching timestamps against windows and plan history,
// normalizing raw event rows, aggregating metrics, applying commission
// to revenue, and recommending publish windows. Nothing in this package
// touches storage or the clock; callers fetch and pass in all raw data.
package attribution

import (
	"time"

	"github.com/scenenow/boost-metrics/internal/models"
)

// ResolveWindow turns a campaign's configuration into the concrete
// half-open interval [start, end) it ran over. Returns ok=false when
// the campaign lacks the fields its duration mode requires; such
// campaigns are skipped by attribution, they do not fail the request.
//
// Resolution is deterministic: identical inputs always yield an
// identical window, independent of the wall clock.
func ResolveWindow(c *models.Campaign) (models.ResolvedWindow, bool) {
	switch c.DurationMode {
	case models.DurationModeDaily:
		if c.StartDate == nil || c.EndDate == nil {
			return models.ResolvedWindow{}, false
		}
		start := startOfDay(*c.StartDate)
		// The end date is inclusive: the window runs to the first
		// instant of the following day, exclusive.
		end := startOfDay(*c.EndDate).AddDate(0, 0, 1)
		if !end.After(start) {
			return models.ResolvedWindow{}, false
		}
		return models.ResolvedWindow{Start: start, End: end}, true

	case models.DurationModeHourly:
		if c.DurationHours <= 0 || c.CreatedAt.IsZero() {
			return models.ResolvedWindow{}, false
		}
		start := c.CreatedAt
		end := start.Add(time.Duration(c.DurationHours) * time.Hour)
		return models.ResolvedWindow{Start: start, End: end}, true
	}
	return models.ResolvedWindow{}, false
}

// EvaluateStatus derives the lifecycle status of a campaign at the
// given instant. Manual terminal states (canceled, paused) are
// preserved; otherwise the status follows the resolved window. The
// clock is only an input here, never part of window math.
func EvaluateStatus(c *models.Campaign, now time.Time) models.CampaignStatus {
	if c.Status == models.CampaignStatusCanceled || c.Status == models.CampaignStatusPaused {
		return c.Status
	}
	w, ok := ResolveWindow(c)
	if !ok {
		return c.Status
	}
	if !now.Before(w.End) {
		return models.CampaignStatusCompleted
	}
	return models.CampaignStatusActive
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
