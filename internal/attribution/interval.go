package attribution

import (
	"time"

	"github.com/scenenow/boost-metrics/internal/models"
)

// WithinWindow reports whether ts falls inside the half-open window
// [start, end). Callers attribute independently per campaign, so a
// timestamp may legitimately match several overlapping windows for the
// same entity; this predicate never dedups across campaigns.
func WithinWindow(ts time.Time, w models.ResolvedWindow) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}

// WithinPlanHistory finds the plan interval covering ts. Intervals are
// expected ordered by ValidFrom; coverage is [ValidFrom, ValidTo) with
// the open-ended interval running to +infinity. At most one interval
// claims any timestamp, so contiguous intervals never double-attribute
// the touching instant: it belongs to the later interval's start.
//
// Returns ok=false when no interval covers ts (a gap in the history).
// Events in gaps attribute to neither tier and must be excluded from
// both paid and free accounting.
func WithinPlanHistory(ts time.Time, intervals []models.PlanInterval) (string, bool) {
	// Walk newest-first so that when one interval's ValidTo equals the
	// next's ValidFrom, the later interval wins the shared instant.
	for i := len(intervals) - 1; i >= 0; i-- {
		if intervals[i].Contains(ts) {
			return intervals[i].PlanSlug, true
		}
	}
	return "", false
}
