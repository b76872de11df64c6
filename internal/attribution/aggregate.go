package attribution

import (
	"sort"

	"github.com/scenenow/boost-metrics/internal/models"
)

// OverviewMetrics is the aggregate a dashboard shows for one business
// over one date range.
type OverviewMetrics struct {
	TotalViews      int `json:"total_views"`
	Interactions    int `json:"interactions"`
	UniqueCustomers int `json:"unique_customers"`
	RepeatCustomers int `json:"repeat_customers"`
	Bookings        int `json:"bookings"`
	Tickets         int `json:"tickets"`
	VerifiedVisits  int `json:"verified_visits"`
	// StudentRedemptions counts redemptions made under a student
	// discount, a subset of the redemption total.
	StudentRedemptions int `json:"student_redemptions"`
}

// EventFilter selects the canonical events one aggregation run counts.
type EventFilter func(models.CanonicalEvent) bool

// InWindow selects events whose timestamp falls inside the window.
func InWindow(w models.ResolvedWindow) EventFilter {
	return func(e models.CanonicalEvent) bool {
		return WithinWindow(e.Timestamp, w)
	}
}

// InRange selects events inside the query range.
func InRange(r models.DateRange) EventFilter {
	return func(e models.CanonicalEvent) bool {
		return r.Contains(e.Timestamp)
	}
}

// ForEntity narrows a filter to a single entity, as campaign
// attribution requires.
func ForEntity(f EventFilter, entityID string) EventFilter {
	return func(e models.CanonicalEvent) bool {
		return e.EntityID == entityID && f(e)
	}
}

// Aggregate computes overview metrics from normalized events. Pure:
// same events and filter always produce the same result.
//
// Unique customers are deduped across every verified-visit kind; a user
// who both redeemed an offer and checked a ticket in counts once.
// Repeat customers are users whose combined frequency across those same
// kinds is >= 2; the frequency map is the same multiset uniqueness is
// computed from, so the two counts can never disagree. Events without a
// user id stay in the raw totals but never in unique/repeat.
func Aggregate(events []models.CanonicalEvent, match EventFilter) OverviewMetrics {
	var m OverviewMetrics
	visitFreq := make(map[string]int)

	for _, e := range events {
		if !match(e) {
			continue
		}
		switch e.Kind {
		case models.EventKindView:
			m.TotalViews++
		case models.EventKindInteraction:
			m.Interactions++
		case models.EventKindVisit:
			m.Bookings++
		case models.EventKindCheckin:
			m.Tickets++
		case models.EventKindRedemption:
			if e.Student {
				m.StudentRedemptions++
			}
		}
		if e.Kind.VerifiedVisit() {
			m.VerifiedVisits++
			if e.UserID != "" {
				visitFreq[e.UserID]++
			}
		}
	}

	m.UniqueCustomers = len(visitFreq)
	for _, n := range visitFreq {
		if n >= 2 {
			m.RepeatCustomers++
		}
	}
	return m
}

// UniqueVisitorIDs returns the sorted distinct user ids across all
// verified-visit events the filter selects.
func UniqueVisitorIDs(events []models.CanonicalEvent, match EventFilter) []string {
	seen := make(map[string]struct{})
	for _, e := range events {
		if !match(e) || !e.Kind.VerifiedVisit() || e.UserID == "" {
			continue
		}
		seen[e.UserID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TimeSeriesPoint is one day of a dashboard chart.
type TimeSeriesPoint struct {
	Date   string `json:"date"`
	Views  int    `json:"views"`
	Visits int    `json:"visits"`
}

// DailySeries buckets views and verified visits per calendar day across
// the range, one point per day including empty ones.
func DailySeries(events []models.CanonicalEvent, r models.DateRange) []TimeSeriesPoint {
	const layout = "2006-01-02"

	byDay := make(map[string]*TimeSeriesPoint)
	var points []TimeSeriesPoint
	for d := startOfDay(r.From); d.Before(r.To); d = d.AddDate(0, 0, 1) {
		points = append(points, TimeSeriesPoint{Date: d.Format(layout)})
	}
	for i := range points {
		byDay[points[i].Date] = &points[i]
	}

	for _, e := range events {
		if !r.Contains(e.Timestamp) {
			continue
		}
		p, ok := byDay[e.Timestamp.Format(layout)]
		if !ok {
			continue
		}
		switch {
		case e.Kind == models.EventKindView:
			p.Views++
		case e.Kind.VerifiedVisit():
			p.Visits++
		}
	}
	return points
}
