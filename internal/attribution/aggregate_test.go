package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scenenow/boost-metrics/internal/models"
)

func marchRange() models.DateRange {
	return models.DateRange{
		From: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ev(kind models.EventKind, userID string, day, hour int) models.CanonicalEvent {
	return models.CanonicalEvent{
		Timestamp:  time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC),
		Kind:       kind,
		EntityID:   "biz1",
		EntityType: models.EntityTypeProfile,
		UserID:     userID,
	}
}

func TestAggregateDedupesAcrossVisitKinds(t *testing.T) {
	// One user redeems an offer and checks a ticket in during the same
	// range: one unique customer, and because the combined frequency is
	// two, also one repeat customer.
	events := []models.CanonicalEvent{
		ev(models.EventKindRedemption, "userA", 5, 12),
		ev(models.EventKindCheckin, "userA", 9, 20),
	}

	m := Aggregate(events, InRange(marchRange()))
	require.Equal(t, 1, m.UniqueCustomers)
	require.Equal(t, 1, m.RepeatCustomers)
	require.Equal(t, 2, m.VerifiedVisits)
}

func TestAggregateAnonymousVisits(t *testing.T) {
	// Anonymous redemptions count in the visit totals but never toward
	// unique or repeat customers.
	events := []models.CanonicalEvent{
		ev(models.EventKindRedemption, "", 5, 12),
		ev(models.EventKindRedemption, "", 5, 13),
		ev(models.EventKindVisit, "userB", 6, 18),
	}

	m := Aggregate(events, InRange(marchRange()))
	require.Equal(t, 3, m.VerifiedVisits)
	require.Equal(t, 1, m.UniqueCustomers)
	require.Equal(t, 0, m.RepeatCustomers)
}

func TestAggregateKindCounters(t *testing.T) {
	events := []models.CanonicalEvent{
		ev(models.EventKindView, "u1", 2, 9),
		ev(models.EventKindView, "", 2, 10),
		ev(models.EventKindInteraction, "u1", 2, 11),
		ev(models.EventKindVisit, "u2", 3, 18),
		ev(models.EventKindCheckin, "u3", 4, 20),
		ev(models.EventKindRedemption, "u3", 4, 21),
	}

	m := Aggregate(events, InRange(marchRange()))
	require.Equal(t, 2, m.TotalViews)
	require.Equal(t, 1, m.Interactions)
	require.Equal(t, 1, m.Bookings)
	require.Equal(t, 1, m.Tickets)
	require.Equal(t, 3, m.VerifiedVisits)
	require.Equal(t, 2, m.UniqueCustomers)
	require.Equal(t, 1, m.RepeatCustomers)
}

func TestAggregateStudentRedemptions(t *testing.T) {
	student := ev(models.EventKindRedemption, "u1", 5, 12)
	student.Student = true
	events := []models.CanonicalEvent{
		student,
		ev(models.EventKindRedemption, "u2", 6, 13),
		ev(models.EventKindCheckin, "u3", 7, 20),
	}

	m := Aggregate(events, InRange(marchRange()))
	require.Equal(t, 1, m.StudentRedemptions)
	require.Equal(t, 3, m.VerifiedVisits)
}

func TestAggregateRepeatNeverExceedsUnique(t *testing.T) {
	events := []models.CanonicalEvent{
		ev(models.EventKindRedemption, "u1", 1, 10),
		ev(models.EventKindRedemption, "u1", 2, 10),
		ev(models.EventKindCheckin, "u2", 3, 10),
		ev(models.EventKindVisit, "u3", 4, 10),
		ev(models.EventKindVisit, "u3", 5, 10),
		ev(models.EventKindVisit, "u3", 6, 10),
	}

	m := Aggregate(events, InRange(marchRange()))
	require.Equal(t, 3, m.UniqueCustomers)
	require.Equal(t, 2, m.RepeatCustomers)
	require.LessOrEqual(t, m.RepeatCustomers, m.UniqueCustomers)
}

func TestAggregateFilterExcludes(t *testing.T) {
	events := []models.CanonicalEvent{
		ev(models.EventKindView, "u1", 5, 9),
		{
			Timestamp: time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC),
			Kind:      models.EventKindView,
			EntityID:  "biz1",
		},
	}

	m := Aggregate(events, InRange(marchRange()))
	require.Equal(t, 1, m.TotalViews)
}

func TestForEntityNarrowsFilter(t *testing.T) {
	events := []models.CanonicalEvent{
		ev(models.EventKindCheckin, "u1", 5, 20),
		{
			Timestamp:  time.Date(2024, time.March, 5, 20, 0, 0, 0, time.UTC),
			Kind:       models.EventKindCheckin,
			EntityID:   "other-event",
			EntityType: models.EntityTypeEvent,
			UserID:     "u2",
		},
	}

	m := Aggregate(events, ForEntity(InRange(marchRange()), "biz1"))
	require.Equal(t, 1, m.Tickets)
	require.Equal(t, 1, m.UniqueCustomers)
}

func TestUniqueVisitorIDsSorted(t *testing.T) {
	events := []models.CanonicalEvent{
		ev(models.EventKindRedemption, "zeta", 5, 12),
		ev(models.EventKindCheckin, "alpha", 6, 12),
		ev(models.EventKindCheckin, "zeta", 7, 12),
		ev(models.EventKindView, "beta", 8, 12),
	}

	ids := UniqueVisitorIDs(events, InRange(marchRange()))
	require.Equal(t, []string{"alpha", "zeta"}, ids)
}

func TestDailySeriesIncludesEmptyDays(t *testing.T) {
	r := models.DateRange{
		From: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
	}
	events := []models.CanonicalEvent{
		ev(models.EventKindView, "u1", 1, 9),
		ev(models.EventKindView, "u1", 1, 10),
		ev(models.EventKindCheckin, "u1", 3, 20),
	}

	series := DailySeries(events, r)
	require.Len(t, series, 3)
	require.Equal(t, TimeSeriesPoint{Date: "2024-03-01", Views: 2}, series[0])
	require.Equal(t, TimeSeriesPoint{Date: "2024-03-02"}, series[1])
	require.Equal(t, TimeSeriesPoint{Date: "2024-03-03", Visits: 1}, series[2])
}
