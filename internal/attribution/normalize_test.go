package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scenenow/boost-metrics/internal/models"
)

func ts(h, m int) time.Time {
	return time.Date(2024, time.March, 5, h, m, 0, 0, time.UTC)
}

func tsp(h, m int) *time.Time {
	t := ts(h, m)
	return &t
}

func TestNormalizeUnionsFollowerTable(t *testing.T) {
	raw := models.RawEvents{
		Engagements: []models.EngagementRow{
			{EventType: models.EngagementFollow, EntityID: "biz1", EntityType: models.EntityTypeProfile, UserID: "u1", OccurredAt: ts(10, 0)},
		},
		Followers: []models.FollowerRow{
			{BusinessID: "biz1", UserID: "u2", CreatedAt: ts(11, 0)},
		},
	}

	events := Normalize(raw)
	require.Len(t, events, 2)
	for _, e := range events {
		require.Equal(t, models.EventKindInteraction, e.Kind)
	}
}

func TestNormalizeViewsAndUnknownTypes(t *testing.T) {
	raw := models.RawEvents{
		Engagements: []models.EngagementRow{
			{EventType: models.EngagementProfileView, EntityID: "biz1", EntityType: models.EntityTypeProfile, UserID: "u1", OccurredAt: ts(9, 0)},
			{EventType: "heartbeat", EntityID: "biz1", EntityType: models.EntityTypeProfile, OccurredAt: ts(9, 1)},
		},
	}

	events := Normalize(raw)
	require.Len(t, events, 1)
	require.Equal(t, models.EventKindView, events[0].Kind)
	require.Empty(t, events[0].AmountCents)
}

func TestNormalizeDropsUnscannedTickets(t *testing.T) {
	raw := models.RawEvents{
		TicketCheckins: []models.TicketCheckinRow{
			{TicketID: "t1", EventID: "ev1", UserID: "u1", CheckedInAt: tsp(20, 0), TierPriceCents: 2500, OrderID: "o1"},
			{TicketID: "t2", EventID: "ev1", UserID: "u2", TierPriceCents: 2500, OrderID: "o1"},
		},
	}

	events := Normalize(raw)
	require.Len(t, events, 1)
	require.Equal(t, models.EventKindCheckin, events[0].Kind)
	require.Equal(t, int64(2500), events[0].AmountCents)
	require.Equal(t, "o1", events[0].OrderID)
}

func TestNormalizePerUnitAmounts(t *testing.T) {
	// Two tickets of the same order checked in at different times keep
	// their own tier price each.
	raw := models.RawEvents{
		TicketCheckins: []models.TicketCheckinRow{
			{TicketID: "t1", EventID: "ev1", UserID: "u1", CheckedInAt: tsp(19, 0), TierPriceCents: 3000, OrderID: "o9"},
			{TicketID: "t2", EventID: "ev1", UserID: "u1", CheckedInAt: tsp(22, 30), TierPriceCents: 3000, OrderID: "o9"},
		},
	}

	events := Normalize(raw)
	require.Len(t, events, 2)
	var total int64
	for _, e := range events {
		total += e.AmountCents
	}
	require.Equal(t, int64(6000), total)
	require.NotEqual(t, events[0].Timestamp, events[1].Timestamp)
}

func TestNormalizeReservationEntity(t *testing.T) {
	raw := models.RawEvents{
		ReservationCheckins: []models.ReservationCheckinRow{
			{ReservationID: "r1", BusinessID: "biz1", UserID: "u1", CheckedInAt: tsp(18, 0), PrepaidCents: 1500},
			{ReservationID: "r2", BusinessID: "biz1", EventID: "ev1", UserID: "u2", CheckedInAt: tsp(18, 30)},
		},
	}

	events := Normalize(raw)
	require.Len(t, events, 2)

	// Direct reservations attach to the business profile, event
	// reservations to the event.
	require.Equal(t, "biz1", events[0].EntityID)
	require.Equal(t, models.EntityTypeProfile, events[0].EntityType)
	require.Equal(t, "ev1", events[1].EntityID)
	require.Equal(t, models.EntityTypeEvent, events[1].EntityType)
}

func TestNormalizeRedemptions(t *testing.T) {
	raw := models.RawEvents{
		OfferRedemptions: []models.OfferRedemptionRow{
			{OfferID: "of1", BusinessID: "biz1", RedeemedAt: tsp(12, 0), AmountCents: 800},
			{OfferID: "of1", BusinessID: "biz1", UserID: "u1", RedeemedAt: tsp(13, 0), AmountCents: 800, Student: true},
		},
	}

	events := Normalize(raw)
	require.Len(t, events, 2)
	require.Equal(t, models.EventKindRedemption, events[0].Kind)
	// Anonymous walk-in: no user id, not a student redemption.
	require.Empty(t, events[0].UserID)
	require.False(t, events[0].Student)
	require.True(t, events[1].Student)
}
