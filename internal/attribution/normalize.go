package attribution

import (
	"github.com/scenenow/boost-metrics/internal/models"
)

// Normalize maps every raw row set into the single canonical event
// shape the aggregator consumes. Rows without a usable timestamp
// (tickets never checked in, reservations never honored) are dropped:
// a sold-but-unscanned ticket is not a visit.
func Normalize(raw models.RawEvents) []models.CanonicalEvent {
	out := make([]models.CanonicalEvent, 0,
		len(raw.Engagements)+len(raw.Followers)+len(raw.OfferRedemptions)+
			len(raw.TicketCheckins)+len(raw.ReservationCheckins))

	for _, e := range raw.Engagements {
		kind, ok := engagementKind(e.EventType)
		if !ok || e.OccurredAt.IsZero() {
			continue
		}
		out = append(out, models.CanonicalEvent{
			Timestamp:  e.OccurredAt,
			Kind:       kind,
			EntityID:   e.EntityID,
			EntityType: e.EntityType,
			UserID:     e.UserID,
		})
	}

	// Followers live in their own table; both sources count as
	// interactions or the total under-counts.
	for _, f := range raw.Followers {
		if f.CreatedAt.IsZero() {
			continue
		}
		out = append(out, models.CanonicalEvent{
			Timestamp:  f.CreatedAt,
			Kind:       models.EventKindInteraction,
			EntityID:   f.BusinessID,
			EntityType: models.EntityTypeProfile,
			UserID:     f.UserID,
		})
	}

	for _, r := range raw.OfferRedemptions {
		if r.RedeemedAt == nil || r.RedeemedAt.IsZero() {
			continue
		}
		out = append(out, models.CanonicalEvent{
			Timestamp:   *r.RedeemedAt,
			Kind:        models.EventKindRedemption,
			EntityID:    r.OfferID,
			EntityType:  models.EntityTypeOffer,
			UserID:      r.UserID,
			AmountCents: r.AmountCents,
			OrderID:     r.OrderID,
			Student:     r.Student,
		})
	}

	// Revenue is carried per checked-in ticket at its tier price, not
	// as a share of the parent order: tickets from one order check in
	// at different times and must attribute independently.
	for _, t := range raw.TicketCheckins {
		if t.CheckedInAt == nil || t.CheckedInAt.IsZero() {
			continue
		}
		out = append(out, models.CanonicalEvent{
			Timestamp:   *t.CheckedInAt,
			Kind:        models.EventKindCheckin,
			EntityID:    t.EventID,
			EntityType:  models.EntityTypeEvent,
			UserID:      t.UserID,
			AmountCents: t.TierPriceCents,
			OrderID:     t.OrderID,
		})
	}

	for _, r := range raw.ReservationCheckins {
		if r.CheckedInAt == nil || r.CheckedInAt.IsZero() {
			continue
		}
		entityID := r.BusinessID
		entityType := models.EntityTypeProfile
		if r.EventID != "" {
			entityID = r.EventID
			entityType = models.EntityTypeEvent
		}
		out = append(out, models.CanonicalEvent{
			Timestamp:   *r.CheckedInAt,
			Kind:        models.EventKindVisit,
			EntityID:    entityID,
			EntityType:  entityType,
			UserID:      r.UserID,
			AmountCents: r.PrepaidCents,
			OrderID:     r.OrderID,
		})
	}

	return out
}

func engagementKind(eventType string) (models.EventKind, bool) {
	switch eventType {
	case models.EngagementProfileView:
		return models.EventKindView, true
	case models.EngagementFollow, models.EngagementFavorite,
		models.EngagementShare, models.EngagementClick, models.EngagementRSVP:
		return models.EventKindInteraction, true
	}
	return "", false
}
