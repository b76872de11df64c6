package models

import (
	"time"
)

// EventKind classifies a canonical event by what the customer did.
type EventKind string

const (
	EventKindView        EventKind = "view"
	EventKindInteraction EventKind = "interaction"
	EventKindVisit       EventKind = "visit"
	EventKindCheckin     EventKind = "checkin"
	EventKindRedemption  EventKind = "redemption"
)

// VerifiedVisit reports whether the kind represents a physical-world
// customer action (check-in or redemption) as opposed to a passive
// view or interaction. Only verified visits are eligible for revenue
// and customer accounting.
func (k EventKind) VerifiedVisit() bool {
	switch k {
	case EventKindVisit, EventKindCheckin, EventKindRedemption:
		return true
	}
	return false
}

type EntityType string

const (
	EntityTypeProfile EntityType = "profile"
	EntityTypeOffer   EntityType = "offer"
	EntityTypeEvent   EntityType = "event"
)

// CanonicalEvent is the single shape every raw customer event row is
// normalized into. Purely in-memory, never persisted. UserID is empty
// for anonymous events (walk-in redemptions); AmountCents carries the
// per-unit monetary value where one exists (ticket tier price,
// reservation prepaid minimum).
type CanonicalEvent struct {
	Timestamp   time.Time  `json:"timestamp"`
	Kind        EventKind  `json:"kind"`
	EntityID    string     `json:"entity_id"`
	EntityType  EntityType `json:"entity_type"`
	UserID      string     `json:"user_id,omitempty"`
	AmountCents int64      `json:"amount_cents,omitempty"`
	// OrderID links a monetary event back to the order that froze its
	// commission rate at purchase time.
	OrderID string `json:"order_id,omitempty"`
	// Student marks a redemption made under a student discount.
	Student bool `json:"student,omitempty"`
}

// ===========================================
// ENGAGEMENT LOG ROWS (views, interactions, RSVPs)
// ===========================================

// Engagement event types recorded in the high-volume engagement log.
const (
	EngagementProfileView = "profile_view"
	EngagementFollow      = "follow"
	EngagementFavorite    = "favorite"
	EngagementShare       = "share"
	EngagementClick       = "click"
	EngagementRSVP        = "rsvp"
)

// EngagementRow is one row of the engagement log.
type EngagementRow struct {
	EventType  string     `json:"event_type"`
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
	UserID     string     `json:"user_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// FollowerRow records a follower being added to a business profile.
// Followers live in their own table and must be unioned with the
// engagement log when counting interactions.
type FollowerRow struct {
	BusinessID string    `json:"business_id"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ===========================================
// VERIFIED-VISIT ROWS (check-ins, redemptions)
// ===========================================

// OfferRedemptionRow is a redeemed offer voucher. UserID is empty for
// anonymous walk-in redemptions.
type OfferRedemptionRow struct {
	OfferID     string     `json:"offer_id"`
	BusinessID  string     `json:"business_id"`
	UserID      string     `json:"user_id,omitempty"`
	RedeemedAt  *time.Time `json:"redeemed_at,omitempty"`
	AmountCents int64      `json:"amount_cents,omitempty"`
	OrderID     string     `json:"order_id,omitempty"`
	Student     bool       `json:"student"`
}

// TicketCheckinRow is one checked-in ticket. The amount is the ticket
// tier's price, not a share of the parent order: tickets from one order
// can check in at different times and must attribute independently.
type TicketCheckinRow struct {
	TicketID       string     `json:"ticket_id"`
	EventID        string     `json:"event_id"`
	BusinessID     string     `json:"business_id"`
	UserID         string     `json:"user_id,omitempty"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
	TierPriceCents int64      `json:"tier_price_cents"`
	OrderID        string     `json:"order_id,omitempty"`
}

// ReservationCheckinRow is a checked-in reservation, either direct at
// the business or tied to one of its events. The amount is the prepaid
// minimum spend on the reservation.
type ReservationCheckinRow struct {
	ReservationID string     `json:"reservation_id"`
	BusinessID    string     `json:"business_id"`
	EventID       string     `json:"event_id,omitempty"`
	UserID        string     `json:"user_id,omitempty"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	PrepaidCents  int64      `json:"prepaid_cents,omitempty"`
	OrderID       string     `json:"order_id,omitempty"`
}

// RawEvents bundles every raw row set a metrics request operates on,
// already scoped by the caller to one business's entities and the
// requested date range.
type RawEvents struct {
	Engagements         []EngagementRow
	Followers           []FollowerRow
	OfferRedemptions    []OfferRedemptionRow
	TicketCheckins      []TicketCheckinRow
	ReservationCheckins []ReservationCheckinRow
}

// OrderCommissionRow carries the commission percent frozen on a
// historical order at purchase time.
type OrderCommissionRow struct {
	OrderID    string `json:"order_id"`
	BusinessID string `json:"business_id"`
	Percent    int    `json:"percent"`
}

// DateRange is an inclusive-start, exclusive-end query range.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether ts falls inside the range.
func (r DateRange) Contains(ts time.Time) bool {
	return !ts.Before(r.From) && ts.Before(r.To)
}
