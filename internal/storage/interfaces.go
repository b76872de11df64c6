package storage

import (
	"context"

	"github.com/scenenow/boost-metrics/internal/models"
)

// =============================================
// CAMPAIGN REPOSITORY
// =============================================

// CampaignRepo defines read access to boost campaigns.
type CampaignRepo interface {
	// ListByBusiness returns every campaign for the business whose
	// lifetime could intersect the range, regardless of status:
	// canceled campaigns keep their historical attribution for the
	// periods that genuinely ran.
	ListByBusiness(ctx context.Context, businessID string, r models.DateRange) ([]*models.Campaign, error)
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	Upsert(ctx context.Context, c *models.Campaign) error
}

// =============================================
// PLAN HISTORY REPOSITORY
// =============================================

// PlanHistoryRepo exposes a business's subscription tier history.
type PlanHistoryRepo interface {
	// ListIntervals returns the full plan history ordered by ValidFrom.
	ListIntervals(ctx context.Context, businessID string) ([]models.PlanInterval, error)
	// ActivePlanSlug returns the tier currently held, or the free slug
	// when the business has no open-ended interval on file.
	ActivePlanSlug(ctx context.Context, businessID string) (string, error)
}

// =============================================
// ENGAGEMENT SOURCE (high-volume log)
// =============================================

// EngagementSource reads view/interaction rows scoped by business and
// date range.
type EngagementSource interface {
	ListEngagements(ctx context.Context, businessID string, r models.DateRange) ([]models.EngagementRow, error)
	ListFollowers(ctx context.Context, businessID string, r models.DateRange) ([]models.FollowerRow, error)
}

// =============================================
// VISIT SOURCE (transactional rows)
// =============================================

// VisitSource reads the verified-visit rows: redemptions and check-ins,
// plus the commission percents frozen on their orders.
type VisitSource interface {
	ListOfferRedemptions(ctx context.Context, businessID string, r models.DateRange) ([]models.OfferRedemptionRow, error)
	ListTicketCheckins(ctx context.Context, businessID string, r models.DateRange) ([]models.TicketCheckinRow, error)
	ListReservationCheckins(ctx context.Context, businessID string, r models.DateRange) ([]models.ReservationCheckinRow, error)
	// OrderCommissionRates returns order id -> frozen percent for the
	// business's orders inside the range.
	OrderCommissionRates(ctx context.Context, businessID string, r models.DateRange) (map[string]int, error)
}
