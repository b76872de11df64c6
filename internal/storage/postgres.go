package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scenenow/boost-metrics/internal/models"
)

// PostgresCampaignRepo implements CampaignRepo over the transactional
// database.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresCampaignRepo creates a Postgres-backed campaign repo.
func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

func (r *PostgresCampaignRepo) ListByBusiness(ctx context.Context, businessID string, dr models.DateRange) ([]*models.Campaign, error) {
	// Daily boosts intersect the range through their dates; hourly
	// boosts through created_at + duration. Status is deliberately not
	// filtered: canceled boosts keep their historical windows.
	rows, err := r.pool.Query(ctx, `
		SELECT id, target_type, target_id, business_id, duration_mode,
		       start_date, end_date, duration_hours, status, total_cost_cents, created_at
		FROM boost_campaigns
		WHERE business_id = $1
		  AND created_at < $3
		  AND (
		        (duration_mode = 'daily' AND end_date >= $2::date)
		     OR (duration_mode = 'hourly' AND created_at + make_interval(hours => duration_hours) > $2)
		  )
		ORDER BY created_at
	`, businessID, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var res []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(
			&c.ID, &c.TargetType, &c.TargetID, &c.BusinessID, &c.DurationMode,
			&c.StartDate, &c.EndDate, &c.DurationHours, &c.Status, &c.TotalCostCents, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

func (r *PostgresCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign
	err := r.pool.QueryRow(ctx, `
		SELECT id, target_type, target_id, business_id, duration_mode,
		       start_date, end_date, duration_hours, status, total_cost_cents, created_at
		FROM boost_campaigns WHERE id = $1
	`, id).Scan(
		&c.ID, &c.TargetType, &c.TargetID, &c.BusinessID, &c.DurationMode,
		&c.StartDate, &c.EndDate, &c.DurationHours, &c.Status, &c.TotalCostCents, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

func (r *PostgresCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	if c == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO boost_campaigns
			(id, target_type, target_id, business_id, duration_mode,
			 start_date, end_date, duration_hours, status, total_cost_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
	`, c.ID, c.TargetType, c.TargetID, c.BusinessID, c.DurationMode,
		c.StartDate, c.EndDate, c.DurationHours, c.Status, c.TotalCostCents, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}
	return nil
}

// PostgresPlanHistoryRepo implements PlanHistoryRepo.
type PostgresPlanHistoryRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresPlanHistoryRepo creates a Postgres-backed plan history repo.
func NewPostgresPlanHistoryRepo(pool *pgxpool.Pool) *PostgresPlanHistoryRepo {
	return &PostgresPlanHistoryRepo{pool: pool}
}

func (r *PostgresPlanHistoryRepo) ListIntervals(ctx context.Context, businessID string) ([]models.PlanInterval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT business_id, plan_slug, valid_from, valid_to
		FROM business_plan_history
		WHERE business_id = $1
		ORDER BY valid_from
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list plan intervals: %w", err)
	}
	defer rows.Close()

	var res []models.PlanInterval
	for rows.Next() {
		var p models.PlanInterval
		if err := rows.Scan(&p.BusinessID, &p.PlanSlug, &p.ValidFrom, &p.ValidTo); err != nil {
			return nil, fmt.Errorf("scan plan interval: %w", err)
		}
		p.OpenEnded = p.ValidTo == nil
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *PostgresPlanHistoryRepo) ActivePlanSlug(ctx context.Context, businessID string) (string, error) {
	var slug string
	err := r.pool.QueryRow(ctx, `
		SELECT plan_slug FROM business_plan_history
		WHERE business_id = $1 AND valid_to IS NULL
		ORDER BY valid_from DESC LIMIT 1
	`, businessID).Scan(&slug)
	if err == pgx.ErrNoRows {
		return models.PlanFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("active plan: %w", err)
	}
	return slug, nil
}

// PostgresVisitSource implements VisitSource over the transactional
// tables that record redemptions and check-ins.
type PostgresVisitSource struct {
	pool *pgxpool.Pool
}

// NewPostgresVisitSource creates a Postgres-backed visit source.
func NewPostgresVisitSource(pool *pgxpool.Pool) *PostgresVisitSource {
	return &PostgresVisitSource{pool: pool}
}

func (s *PostgresVisitSource) ListOfferRedemptions(ctx context.Context, businessID string, dr models.DateRange) ([]models.OfferRedemptionRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT offer_id, business_id, user_id, redeemed_at, amount_cents, order_id, student
		FROM offer_redemptions
		WHERE business_id = $1 AND redeemed_at >= $2 AND redeemed_at < $3
	`, businessID, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("list offer redemptions: %w", err)
	}
	defer rows.Close()

	var res []models.OfferRedemptionRow
	for rows.Next() {
		var row models.OfferRedemptionRow
		var userID, orderID *string
		if err := rows.Scan(&row.OfferID, &row.BusinessID, &userID, &row.RedeemedAt, &row.AmountCents, &orderID, &row.Student); err != nil {
			return nil, fmt.Errorf("scan offer redemption: %w", err)
		}
		row.UserID = deref(userID)
		row.OrderID = deref(orderID)
		res = append(res, row)
	}
	return res, rows.Err()
}

func (s *PostgresVisitSource) ListTicketCheckins(ctx context.Context, businessID string, dr models.DateRange) ([]models.TicketCheckinRow, error) {
	// The amount is the tier price of each checked-in ticket, joined
	// per unit: tickets from one order check in at different times so
	// the parent order total must never be summed here.
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.event_id, e.business_id, t.user_id, t.checked_in_at,
		       tt.price_cents, t.order_id
		FROM tickets t
		JOIN ticket_tiers tt ON tt.id = t.tier_id
		JOIN events e ON e.id = t.event_id
		WHERE e.business_id = $1 AND t.checked_in_at >= $2 AND t.checked_in_at < $3
	`, businessID, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("list ticket checkins: %w", err)
	}
	defer rows.Close()

	var res []models.TicketCheckinRow
	for rows.Next() {
		var row models.TicketCheckinRow
		var userID, orderID *string
		if err := rows.Scan(&row.TicketID, &row.EventID, &row.BusinessID, &userID, &row.CheckedInAt, &row.TierPriceCents, &orderID); err != nil {
			return nil, fmt.Errorf("scan ticket checkin: %w", err)
		}
		row.UserID = deref(userID)
		row.OrderID = deref(orderID)
		res = append(res, row)
	}
	return res, rows.Err()
}

func (s *PostgresVisitSource) ListReservationCheckins(ctx context.Context, businessID string, dr models.DateRange) ([]models.ReservationCheckinRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, event_id, user_id, checked_in_at, prepaid_cents, order_id
		FROM reservations
		WHERE business_id = $1 AND checked_in_at >= $2 AND checked_in_at < $3
	`, businessID, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("list reservation checkins: %w", err)
	}
	defer rows.Close()

	var res []models.ReservationCheckinRow
	for rows.Next() {
		var row models.ReservationCheckinRow
		var eventID, userID, orderID *string
		if err := rows.Scan(&row.ReservationID, &row.BusinessID, &eventID, &userID, &row.CheckedInAt, &row.PrepaidCents, &orderID); err != nil {
			return nil, fmt.Errorf("scan reservation checkin: %w", err)
		}
		row.EventID = deref(eventID)
		row.UserID = deref(userID)
		row.OrderID = deref(orderID)
		res = append(res, row)
	}
	return res, rows.Err()
}

func (s *PostgresVisitSource) OrderCommissionRates(ctx context.Context, businessID string, dr models.DateRange) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, commission_percent
		FROM orders
		WHERE business_id = $1 AND commission_percent IS NOT NULL
		  AND created_at >= $2 AND created_at < $3
	`, businessID, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("list order commissions: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]int)
	for rows.Next() {
		var id string
		var pct int
		if err := rows.Scan(&id, &pct); err != nil {
			return nil, fmt.Errorf("scan order commission: %w", err)
		}
		rates[id] = pct
	}
	return rates, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
