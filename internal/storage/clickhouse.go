package storage

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/scenenow/boost-metrics/internal/models"
)

// ClickHouseEngagementSource implements EngagementSource over the
// high-volume engagement log. Views, interactions and RSVPs land in
// ClickHouse from the tracking pipeline; this source only ever reads
// bounded slices scoped by business and date range.
type ClickHouseEngagementSource struct {
	conn driver.Conn
}

// NewClickHouseEngagementSource creates an engagement source over an
// open ClickHouse connection.
func NewClickHouseEngagementSource(conn driver.Conn) *ClickHouseEngagementSource {
	return &ClickHouseEngagementSource{conn: conn}
}

func (s *ClickHouseEngagementSource) ListEngagements(ctx context.Context, businessID string, dr models.DateRange) ([]models.EngagementRow, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT event_type, entity_id, entity_type, user_id, occurred_at
		FROM engagement_log
		WHERE business_id = ? AND occurred_at >= ? AND occurred_at < ?
	`, businessID, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("query engagement log: %w", err)
	}
	defer rows.Close()

	var res []models.EngagementRow
	for rows.Next() {
		var row models.EngagementRow
		var entityType string
		if err := rows.Scan(&row.EventType, &row.EntityID, &entityType, &row.UserID, &row.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan engagement row: %w", err)
		}
		row.EntityType = models.EntityType(entityType)
		res = append(res, row)
	}
	return res, rows.Err()
}

func (s *ClickHouseEngagementSource) ListFollowers(ctx context.Context, businessID string, dr models.DateRange) ([]models.FollowerRow, error) {
	// Followers are a separate table from the engagement log; both
	// feed the interaction count.
	rows, err := s.conn.Query(ctx, `
		SELECT business_id, user_id, created_at
		FROM followers
		WHERE business_id = ? AND created_at >= ? AND created_at < ?
	`, businessID, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("query followers: %w", err)
	}
	defer rows.Close()

	var res []models.FollowerRow
	for rows.Next() {
		var row models.FollowerRow
		if err := rows.Scan(&row.BusinessID, &row.UserID, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follower row: %w", err)
		}
		res = append(res, row)
	}
	return res, rows.Err()
}
