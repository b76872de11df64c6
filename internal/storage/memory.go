package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/scenenow/boost-metrics/internal/models"
)

// InMemoryStore implements every source interface in memory. Intended
// for tests and for development when the backing stores are not
// available; production deployments use the Postgres and ClickHouse
// implementations.
type InMemoryStore struct {
	mu sync.RWMutex

	campaigns map[string]*models.Campaign
	plans     map[string][]models.PlanInterval // businessID -> intervals

	engagements  map[string][]models.EngagementRow
	followers    map[string][]models.FollowerRow
	redemptions  map[string][]models.OfferRedemptionRow
	tickets      map[string][]models.TicketCheckinRow
	reservations map[string][]models.ReservationCheckinRow
	orderRates   map[string]map[string]int // businessID -> orderID -> percent
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		campaigns:    make(map[string]*models.Campaign),
		plans:        make(map[string][]models.PlanInterval),
		engagements:  make(map[string][]models.EngagementRow),
		followers:    make(map[string][]models.FollowerRow),
		redemptions:  make(map[string][]models.OfferRedemptionRow),
		tickets:      make(map[string][]models.TicketCheckinRow),
		reservations: make(map[string][]models.ReservationCheckinRow),
		orderRates:   make(map[string]map[string]int),
	}
}

// ---- CampaignRepo ----

func (s *InMemoryStore) ListByBusiness(ctx context.Context, businessID string, r models.DateRange) ([]*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*models.Campaign
	for _, c := range s.campaigns {
		if c.BusinessID == businessID {
			cp := *c
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.campaigns[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s *InMemoryStore) Upsert(ctx context.Context, c *models.Campaign) error {
	if c == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	s.campaigns[cp.ID] = &cp
	return nil
}

// ---- PlanHistoryRepo ----

func (s *InMemoryStore) ListIntervals(ctx context.Context, businessID string) ([]models.PlanInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intervals := append([]models.PlanInterval(nil), s.plans[businessID]...)
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].ValidFrom.Before(intervals[j].ValidFrom) })
	return intervals, nil
}

func (s *InMemoryStore) ActivePlanSlug(ctx context.Context, businessID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plans[businessID] {
		if p.OpenEnded && p.ValidTo == nil {
			return p.PlanSlug, nil
		}
	}
	return models.PlanFree, nil
}

// AddPlanInterval appends an interval to a business's history.
func (s *InMemoryStore) AddPlanInterval(p models.PlanInterval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.BusinessID] = append(s.plans[p.BusinessID], p)
}

// ---- EngagementSource ----

func (s *InMemoryStore) ListEngagements(ctx context.Context, businessID string, r models.DateRange) ([]models.EngagementRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []models.EngagementRow
	for _, e := range s.engagements[businessID] {
		if r.Contains(e.OccurredAt) {
			res = append(res, e)
		}
	}
	return res, nil
}

func (s *InMemoryStore) ListFollowers(ctx context.Context, businessID string, r models.DateRange) ([]models.FollowerRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []models.FollowerRow
	for _, f := range s.followers[businessID] {
		if r.Contains(f.CreatedAt) {
			res = append(res, f)
		}
	}
	return res, nil
}

// AddEngagement records an engagement row for a business.
func (s *InMemoryStore) AddEngagement(businessID string, e models.EngagementRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engagements[businessID] = append(s.engagements[businessID], e)
}

// AddFollower records a follower row for a business.
func (s *InMemoryStore) AddFollower(f models.FollowerRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followers[f.BusinessID] = append(s.followers[f.BusinessID], f)
}

// ---- VisitSource ----

func (s *InMemoryStore) ListOfferRedemptions(ctx context.Context, businessID string, r models.DateRange) ([]models.OfferRedemptionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []models.OfferRedemptionRow
	for _, row := range s.redemptions[businessID] {
		if row.RedeemedAt != nil && r.Contains(*row.RedeemedAt) {
			res = append(res, row)
		}
	}
	return res, nil
}

func (s *InMemoryStore) ListTicketCheckins(ctx context.Context, businessID string, r models.DateRange) ([]models.TicketCheckinRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []models.TicketCheckinRow
	for _, row := range s.tickets[businessID] {
		if row.CheckedInAt != nil && r.Contains(*row.CheckedInAt) {
			res = append(res, row)
		}
	}
	return res, nil
}

func (s *InMemoryStore) ListReservationCheckins(ctx context.Context, businessID string, r models.DateRange) ([]models.ReservationCheckinRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []models.ReservationCheckinRow
	for _, row := range s.reservations[businessID] {
		if row.CheckedInAt != nil && r.Contains(*row.CheckedInAt) {
			res = append(res, row)
		}
	}
	return res, nil
}

func (s *InMemoryStore) OrderCommissionRates(ctx context.Context, businessID string, r models.DateRange) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rates := make(map[string]int, len(s.orderRates[businessID]))
	for id, pct := range s.orderRates[businessID] {
		rates[id] = pct
	}
	return rates, nil
}

// AddOfferRedemption records a redemption row for a business.
func (s *InMemoryStore) AddOfferRedemption(row models.OfferRedemptionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redemptions[row.BusinessID] = append(s.redemptions[row.BusinessID], row)
}

// AddTicketCheckin records a ticket check-in row.
func (s *InMemoryStore) AddTicketCheckin(row models.TicketCheckinRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[row.BusinessID] = append(s.tickets[row.BusinessID], row)
}

// AddReservationCheckin records a reservation check-in row.
func (s *InMemoryStore) AddReservationCheckin(row models.ReservationCheckinRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[row.BusinessID] = append(s.reservations[row.BusinessID], row)
}

// SetOrderCommission freezes a commission percent on an order.
func (s *InMemoryStore) SetOrderCommission(businessID, orderID string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orderRates[businessID] == nil {
		s.orderRates[businessID] = make(map[string]int)
	}
	s.orderRates[businessID][orderID] = percent
}
