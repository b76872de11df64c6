// Package commission resolves the commission percent applicable to a
// business's verified-visit revenue. Resolution is an ordered list of
// strategies evaluated first-success-wins; a failing strategy degrades
// to the next with a warning, never an error, so commission lookups can
// never abort the surrounding aggregation.
package commission

import (
	"context"

	"go.uber.org/zap"

	"github.com/scenenow/boost-metrics/internal/models"
)

// Strategy is one step of the resolution chain. ok=false means the
// strategy has no answer (unavailable source, no plan on file) and the
// chain moves on.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, businessID string) (percent int, ok bool)
}

// Chain evaluates strategies in order and returns the first answer.
// The final static strategy always resolves, so Percent never fails.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewChain builds a resolver chain. Strategies run in the order given.
func NewChain(logger *zap.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Percent resolves the business-level commission percent.
func (c *Chain) Percent(ctx context.Context, businessID string) int {
	for i, s := range c.strategies {
		if pct, ok := s.Resolve(ctx, businessID); ok {
			if i > 0 {
				c.logger.Debug("commission resolved by fallback",
					zap.String("business_id", businessID),
					zap.String("strategy", s.Name()),
					zap.Int("percent", pct),
				)
			}
			return pct
		}
	}
	// Unreachable when the chain ends with StaticDefault; kept as a
	// hard floor for misassembled chains.
	return models.CommissionPercentForPlan(models.PlanFree)
}

// PlanSource exposes the subscription plan a business currently holds.
type PlanSource interface {
	ActivePlanSlug(ctx context.Context, businessID string) (string, error)
}

// PlanTableStrategy maps the business's active plan slug to the static
// default commission table. Unknown slugs resolve at the free rate.
type PlanTableStrategy struct {
	plans  PlanSource
	logger *zap.Logger
}

func NewPlanTableStrategy(plans PlanSource, logger *zap.Logger) *PlanTableStrategy {
	return &PlanTableStrategy{plans: plans, logger: logger}
}

func (s *PlanTableStrategy) Name() string { return "plan_table" }

func (s *PlanTableStrategy) Resolve(ctx context.Context, businessID string) (int, bool) {
	slug, err := s.plans.ActivePlanSlug(ctx, businessID)
	if err != nil {
		s.logger.Warn("plan lookup failed, deferring to default rate",
			zap.String("business_id", businessID),
			zap.Error(err),
		)
		return 0, false
	}
	return models.CommissionPercentForPlan(slug), true
}

// StaticDefault terminates every chain at the free-tier rate.
type StaticDefault struct{}

func (StaticDefault) Name() string { return "static_default" }

func (StaticDefault) Resolve(context.Context, string) (int, bool) {
	return models.CommissionPercentForPlan(models.PlanFree), true
}

// OrderLookup builds the per-event lookup the revenue calculator uses.
// A rate frozen on a historical order takes precedence over the
// business-level percent for that order's retroactive accounting.
func OrderLookup(orderRates map[string]int, businessPercent int) func(orderID string) int {
	return func(orderID string) int {
		if orderID != "" {
			if pct, ok := orderRates[orderID]; ok {
				return pct
			}
		}
		return businessPercent
	}
}
