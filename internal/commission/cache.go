package commission

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedChain fronts a Chain with a short-TTL Redis cache so dashboards
// refreshing every few seconds do not hammer the rate service. Cache
// failures are treated as misses.
type CachedChain struct {
	chain  *Chain
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedChain(chain *Chain, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedChain {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedChain{chain: chain, client: client, ttl: ttl, logger: logger}
}

func cacheKey(businessID string) string {
	return fmt.Sprintf("commission:pct:%s", businessID)
}

// Percent resolves through the cache, falling through to the chain on a
// miss.
func (c *CachedChain) Percent(ctx context.Context, businessID string) int {
	if c.client != nil {
		val, err := c.client.Get(ctx, cacheKey(businessID)).Result()
		if err == nil {
			if pct, perr := strconv.Atoi(val); perr == nil {
				return pct
			}
		} else if err != redis.Nil {
			c.logger.Debug("commission cache read failed",
				zap.String("business_id", businessID),
				zap.Error(err),
			)
		}
	}

	pct := c.chain.Percent(ctx, businessID)

	if c.client != nil {
		if err := c.client.Set(ctx, cacheKey(businessID), strconv.Itoa(pct), c.ttl).Err(); err != nil {
			c.logger.Debug("commission cache write failed",
				zap.String("business_id", businessID),
				zap.Error(err),
			)
		}
	}
	return pct
}
