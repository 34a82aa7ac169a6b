package amis

import (
	"context"

	"github.com/sproutsell/agricredit/pkg/logger"
	"github.com/sproutsell/agricredit/pkg/redis"
)

// Service serves market prices through the cache so the AMIS site is hit
// at most once per TTL window.
type Service struct {
	client *Client
	cache  *redis.Cache
	logger *logger.Logger
}

// NewService creates a cached market price service.
func NewService(client *Client, cache *redis.Cache, log *logger.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		logger: log,
	}
}

// Prices returns current market prices, cached per the configured TTL.
func (s *Service) Prices(ctx context.Context) ([]MarketPrice, error) {
	var prices []MarketPrice
	err := s.cache.GetOrSet(ctx, redis.MarketPricesKey("all"), &prices, s.client.cfg.CacheTTL, func() (interface{}, error) {
		fetched, err := s.client.FetchPrices(ctx)
		if err != nil {
			return nil, err
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return prices, nil
}
