package cloudmesh

import (
	"fmt"
	"sync"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// reservationCache memoizes reservation cost and recommendation results
// for the life of the client. Errors are never cached.
//
// In the default compatible mode the cache is a single slot per
// operation: the first successful result is returned for every later
// call, regardless of its parameters. Set Config.KeyedReservationCache to
// key entries by their request parameters instead.
type reservationCache struct {
	mu    sync.Mutex
	keyed bool
	cost  map[string]*finops.ReservationCost
	recs  map[string]*finops.ReservationRecommendations
}

func newReservationCache(keyed bool) *reservationCache {
	return &reservationCache{
		keyed: keyed,
		cost:  make(map[string]*finops.ReservationCost),
		recs:  make(map[string]*finops.ReservationRecommendations),
	}
}

func (c *reservationCache) costKey(req finops.ReservationCostRequest) string {
	if !c.keyed {
		return ""
	}
	return fmt.Sprintf("%s|%s|%s", req.StartDate, req.EndDate, req.Granularity)
}

func (c *reservationCache) recsKey(req finops.ReservationRecommendationsRequest) string {
	if !c.keyed {
		return ""
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		req.LookbackPeriod, req.Term, req.PaymentOption, req.Scope, req.Filter)
}

func (c *reservationCache) getCost(key string) (*finops.ReservationCost, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cost[key]
	return v, ok
}

func (c *reservationCache) putCost(key string, v *finops.ReservationCost) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cost[key] = v
}

func (c *reservationCache) getRecs(key string) (*finops.ReservationRecommendations, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.recs[key]
	return v, ok
}

func (c *reservationCache) putRecs(key string, v *finops.ReservationRecommendations) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs[key] = v
}
