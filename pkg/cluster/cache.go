package cluster

import "github.com/sanonone/kektorcluster/pkg/metrics"

// pairKey is an unordered pair of node ids, stored with a < b.
type pairKey struct {
	a, b int
}

func newPairKey(x, y int) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// distanceCache memoizes metric values between node ids for one hierarchical
// run. Ids are only unique within a run, so a cache must never outlive it.
// Entries of merged nodes stay in the map until the run ends.
type distanceCache struct {
	values       map[pairKey]float64
	hits, misses int
}

func newDistanceCache(capacity int) *distanceCache {
	return &distanceCache{values: make(map[pairKey]float64, capacity)}
}

// get returns the cached value for the pair, counting the lookup.
func (c *distanceCache) get(x, y int) (float64, bool) {
	d, ok := c.values[newPairKey(x, y)]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return d, ok
}

// put stores a value. A second put for the same pair overwrites it with what
// is, for a deterministic metric, the same number.
func (c *distanceCache) put(x, y int, d float64) {
	c.values[newPairKey(x, y)] = d
}

// value reads an entry without touching the counters.
func (c *distanceCache) value(x, y int) float64 {
	return c.values[newPairKey(x, y)]
}

func (c *distanceCache) len() int {
	return len(c.values)
}

// flush reports the lookup counters to Prometheus.
func (c *distanceCache) flush() {
	metrics.DistanceCacheLookups.WithLabelValues("hit").Add(float64(c.hits))
	metrics.DistanceCacheLookups.WithLabelValues("miss").Add(float64(c.misses))
}
