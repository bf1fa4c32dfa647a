package sailprop

import (
	"container/list"
	"encoding/binary"
	"hash/fnv"
	"math"
	"sync"
	"time"
)

// TrajectoryCache memoizes predicted trajectories. It is an explicit object
// owned and passed by the caller — one per ship, or one shared, as the host
// prefers — so there is no ambient global state to clear between tests or
// between ship instances.
//
// Entries are keyed by a fingerprint of the full prediction request (with the
// start time quantized to a bucket), expire after a TTL, and are evicted LRU
// when the cache is full. A sail configuration change lands on a different
// fingerprint, so a fresh trajectory is computed immediately; Invalidate
// additionally drops the now-stale entries without waiting for the TTL.
type TrajectoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	bucket     time.Duration
	ll         *list.List
	entries    map[uint64]*list.Element
	now        func() time.Time
}

type cacheEntry struct {
	key      uint64
	samples  []Sample
	storedAt time.Time
}

// NewTrajectoryCache returns a cache sized per the settings.
func NewTrajectoryCache(cfg Settings) *TrajectoryCache {
	return &TrajectoryCache{
		maxEntries: cfg.CacheSize,
		ttl:        cfg.CacheTTL,
		bucket:     cfg.TimeBucket,
		ll:         list.New(),
		entries:    make(map[uint64]*list.Element),
		now:        time.Now,
	}
}

// GetOrCompute returns the cached trajectory for the request, computing and
// storing it on a miss or on an expired entry.
func (c *TrajectoryCache) GetOrCompute(req PredictionRequest, compute func() []Sample) []Sample {
	key := c.fingerprint(req)
	c.mu.Lock()
	if elem, found := c.entries[key]; found {
		entry := elem.Value.(*cacheEntry)
		if c.now().Sub(entry.storedAt) < c.ttl {
			c.ll.MoveToFront(elem)
			c.mu.Unlock()
			cacheHitsTotal.Inc()
			return entry.samples
		}
		c.removeElement(elem)
		cacheEvictionsTotal.Inc()
	}
	c.mu.Unlock()
	cacheMissesTotal.Inc()

	// Compute outside the lock: calls are synchronous and short, and a
	// duplicate computation on a race is cheaper than holding the lock
	// through the propagation loop.
	samples := compute()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.entries[key]; !found {
		c.entries[key] = c.ll.PushFront(&cacheEntry{key: key, samples: samples, storedAt: c.now()})
		for c.ll.Len() > c.maxEntries {
			c.removeElement(c.ll.Back())
			cacheEvictionsTotal.Inc()
		}
	}
	return samples
}

// Invalidate drops every entry. Call it when the sail configuration changes so
// stale paths cannot be served for the remainder of their TTL.
func (c *TrajectoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.entries = make(map[uint64]*list.Element)
}

// Len returns the number of live entries.
func (c *TrajectoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *TrajectoryCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.ll.Remove(elem)
	delete(c.entries, entry.key)
}

// fingerprint hashes the request into the cache key. The start time is
// rounded down to the bucket so that successive calls within one bucket share
// an entry.
func (c *TrajectoryCache) fingerprint(req PredictionRequest) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)
	wf := func(v float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	wi := func(v int64) {
		binary.LittleEndian.PutUint64(buf, uint64(v))
		h.Write(buf)
	}
	a, e, i, Ω, ω, M0 := req.Orbit.Elements()
	for _, v := range []float64{a, e, i, Ω, ω, M0} {
		wf(v)
	}
	wi(req.Orbit.Epoch.UnixNano())
	h.Write([]byte(req.Orbit.Origin.Name))
	wf(req.Sail.Area)
	wf(req.Sail.Reflectivity)
	wf(req.Sail.Yaw)
	wf(req.Sail.Pitch)
	wf(req.Sail.Deployment)
	wf(req.Sail.Condition)
	wi(int64(req.Sail.Count))
	wf(req.Mass)
	wi(req.Start.Truncate(c.bucket).UnixNano())
	wi(int64(req.Duration))
	wi(int64(req.Steps))
	h.Write([]byte(req.SOI.BodyName))
	if req.SOI.InSOI {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	if req.ExtremeRegime {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return h.Sum64()
}
