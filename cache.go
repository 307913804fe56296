package sailship

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const cacheSize = 128

type ttlEntry struct {
	value   interface{}
	expires time.Time
}

// ttlCache is an LRU whose entries also expire after a fixed duration.
type ttlCache struct {
	entries *lru.Cache
	ttl     time.Duration
	now     func() time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	entries, err := lru.New(cacheSize)
	if err != nil {
		// Only returned for a non positive size.
		panic(err)
	}
	return &ttlCache{entries: entries, ttl: ttl, now: time.Now}
}

func (c *ttlCache) get(key interface{}) (interface{}, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(ttlEntry)
	if !c.now().Before(e.expires) {
		c.entries.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (c *ttlCache) add(key, value interface{}) {
	c.entries.Add(key, ttlEntry{value: value, expires: c.now().Add(c.ttl)})
}

// PredictedPath is a cached trajectory prediction. Its Version identifies this computation.
type PredictedPath struct {
	Version uint64
	Ship    string
	Start   float64
	Samples []Sample
}

type pathKey struct {
	ship    string
	orbit   OrbitalElements
	sail    SailConfig
	start   float64
	horizon float64
	steps   int
}

func newPathKey(ship *Ship, start, horizon float64, steps int) pathKey {
	key := pathKey{ship: ship.Name, orbit: ship.Elements, start: start, horizon: horizon, steps: steps}
	if ship.Sail != nil {
		key.sail = *ship.Sail
	}
	return key
}

// TrajectoryCache memoizes trajectory predictions per ship for a fixed time to live.
type TrajectoryCache struct {
	engine  *Engine
	cache   *ttlCache
	version atomic.Uint64
	mu      sync.Mutex
}

// NewTrajectoryCache returns a cache of predictions computed by the engine, kept for its configured CacheTTL.
func NewTrajectoryCache(engine *Engine) *TrajectoryCache {
	return &TrajectoryCache{engine: engine, cache: newTTLCache(engine.cfg.CacheTTL)}
}

// Path returns the predicted path of the ship, computing it if no fresh prediction exists for the
// same ship orbit and sail, start, horizon and step count.
func (c *TrajectoryCache) Path(ship *Ship, start, horizon float64, steps int) PredictedPath {
	key := newPathKey(ship, start, horizon, steps)
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache.get(key); ok {
		return v.(PredictedPath)
	}
	path := PredictedPath{
		Version: c.version.Add(1),
		Ship:    ship.Name,
		Start:   start,
		Samples: c.engine.Predict(ship, start, horizon, steps).Collect(),
	}
	c.cache.add(key, path)
	return path
}

type interceptKey struct {
	ship        string
	target      string
	pathVersion uint64
}

// InterceptCache memoizes intercept estimates. Its entries are keyed by the version of the path
// they were computed from, so a new prediction never returns a stale intercept.
type InterceptCache struct {
	cache *ttlCache
	mu    sync.Mutex
}

// NewInterceptCache returns an intercept cache whose entries live for ttl.
func NewInterceptCache(ttl time.Duration) *InterceptCache {
	return &InterceptCache{cache: newTTLCache(ttl)}
}

// Intercept returns the closest approach of the path to the body.
func (c *InterceptCache) Intercept(path PredictedPath, body Body) Intercept {
	key := interceptKey{ship: path.Ship, target: body.Name, pathVersion: path.Version}
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache.get(key); ok {
		return v.(Intercept)
	}
	i := EstimateIntercept(path.Samples, body)
	c.cache.add(key, i)
	return i
}
