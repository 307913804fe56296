package sailship

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Plan is the best sail attitude found to approach a body.
type Plan struct {
	Ship      string
	Target    string
	Angle     float64 // Sail cone angle (rad)
	Pitch     float64 // Sail pitch, kept from the ship (rad)
	Intercept Intercept
}

// PlanRequest defines the search space of a navigation plan.
type PlanRequest struct {
	Target  Body
	Start   float64   // Julian date
	Horizon float64   // days
	Steps   int       // Samples per candidate trajectory
	Angles  []float64 // Candidate cone angles (rad), DefaultPlanAngles when empty
}

// DefaultPlanAngles returns the cone angles searched when none are requested: -75° to 75° by 15°.
func DefaultPlanAngles() []float64 {
	angles := make([]float64, 0, 11)
	for deg := -75.0; deg <= 75; deg += 15 {
		angles = append(angles, deg*deg2rad)
	}
	return angles
}

// Validate returns an error if this request cannot be searched.
func (r PlanRequest) Validate() error {
	if !finite(r.Start, r.Horizon) || !finite(r.Angles...) {
		return fmt.Errorf("%w: plan from %g over %g days", ErrNonFinite, r.Start, r.Horizon)
	}
	if r.Horizon <= 0 || r.Steps <= 0 {
		return fmt.Errorf("%w: horizon=%g days steps=%d", ErrInvalidPlan, r.Horizon, r.Steps)
	}
	return nil
}

type planKey struct {
	path   pathKey
	target string
	angles string
}

// Planner searches the sail attitude which brings a ship closest to a body. Candidates are
// predicted concurrently, each on its own copy of the ship. Plans are cached per ship and
// request for the engine's CacheTTL.
type Planner struct {
	engine *Engine
	cache  *ttlCache
	mu     sync.Mutex
}

// NewPlanner returns a new planner.
func NewPlanner(engine *Engine) *Planner {
	return &Planner{engine: engine, cache: newTTLCache(engine.cfg.CacheTTL)}
}

// Search returns the best plan for the request. It returns ErrNoSail if the ship cannot steer,
// and the request's validation error before any candidate is predicted.
func (p *Planner) Search(ctx context.Context, ship *Ship, req PlanRequest) (Plan, error) {
	if !ship.PhysicsDriven() || ship.Sail == nil {
		return Plan{}, ErrNoSail
	}
	if err := req.Validate(); err != nil {
		return Plan{}, err
	}
	angles := req.Angles
	if len(angles) == 0 {
		angles = DefaultPlanAngles()
	}
	key := planKey{path: newPathKey(ship, req.Start, req.Horizon, req.Steps), target: req.Target.Name, angles: fmt.Sprint(angles)}
	p.mu.Lock()
	cached, ok := p.cache.get(key)
	p.mu.Unlock()
	if ok {
		return cached.(Plan), nil
	}

	candidates := make([]Plan, len(angles))
	g, gctx := errgroup.WithContext(ctx)
	for idx, angle := range angles {
		idx, angle := idx, angle
		clone := ship.Clone()
		if err := clone.SetSailAngles(angle, clone.Sail.Pitch); err != nil {
			return Plan{}, err
		}
		g.Go(func() error {
			tr := p.engine.Predict(clone, req.Start, req.Horizon, req.Steps)
			samples := make([]Sample, 0, req.Steps)
			for s, ok := tr.Next(); ok; s, ok = tr.Next() {
				if err := gctx.Err(); err != nil {
					return err
				}
				samples = append(samples, s)
			}
			candidates[idx] = Plan{
				Ship:      ship.Name,
				Target:    req.Target.Name,
				Angle:     angle,
				Pitch:     clone.Sail.Pitch,
				Intercept: EstimateIntercept(samples, req.Target),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}

	best := Plan{Intercept: Intercept{Distance: math.Inf(1)}}
	for _, c := range candidates {
		if c.Intercept.Found && c.Intercept.Distance < best.Intercept.Distance {
			best = c
		}
	}
	if !best.Intercept.Found {
		best = candidates[0]
	}
	p.mu.Lock()
	p.cache.add(key, best)
	p.mu.Unlock()
	return best, nil
}
