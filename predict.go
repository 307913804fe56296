package sailship

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is a predicted heliocentric position (AU) at a Julian date.
type Sample struct {
	X, Y, Z float64
	Time    float64
}

// Vec returns the position of this sample.
func (s Sample) Vec() r3.Vec {
	return r3.Vec{X: s.X, Y: s.Y, Z: s.Z}
}

// Trajectory is a finite sequence of predicted samples, computed lazily. It cannot be restarted.
type Trajectory struct {
	engine *Engine
	ship   *Ship
	clock  *Clock
	step   float64
	steps  int
	done   int
}

// Predict returns the future trajectory of a copy of the ship from start over horizon days, in
// the provided number of steps. The ship is copied when Predict is called and is never modified.
// The prediction has its own SOI cooldowns, and neither logs nor records metrics.
func (e *Engine) Predict(ship *Ship, start, horizon float64, steps int) *Trajectory {
	tr := &Trajectory{engine: NewEngine(e.cfg, e.bodies, nil, nil)}
	if !ship.PhysicsDriven() || steps <= 0 || horizon <= 0 || !finite(start, horizon) {
		return tr
	}
	tr.ship = ship.Clone()
	tr.clock = &Clock{JD: start, PlanningJD: start}
	tr.step = horizon / float64(steps)
	tr.steps = steps
	return tr
}

// Next returns the next sample, and false once the trajectory is exhausted.
func (tr *Trajectory) Next() (Sample, bool) {
	if tr.done >= tr.steps {
		return Sample{}, false
	}
	tr.done++
	tr.clock.Advance(tr.step)
	tr.engine.Tick(tr.ship, tr.clock, tr.step)
	p := tr.ship.Position
	return Sample{X: p.X, Y: p.Y, Z: p.Z, Time: tr.clock.JD}, true
}

// Collect drains the remaining samples.
func (tr *Trajectory) Collect() []Sample {
	samples := make([]Sample, 0, tr.steps-tr.done)
	for s, ok := tr.Next(); ok; s, ok = tr.Next() {
		samples = append(samples, s)
	}
	return samples
}

// Intercept is the closest approach of a predicted trajectory to a body.
type Intercept struct {
	Body      string
	Time      float64 // Julian date
	Distance  float64 // AU
	InsideSOI bool    // Whether the closest approach is within the SOI of the body
	Found     bool    // False when there were no samples to search
}

// EstimateIntercept returns the closest approach of the samples to the body.
func EstimateIntercept(samples []Sample, body Body) Intercept {
	best := Intercept{Body: body.Name, Distance: math.Inf(1)}
	for _, s := range samples {
		bs, err := body.StateAt(s.Time)
		if err != nil {
			continue
		}
		if d := distance(s.Vec(), bs.R); d < best.Distance {
			best.Time, best.Distance, best.Found = s.Time, d, true
		}
	}
	best.InsideSOI = best.Found && body.SOI > 0 && best.Distance < body.SOI
	return best
}
