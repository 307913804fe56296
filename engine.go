package sailship

import (
	"context"
	"fmt"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/spatial/r3"
)

// TickOutcome is what a physics tick did to a ship.
type TickOutcome uint8

const (
	// TickIgnored is returned for ships which are not physics driven.
	TickIgnored TickOutcome = iota + 1
	// TickPaused is returned when time is frozen: only the visual elements moved.
	TickPaused
	// TickDegenerate is returned when the state could not be computed: the ship was left as is.
	TickDegenerate
	// TickTransition is returned when the ship entered or exited a sphere of influence.
	TickTransition
	// TickCollision is returned when the orbit was circularized above the surface of a body.
	TickCollision
	// TickThrust is returned when the sail changed the orbit.
	TickThrust
	// TickCoast is returned when the ship followed its orbit unperturbed.
	TickCoast
)

func (o TickOutcome) String() string {
	switch o {
	case TickIgnored:
		return "ignored"
	case TickPaused:
		return "paused"
	case TickDegenerate:
		return "degenerate"
	case TickTransition:
		return "transition"
	case TickCollision:
		return "collision"
	case TickThrust:
		return "thrust"
	case TickCoast:
		return "coast"
	}
	return "unknown"
}

// Engine advances ships. It is not safe for concurrent use: one engine drives one simulation,
// and predictions run on private engines.
type Engine struct {
	cfg       Config
	bodies    BodyProvider
	influence *Influence
	logger    kitlog.Logger
	metrics   *Metrics
}

// NewEngine returns a new physics engine. The logger and the metrics may be nil.
func NewEngine(cfg Config, bodies BodyProvider, logger kitlog.Logger, metrics *Metrics) *Engine {
	logger = orNop(logger)
	return &Engine{
		cfg:       cfg,
		bodies:    bodies,
		influence: NewInfluence(bodies, cfg, logger, metrics),
		logger:    kitlog.With(logger, "subsys", "astro"),
		metrics:   metrics,
	}
}

// Influence returns the sphere of influence component of this engine.
func (e *Engine) Influence() *Influence {
	return e.influence
}

// Config returns the configuration of this engine.
func (e *Engine) Config() Config {
	return e.cfg
}

// Tick advances the ship by dt days, the clock having already been advanced to the end of the step.
// In planning mode the effective time step is zero.
func (e *Engine) Tick(ship *Ship, clock *Clock, dt float64) TickOutcome {
	if !ship.PhysicsDriven() {
		return TickIgnored
	}
	if clock.Planning || dt <= 0 || !finite(dt) {
		e.smooth(ship)
		return TickPaused
	}
	t := clock.PhysicsTime()

	local, helio, err := e.resolve(ship, t)
	if err != nil {
		e.metrics.degenerate("propagate")
		level.Warn(e.logger).Log("ship", ship.Name, "jd", t, "err", err)
		e.smooth(ship)
		return TickDegenerate
	}

	// Frame transitions.
	if ship.SOI.InSOI {
		if !e.influence.IsInsideSOI(helio.R, ship.SOI.CurrentBody, t) && e.influence.Exit(ship, local, t) {
			return e.finish(ship, t, TickTransition)
		}
	} else {
		crossing := e.influence.DetectTrajectoryCrossing(helio.R, helio.V, e.bodies.Bodies(), dt, t)
		if crossing != nil && e.influence.Enter(ship, crossing, t) {
			return e.finish(ship, t, TickTransition)
		}
	}

	if ship.SOI.InSOI && e.influence.GuardCollision(ship, t) {
		return e.finish(ship, t, TickCollision)
	}

	outcome := TickCoast
	if ship.Sail != nil && !e.linearFlyby(ship) {
		force := ComputeSailForce(*ship.Sail, helio.R, helio.V, r3.Norm(helio.R), ship.Mass)
		if r3.Norm(force) > e.cfg.NegligibleThrust {
			if n, ok := ApplyThrust(ship.Elements, SailAcceleration(force, ship.Mass), dt, t); ok {
				ship.Elements = n
				e.metrics.thrust()
				outcome = TickThrust
			} else {
				e.metrics.degenerate("thrust")
				level.Debug(e.logger).Log("ship", ship.Name, "jd", t, "thrust", "skipped", "force(N)", r3.Norm(force))
			}
		}
	}
	return e.finish(ship, t, outcome)
}

// Run ticks the ship with the provided step until the clock advanced by the provided number of
// days, or until the context is done.
func (e *Engine) Run(ctx context.Context, ship *Ship, clock *Clock, days, step float64) error {
	return e.run(ctx, ship, clock, days, step, nil)
}

// RunRealtime is Run paced to the wall clock, at most tickRate ticks per second.
func (e *Engine) RunRealtime(ctx context.Context, ship *Ship, clock *Clock, days, step, tickRate float64) error {
	if tickRate <= 0 || !finite(tickRate) {
		return fmt.Errorf("invalid tick rate %g", tickRate)
	}
	limiter := rate.NewLimiter(rate.Limit(tickRate), 1)
	return e.run(ctx, ship, clock, days, step, limiter.Wait)
}

func (e *Engine) run(ctx context.Context, ship *Ship, clock *Clock, days, step float64, wait func(context.Context) error) error {
	if step <= 0 || !finite(step) {
		return fmt.Errorf("invalid step %g", step)
	}
	end := clock.PhysicsTime() + days
	for clock.PhysicsTime() < end {
		if err := ctx.Err(); err != nil {
			return err
		}
		if wait != nil {
			if err := wait(ctx); err != nil {
				return err
			}
		}
		dt := clock.Advance(min(step, end-clock.PhysicsTime()))
		if dt == 0 {
			return nil
		}
		e.Tick(ship, clock, dt)
	}
	level.Info(e.logger).Log("ship", ship.Name, "status", "finished", "jd", clock.PhysicsTime(), "soi", ship.SOI, "orbit", ship.Elements)
	return nil
}

// linearFlyby returns whether the extreme flyby override replaces the closed form propagation.
func (e *Engine) linearFlyby(ship *Ship) bool {
	return ship.Flyby != nil && ship.Elements.E > e.cfg.ExtremeEccentricity
}

// resolve returns the state of the ship at t in its current frame and in the heliocentric frame.
func (e *Engine) resolve(ship *Ship, t float64) (local, helio CartesianState, err error) {
	if e.linearFlyby(ship) {
		local = ship.Flyby.StateAt(t)
	} else if local, err = ElementsToState(ship.Elements, t); err != nil {
		return
	}
	if !ship.SOI.InSOI {
		return local, local, nil
	}
	offset, _ := heliocentricOffset(e.bodies, ship.SOI.CurrentBody, t)
	return local, ToHeliocentric(local, offset), nil
}

// finish refreshes the cached heliocentric state of the ship and its visual elements.
func (e *Engine) finish(ship *Ship, t float64, outcome TickOutcome) TickOutcome {
	_, helio, err := e.resolve(ship, t)
	if err != nil {
		e.metrics.degenerate("refresh")
		level.Warn(e.logger).Log("ship", ship.Name, "jd", t, "outcome", outcome, "err", err)
	} else {
		ship.Position, ship.Velocity = helio.R, helio.V
	}
	e.smooth(ship)
	return outcome
}

func (e *Engine) smooth(ship *Ship) {
	ship.Visual = SmoothVisual(ship.Visual, ship.Elements, e.cfg)
}
