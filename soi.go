package sailship

import (
	"math"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"
)

// SOIState is the sphere of influence membership of a ship.
// A CurrentBody of SunName means the ship is in the heliocentric frame.
type SOIState struct {
	CurrentBody string
	InSOI       bool
}

// Heliocentric returns the membership of a ship outside of any planetary sphere of influence.
func Heliocentric() SOIState {
	return SOIState{CurrentBody: SunName}
}

func (s SOIState) String() string {
	if !s.InSOI {
		return "heliocentric"
	}
	return "in SOI of " + s.CurrentBody
}

// ExtremeFlyby is the entry state of an SOI passage whose eccentricity is too high for a
// closed form propagation. While set, the ship moves in a straight line from the entry state.
type ExtremeFlyby struct {
	EntryPos  r3.Vec  // Planetocentric (AU)
	EntryVel  r3.Vec  // Planetocentric (AU/day)
	EntryTime float64 // Julian date
}

// StateAt returns the linearly extrapolated planetocentric state at the provided Julian date.
func (f ExtremeFlyby) StateAt(t float64) CartesianState {
	return CartesianState{R: r3.Add(f.EntryPos, r3.Scale(t-f.EntryTime, f.EntryVel)), V: f.EntryVel}
}

// Crossing is the entry of a trajectory segment into a sphere of influence.
// Positions and velocities are heliocentric.
type Crossing struct {
	Body            Body
	EntryPosition   r3.Vec
	EntryVelocity   r3.Vec
	EntryFraction   float64 // Fraction of the time step at which the SOI is entered, zero if already inside
	EntryTime       float64 // Julian date of the entry
	ClosestApproach float64 // Closest distance to the body center over the segment (AU)
}

// ToPlanetocentric converts a heliocentric state into the frame of the body whose heliocentric state is provided.
func ToPlanetocentric(s, body CartesianState) CartesianState {
	return s.Sub(body)
}

// ToHeliocentric converts a planetocentric state back into the heliocentric frame.
func ToHeliocentric(s, body CartesianState) CartesianState {
	return s.Add(body)
}

// Influence detects sphere of influence transitions and performs them.
// It owns the per body transition cooldown, hence one Influence must be used per simulation.
type Influence struct {
	bodies         BodyProvider
	cfg            Config
	logger         kitlog.Logger
	metrics        *Metrics
	lastTransition map[string]float64 // Julian date of the last transition, per body
}

// NewInfluence returns a new Influence. The logger and the metrics may be nil.
func NewInfluence(bodies BodyProvider, cfg Config, logger kitlog.Logger, metrics *Metrics) *Influence {
	return &Influence{
		bodies:         bodies,
		cfg:            cfg,
		logger:         kitlog.With(orNop(logger), "subsys", "soi"),
		metrics:        metrics,
		lastTransition: make(map[string]float64),
	}
}

// SphereOfInfluenceRadius returns the SOI radius in AU of the named body, or 0 if it has none or is unknown.
func (i *Influence) SphereOfInfluenceRadius(name string) float64 {
	b, ok := i.bodies.Body(name)
	if !ok || b.IsStar() {
		return 0
	}
	return b.SOI
}

// GravitationalParameter returns μ in AU³/day² of the named body, or 0 if it is unknown.
func (i *Influence) GravitationalParameter(name string) float64 {
	b, ok := i.bodies.Body(name)
	if !ok {
		if name == SunName {
			return MuSun
		}
		return 0
	}
	return b.Mu
}

// IsInsideSOI returns whether the heliocentric position is within the SOI of the named body at t.
func (i *Influence) IsInsideSOI(pos r3.Vec, name string, t float64) bool {
	b, ok := i.bodies.Body(name)
	if !ok || b.IsStar() || b.SOI <= 0 {
		return false
	}
	s, err := b.StateAt(t)
	if err != nil {
		return false
	}
	return distance(pos, s.R) < b.SOI
}

// DetectTrajectoryCrossing returns the first candidate body whose SOI contains the start position,
// or is crossed by the straight segment traveled at vel during dt, or nil. The segment is
// computed relative to each body, which moves linearly over the step.
// Candidates are tested in order and the first hit wins, even if a later candidate is entered earlier.
func (i *Influence) DetectTrajectoryCrossing(start, vel r3.Vec, candidates []Body, dt, t float64) *Crossing {
	for _, b := range candidates {
		if b.IsStar() || b.SOI <= 0 {
			continue
		}
		bs, err := b.StateAt(t)
		if err != nil {
			continue
		}
		rel := r3.Sub(start, bs.R)
		dist := r3.Norm(rel)
		if dist < b.SOI {
			return &Crossing{Body: b, EntryPosition: start, EntryVelocity: vel, EntryTime: t, ClosestApproach: dist}
		}
		if dt <= 0 {
			continue
		}
		// Segment rel + u·d for u in [0, 1].
		d := r3.Scale(dt, r3.Sub(vel, bs.V))
		dd := r3.Dot(d, d)
		if dd == 0 {
			continue
		}
		u := math.Max(0, math.Min(1, -r3.Dot(rel, d)/dd))
		closest := r3.Norm(r3.Add(rel, r3.Scale(u, d)))
		if closest >= b.SOI {
			continue
		}
		// Smallest root of |rel + u·d|² = SOI².
		half := r3.Dot(rel, d)
		c := dist*dist - b.SOI*b.SOI
		disc := math.Max(0, half*half-dd*c)
		entry := (-half - math.Sqrt(disc)) / dd
		entry = math.Max(0, math.Min(u, entry))
		return &Crossing{
			Body:            b,
			EntryPosition:   r3.Add(start, r3.Scale(entry*dt, vel)),
			EntryVelocity:   vel,
			EntryFraction:   entry,
			EntryTime:       t + entry*dt,
			ClosestApproach: closest,
		}
	}
	return nil
}

// cooling returns whether a transition involving the named body at t is suppressed.
func (i *Influence) cooling(name string, t float64) bool {
	last, ok := i.lastTransition[name]
	if !ok {
		return false
	}
	return math.Abs(t-last) < i.cfg.CooldownDays
}

// Enter moves a heliocentric ship into the SOI of the crossed body. It returns false, leaving the
// ship untouched, if the transition is blocked by the cooldown or if the planetocentric state
// cannot be described by orbital elements.
func (i *Influence) Enter(ship *Ship, c *Crossing, t float64) bool {
	if c == nil || ship.SOI.InSOI {
		return false
	}
	name := c.Body.Name
	if i.cooling(name, t) {
		i.metrics.blocked(name)
		level.Debug(i.logger).Log("event", "blocked", "body", name, "dir", "enter", "jd", t)
		return false
	}
	μ := c.Body.Mu
	if μ <= 0 {
		return false
	}
	bs, err := c.Body.StateAt(c.EntryTime)
	if err != nil {
		return false
	}
	local := ToPlanetocentric(CartesianState{R: c.EntryPosition, V: c.EntryVelocity}, bs)
	o, err := StateToElements(local.R, local.V, μ, c.EntryTime)
	if err != nil {
		i.metrics.degenerate("soi_enter")
		level.Warn(i.logger).Log("event", "enter", "body", name, "jd", t, "err", err)
		return false
	}
	ship.Elements = o
	ship.SOI = SOIState{CurrentBody: name, InSOI: true}
	ship.Flyby = nil
	if o.E > i.cfg.ExtremeEccentricity {
		ship.Flyby = &ExtremeFlyby{EntryPos: local.R, EntryVel: local.V, EntryTime: c.EntryTime}
	}
	i.lastTransition[name] = t
	i.metrics.transition(name, "enter")
	level.Info(i.logger).Log("event", "enter", "ship", ship.Name, "body", name, "jd", t, "orbit", Classify(local.R, local.V, μ), "e", o.E, "closest(AU)", c.ClosestApproach)
	return true
}

// Exit moves a ship back to the heliocentric frame from the planetocentric state provided.
// It returns false, leaving the ship untouched, if the transition is blocked by the cooldown
// or if the heliocentric state cannot be described by orbital elements.
func (i *Influence) Exit(ship *Ship, local CartesianState, t float64) bool {
	if !ship.SOI.InSOI {
		return false
	}
	name := ship.SOI.CurrentBody
	if i.cooling(name, t) {
		i.metrics.blocked(name)
		level.Debug(i.logger).Log("event", "blocked", "body", name, "dir", "exit", "jd", t)
		return false
	}
	bs, ok := heliocentricOffset(i.bodies, name, t)
	if !ok {
		// The body vanished from the catalog: its SOI no longer applies.
		bs = CartesianState{}
	}
	helio := ToHeliocentric(local, bs)
	o, err := StateToElements(helio.R, helio.V, i.GravitationalParameter(SunName), t)
	if err != nil {
		i.metrics.degenerate("soi_exit")
		level.Warn(i.logger).Log("event", "exit", "body", name, "jd", t, "err", err)
		return false
	}
	ship.Elements = o
	ship.SOI = Heliocentric()
	ship.Flyby = nil
	i.lastTransition[name] = t
	i.metrics.transition(name, "exit")
	level.Info(i.logger).Log("event", "exit", "ship", ship.Name, "body", name, "jd", t, "e", o.E, "a(AU)", o.A)
	return true
}

// GuardCollision circularizes the orbit of a ship in an SOI whose periapsis is below the safety
// floor of the body, keeping the orbit orientation. It returns whether a correction happened.
func (i *Influence) GuardCollision(ship *Ship, t float64) bool {
	if !ship.SOI.InSOI {
		return false
	}
	b, ok := i.bodies.Body(ship.SOI.CurrentBody)
	if !ok || b.RadiusKm <= 0 {
		return false
	}
	floor := b.RadiusKm * i.cfg.SafetyMultiplier
	periapsis := ship.Elements.Periapsis() * AU
	if periapsis >= floor {
		return false
	}
	ship.Elements.E = 0
	ship.Elements.A = b.RadiusKm * i.cfg.SafeOrbitMultiplier / AU
	ship.Elements.M0 = 0
	ship.Elements.Epoch = t
	ship.Flyby = nil
	i.metrics.collision(b.Name)
	level.Warn(i.logger).Log("event", "collision", "ship", ship.Name, "body", b.Name, "jd", t, "periapsis(km)", periapsis, "floor(km)", floor)
	return true
}
