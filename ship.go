package sailship

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ship is an entity of the simulation.
//
// Physics driven ships (built with NewShip) always hold valid Elements, Visual elements and an SOI
// state. Sail is nil for ships without a sail, which then coast. Flyby is nil unless the ship is
// on an extreme eccentricity SOI passage, in which case it overrides the closed form propagation.
// Beacons (built with NewBeacon) hold a fixed position and are ignored by the physics.
type Ship struct {
	Name     string
	Mass     float64         // kg
	Elements OrbitalElements // Authoritative orbit, around SOI.CurrentBody
	Visual   OrbitalElements // Lagging copy of Elements for drawing the orbit
	SOI      SOIState
	Sail     *SailConfig
	Flyby    *ExtremeFlyby
	Position r3.Vec // Cached heliocentric position (AU)
	Velocity r3.Vec // Cached heliocentric velocity (AU/day)
	driven   bool
}

// NewShip returns a physics driven ship on the provided heliocentric orbit.
// The sail is copied and may be nil.
func NewShip(name string, mass float64, elements OrbitalElements, sail *SailConfig) (*Ship, error) {
	if err := elements.Validate(); err != nil {
		return nil, fmt.Errorf("ship %s: %w", name, err)
	}
	if !finite(mass) || mass <= 0 {
		return nil, fmt.Errorf("ship %s: invalid mass %g kg", name, mass)
	}
	s := &Ship{Name: name, Mass: mass, Elements: elements, Visual: elements, SOI: Heliocentric(), driven: true}
	if sail != nil {
		if err := sail.Validate(); err != nil {
			return nil, fmt.Errorf("ship %s: sail: %w", name, err)
		}
		cpy := *sail
		s.Sail = &cpy
	}
	state, err := ElementsToState(elements, elements.Epoch)
	if err != nil {
		return nil, fmt.Errorf("ship %s: %w", name, err)
	}
	s.Position, s.Velocity = state.R, state.V
	return s, nil
}

// NewBeacon returns a ship which is not physics driven, fixed at the provided heliocentric position.
func NewBeacon(name string, position r3.Vec) *Ship {
	return &Ship{Name: name, Position: position, SOI: Heliocentric()}
}

// PhysicsDriven returns whether this ship carries orbital elements.
func (s *Ship) PhysicsDriven() bool {
	return s != nil && s.driven
}

// SetSailAngles changes the attitude of the sail.
func (s *Ship) SetSailAngles(angle, pitch float64) error {
	if s.Sail == nil {
		return ErrNoSail
	}
	if !finite(angle, pitch) {
		return fmt.Errorf("%w: sail angles %g %g", ErrNonFinite, angle, pitch)
	}
	s.Sail.Angle, s.Sail.Pitch = angle, pitch
	return nil
}

// Clone returns a deep copy of this ship. Mutating the clone never affects the original.
func (s *Ship) Clone() *Ship {
	c := *s
	if s.Sail != nil {
		sail := *s.Sail
		c.Sail = &sail
	}
	if s.Flyby != nil {
		flyby := *s.Flyby
		c.Flyby = &flyby
	}
	return &c
}

// String implements the Stringer interface.
func (s *Ship) String() string {
	if !s.PhysicsDriven() {
		return fmt.Sprintf("%s (beacon) @%v", s.Name, s.Position)
	}
	return fmt.Sprintf("%s %s %s", s.Name, s.SOI, s.Elements)
}
