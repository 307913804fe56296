package sailship

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewShip(t *testing.T) {
	o := OrbitalElements{A: 1.2, E: 0.1, Epoch: J2000, Mu: MuSun}
	sail := testSail()
	ship, err := NewShip("Columbus", 500, o, &sail)
	if err != nil {
		t.Fatal(err)
	}
	if !ship.PhysicsDriven() || ship.Visual != o || ship.SOI != Heliocentric() || ship.Flyby != nil {
		t.Fatalf("invalid new ship: %s", ship)
	}
	if ship.Sail == &sail {
		t.Fatal("the sail must be copied")
	}
	exp, _ := ElementsToState(o, J2000)
	if ship.Position != exp.R || ship.Velocity != exp.V {
		t.Fatal("cached state not initialized")
	}
	if !strings.HasPrefix(ship.String(), "Columbus heliocentric") {
		t.Fatalf("invalid string: %s", ship)
	}

	for _, tc := range []struct {
		mass float64
		o    OrbitalElements
		sail *SailConfig
	}{
		{0, o, nil},
		{math.NaN(), o, nil},
		{500, OrbitalElements{A: 1, E: 1, Mu: MuSun}, nil},
		{500, o, &SailConfig{Area: -1}},
	} {
		if _, err := NewShip("broken", tc.mass, tc.o, tc.sail); err == nil {
			t.Fatalf("expected an error for %+v", tc)
		}
	}
}

func TestBeacon(t *testing.T) {
	b := NewBeacon("buoy", r3.Vec{X: 1})
	if b.PhysicsDriven() || !strings.Contains(b.String(), "beacon") {
		t.Fatalf("invalid beacon: %s", b)
	}
	var nilShip *Ship
	if nilShip.PhysicsDriven() {
		t.Fatal("nil ship is physics driven")
	}
}

func TestShipSailAnglesAndClone(t *testing.T) {
	o := OrbitalElements{A: 1.2, E: 0.1, Epoch: J2000, Mu: MuSun}
	ship, _ := NewShip("coaster", 500, o, nil)
	if err := ship.SetSailAngles(0.1, 0); !errors.Is(err, ErrNoSail) {
		t.Fatalf("expected ErrNoSail, got %v", err)
	}

	sail := testSail()
	ship, _ = NewShip("sailor", 500, o, &sail)
	if err := ship.SetSailAngles(math.Inf(1), 0); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	if err := ship.SetSailAngles(0.5, 0.1); err != nil || ship.Sail.Angle != 0.5 || ship.Sail.Pitch != 0.1 {
		t.Fatalf("angles not set: %v %+v", err, ship.Sail)
	}

	ship.Flyby = &ExtremeFlyby{EntryTime: J2000}
	clone := ship.Clone()
	clone.Sail.Angle = -1
	clone.Flyby.EntryTime = 0
	clone.Elements.A = 3
	if ship.Sail.Angle != 0.5 || ship.Flyby.EntryTime != J2000 || ship.Elements.A != 1.2 {
		t.Fatal("mutating the clone changed the original")
	}
	if !clone.PhysicsDriven() {
		t.Fatal("clone must stay physics driven")
	}
}
