package sailship

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPredict(t *testing.T) {
	eng, _ := testEngine(t, DefaultConfig())
	ship := cruiser(t, nil)
	before := *ship

	tr := eng.Predict(ship, J2000, 10, 20)
	samples := tr.Collect()
	if len(samples) != 20 {
		t.Fatalf("%d samples", len(samples))
	}
	if _, ok := tr.Next(); ok {
		t.Fatal("exhausted trajectory returned a sample")
	}
	for i, s := range samples {
		jd := J2000 + 0.5*float64(i+1)
		if math.Abs(s.Time-jd) > 1e-9 {
			t.Fatalf("sample #%d at %f", i, s.Time-J2000)
		}
		exp, _ := ElementsToState(ship.Elements, s.Time)
		if !vectorsEqual(s.Vec(), exp.R, 1e-15) {
			t.Fatalf("sample #%d off the orbit", i)
		}
	}
	if ship.Elements != before.Elements || ship.Position != before.Position || ship.Visual != before.Visual {
		t.Fatal("prediction modified the ship")
	}

	for _, tr := range []*Trajectory{
		eng.Predict(NewBeacon("buoy", r3.Vec{X: 1}), J2000, 10, 10),
		eng.Predict(ship, J2000, 10, 0),
		eng.Predict(ship, J2000, -1, 10),
		eng.Predict(ship, math.NaN(), 10, 10),
	} {
		if s := tr.Collect(); len(s) != 0 {
			t.Fatalf("expected no samples, got %d", len(s))
		}
	}
}

func TestPredictIsolation(t *testing.T) {
	eng, m := testEngine(t, DefaultConfig())
	ship, _ := flybyShip(t)
	samples := eng.Predict(ship, J2000, 2, 4).Collect()
	if len(samples) != 4 {
		t.Fatalf("%d samples", len(samples))
	}
	if ship.SOI.InSOI || testutil.ToFloat64(m.Transitions.WithLabelValues("Testia", "enter")) != 0 {
		t.Fatal("the prediction leaked into the simulation")
	}
	// The predicted entry does not put the engine's SOI in cooldown.
	clock := &Clock{JD: J2000, PlanningJD: J2000}
	if o := eng.Tick(ship, clock, 1); o != TickTransition {
		t.Fatalf("entry after prediction: %s", o)
	}
}

func TestEstimateIntercept(t *testing.T) {
	s0, _ := testia.StateAt(J2000)
	s1, _ := testia.StateAt(J2000 + 1)
	samples := []Sample{
		{X: s0.R.X + 0.2, Y: s0.R.Y, Z: s0.R.Z, Time: J2000},
		{X: s1.R.X, Y: s1.R.Y, Z: s1.R.Z + 0.005, Time: J2000 + 1},
		{X: 3, Time: J2000 + 2},
	}
	i := EstimateIntercept(samples, testia)
	if !i.Found || i.Body != "Testia" || i.Time != J2000+1 || math.Abs(i.Distance-0.005) > 1e-12 || !i.InsideSOI {
		t.Fatalf("invalid intercept: %+v", i)
	}
	i = EstimateIntercept(samples[:1], testia)
	if !i.Found || i.InsideSOI || math.Abs(i.Distance-0.2) > 1e-12 {
		t.Fatalf("invalid far intercept: %+v", i)
	}
	if i := EstimateIntercept(nil, testia); i.Found || !math.IsInf(i.Distance, 1) {
		t.Fatalf("intercept without samples: %+v", i)
	}
}
