package sailship

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestElementsValidate(t *testing.T) {
	valid := OrbitalElements{A: 1, E: 0.1, Mu: MuSun, Epoch: J2000}
	if err := valid.Validate(); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		o   OrbitalElements
		err error
	}{
		{OrbitalElements{A: -1, E: 0.5, Mu: MuSun}, ErrInvalidConic},
		{OrbitalElements{A: 1, E: 1.5, Mu: MuSun}, ErrInvalidConic},
		{OrbitalElements{A: 1, E: 1, Mu: MuSun}, ErrInvalidConic},
		{OrbitalElements{A: 1, E: -0.1, Mu: MuSun}, ErrInvalidConic},
		{OrbitalElements{A: 0, E: 0, Mu: MuSun}, ErrInvalidConic},
		{OrbitalElements{A: 1, E: 0, Mu: 0}, ErrInvalidMu},
		{OrbitalElements{A: math.NaN(), E: 0, Mu: MuSun}, ErrNonFinite},
		{OrbitalElements{A: 1, E: 0, I: math.Inf(1), Mu: MuSun}, ErrNonFinite},
	} {
		if err := tc.o.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("%+v: expected %v, got %v", tc.o, tc.err, err)
		}
		if _, err := ElementsToState(tc.o, J2000); err == nil {
			t.Fatalf("%+v: state computed from invalid elements", tc.o)
		}
	}
}

func TestElementsProperties(t *testing.T) {
	ell := OrbitalElements{A: 2, E: 0.5, Mu: MuSun}
	if ell.Periapsis() != 1 || ell.Apoapsis() != 3 || ell.SemiParameter() != 1.5 {
		t.Fatalf("ellipse: rp=%g ra=%g p=%g", ell.Periapsis(), ell.Apoapsis(), ell.SemiParameter())
	}
	hyp := OrbitalElements{A: -2, E: 1.5, Mu: MuSun}
	if hyp.Periapsis() != 1 || !math.IsInf(hyp.Apoapsis(), 1) || !math.IsInf(hyp.Period(), 1) || !hyp.IsHyperbolic() {
		t.Fatalf("hyperbola: rp=%g ra=%g", hyp.Periapsis(), hyp.Apoapsis())
	}
	if hyp.Energy() <= 0 || ell.Energy() >= 0 {
		t.Fatal("invalid energy signs")
	}
	earth := OrbitalElements{A: 1, Epoch: J2000, Mu: MuSun}
	if !scalar.EqualWithinAbs(earth.Period(), 365.2568983, 1e-6) {
		t.Fatalf("sidereal year: %f", earth.Period())
	}
	moved := earth.Propagate(J2000 + earth.Period()/4)
	if !scalar.EqualWithinAbs(moved.M0, math.Pi/2, 1e-12) || moved.Epoch != J2000+earth.Period()/4 {
		t.Fatalf("propagated: %s", moved)
	}
}

func TestElementsStateRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 500; n++ {
		o := OrbitalElements{
			A:       0.1 + rng.Float64()*30,
			E:       0.01 + rng.Float64()*0.94,
			I:       0.01 + rng.Float64()*(math.Pi-0.02),
			RAAN:    rng.Float64() * twoPi,
			ArgPeri: rng.Float64() * twoPi,
			M0:      rng.Float64() * twoPi,
			Epoch:   J2000,
			Mu:      MuSun,
		}
		at := J2000 + (rng.Float64()-0.5)*20000
		s, err := ElementsToState(o, at)
		if err != nil {
			t.Fatalf("%s: %s", o, err)
		}
		back, err := StateToElements(s.R, s.V, MuSun, at)
		if err != nil {
			t.Fatalf("%s: %s", o, err)
		}
		if !scalar.EqualWithinRel(back.A, o.A, 1e-9) || !scalar.EqualWithinAbs(back.E, o.E, 1e-9) || !scalar.EqualWithinAbs(back.I, o.I, 1e-9) {
			t.Fatalf("shape differs:\n%s\n%s", o, back)
		}
		if !anglesEqual(back.RAAN, o.RAAN, 1e-8) || !anglesEqual(back.ArgPeri, o.ArgPeri, 1e-7) || !anglesEqual(back.M0, o.MeanAnomalyAt(at), 1e-7) {
			t.Fatalf("orientation differs:\n%s\n%s", o, back)
		}
		if back.Epoch != at {
			t.Fatalf("epoch %f != %f", back.Epoch, at)
		}
		// And the state is recovered.
		s2, err := ElementsToState(back, at)
		if err != nil {
			t.Fatal(err)
		}
		if !vectorsEqual(s.R, s2.R, 1e-9*r3.Norm(s.R)) || !vectorsEqual(s.V, s2.V, 1e-9*r3.Norm(s.V)) {
			t.Fatalf("state differs:\n%v\n%v", s, s2)
		}
	}
}

func TestHyperbolicRoundTrip(t *testing.T) {
	o := OrbitalElements{A: -0.01, E: 2.5, I: 0.4, RAAN: 1, ArgPeri: 2, M0: -3, Epoch: J2000, Mu: Earth.Mu}
	for _, at := range []float64{J2000 - 5, J2000, J2000 + 0.3} {
		s, err := ElementsToState(o, at)
		if err != nil {
			t.Fatal(err)
		}
		back, err := StateToElements(s.R, s.V, o.Mu, at)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinRel(back.A, o.A, 1e-9) || !scalar.EqualWithinAbs(back.E, o.E, 1e-9) || !scalar.EqualWithinRel(back.M0, o.MeanAnomalyAt(at), 1e-7) {
			t.Fatalf("@%f:\n%s\n%s", at, o, back)
		}
		if Classify(s.R, s.V, o.Mu) != Unbound {
			t.Fatal("hyperbola classified as bound")
		}
	}
}

func TestStateToElementsConventions(t *testing.T) {
	μ := MuSun
	vc := math.Sqrt(μ)
	// Circular equatorial: the anomaly is the true longitude.
	o, err := StateToElements(r3.Vec{X: 0, Y: 1}, r3.Vec{X: -vc}, μ, J2000)
	if err != nil {
		t.Fatal(err)
	}
	if o.E > CircularTolerance || o.I != 0 || o.RAAN != 0 || o.ArgPeri != 0 || !anglesEqual(o.M0, math.Pi/2, 1e-12) {
		t.Fatalf("circular equatorial: %s", o)
	}
	// Circular inclined: the anomaly is the argument of latitude, here at the ascending node.
	o, err = StateToElements(r3.Vec{Y: 1}, r3.Vec{X: -vc * math.Cos(0.5), Z: vc * math.Sin(0.5)}, μ, J2000)
	if err != nil {
		t.Fatal(err)
	}
	if o.ArgPeri != 0 || !anglesEqual(o.RAAN, math.Pi/2, 1e-12) || !scalar.EqualWithinAbs(o.I, 0.5, 1e-12) || !anglesEqual(o.M0, 0, 1e-12) {
		t.Fatalf("circular inclined: %s", o)
	}
	// Elliptical equatorial: ω is the longitude of periapsis.
	ref := OrbitalElements{A: 1.5, E: 0.3, ArgPeri: 2, M0: 1, Epoch: J2000, Mu: μ}
	s, _ := ElementsToState(ref, J2000)
	o, err = StateToElements(s.R, s.V, μ, J2000)
	if err != nil {
		t.Fatal(err)
	}
	if o.RAAN != 0 || o.I != 0 || !anglesEqual(o.ArgPeri, 2, 1e-10) || !anglesEqual(o.M0, 1, 1e-10) {
		t.Fatalf("elliptical equatorial: %s", o)
	}
	// Retrograde equatorial.
	ref.I = math.Pi
	s, _ = ElementsToState(ref, J2000)
	o, err = StateToElements(s.R, s.V, μ, J2000)
	if err != nil {
		t.Fatal(err)
	}
	s2, _ := ElementsToState(o, J2000)
	if !scalar.EqualWithinAbs(o.I, math.Pi, 1e-7) || o.RAAN != 0 || !vectorsEqual(s.R, s2.R, 1e-7) || !vectorsEqual(s.V, s2.V, 1e-9) {
		t.Fatalf("retrograde equatorial: %s", o)
	}
}

func TestStateToElementsDegenerate(t *testing.T) {
	for _, tc := range []struct {
		R, V r3.Vec
		μ    float64
		err  error
	}{
		{r3.Vec{}, r3.Vec{Y: 1}, MuSun, ErrDegenerateState},
		{r3.Vec{X: 1}, r3.Vec{X: 0.01}, MuSun, ErrDegenerateState},
		{r3.Vec{X: 1}, r3.Vec{}, MuSun, ErrDegenerateState},
		{r3.Vec{X: math.NaN()}, r3.Vec{Y: 0.01}, MuSun, ErrNonFinite},
		{r3.Vec{X: 1}, r3.Vec{Y: 0.01}, 0, ErrInvalidMu},
	} {
		if o, err := StateToElements(tc.R, tc.V, tc.μ, J2000); !errors.Is(err, tc.err) {
			t.Fatalf("R=%v V=%v: expected %v, got %v (%s)", tc.R, tc.V, tc.err, err, o)
		}
	}
}

func TestParabolicBoundary(t *testing.T) {
	vesc := math.Sqrt(2 * MuSun)
	for _, tc := range []struct {
		scale float64
		e     float64
	}{
		{1 - 1e-12, 1 - ParabolicTolerance},
		{1 + 1e-12, 1 + ParabolicTolerance},
	} {
		V := r3.Vec{Y: vesc * tc.scale}
		o, err := StateToElements(r3.Vec{X: 1}, V, MuSun, J2000)
		if err != nil {
			t.Fatal(err)
		}
		if o.E != tc.e {
			t.Fatalf("e=%.15f expected %.15f", o.E, tc.e)
		}
		if err := o.Validate(); err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinAbs(o.Periapsis(), 1, 1e-9) {
			t.Fatalf("periapsis moved: %g", o.Periapsis())
		}
		s, err := ElementsToState(o, J2000)
		if err != nil {
			t.Fatal(err)
		}
		if !vectorsEqual(s.R, r3.Vec{X: 1}, 1e-9) || !vectorsEqual(s.V, V, 1e-9*vesc) {
			t.Fatalf("state at periapsis: %v", s)
		}
		// Away from periapsis, the state must remain finite.
		later, err := ElementsToState(o, J2000+30)
		if err != nil || !later.finite() {
			t.Fatalf("state 30 days later: %v (%v)", later, err)
		}
	}
	// The element set cannot describe an exact parabola.
	if _, err := ElementsToState(OrbitalElements{A: 1, E: 1, Mu: MuSun}, J2000); !errors.Is(err, ErrInvalidConic) {
		t.Fatalf("expected an invalid conic, got %v", err)
	}
}

func TestClosedOrbit(t *testing.T) {
	t0 := J2000 + 1234.5
	o := OrbitalElements{A: 1, E: 0, I: 0, Epoch: t0, Mu: MuSun}
	s0, err := ElementsToState(o, t0)
	if err != nil {
		t.Fatal(err)
	}
	s1, err := ElementsToState(o, t0+o.Period())
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(s0.R, s1.R, 1e-10) || !vectorsEqual(s0.V, s1.V, 1e-12) {
		t.Fatalf("orbit did not close:\n%v\n%v", s0, s1)
	}
	if !scalar.EqualWithinAbs(r3.Norm(s0.V), GaussK, 1e-15) {
		t.Fatalf("circular velocity at 1 AU: %g", r3.Norm(s0.V))
	}
	if Classify(s0.R, s0.V, MuSun) != Bound {
		t.Fatal("circular orbit classified as unbound")
	}
}
