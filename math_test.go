package sailship

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// vectorsEqual returns whether both vectors are equal within the tolerance, component wise.
func vectorsEqual(a, b r3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) && scalar.EqualWithinAbs(a.Y, b.Y, tol) && scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

func TestAngles(t *testing.T) {
	for _, tc := range []struct{ in, out float64 }{
		{0, 0},
		{twoPi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{-1e-17, 0},
	} {
		if got := normalizeAngle(tc.in); !scalar.EqualWithinAbs(got, tc.out, 1e-12) {
			t.Fatalf("normalizeAngle(%g)=%g expected %g", tc.in, got, tc.out)
		}
	}
	if got := normalizeAngle(-1e-17); got < 0 || got >= twoPi {
		t.Fatalf("normalizeAngle out of range: %g", got)
	}
	// Across the 0/2π wrap.
	if d := shortestArc(Deg2rad(350), Deg2rad(10)); !scalar.EqualWithinAbs(d, Deg2rad(20), 1e-12) {
		t.Fatalf("shortestArc across zero: %f", Rad2deg(d))
	}
	if d := shortestArc(Deg2rad(10), Deg2rad(350)); !scalar.EqualWithinAbs(d, -20*deg2rad, 1e-12) {
		t.Fatalf("shortestArc backward: %f", d/deg2rad)
	}
	if l := lerpAngle(Deg2rad(350), Deg2rad(10), 0.5); !anglesEqual(l, 0, 1e-12) {
		t.Fatalf("lerpAngle went the long way: %f", Rad2deg(l))
	}
	if !anglesEqual(0, twoPi-1e-14, 1e-12) {
		t.Fatal("0 and 2π should be equal")
	}
	if !scalar.EqualWithinAbs(Rad2deg(Deg2rad(-90)), 270, 1e-12) {
		t.Fatal("Deg2rad should wrap negative angles")
	}
}

func TestMisc(t *testing.T) {
	if u := unit(r3.Vec{}); u != (r3.Vec{}) {
		t.Fatalf("unit of the zero vector should be zero, got %v", u)
	}
	if u := unit(r3.Vec{X: 3, Y: 4}); !vectorsEqual(u, r3.Vec{X: 0.6, Y: 0.8}, 1e-15) {
		t.Fatalf("unit vector: %v", u)
	}
	for _, v := range []r3.Vec{{X: 1}, {Z: 2}, {X: 1, Y: 1, Z: 1}} {
		o := orthogonal(v)
		if !scalar.EqualWithinAbs(r3.Dot(o, v), 0, 1e-15) || !scalar.EqualWithinAbs(r3.Norm(o), 1, 1e-15) {
			t.Fatalf("orthogonal(%v)=%v", v, o)
		}
	}
	if sign(-2) != -1 || sign(3) != 1 || sign(0) != 1 {
		t.Fatal("sign")
	}
	if clamp1(1+1e-15) != 1 || clamp1(-2) != -1 || clamp1(0.3) != 0.3 {
		t.Fatal("clamp1")
	}
	if finite(1, math.NaN()) || finite(math.Inf(-1)) || !finite(0, 1e308) {
		t.Fatal("finite")
	}
}
