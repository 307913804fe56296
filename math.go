package sailship

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
	twoPi   = 2 * math.Pi
)

// unit returns the unit vector of a given vector, or the zero vector if its norm is nil.
func unit(a r3.Vec) r3.Vec {
	n := r3.Norm(a)
	if scalar.EqualWithinAbs(n, 0, 1e-300) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, a)
}

// orthogonal returns a unit vector perpendicular to v.
func orthogonal(v r3.Vec) r3.Vec {
	u := unit(v)
	if math.Abs(u.Z) < 0.9 {
		return unit(r3.Cross(u, r3.Vec{Z: 1}))
	}
	return unit(r3.Cross(u, r3.Vec{X: 1}))
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// clamp1 clamps v to [-1, 1], which keeps math.Acos away from NaN on rounding errors.
func clamp1(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// finite returns whether every provided value is neither NaN nor infinite.
func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finiteVec(v r3.Vec) bool {
	return finite(v.X, v.Y, v.Z)
}

// normalizeAngle wraps an angle to [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		// -tiny + 2π rounds to 2π.
		a = 0
	}
	return a
}

// shortestArc returns the signed angle in [-π, π] which brings from onto to.
func shortestArc(from, to float64) float64 {
	return math.Remainder(to-from, twoPi)
}

// lerpAngle moves from toward to by fraction f along the shortest arc.
func lerpAngle(from, to, f float64) float64 {
	return normalizeAngle(from + f*shortestArc(from, to))
}

// anglesEqual returns whether both angles are equal modulo 2π within the tolerance.
func anglesEqual(a, b, tol float64) bool {
	return math.Abs(shortestArc(a, b)) <= tol
}

// Deg2rad converts degrees to radians, and enforces only positive numbers.
func Deg2rad(a float64) float64 {
	return normalizeAngle(a * deg2rad)
}

// Rad2deg converts radians to degrees, and enforces only positive numbers.
func Rad2deg(a float64) float64 {
	return normalizeAngle(a) / deg2rad
}
