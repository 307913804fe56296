package sailship

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// NegligibleThrust is the acceleration (AU/day²) at or below which ApplyThrust leaves the elements untouched.
	NegligibleThrust = 1e-20
	// nodeTolerance is the |sin i| under which normal thrust is not integrated with the variational equations.
	nodeTolerance = 1e-6
)

// RTN returns the radial, transverse and normal components of a vector in the local orbital frame
// defined by the provided position and velocity.
func RTN(R, V, vec r3.Vec) (radial, transverse, normal float64) {
	rHat := unit(R)
	nHat := unit(r3.Cross(R, V))
	tHat := r3.Cross(nHat, rHat)
	return r3.Dot(vec, rHat), r3.Dot(vec, tHat), r3.Dot(vec, nHat)
}

// ApplyThrust returns the elements perturbed by the constant acceleration (AU/day², expressed in the
// frame of the elements) applied during dt days and ending at t, with the epoch moved to t.
// Bound, non circular orbits use the first order Gauss variational equations. Circular,
// near parabolic and hyperbolic orbits, and near equatorial orbits under normal thrust, where
// those equations are singular, apply the equivalent velocity increment to the state at t instead.
// The boolean is false, and the elements unchanged, if the thrust is negligible or if the update
// would not yield a valid orbit.
func ApplyThrust(o OrbitalElements, accel r3.Vec, dt, t float64) (OrbitalElements, bool) {
	if !finiteVec(accel) || r3.Norm(accel) <= NegligibleThrust || dt <= 0 || !finite(dt, t) {
		return o, false
	}
	if err := o.Validate(); err != nil {
		return o, false
	}
	if o.E >= CircularTolerance && o.E < 1-CircularTolerance {
		if n, ok := gaussUpdate(o, accel, dt, t); ok {
			return n, true
		}
	}
	return velocityKick(o, accel, dt, t)
}

func velocityKick(o OrbitalElements, accel r3.Vec, dt, t float64) (OrbitalElements, bool) {
	s, err := ElementsToState(o, t)
	if err != nil {
		return o, false
	}
	n, err := StateToElements(s.R, r3.Add(s.V, r3.Scale(dt, accel)), o.Mu, t)
	if err != nil {
		return o, false
	}
	return n, true
}

func gaussUpdate(o OrbitalElements, accel r3.Vec, dt, t float64) (OrbitalElements, bool) {
	s, err := ElementsToState(o, t)
	if err != nil {
		return o, false
	}
	aR, aT, aN := RTN(s.R, s.V, accel)
	ν, err := o.TrueAnomalyAt(t)
	if err != nil {
		return o, false
	}
	a, e, i := o.A, o.E, o.I
	p := o.SemiParameter()
	h := math.Sqrt(o.Mu * p)
	r := r3.Norm(s.R)
	b := a * math.Sqrt(1-e*e)
	sinν, cosν := math.Sincos(ν)
	sinu, cosu := math.Sincos(o.ArgPeri + ν)
	sini, cosi := math.Sincos(i)

	da := 2 * a * a / h * (e*sinν*aR + p/r*aT)
	de := (p*sinν*aR + ((p+r)*cosν+r*e)*aT) / h
	di := r * cosu / h * aN
	dω := (-p*cosν*aR + (p+r)*sinν*aT) / (h * e)
	dM := b / (a * h * e) * ((p*cosν-2*r*e)*aR - (p+r)*sinν*aT)
	var dΩ float64
	if math.Abs(sini) < nodeTolerance {
		if aN != 0 {
			// The line of nodes is undefined: let the state define it.
			return o, false
		}
	} else {
		dΩ = r * sinu / (h * sini) * aN
		dω -= r * sinu * cosi / (h * sini) * aN
	}

	n := o
	n.A = a + da*dt
	n.E = e + de*dt
	n.I = i + di*dt
	n.RAAN = o.RAAN + dΩ*dt
	n.ArgPeri = o.ArgPeri + dω*dt
	n.M0 = o.MeanAnomalyAt(t) + dM*dt
	n.Epoch = t
	if n.I < 0 {
		// Same plane, opposite node.
		n.I = -n.I
		n.RAAN += math.Pi
		n.ArgPeri -= math.Pi
	} else if n.I > math.Pi {
		n.I = twoPi - n.I
		n.RAAN += math.Pi
		n.ArgPeri -= math.Pi
	}
	n.RAAN = normalizeAngle(n.RAAN)
	n.ArgPeri = normalizeAngle(n.ArgPeri)
	n.M0 = normalizeAngle(n.M0)
	if n.E < CircularTolerance || n.E >= 1-CircularTolerance || n.A <= 0 || n.Validate() != nil {
		return o, false
	}
	return n, true
}
