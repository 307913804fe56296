package sailship

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// CircularTolerance is the eccentricity under which the periapsis direction is undefined.
	CircularTolerance = 1e-10
	// ParabolicTolerance is the distance to e=1 under which an orbit is moved off the parabolic singularity.
	ParabolicTolerance = 1e-9
	// EquatorialTolerance is the ratio |n|/|h| under which the line of nodes is undefined.
	EquatorialTolerance = 1e-11
	angleε              = 1e-12
)

// OrbitalElements defines an orbit around a central body via its classical orbital elements.
// A is negative for hyperbolic orbits. Angles are in radians, Epoch is a Julian date.
type OrbitalElements struct {
	A       float64 // Semi-major axis (AU)
	E       float64 // Eccentricity
	I       float64 // Inclination
	RAAN    float64 // Longitude of the ascending node Ω
	ArgPeri float64 // Argument of periapsis ω
	M0      float64 // Mean anomaly at epoch
	Epoch   float64 // Julian date
	Mu      float64 // Gravitational parameter of the central body (AU³/day²)
}

// CartesianState is a position and velocity pair in the frame of the elements which produced it.
type CartesianState struct {
	R r3.Vec // AU
	V r3.Vec // AU/day
}

// Add returns the component wise sum of both states.
func (s CartesianState) Add(o CartesianState) CartesianState {
	return CartesianState{R: r3.Add(s.R, o.R), V: r3.Add(s.V, o.V)}
}

// Sub returns the component wise difference of both states.
func (s CartesianState) Sub(o CartesianState) CartesianState {
	return CartesianState{R: r3.Sub(s.R, o.R), V: r3.Sub(s.V, o.V)}
}

func (s CartesianState) finite() bool {
	return finiteVec(s.R) && finiteVec(s.V)
}

// Validate returns an error if these elements do not describe a valid conic.
func (o OrbitalElements) Validate() error {
	if !finite(o.A, o.E, o.I, o.RAAN, o.ArgPeri, o.M0, o.Epoch, o.Mu) {
		return fmt.Errorf("%w: %s", ErrNonFinite, o)
	}
	if o.Mu <= 0 {
		return fmt.Errorf("%w: μ=%g", ErrInvalidMu, o.Mu)
	}
	if o.E < 0 || o.E == 1 || o.A == 0 || (o.A < 0) != (o.E > 1) {
		return fmt.Errorf("%w: a=%g e=%g", ErrInvalidConic, o.A, o.E)
	}
	return nil
}

// IsHyperbolic returns whether this orbit is open.
func (o OrbitalElements) IsHyperbolic() bool {
	return o.E > 1
}

// SemiParameter returns the semi parameter p = a(1-e²), positive for all valid conics.
func (o OrbitalElements) SemiParameter() float64 {
	return o.A * (1 - o.E*o.E)
}

// Periapsis returns the periapsis distance, also defined for hyperbolic orbits.
func (o OrbitalElements) Periapsis() float64 {
	return o.A * (1 - o.E)
}

// Apoapsis returns the apoapsis distance, or +Inf for open orbits.
func (o OrbitalElements) Apoapsis() float64 {
	if o.E >= 1 {
		return math.Inf(1)
	}
	return o.A * (1 + o.E)
}

// Energy returns the specific mechanical energy ξ.
func (o OrbitalElements) Energy() float64 {
	return -o.Mu / (2 * o.A)
}

// MeanMotion returns n = sqrt(μ/|a|³) in radians per day.
func (o OrbitalElements) MeanMotion() float64 {
	return math.Sqrt(o.Mu / math.Pow(math.Abs(o.A), 3))
}

// Period returns the period in days of this orbit, +Inf if open.
func (o OrbitalElements) Period() float64 {
	if o.E >= 1 {
		return math.Inf(1)
	}
	return twoPi / o.MeanMotion()
}

// MeanAnomalyAt returns the mean anomaly at the provided Julian date.
// It is wrapped to [0, 2π) for closed orbits only.
func (o OrbitalElements) MeanAnomalyAt(t float64) float64 {
	M := o.M0 + o.MeanMotion()*(t-o.Epoch)
	if o.E < 1 {
		return normalizeAngle(M)
	}
	return M
}

// TrueAnomalyAt returns the true anomaly at the provided Julian date.
func (o OrbitalElements) TrueAnomalyAt(t float64) (float64, error) {
	return MeanAnomalyToTrue(o.MeanAnomalyAt(t), o.E)
}

// Propagate returns a copy of these elements re-referenced to the provided epoch.
func (o OrbitalElements) Propagate(t float64) OrbitalElements {
	n := o
	n.M0 = o.MeanAnomalyAt(t)
	n.Epoch = t
	return n
}

// String implements the stringer interface.
func (o OrbitalElements) String() string {
	return fmt.Sprintf("a=%.6f e=%.6f i=%.3f Ω=%.3f ω=%.3f M0=%.3f @%.4f", o.A, o.E, Rad2deg(o.I), Rad2deg(o.RAAN), Rad2deg(o.ArgPeri), Rad2deg(o.M0), o.Epoch)
}

// ElementsToState returns the position and velocity of the orbit at the provided Julian date.
func ElementsToState(o OrbitalElements, t float64) (CartesianState, error) {
	if err := o.Validate(); err != nil {
		return CartesianState{}, err
	}
	if !finite(t) {
		return CartesianState{}, fmt.Errorf("%w: t=%g", ErrNonFinite, t)
	}
	ν, err := o.TrueAnomalyAt(t)
	if err != nil {
		return CartesianState{}, err
	}
	p := o.SemiParameter()
	sinν, cosν := math.Sincos(ν)
	denom := 1 + o.E*cosν
	if denom <= 0 {
		return CartesianState{}, fmt.Errorf("%w: ν=%g beyond the asymptotes", ErrDegenerateState, ν)
	}
	r := p / denom
	k := math.Sqrt(o.Mu / p)
	frame := PerifocalFrame(o.I, o.ArgPeri, o.RAAN)
	R := MxV33(frame, r3.Vec{X: r * cosν, Y: r * sinν})
	V := MxV33(frame, r3.Vec{X: -k * sinν, Y: k * (o.E + cosν)})
	s := CartesianState{R: R, V: V}
	if !s.finite() {
		return CartesianState{}, fmt.Errorf("%w: state of %s", ErrNonFinite, o)
	}
	return s, nil
}

// StateToElements returns the orbital elements from the R and V vectors (cf. Vallado RV2COE).
//
// Undefined angles follow these conventions:
//   - equatorial orbits have Ω=0 and ω is the longitude of periapsis;
//   - circular orbits have ω=0 and M0 is measured from the ascending node;
//   - circular equatorial orbits measure M0 from the reference X axis (true longitude).
//
// Eccentricities within ParabolicTolerance of 1 are moved off the singularity on the side
// of the specific energy, keeping the periapsis distance.
func StateToElements(R, V r3.Vec, μ, epoch float64) (OrbitalElements, error) {
	if !finiteVec(R) || !finiteVec(V) || !finite(μ, epoch) {
		return OrbitalElements{}, fmt.Errorf("%w: R=%v V=%v", ErrNonFinite, R, V)
	}
	if μ <= 0 {
		return OrbitalElements{}, fmt.Errorf("%w: μ=%g", ErrInvalidMu, μ)
	}
	r := r3.Norm(R)
	v := r3.Norm(V)
	if r == 0 {
		return OrbitalElements{}, fmt.Errorf("%w: nil radius", ErrDegenerateState)
	}
	hVec := r3.Cross(R, V)
	h := r3.Norm(hVec)
	if h <= 1e-14*r*math.Max(v, 1e-300) || h == 0 {
		return OrbitalElements{}, fmt.Errorf("%w: rectilinear motion", ErrDegenerateState)
	}
	ĥ := r3.Scale(1/h, hVec)
	ξ := v*v/2 - μ/r
	rDotV := r3.Dot(R, V)
	eVec := r3.Scale(1/μ, r3.Sub(r3.Scale(v*v-μ/r, R), r3.Scale(rDotV, V)))
	e := r3.Norm(eVec)
	p := h * h / μ

	a := -μ / (2 * ξ)
	if math.Abs(e-1) < ParabolicTolerance {
		if ξ < 0 {
			e = 1 - ParabolicTolerance
		} else {
			e = 1 + ParabolicTolerance
		}
		a = p / (1 - e*e)
	} else if (a < 0) != (e > 1) || !finite(a) {
		// Rounding in the energy near the parabolic boundary.
		a = p / (1 - e*e)
	}

	i := math.Acos(clamp1(hVec.Z / h))
	nVec := r3.Vec{X: -hVec.Y, Y: hVec.X}
	n := r3.Norm(nVec)
	equatorial := n < EquatorialTolerance*h
	circular := e < CircularTolerance
	retrograde := hVec.Z < 0

	var Ω, ω, ν float64
	if !equatorial {
		Ω = normalizeAngle(math.Atan2(nVec.Y, nVec.X))
	}
	switch {
	case circular && equatorial:
		// True longitude.
		if retrograde {
			ν = math.Atan2(-R.Y, R.X)
		} else {
			ν = math.Atan2(R.Y, R.X)
		}
	case circular:
		// Argument of latitude.
		ν = signedAngle(nVec, R, ĥ)
	case equatorial:
		// Longitude of periapsis.
		if retrograde {
			ω = math.Atan2(-eVec.Y, eVec.X)
		} else {
			ω = math.Atan2(eVec.Y, eVec.X)
		}
		ν = signedAngle(eVec, R, ĥ)
	default:
		ω = signedAngle(nVec, eVec, ĥ)
		ν = signedAngle(eVec, R, ĥ)
	}
	ω = normalizeAngle(ω)
	ν = normalizeAngle(ν)
	if circular {
		ω = 0
	}

	M0, err := TrueAnomalyToMean(ν, e)
	if err != nil {
		return OrbitalElements{}, err
	}
	o := OrbitalElements{A: a, E: e, I: i, RAAN: Ω, ArgPeri: ω, M0: M0, Epoch: epoch, Mu: μ}
	if err := o.Validate(); err != nil {
		return OrbitalElements{}, err
	}
	return o, nil
}

// signedAngle returns the angle from a to b, positive about the axis.
func signedAngle(a, b, axis r3.Vec) float64 {
	return math.Atan2(r3.Dot(r3.Cross(a, b), axis), r3.Dot(a, b))
}

// Classify returns whether the provided state is bound to the central body.
func Classify(R, V r3.Vec, μ float64) OrbitClass {
	v := r3.Norm(V)
	if v*v/2-μ/r3.Norm(R) < 0 {
		return Bound
	}
	return Unbound
}

// OrbitClass defines whether an orbit is closed.
type OrbitClass uint8

const (
	// Bound orbits have a negative specific energy.
	Bound OrbitClass = iota + 1
	// Unbound orbits escape the central body (hyperbolic flyby).
	Unbound
)

func (c OrbitClass) String() string {
	switch c {
	case Bound:
		return "bound"
	case Unbound:
		return "unbound"
	}
	return "unknown"
}
