package sailship

import (
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/kepler"
	meeusunit "github.com/soniakeys/unit"
)

const (
	keplerMaxIter   = 50
	keplerTolerance = 1e-12
	bisectionIter   = 200
)

// EccentricAnomaly solves Kepler's equation M = E - e sin E for an elliptical orbit.
//
// Newton-Raphson degrades when 1 - e cos E vanishes, i.e. close to periapsis of a
// near-parabolic orbit (e → 1, M → 0). When it fails to converge within keplerMaxIter
// iterations or produces a non finite iterate, Sinnott's bisection takes over: it
// converges for every e in [0, 1) at the price of a fixed 53 halvings.
func EccentricAnomaly(M, e float64) (float64, error) {
	if e < 0 || e >= 1 || !finite(M, e) {
		return math.NaN(), fmt.Errorf("%w: eccentric anomaly for e=%g M=%g", ErrInvalidConic, e, M)
	}
	if e == 0 {
		return normalizeAngle(M), nil
	}
	if E, ok := newtonElliptic(M, e); ok {
		return E, nil
	}
	E := normalizeAngle(kepler.Kepler3(e, meeusunit.Angle(normalizeAngle(M))).Rad())
	if !finite(E) {
		return math.NaN(), fmt.Errorf("%w: e=%g M=%g", ErrNoConvergence, e, M)
	}
	return E, nil
}

func newtonElliptic(M, e float64) (float64, bool) {
	m := math.Remainder(M, twoPi) // [-π, π] keeps the starter on the correct side.
	E := m
	if e > 0.8 {
		E = math.Pi * sign(m)
	} else {
		E += e * math.Sin(m)
	}
	for iter := 0; iter < keplerMaxIter; iter++ {
		sinE, cosE := math.Sincos(E)
		δ := (E - e*sinE - m) / (1 - e*cosE)
		E -= δ
		if !finite(E) {
			return math.NaN(), false
		}
		if math.Abs(δ) < keplerTolerance {
			return normalizeAngle(E), true
		}
	}
	return math.NaN(), false
}

// HyperbolicAnomaly solves Kepler's hyperbolic equation M = e sinh H - H.
// Falls back to a bracketed bisection when Newton-Raphson does not converge.
func HyperbolicAnomaly(M, e float64) (float64, error) {
	if e <= 1 || !finite(M, e) {
		return math.NaN(), fmt.Errorf("%w: hyperbolic anomaly for e=%g M=%g", ErrInvalidConic, e, M)
	}
	if M == 0 {
		return 0, nil
	}
	if H, ok := newtonHyperbolic(M, e); ok {
		return H, nil
	}
	H := bisectHyperbolic(math.Abs(M), e) * sign(M)
	if !finite(H) {
		return math.NaN(), fmt.Errorf("%w: e=%g M=%g", ErrNoConvergence, e, M)
	}
	return H, nil
}

func newtonHyperbolic(M, e float64) (float64, bool) {
	H := math.Asinh(M / e)
	if math.Abs(M) > 6*e {
		H = sign(M) * math.Log(2*math.Abs(M)/e+1.8)
	}
	for iter := 0; iter < keplerMaxIter; iter++ {
		δ := (e*math.Sinh(H) - H - M) / (e*math.Cosh(H) - 1)
		H -= δ
		if !finite(H) {
			return math.NaN(), false
		}
		if math.Abs(δ) < keplerTolerance*math.Max(1, math.Abs(H)) {
			return H, true
		}
	}
	return math.NaN(), false
}

// bisectHyperbolic solves for a positive M. Since e sinh H - H >= (e - 1) sinh H,
// the root lies in [0, asinh(M/(e-1))].
func bisectHyperbolic(M, e float64) float64 {
	lo, hi := 0.0, math.Asinh(M/(e-1))
	for iter := 0; iter < bisectionIter && hi-lo > keplerTolerance; iter++ {
		mid := 0.5 * (lo + hi)
		if e*math.Sinh(mid)-mid-M > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return 0.5 * (lo + hi)
}

// MeanAnomalyToTrue converts a mean anomaly into a true anomaly for any non parabolic orbit.
// For elliptical orbits, the result is in [0, 2π).
func MeanAnomalyToTrue(M, e float64) (float64, error) {
	switch {
	case e == 0:
		return normalizeAngle(M), nil
	case e < 1:
		E, err := EccentricAnomaly(M, e)
		if err != nil {
			return math.NaN(), err
		}
		sinE2, cosE2 := math.Sincos(E / 2)
		return normalizeAngle(2 * math.Atan2(math.Sqrt(1+e)*sinE2, math.Sqrt(1-e)*cosE2)), nil
	case e > 1:
		H, err := HyperbolicAnomaly(M, e)
		if err != nil {
			return math.NaN(), err
		}
		return 2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(H/2)), nil
	default:
		return math.NaN(), fmt.Errorf("%w: parabolic orbit has no mean anomaly", ErrInvalidConic)
	}
}

// TrueAnomalyToMean is the inverse of MeanAnomalyToTrue.
func TrueAnomalyToMean(ν, e float64) (float64, error) {
	switch {
	case e == 0:
		return normalizeAngle(ν), nil
	case e < 1:
		sinν2, cosν2 := math.Sincos(ν / 2)
		E := 2 * math.Atan2(math.Sqrt(1-e)*sinν2, math.Sqrt(1+e)*cosν2)
		return normalizeAngle(E - e*math.Sin(E)), nil
	case e > 1:
		ν = math.Remainder(ν, twoPi)
		x := math.Sqrt((e-1)/(e+1)) * math.Tan(ν/2)
		if math.Abs(x) >= 1 {
			return math.NaN(), fmt.Errorf("%w: ν=%g beyond the asymptotes of e=%g", ErrDegenerateState, ν, e)
		}
		H := 2 * math.Atanh(x)
		return e*math.Sinh(H) - H, nil
	default:
		return math.NaN(), fmt.Errorf("%w: parabolic orbit has no mean anomaly", ErrInvalidConic)
	}
}
