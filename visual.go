package sailship

import "math"

// SmoothVisual returns the visual elements moved one tick toward the actual elements.
//
// The visual elements snap onto the actual ones when the orbit type flips between elliptic and
// hyperbolic, or when the central body changes, and stay put if the actual ones are invalid.
// Large changes (relative semi-major axis change above SnapARatio or eccentricity change above
// SnapEDelta) close half of the gap, and everything else is smoothed exponentially at
// SmoothingRate. Angles follow the shortest arc.
func SmoothVisual(visual, actual OrbitalElements, cfg Config) OrbitalElements {
	if actual.Validate() != nil {
		return visual
	}
	if visual.Mu != actual.Mu || visual.IsHyperbolic() != actual.IsHyperbolic() || visual.Validate() != nil {
		return actual
	}
	v := visual.Propagate(actual.Epoch)
	f := cfg.SmoothingRate
	if math.Abs(actual.A-v.A) > cfg.SnapARatio*math.Abs(actual.A) || math.Abs(actual.E-v.E) > cfg.SnapEDelta {
		f = 0.5
	}
	n := OrbitalElements{
		A:       lerp(v.A, actual.A, f),
		E:       lerp(v.E, actual.E, f),
		I:       lerp(v.I, actual.I, f),
		RAAN:    lerpAngle(v.RAAN, actual.RAAN, f),
		ArgPeri: lerpAngle(v.ArgPeri, actual.ArgPeri, f),
		Epoch:   actual.Epoch,
		Mu:      actual.Mu,
	}
	if actual.IsHyperbolic() {
		n.M0 = lerp(v.M0, actual.M0, f)
	} else {
		n.M0 = lerpAngle(v.M0, actual.M0, f)
	}
	if n.Validate() != nil {
		return actual
	}
	return n
}

func lerp(from, to, f float64) float64 {
	return from + f*(to-from)
}
