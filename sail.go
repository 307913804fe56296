package sailship

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// SolarPressure1AU is the solar radiation pressure at 1 AU on an absorbing surface (N/m²).
	SolarPressure1AU = 4.56e-6
	secondsPerDay    = 86400.0
	// mps2ToAUpd2 converts m/s² to AU/day².
	mps2ToAUpd2 = secondsPerDay * secondsPerDay / (AU * 1000)
)

// SailConfig defines a solar sail and its attitude.
type SailConfig struct {
	Area         float64 // m²
	Reflectivity float64 // in [0, 1]
	Deployment   float64 // percent
	Condition    float64 // percent
	Angle        float64 // Cone angle between the sail normal and the sun line, in the orbital plane (rad)
	Pitch        float64 // Angle of the sail normal out of the orbital plane (rad)
}

// Validate returns an error if this sail cannot be used.
func (c SailConfig) Validate() error {
	var errs []error
	if !finite(c.Area, c.Reflectivity, c.Deployment, c.Condition, c.Angle, c.Pitch) {
		errs = append(errs, ErrNonFinite)
	}
	if c.Area < 0 {
		errs = append(errs, fmt.Errorf("negative sail area %g", c.Area))
	}
	if c.Reflectivity < 0 || c.Reflectivity > 1 {
		errs = append(errs, fmt.Errorf("reflectivity %g not in [0, 1]", c.Reflectivity))
	}
	if c.Deployment < 0 || c.Deployment > 100 {
		errs = append(errs, fmt.Errorf("deployment %g%% not in [0, 100]", c.Deployment))
	}
	if c.Condition < 0 || c.Condition > 100 {
		errs = append(errs, fmt.Errorf("condition %g%% not in [0, 100]", c.Condition))
	}
	return errors.Join(errs...)
}

// EffectiveArea returns the deployed and undamaged area of the sail in m².
func (c SailConfig) EffectiveArea() float64 {
	return c.Area * (c.Deployment / 100) * (c.Condition / 100)
}

// ComputeSailForce returns the radiation force in newtons on a sail at the provided heliocentric
// position and velocity, distance being the distance to the Sun in AU.
// The sail normal is tilted by Angle from the sun line toward the direction of motion, then by
// Pitch out of the orbital plane. The force is zero when the sail is edge on or not deployed.
func ComputeSailForce(cfg SailConfig, r, v r3.Vec, distance, mass float64) r3.Vec {
	if mass <= 0 || distance <= 0 || !finite(distance) {
		return r3.Vec{}
	}
	area := cfg.EffectiveArea()
	if area <= 0 || cfg.Reflectivity <= 0 {
		return r3.Vec{}
	}
	rHat := unit(r)
	if r3.Norm(rHat) == 0 {
		return r3.Vec{}
	}
	hHat := unit(r3.Cross(r, v))
	if r3.Norm(hHat) == 0 {
		hHat = orthogonal(rHat)
	}
	tHat := r3.Cross(hHat, rHat)
	sinA, cosA := math.Sincos(cfg.Angle)
	sinP, cosP := math.Sincos(cfg.Pitch)
	normal := r3.Add(r3.Scale(cosP, r3.Add(r3.Scale(cosA, rHat), r3.Scale(sinA, tHat))), r3.Scale(sinP, hHat))
	cosθ := cosP * cosA
	if math.Abs(cosθ) < 1e-12 {
		return r3.Vec{}
	}
	if cosθ < 0 {
		// Light pushes the sail away from the Sun whichever face it hits.
		normal = r3.Scale(-1, normal)
	}
	pressure := SolarPressure1AU / (distance * distance)
	return r3.Scale(2*pressure*area*cosθ*cosθ*cfg.Reflectivity, normal)
}

// SailAcceleration converts a force in newtons on a ship of the provided mass in kg to an
// acceleration in AU/day².
func SailAcceleration(force r3.Vec, mass float64) r3.Vec {
	if mass <= 0 {
		return r3.Vec{}
	}
	return r3.Scale(mps2ToAUpd2/mass, force)
}
