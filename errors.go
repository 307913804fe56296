package sailship

import "errors"

var (
	// ErrInvalidConic is returned when a semi-major axis and eccentricity do not describe a valid conic.
	ErrInvalidConic = errors.New("invalid conic")
	// ErrNonFinite is returned when an element or a state vector holds a NaN or an infinity.
	ErrNonFinite = errors.New("non finite value")
	// ErrInvalidMu is returned for a non positive gravitational parameter.
	ErrInvalidMu = errors.New("invalid gravitational parameter")
	// ErrDegenerateState is returned when a state vector cannot be described by orbital elements
	// (nil radius, rectilinear motion).
	ErrDegenerateState = errors.New("degenerate state")
	// ErrNoConvergence is returned when Kepler's equation could not be solved.
	ErrNoConvergence = errors.New("kepler solver did not converge")
	// ErrNoSail is returned when a sail operation is requested on a ship without a sail.
	ErrNoSail = errors.New("ship has no sail")
	// ErrInvalidPlan is returned for a plan request without a positive horizon and step count.
	ErrInvalidPlan = errors.New("invalid plan request")
)
