package sailship

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Clock is the simulation time source. In planning mode the physics is frozen at JD while the
// display follows PlanningJD, which the user scrubs to preview the future.
type Clock struct {
	JD         float64 // Physics time (Julian date)
	PlanningJD float64 // Display time in planning mode (Julian date)
	Planning   bool
}

// NewClock returns a clock started at the provided time.
func NewClock(start time.Time) *Clock {
	jd := julian.TimeToJD(start.UTC())
	return &Clock{JD: jd, PlanningJD: jd}
}

// PhysicsTime returns the Julian date which drives the physics.
func (c *Clock) PhysicsTime() float64 {
	return c.JD
}

// DisplayTime returns the Julian date which drives the visualization.
func (c *Clock) DisplayTime() float64 {
	if c.Planning {
		return c.PlanningJD
	}
	return c.JD
}

// Advance moves the physics time by the provided number of days and returns the effective time
// step, which is zero in planning mode.
func (c *Clock) Advance(days float64) float64 {
	if c.Planning || days <= 0 {
		return 0
	}
	c.JD += days
	c.PlanningJD = c.JD
	return days
}

// EnterPlanning freezes the physics.
func (c *Clock) EnterPlanning() {
	c.Planning = true
	c.PlanningJD = c.JD
}

// ExitPlanning resumes the physics where it was frozen.
func (c *Clock) ExitPlanning() {
	c.Planning = false
	c.PlanningJD = c.JD
}

// Time returns the display time as a UTC time.
func (c *Clock) Time() time.Time {
	return julian.JDToTime(c.DisplayTime()).UTC()
}
