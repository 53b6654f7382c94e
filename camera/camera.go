// Package camera provides an orbit camera for viewing the test section.
package camera

import "math"

// Orbit is a camera that circles a fixed target point. Yaw and pitch are
// in radians, distance in world units. It holds no rendering state so the
// math can be tested without a window.
type Orbit struct {
	// TargetX, TargetY, TargetZ is the point the camera looks at.
	TargetX, TargetY, TargetZ float32

	Yaw      float32
	Pitch    float32
	Distance float32

	// Distance constraints
	MinDistance, MaxDistance float32
}

// Pitch is kept just inside the poles so the up vector never degenerates.
const pitchLimit = float32(math.Pi/2) * 0.98

// NewOrbit creates a camera looking at the origin from a three-quarter view.
func NewOrbit(distance float32) *Orbit {
	return &Orbit{
		Yaw:         float32(math.Pi) * 0.25,
		Pitch:       float32(math.Pi) * 0.15,
		Distance:    distance,
		MinDistance: 2,
		MaxDistance: 40,
	}
}

// Position returns the camera eye position in world coordinates.
func (o *Orbit) Position() (x, y, z float32) {
	cp := float32(math.Cos(float64(o.Pitch)))
	sp := float32(math.Sin(float64(o.Pitch)))
	cy := float32(math.Cos(float64(o.Yaw)))
	sy := float32(math.Sin(float64(o.Yaw)))

	x = o.TargetX + o.Distance*cp*cy
	y = o.TargetY + o.Distance*sp
	z = o.TargetZ + o.Distance*cp*sy
	return x, y, z
}

// Rotate adjusts yaw and pitch by the given deltas in radians.
// Pitch is clamped short of the poles; yaw wraps freely.
func (o *Orbit) Rotate(dYaw, dPitch float32) {
	o.Yaw += dYaw
	o.Pitch = clamp(o.Pitch+dPitch, -pitchLimit, pitchLimit)
}

// Dolly moves the camera toward or away from the target.
// Positive delta moves closer. Distance is clamped to min/max.
func (o *Orbit) Dolly(delta float32) {
	o.Distance = clamp(o.Distance-delta, o.MinDistance, o.MaxDistance)
}

// DollyScale multiplies the distance by the given factor.
func (o *Orbit) DollyScale(factor float32) {
	o.Distance = clamp(o.Distance*factor, o.MinDistance, o.MaxDistance)
}

// Reset returns the camera to the default three-quarter view at the
// given distance.
func (o *Orbit) Reset(distance float32) {
	o.Yaw = float32(math.Pi) * 0.25
	o.Pitch = float32(math.Pi) * 0.15
	o.Distance = clamp(distance, o.MinDistance, o.MaxDistance)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
