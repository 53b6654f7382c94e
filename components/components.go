// Package components defines the ECS components for measurement probes.
package components

// Position is a probe location in world space.
type Position struct {
	X, Y, Z float32
}

// Reading is the most recent flow sample at a probe.
type Reading struct {
	VX, VY, VZ float32
	Speed      float32
	Pressure   float32
}
