// Package renderer provides rendering utilities for the 3D scene.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/systems"
)

// ParticleRenderer draws the particle population inside a 3D mode block,
// colored by speed relative to the free stream.
type ParticleRenderer struct{}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{}
}

// Draw renders all particles. Must be called between BeginMode3D and
// EndMode3D. freeStream sets the color scale midpoint.
func (r *ParticleRenderer) Draw(positions, velocities []float32, count int, freeStream float32) {
	scale := freeStream
	if scale < 0 {
		scale = -scale
	}
	if scale < 1e-6 {
		scale = 1
	}

	for i := 0; i < count; i++ {
		idx := i * 3
		vx := velocities[idx]
		vy := velocities[idx+1]
		vz := velocities[idx+2]
		speed := float32(math.Sqrt(float64(vx*vx + vy*vy + vz*vz)))

		// 0 at rest, 0.5 at free stream, 1 at twice free stream
		t := speed / (2 * scale)
		c := systems.Colormap(t)

		rl.DrawPoint3D(rl.Vector3{
			X: positions[idx],
			Y: positions[idx+1],
			Z: positions[idx+2],
		}, c)
	}
}
