package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/systems"
)

// DrawTunnel renders the test-section bounding box as wireframe with a
// marker on the entry plane. Must be called between BeginMode3D and
// EndMode3D.
func DrawTunnel(t systems.Tunnel) {
	center := rl.Vector3{X: (t.EntryX + t.ExitX) / 2}
	size := rl.Vector3{
		X: t.ExitX - t.EntryX,
		Y: t.HalfWidth * 2,
		Z: t.HalfHeight * 2,
	}
	rl.DrawCubeWiresV(center, size, rl.Color{R: 70, G: 80, B: 95, A: 255})

	// Entry plane marker
	entry := rl.Vector3{X: t.EntryX}
	entrySize := rl.Vector3{X: 0.01, Y: t.HalfWidth * 2, Z: t.HalfHeight * 2}
	rl.DrawCubeWiresV(entry, entrySize, rl.Color{R: 50, G: 120, B: 70, A: 255})
}

// DrawProbeMarkers renders small spheres at probe positions. Must be
// called between BeginMode3D and EndMode3D.
func DrawProbeMarkers(readouts []systems.ProbeReadout) {
	for i := range readouts {
		p := &readouts[i]
		pos := rl.Vector3{X: p.X, Y: p.Y, Z: p.Z}
		rl.DrawSphere(pos, 0.05, rl.Color{R: 255, G: 200, B: 60, A: 255})
		rl.DrawSphereWires(pos, 0.08, 6, 8, rl.Color{R: 255, G: 200, B: 60, A: 120})
	}
}
