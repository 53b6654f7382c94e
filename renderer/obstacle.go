package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/flow"
)

// ObstacleRenderer owns the GPU meshes for the three obstacle shapes and
// draws the active one at the configured position and radius.
type ObstacleRenderer struct {
	sphere   rl.Model
	cylinder rl.Model

	cylinderHeight float32
	initialized    bool
}

// NewObstacleRenderer creates an obstacle renderer. Init must be called
// after the raylib window exists.
func NewObstacleRenderer() *ObstacleRenderer {
	return &ObstacleRenderer{}
}

// Init uploads the obstacle meshes. cylinderHeight is the tunnel depth so
// the cylinder spans the whole test section.
func (r *ObstacleRenderer) Init(cylinderHeight float32) {
	if r.initialized {
		return
	}

	// Unit-sized meshes, scaled at draw time so radius changes do not
	// require a re-upload.
	r.sphere = rl.LoadModelFromMesh(rl.GenMeshSphere(1, 24, 32))
	r.cylinder = rl.LoadModelFromMesh(rl.GenMeshCylinder(1, 1, 32))
	r.cylinderHeight = cylinderHeight
	r.initialized = true
}

// Draw renders the obstacle for the given flow parameters. Must be called
// between BeginMode3D and EndMode3D.
func (r *ObstacleRenderer) Draw(p flow.Params) {
	if !r.initialized {
		return
	}

	radius := float32(p.Radius)
	cx := float32(p.ObstacleX)
	cy := float32(p.ObstacleY)
	cz := float32(p.ObstacleZ)

	body := rl.Color{R: 200, G: 200, B: 210, A: 255}
	wire := rl.Color{R: 90, G: 90, B: 100, A: 255}

	switch p.Kind {
	case flow.Sphere:
		pos := rl.Vector3{X: cx, Y: cy, Z: cz}
		rl.DrawModel(r.sphere, pos, radius, body)
		rl.DrawSphereWires(pos, radius, 12, 16, wire)

	case flow.Cylinder:
		// The mesh extends +Y from its origin. Rotate Y onto Z and shift
		// back by half the height so the cylinder is centered on the
		// obstacle and spans the tunnel depth.
		pos := rl.Vector3{X: cx, Y: cy, Z: cz - r.cylinderHeight/2}
		rl.DrawModelEx(r.cylinder, pos,
			rl.Vector3{X: 1, Y: 0, Z: 0}, 90,
			rl.Vector3{X: radius, Y: r.cylinderHeight, Z: radius},
			body)

	case flow.Airfoil:
		// Flattened ellipsoid stand-in for a wing section, pitched a few
		// degrees nose-up to suggest the angle of attack.
		pos := rl.Vector3{X: cx, Y: cy, Z: cz}
		rl.DrawModelEx(r.sphere, pos,
			rl.Vector3{X: 0, Y: 0, Z: 1}, -5,
			rl.Vector3{X: radius * 1.6, Y: radius * 0.35, Z: radius},
			body)
	}
}

// Unload frees the GPU meshes.
func (r *ObstacleRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadModel(r.sphere)
	rl.UnloadModel(r.cylinder)
	r.initialized = false
}
