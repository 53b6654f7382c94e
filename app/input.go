package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/systems"
)

const (
	orbitSensitivity = 0.005
	dollySensitivity = 0.5
)

// handleInput processes keyboard and mouse input for one frame.
func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && a.stepsPerUpdate > 1 {
		a.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && a.stepsPerUpdate < 10 {
		a.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyH) {
		a.controls.Toggle()
	}

	if rl.IsKeyPressed(rl.KeyC) {
		a.probes.Clear()
	}

	a.handleCameraInput()
	a.handleProbePlacement()
}

// handleCameraInput processes orbit and dolly controls.
func (a *App) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		a.orbit.Rotate(delta.X*orbitSensitivity, delta.Y*orbitSensitivity)
	}

	wheel := rl.GetMouseWheelMove()
	if wheel != 0 {
		a.orbit.Dolly(wheel * dollySensitivity)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		a.orbit.Reset(orbitDistanceFor(a.particles.Tunnel()))
	}
}

// handleProbePlacement places a probe where a left click's pick ray crosses
// the active slice plane through the obstacle center. Clicks on UI panels
// do not fall through.
func (a *App) handleProbePlacement() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	mouse := rl.GetMousePosition()
	if a.controls.Contains(int32(mouse.X), int32(mouse.Y)) {
		return
	}

	ray := rl.GetScreenToWorldRay(mouse, a.camera3D())

	// Plane through the obstacle center, normal to the out-of-plane axis
	// of the current slice plane.
	var normal rl.Vector3
	switch a.settings.Plane {
	case systems.PlaneXY:
		normal = rl.Vector3{Z: 1}
	case systems.PlaneXZ:
		normal = rl.Vector3{Y: 1}
	case systems.PlaneYZ:
		normal = rl.Vector3{X: 1}
	}

	center := rl.Vector3{
		X: float32(a.params.ObstacleX),
		Y: float32(a.params.ObstacleY),
		Z: float32(a.params.ObstacleZ),
	}

	hit, ok := rayPlane(ray, center, normal)
	if !ok {
		return
	}

	// Only inside the test section
	t := a.particles.Tunnel()
	if hit.X < t.EntryX || hit.X > t.ExitX ||
		hit.Y < -t.HalfWidth || hit.Y > t.HalfWidth ||
		hit.Z < -t.HalfHeight || hit.Z > t.HalfHeight {
		return
	}

	a.probes.Add(hit.X, hit.Y, hit.Z)
}

// rayPlane intersects a pick ray with the plane through point with the
// given normal. Returns false for rays parallel to or pointing away from
// the plane.
func rayPlane(ray rl.Ray, point, normal rl.Vector3) (rl.Vector3, bool) {
	denom := ray.Direction.X*normal.X + ray.Direction.Y*normal.Y + ray.Direction.Z*normal.Z
	if denom > -1e-6 && denom < 1e-6 {
		return rl.Vector3{}, false
	}

	dx := point.X - ray.Position.X
	dy := point.Y - ray.Position.Y
	dz := point.Z - ray.Position.Z
	t := (dx*normal.X + dy*normal.Y + dz*normal.Z) / denom
	if t < 0 {
		return rl.Vector3{}, false
	}

	return rl.Vector3{
		X: ray.Position.X + ray.Direction.X*t,
		Y: ray.Position.Y + ray.Direction.Y*t,
		Z: ray.Position.Z + ray.Direction.Z*t,
	}, true
}
