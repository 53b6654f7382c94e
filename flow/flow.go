// Package flow evaluates closed-form potential-flow velocity and pressure
// fields around simple obstacles: a sphere (3D dipole), a cylinder (2D
// doublet in the XY plane), and an airfoil approximation (doublet plus a
// Kutta-condition vortex).
//
// Two implementations of the same formulas live here: a scalar float64
// reference (this file) and a float32 batch kernel over flat buffers
// (kernel.go). Both must agree within floating-point tolerance; the
// conformance tests hold them to that.
package flow

import "math"

// Kind selects the obstacle shape.
type Kind int32

// Obstacle kind codes. The numeric values are part of the external contract
// and must not change.
const (
	Sphere Kind = iota
	Cylinder
	Airfoil
)

// KindNames lists the obstacle kinds in code order.
var KindNames = []string{"sphere", "cylinder", "airfoil"}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(KindNames) {
		return "unknown"
	}
	return KindNames[k]
}

// KindFromName maps a lowercase obstacle name to its kind code.
// Unknown names map to Sphere.
func KindFromName(name string) Kind {
	for i, n := range KindNames {
		if n == name {
			return Kind(i)
		}
	}
	return Sphere
}

// Params describes the flow conditions and obstacle for a single tick.
// It is an immutable value owned by the host loop; evaluators never read
// ambient state.
//
// Radius must be positive. That precondition is the caller's to uphold:
// the evaluators sit on the hot path and do not validate inputs.
type Params struct {
	FreeStream float64 // Free-stream speed U; negative values flow through the formulas
	Density    float64 // Fluid density, used by pressure and the cylinder z-deflection

	ObstacleX float64
	ObstacleY float64
	ObstacleZ float64

	Kind   Kind
	Radius float64
}

// VelocityAt returns the flow velocity at a point given relative to the
// obstacle center. Every formula is a perturbation of free-stream flow
// (U, 0, 0); any point with radial distance r <= Radius is inside the
// obstacle and gets exactly zero velocity.
//
// Radius > 0 is a caller precondition. So is FreeStream != 0 for the
// airfoil: its out-of-plane term divides by U.
func VelocityAt(x, y, z float64, p Params) (vx, vy, vz float64) {
	u := p.FreeStream
	a := p.Radius

	r := math.Sqrt(x*x + y*y + z*z)
	if r <= a {
		return 0, 0, 0
	}

	vx = u

	switch p.Kind {
	case Sphere:
		// Dipole solution: (a/r)^3 perturbation of the free stream.
		factor := (a * a * a) / (r * r * r)
		vx = u * (1 - factor*(3*x*x/(2*r*r)-0.5))
		vy = u * (-factor * 3 * x * y / (2 * r * r))
		vz = u * (-factor * 3 * x * z / (2 * r * r))

	case Cylinder:
		// Doublet solution in the XY plane, no z-dependence in the
		// primary flow.
		rxy := math.Sqrt(x*x + y*y)
		if rxy > a {
			factor := (a / rxy) * (a / rxy)
			vx = u * (1 - factor*(2*x*x/(rxy*rxy)-1))
			vy = u * (-factor * 2 * x * y / (rxy * rxy))

			// Deflect vertically by the local Bernoulli pressure. Not
			// physical, but deterministic; both implementations must
			// reproduce it exactly.
			pressure := p.Density * (0.5*u*u - 0.5*(vx*vx+vy*vy))
			vz += z * pressure * 0.01
		} else {
			vx, vy, vz = 0, 0, 0
		}

	case Airfoil:
		// Doublet plus vortex; circulation from the Kutta condition
		// produces the lift-like asymmetry.
		rxy := math.Sqrt(x*x + y*y)
		angle := math.Atan2(y, x)
		circulation := u * 4 * math.Pi * a * math.Sin(angle)

		if rxy > a {
			factor := (a / rxy) * (a / rxy)
			vx = u * (1 - factor*math.Cos(2*angle))
			vy = u*(-factor*math.Sin(2*angle)) + circulation/(2*math.Pi*rxy)

			// Heuristic out-of-plane scaling, not a physical quantity.
			vz = 0.1 * z * (vx*vx + vy*vy) / (a * u)
		} else {
			vx, vy, vz = 0, 0, 0
		}
	}

	return vx, vy, vz
}

// PressureOf returns the Bernoulli pressure for a velocity, referenced to
// the free-stream dynamic pressure: p = 0.5*rho*U^2 - 0.5*rho*|v|^2.
func PressureOf(vx, vy, vz float64, p Params) float64 {
	pRef := 0.5 * p.Density * p.FreeStream * p.FreeStream
	v2 := vx*vx + vy*vy + vz*vz
	return pRef - 0.5*p.Density*v2
}

// Scalar is the reference evaluator: the float64 formulas applied point by
// point over the flat buffers. It is the fallback when the batch kernel is
// unavailable and the yardstick the kernel is conformance-tested against.
type Scalar struct{}

// Name identifies the implementation in logs and the HUD.
func (Scalar) Name() string { return "scalar" }

// Evaluate computes velocities for count points. positions holds 3*count
// floats [x0,y0,z0,x1,...] in world space; dst receives 3*count velocity
// components.
func (Scalar) Evaluate(dst, positions []float32, count int, p Params) error {
	for i := 0; i < count; i++ {
		idx := i * 3
		x := float64(positions[idx]) - p.ObstacleX
		y := float64(positions[idx+1]) - p.ObstacleY
		z := float64(positions[idx+2]) - p.ObstacleZ

		vx, vy, vz := VelocityAt(x, y, z, p)

		dst[idx] = float32(vx)
		dst[idx+1] = float32(vy)
		dst[idx+2] = float32(vz)
	}
	return nil
}

// EvaluatePressure computes Bernoulli pressure for count velocities.
// velocities holds 3*count floats; dst receives count scalars.
func (Scalar) EvaluatePressure(dst, velocities []float32, count int, p Params) error {
	for i := 0; i < count; i++ {
		idx := i * 3
		vx := float64(velocities[idx])
		vy := float64(velocities[idx+1])
		vz := float64(velocities[idx+2])
		dst[i] = float32(PressureOf(vx, vy, vz, p))
	}
	return nil
}
