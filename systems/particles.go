// Package systems holds the simulation systems: particle advection and
// recycling, the slice sample grid, and measurement probes.
package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/windtunnel/flow"
)

// Tunnel is the axis-aligned bounding volume particles are recycled within.
// Flow enters at EntryX and exits past ExitX; EntryX < ExitX.
type Tunnel struct {
	EntryX     float32
	ExitX      float32
	HalfWidth  float32 // |y| bound
	HalfHeight float32 // |z| bound
}

// reseedFraction keeps lateral re-seeds inside 80% of the cross-section so a
// recycled particle never lands exactly on the boundary and immediately
// re-triggers recycling.
const reseedFraction = 0.8

// ParticleSystem owns the particle position and velocity buffers and
// advances them through the velocity field each tick. Buffers are flat
// [x0,y0,z0,x1,...] float32 slices sized for a fixed particle count;
// changing the count is a full reallocation and re-seed.
type ParticleSystem struct {
	positions  []float32
	velocities []float32
	targets    []float32 // evaluator output, reused every tick
	count      int

	dt        float32
	smoothing float32 // fraction of old velocity retained per tick
	tunnel    Tunnel

	eval flow.Evaluator
	rng  *rand.Rand

	recycledTick        int
	recycledAxialTick   int
	recycledLateralTick int
	recycledTotal       int64
}

// NewParticleSystem creates a system with count particles seeded uniformly
// inside the tunnel volume. dt and smoothing come from config (0.01 and
// 0.95 by default).
func NewParticleSystem(count int, tunnel Tunnel, eval flow.Evaluator, rng *rand.Rand, dt, smoothing float32) *ParticleSystem {
	ps := &ParticleSystem{
		count:     count,
		dt:        dt,
		smoothing: smoothing,
		tunnel:    tunnel,
		eval:      eval,
		rng:       rng,
	}
	ps.allocate()
	ps.seed()
	return ps
}

func (ps *ParticleSystem) allocate() {
	ps.positions = make([]float32, ps.count*3)
	ps.velocities = make([]float32, ps.count*3)
	ps.targets = make([]float32, ps.count*3)
}

// seed places particles uniformly inside the tunnel with zero velocity; the
// first few ticks of smoothing pull them onto the flow.
func (ps *ParticleSystem) seed() {
	t := ps.tunnel
	for i := 0; i < ps.count; i++ {
		idx := i * 3
		ps.positions[idx] = t.EntryX + ps.rng.Float32()*(t.ExitX-t.EntryX)
		ps.positions[idx+1] = (ps.rng.Float32()*2 - 1) * t.HalfWidth
		ps.positions[idx+2] = (ps.rng.Float32()*2 - 1) * t.HalfHeight
		ps.velocities[idx] = 0
		ps.velocities[idx+1] = 0
		ps.velocities[idx+2] = 0
	}
}

// Resize reallocates for a new particle count and re-seeds everything.
// There is no incremental resize.
func (ps *ParticleSystem) Resize(count int) {
	if count == ps.count {
		return
	}
	ps.count = count
	ps.allocate()
	ps.seed()
	ps.recycledTick = 0
	ps.recycledAxialTick = 0
	ps.recycledLateralTick = 0
	ps.recycledTotal = 0
}

// Advance runs one simulation tick: evaluate the field at every particle,
// low-pass the velocities toward the field, integrate positions, recycle
// leavers. Parameters are an immutable per-tick value owned by the caller.
func (ps *ParticleSystem) Advance(p flow.Params) {
	ps.EvaluateField(p)
	ps.Step(p)
}

// EvaluateField refreshes the target velocities from the evaluator. Split
// from Step so the host loop can time the two halves separately.
func (ps *ParticleSystem) EvaluateField(p flow.Params) {
	// A guarded evaluator never errors. If a raw kernel is wired in and
	// fails mid-tick, the stale targets carry over and motion stays
	// continuous; advection itself has no failure mode.
	_ = ps.eval.Evaluate(ps.targets, ps.positions, ps.count, p)
}

// Step applies one tick of kinematics against the current targets.
func (ps *ParticleSystem) Step(p flow.Params) {
	ps.smooth()
	ps.integrate()
	ps.recycle(float32(p.FreeStream))
}

// smooth applies the first-order low-pass: v = v*s + target*(1-s). The
// analytic field jumps to zero at the obstacle surface; without smoothing
// particles pop visibly when they cross it.
func (ps *ParticleSystem) smooth() {
	s := ps.smoothing
	ns := 1 - s
	for i := range ps.velocities {
		ps.velocities[i] = ps.velocities[i]*s + ps.targets[i]*ns
	}
}

// integrate advances positions by velocity*dt over the whole flat buffer.
func (ps *ParticleSystem) integrate() {
	n := ps.count * 3
	blas32.Axpy(ps.dt,
		blas32.Vector{N: n, Inc: 1, Data: ps.velocities},
		blas32.Vector{N: n, Inc: 1, Data: ps.positions},
	)
}

// recycle resets particles that left the tunnel back to the entry plane.
// Axial and lateral exits are independent triggers: an axial exit keeps the
// particle's y,z, a lateral exit re-seeds them inside 80% of the
// cross-section, and a particle violating both takes the lateral re-seed.
// Velocity is hard-reset to exactly (U,0,0) on any recycle.
func (ps *ParticleSystem) recycle(freeStream float32) {
	t := ps.tunnel
	ps.recycledTick = 0
	ps.recycledAxialTick = 0
	ps.recycledLateralTick = 0

	for i := 0; i < ps.count; i++ {
		idx := i * 3
		axial := false
		lateral := false

		if ps.positions[idx] > t.ExitX {
			ps.positions[idx] = t.EntryX
			axial = true
		}
		if absf(ps.positions[idx+1]) > t.HalfWidth || absf(ps.positions[idx+2]) > t.HalfHeight {
			ps.positions[idx] = t.EntryX
			ps.positions[idx+1] = (ps.rng.Float32()*2 - 1) * t.HalfWidth * reseedFraction
			ps.positions[idx+2] = (ps.rng.Float32()*2 - 1) * t.HalfHeight * reseedFraction
			lateral = true
		}

		if axial || lateral {
			ps.velocities[idx] = freeStream
			ps.velocities[idx+1] = 0
			ps.velocities[idx+2] = 0
			if lateral {
				ps.recycledLateralTick++
			} else {
				ps.recycledAxialTick++
			}
			ps.recycledTick++
			ps.recycledTotal++
		}
	}
}

// Positions returns the live position buffer (3*Count floats). Callers must
// not retain it across a Resize.
func (ps *ParticleSystem) Positions() []float32 { return ps.positions }

// Velocities returns the live velocity buffer (3*Count floats).
func (ps *ParticleSystem) Velocities() []float32 { return ps.velocities }

// Count returns the particle count.
func (ps *ParticleSystem) Count() int { return ps.count }

// Tunnel returns the bounding volume.
func (ps *ParticleSystem) Tunnel() Tunnel { return ps.tunnel }

// RecycledLastTick returns how many particles were recycled by the most
// recent Advance.
func (ps *ParticleSystem) RecycledLastTick() int { return ps.recycledTick }

// RecycledLastTickSplit returns last-tick recycle counts by exit kind. A
// particle leaving both ways counts as lateral.
func (ps *ParticleSystem) RecycledLastTickSplit() (axial, lateral int) {
	return ps.recycledAxialTick, ps.recycledLateralTick
}

// RecycledTotal returns the total recycle count since creation or Resize.
func (ps *ParticleSystem) RecycledTotal() int64 { return ps.recycledTotal }
