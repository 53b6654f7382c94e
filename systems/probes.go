package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/windtunnel/components"
	"github.com/pthm-cable/windtunnel/flow"
)

// maxProbes bounds how many probes a user can place.
const maxProbes = 16

// ProbeReadout is a snapshot of one probe for display.
type ProbeReadout struct {
	X, Y, Z  float32
	Speed    float32
	Pressure float32
}

// ProbeSet manages user-placed measurement probes. Each probe samples the
// local velocity and Bernoulli pressure every tick through the scalar
// reference evaluator, which doubles as a live cross-check of what the
// batch path is feeding the particles.
type ProbeSet struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Reading]
	filter *ecs.Filter2[components.Position, components.Reading]
	count  int
}

// NewProbeSet creates an empty probe set.
func NewProbeSet() *ProbeSet {
	world := ecs.NewWorld()
	return &ProbeSet{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Reading](world),
		filter: ecs.NewFilter2[components.Position, components.Reading](world),
	}
}

// Add places a probe at a world position. Returns false when the probe
// limit is reached.
func (ps *ProbeSet) Add(x, y, z float32) bool {
	if ps.count >= maxProbes {
		return false
	}
	pos := components.Position{X: x, Y: y, Z: z}
	reading := components.Reading{}
	ps.mapper.NewEntity(&pos, &reading)
	ps.count++
	return true
}

// Clear removes all probes.
func (ps *ProbeSet) Clear() {
	var toRemove []ecs.Entity
	query := ps.filter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		ps.mapper.Remove(e)
	}
	ps.count = 0
}

// Count returns the number of placed probes.
func (ps *ProbeSet) Count() int { return ps.count }

// Update refreshes every probe's reading for the current parameters.
func (ps *ProbeSet) Update(p flow.Params) {
	query := ps.filter.Query()
	for query.Next() {
		pos, reading := query.Get()

		x := float64(pos.X) - p.ObstacleX
		y := float64(pos.Y) - p.ObstacleY
		z := float64(pos.Z) - p.ObstacleZ

		vx, vy, vz := flow.VelocityAt(x, y, z, p)
		reading.VX = float32(vx)
		reading.VY = float32(vy)
		reading.VZ = float32(vz)
		reading.Speed = magnitude3(reading.VX, reading.VY, reading.VZ)
		reading.Pressure = float32(flow.PressureOf(vx, vy, vz, p))
	}
}

// Readouts copies the current probe states into dst for display and
// returns it. Pass a slice to reuse its backing array.
func (ps *ProbeSet) Readouts(dst []ProbeReadout) []ProbeReadout {
	dst = dst[:0]
	query := ps.filter.Query()
	for query.Next() {
		pos, reading := query.Get()
		dst = append(dst, ProbeReadout{
			X: pos.X, Y: pos.Y, Z: pos.Z,
			Speed:    reading.Speed,
			Pressure: reading.Pressure,
		})
	}
	return dst
}
