package telemetry

// Collector accumulates recycle events within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	// Event counters for current window
	recycledAxial   int
	recycledLateral int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// RecordRecycled records recycle counts for one tick.
func (c *Collector) RecordRecycled(axial, lateral int) {
	c.recycledAxial += axial
	c.recycledLateral += lateral
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// FieldSample holds field values sampled across the particle population
// at window end.
type FieldSample struct {
	Speeds    []float64
	Pressures []float64
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the current simulation state and field samples.
func (c *Collector) Flush(
	currentTick int32,
	particleCount int,
	freeStream float64,
	obstacle string,
	sample FieldSample,
	evaluator string,
	degraded bool,
) WindowStats {
	windowTicks := currentTick - c.windowStartTick
	var recycleRate float64
	if windowTicks > 0 {
		recycleRate = float64(c.recycledAxial+c.recycledLateral) / float64(windowTicks)
	}

	speedMean, speedStd, speedP10, speedP50, speedP90 := ComputeFieldStats(sample.Speeds)

	var pMean, pMin, pMax float64
	if len(sample.Pressures) > 0 {
		pMean, _, _, _, _ = ComputeFieldStats(sample.Pressures)
		pMin = sample.Pressures[0]
		pMax = sample.Pressures[0]
		for _, p := range sample.Pressures {
			if p < pMin {
				pMin = p
			}
			if p > pMax {
				pMax = p
			}
		}
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		ParticleCount: particleCount,
		FreeStream:    freeStream,
		Obstacle:      obstacle,

		RecycledAxial:   c.recycledAxial,
		RecycledLateral: c.recycledLateral,
		RecycleRate:     recycleRate,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP10:  speedP10,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,

		PressureMean: pMean,
		PressureMin:  pMin,
		PressureMax:  pMax,

		Evaluator: evaluator,
		Degraded:  degraded,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.recycledAxial = 0
	c.recycledLateral = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
