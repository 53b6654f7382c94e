// Package app wires the flow evaluator, particle system and renderers into
// the interactive tunnel session.
package app

import (
	"log/slog"
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/camera"
	"github.com/pthm-cable/windtunnel/config"
	"github.com/pthm-cable/windtunnel/flow"
	"github.com/pthm-cable/windtunnel/renderer"
	"github.com/pthm-cable/windtunnel/systems"
	"github.com/pthm-cable/windtunnel/telemetry"
	"github.com/pthm-cable/windtunnel/ui"
)

// Options configures a session at startup.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// App holds the complete session state.
type App struct {
	cfg *config.Config
	rng *rand.Rand

	eval      flow.Evaluator
	params    flow.Params
	particles *systems.ParticleSystem
	probes    *systems.ProbeSet
	grid      *systems.SliceGrid

	orbit *camera.Orbit

	// Rendering (nil in headless mode)
	particleR *renderer.ParticleRenderer
	obstacleR *renderer.ObstacleRenderer
	sliceR    *renderer.SliceRenderer

	controls   *ui.ControlsPanel
	hud        *ui.HUD
	probePanel *ui.ProbePanel
	settings   ui.Settings

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	// Scratch buffers reused across ticks
	readouts  []systems.ProbeReadout
	pressures []float32

	tick           int32
	paused         bool
	stepsPerUpdate int
	logStats       bool
	headless       bool
	sliceDirty     bool
}

// New creates a session from the loaded config and options.
func New(opts Options) (*App, error) {
	cfg := config.Cfg()

	eval := flow.Select(cfg.Kernel.ParallelThreshold, cfg.Kernel.FailureThreshold, slog.Default())

	tunnel := systems.Tunnel{
		EntryX:     float32(cfg.Tunnel.EntryX),
		ExitX:      float32(cfg.Tunnel.ExitX),
		HalfWidth:  float32(cfg.Tunnel.HalfWidth),
		HalfHeight: float32(cfg.Tunnel.HalfHeight),
	}

	params := flow.Params{
		FreeStream: cfg.Flow.FreeStream,
		Density:    cfg.Flow.Density,
		Kind:       flow.KindFromName(cfg.Flow.Obstacle),
		Radius:     cfg.Flow.Radius,
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		rng:       rng,
		eval:      eval,
		params:    params,
		particles: systems.NewParticleSystem(cfg.Particles.Count, tunnel, eval, rng, cfg.Derived.DT32, cfg.Derived.Smoothing32),
		probes:    systems.NewProbeSet(),
		orbit:     camera.NewOrbit(orbitDistanceFor(tunnel)),

		collector: telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:    output,

		settings: ui.Settings{
			FreeStream:    float32(cfg.Flow.FreeStream),
			Density:       float32(cfg.Flow.Density),
			Radius:        float32(cfg.Flow.Radius),
			Kind:          flow.KindFromName(cfg.Flow.Obstacle),
			ParticleCount: cfg.Particles.Count,
			MaxCount:      cfg.Particles.MaxCount,
			Plane:         systems.PlaneFromName(cfg.Slice.Plane),
			Field:         systems.FieldFromName(cfg.Slice.Field),
			SliceVisible:  cfg.Slice.Enabled,
		},

		stepsPerUpdate: stepsPerUpdate,
		logStats:       opts.LogStats,
		headless:       opts.Headless,
		sliceDirty:     true,
	}

	if !opts.Headless {
		a.particleR = renderer.NewParticleRenderer()
		a.obstacleR = renderer.NewObstacleRenderer()
		a.sliceR = renderer.NewSliceRenderer()
		a.controls = ui.NewControlsPanel(int32(cfg.Screen.Width)-280, 10, 270)
		a.hud = ui.NewHUD(10, 10, 220)
		a.probePanel = ui.NewProbePanel(10, 130, 320)
	}

	return a, nil
}

// orbitDistanceFor picks an initial camera distance that frames the whole
// test section.
func orbitDistanceFor(t systems.Tunnel) float32 {
	d := (t.ExitX - t.EntryX) * 1.2
	if d < 6 {
		d = 6
	}
	return d
}

// Tick returns the current tick counter.
func (a *App) Tick() int32 { return a.tick }

// Evaluator returns the active evaluator's name for logging and the HUD.
func (a *App) Evaluator() string { return a.eval.Name() }

// degraded reports whether a guarded kernel has been abandoned.
func (a *App) degraded() bool {
	if g, ok := a.eval.(*flow.Guard); ok {
		return g.Degraded()
	}
	return false
}

// Update runs input handling and simulation steps for one frame.
func (a *App) Update() {
	a.handleInput()

	if a.paused {
		return
	}

	for i := 0; i < a.stepsPerUpdate; i++ {
		a.simulationStep()
	}
}

// UpdateHeadless runs simulation steps without any input or rendering.
func (a *App) UpdateHeadless() {
	for i := 0; i < a.stepsPerUpdate; i++ {
		a.simulationStep()
	}
}

// simulationStep runs a single tick: evaluate, advect, sample probes,
// rebuild the slice if needed, flush telemetry.
func (a *App) simulationStep() {
	a.perf.StartTick()

	a.perf.StartPhase(telemetry.PhaseEvaluate)
	a.particles.EvaluateField(a.params)

	a.perf.StartPhase(telemetry.PhaseAdvect)
	a.particles.Step(a.params)

	a.perf.StartPhase(telemetry.PhaseProbes)
	a.probes.Update(a.params)

	if a.sliceDirty && a.settings.SliceVisible && !a.headless {
		a.perf.StartPhase(telemetry.PhaseSlice)
		a.rebuildSlice()
	}

	a.perf.StartPhase(telemetry.PhaseTelemetry)
	axial, lateral := a.particles.RecycledLastTickSplit()
	a.collector.RecordRecycled(axial, lateral)

	a.tick++
	if a.collector.ShouldFlush(a.tick) {
		a.flushTelemetry()
	}

	a.perf.EndTick()
}

// flushTelemetry samples the field across the population and emits a
// stats window.
func (a *App) flushTelemetry() {
	count := a.particles.Count()
	velocities := a.particles.Velocities()

	if cap(a.pressures) < count {
		a.pressures = make([]float32, count)
	}
	a.pressures = a.pressures[:count]
	_ = a.eval.EvaluatePressure(a.pressures, velocities, count, a.params)

	sample := telemetry.FieldSample{
		Speeds:    make([]float64, count),
		Pressures: make([]float64, count),
	}
	for i := 0; i < count; i++ {
		idx := i * 3
		vx := float64(velocities[idx])
		vy := float64(velocities[idx+1])
		vz := float64(velocities[idx+2])
		sample.Speeds[i] = math.Sqrt(vx*vx + vy*vy + vz*vz)
		sample.Pressures[i] = float64(a.pressures[i])
	}

	stats := a.collector.Flush(
		a.tick,
		count,
		a.params.FreeStream,
		a.params.Kind.String(),
		sample,
		a.eval.Name(),
		a.degraded(),
	)

	if a.logStats {
		stats.LogStats()
		a.perf.Stats().LogStats()
	}
	if err := a.output.WriteTelemetry(stats); err != nil {
		slog.Error("telemetry write failed", "error", err)
	}
	if err := a.output.WritePerf(a.perf.Stats(), a.tick); err != nil {
		slog.Error("perf write failed", "error", err)
	}
}

// applySettings pushes control panel edits into the simulation state.
func (a *App) applySettings(changes ui.Changes) {
	if changes.Flow {
		a.params.FreeStream = float64(a.settings.FreeStream)
		a.params.Density = float64(a.settings.Density)
		a.params.Radius = float64(a.settings.Radius)
		a.params.Kind = a.settings.Kind
		a.sliceDirty = true
	}
	if changes.Count {
		a.particles.Resize(a.settings.ParticleCount)
	}
	if changes.Slice {
		a.sliceDirty = true
	}
}

// rebuildSlice regenerates the slice grid from the current parameters and
// uploads it. Called only when something it depends on changed.
func (a *App) rebuildSlice() {
	a.grid = systems.BuildSliceGrid(
		a.cfg.Slice.Resolution,
		a.settings.Plane,
		a.settings.Field,
		float32(a.cfg.Slice.Extent),
		a.params,
		a.eval,
	)
	a.sliceR.Update(a.grid)
	a.sliceDirty = false
}

// Draw renders one frame. Must not be called in headless mode.
func (a *App) Draw() {
	a.perf.RecordFrame()

	// Slice rebuilds normally ride along with simulation ticks; catch the
	// paused case here so slider edits still show up.
	if a.paused && a.settings.SliceVisible && a.sliceDirty {
		a.rebuildSlice()
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

	cam := a.camera3D()
	rl.BeginMode3D(cam)

	renderer.DrawTunnel(a.particles.Tunnel())
	a.obstacleR.Init(a.particles.Tunnel().HalfHeight * 2)
	a.obstacleR.Draw(a.params)
	a.particleR.Draw(a.particles.Positions(), a.particles.Velocities(), a.particles.Count(), float32(a.params.FreeStream))

	a.readouts = a.probes.Readouts(a.readouts)
	renderer.DrawProbeMarkers(a.readouts)

	rl.EndMode3D()

	if a.settings.SliceVisible && a.grid != nil {
		size := int32(a.cfg.Screen.Height / 3)
		a.sliceR.Draw(a.grid, 10, int32(a.cfg.Screen.Height)-size-10, size)
	}

	changes := a.controls.Draw(&a.settings)
	a.applySettings(changes)

	a.hud.Draw(ui.HUDData{
		Tick:          a.tick,
		FPS:           int32(rl.GetFPS()),
		ParticleCount: a.particles.Count(),
		Evaluator:     a.eval.Name(),
		Degraded:      a.degraded(),
		RecycledTick:  a.particles.RecycledLastTick(),
		Paused:        a.paused,
	})
	a.probePanel.Draw(a.readouts)

	rl.EndDrawing()
}

// camera3D builds the raylib camera from the orbit state.
func (a *App) camera3D() rl.Camera3D {
	x, y, z := a.orbit.Position()
	return rl.Camera3D{
		Position:   rl.Vector3{X: x, Y: y, Z: z},
		Target:     rl.Vector3{X: a.orbit.TargetX, Y: a.orbit.TargetY, Z: a.orbit.TargetZ},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

// Unload releases evaluator workers, GPU resources and output files.
func (a *App) Unload() {
	switch e := a.eval.(type) {
	case *flow.Guard:
		e.Close()
	case *flow.Kernel:
		e.Close()
	}
	if a.obstacleR != nil {
		a.obstacleR.Unload()
	}
	if a.sliceR != nil {
		a.sliceR.Unload()
	}
	if err := a.output.Close(); err != nil {
		slog.Error("closing output", "error", err)
	}
}
