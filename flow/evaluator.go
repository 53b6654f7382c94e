package flow

import (
	"fmt"
	"log/slog"
	"math"
)

// Evaluator computes velocity and pressure fields over flat particle
// buffers. Implementations must be total over finite inputs: they report
// internal failures as errors, never by panicking across the call boundary.
type Evaluator interface {
	Name() string
	Evaluate(dst, positions []float32, count int, p Params) error
	EvaluatePressure(dst, velocities []float32, count int, p Params) error
}

// probeTolerance bounds the disagreement allowed between the batch kernel
// and the scalar reference during the startup probe.
const probeTolerance = 1e-4

// probePoints are relative positions exercised per obstacle kind: axis
// points, off-axis points, the obstacle interior, and near-surface points
// where the formulas are most sensitive.
var probePoints = [][3]float64{
	{2, 0, 0},
	{-2, 0, 0},
	{0, 2, 0},
	{0, 0, 2},
	{1.5, 1.5, 0.5},
	{-1.2, 0.7, -0.9},
	{0.3, 0.2, 0.1}, // interior
	{1.05, 0.0, 0.0},
	{0.0, 1.05, 0.0},
	{0.0, 0.5, 2.0}, // outside in 3D, inside the cylinder shadow
}

// Probe runs the candidate evaluator over a fixed sample set for every
// obstacle kind and compares the results against the scalar reference.
// Any error, non-finite output, or disagreement beyond tolerance fails
// the probe.
func Probe(candidate Evaluator) error {
	ref := Scalar{}
	n := len(probePoints)
	positions := make([]float32, n*3)
	got := make([]float32, n*3)
	want := make([]float32, n*3)
	gotP := make([]float32, n)
	wantP := make([]float32, n)

	for _, kind := range []Kind{Sphere, Cylinder, Airfoil} {
		p := Params{FreeStream: 1.5, Density: 1.2, Kind: kind, Radius: 1.0}

		for i, pt := range probePoints {
			positions[i*3] = float32(pt[0])
			positions[i*3+1] = float32(pt[1])
			positions[i*3+2] = float32(pt[2])
		}

		if err := candidate.Evaluate(got, positions, n, p); err != nil {
			return fmt.Errorf("probe: %s velocity: %w", kind, err)
		}
		if err := ref.Evaluate(want, positions, n, p); err != nil {
			return fmt.Errorf("probe: %s reference: %w", kind, err)
		}
		for i := range got {
			if err := checkAgreement(float64(got[i]), float64(want[i]), p.FreeStream); err != nil {
				return fmt.Errorf("probe: %s velocity[%d]: %w", kind, i, err)
			}
		}

		if err := candidate.EvaluatePressure(gotP, want, n, p); err != nil {
			return fmt.Errorf("probe: %s pressure: %w", kind, err)
		}
		if err := ref.EvaluatePressure(wantP, want, n, p); err != nil {
			return fmt.Errorf("probe: %s reference pressure: %w", kind, err)
		}
		for i := range gotP {
			if err := checkAgreement(float64(gotP[i]), float64(wantP[i]), p.FreeStream); err != nil {
				return fmt.Errorf("probe: %s pressure[%d]: %w", kind, i, err)
			}
		}
	}
	return nil
}

// checkAgreement compares a value against the reference using a mixed
// absolute/relative tolerance scaled by the free-stream speed, so that
// near-cancellation points (stagnation regions) do not trip a pure
// relative check.
func checkAgreement(got, want, scale float64) error {
	if math.IsNaN(got) || math.IsInf(got, 0) {
		return fmt.Errorf("non-finite value %v (reference %v)", got, want)
	}
	limit := probeTolerance * maxf(1, maxf(math.Abs(want), math.Abs(scale)))
	if diff := math.Abs(got - want); diff > limit {
		return fmt.Errorf("got %v, reference %v (diff %g > %g)", got, want, diff, limit)
	}
	return nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Guard serves every call from a primary evaluator, falling back to a
// reference implementation for any tick the primary fails. After
// failureThreshold consecutive failures the primary is abandoned for the
// rest of the session; a single transient failure changes nothing
// permanently.
type Guard struct {
	primary  Evaluator
	fallback Evaluator
	log      *slog.Logger

	failureThreshold int
	consecutive      int
	degraded         bool
}

// NewGuard wraps primary with fallback. failureThreshold <= 0 selects the
// default of 3.
func NewGuard(primary, fallback Evaluator, failureThreshold int, log *slog.Logger) *Guard {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	if log == nil {
		log = slog.Default()
	}
	return &Guard{
		primary:          primary,
		fallback:         fallback,
		log:              log,
		failureThreshold: failureThreshold,
	}
}

// Name reports the implementation currently serving calls.
func (g *Guard) Name() string {
	if g.degraded {
		return g.fallback.Name()
	}
	return g.primary.Name()
}

// Degraded reports whether the primary has been permanently abandoned.
func (g *Guard) Degraded() bool { return g.degraded }

// Close stops the primary's workers if it owns any.
func (g *Guard) Close() {
	if k, ok := g.primary.(*Kernel); ok {
		k.Close()
	}
}

// Evaluate serves the call from the primary, or from the fallback when the
// primary fails or has been abandoned. It never returns an error itself:
// the fallback is the scalar reference, which cannot fail.
func (g *Guard) Evaluate(dst, positions []float32, count int, p Params) error {
	if g.degraded {
		return g.fallback.Evaluate(dst, positions, count, p)
	}
	if err := g.primary.Evaluate(dst, positions, count, p); err != nil {
		g.recordFailure(err)
		return g.fallback.Evaluate(dst, positions, count, p)
	}
	g.consecutive = 0
	return nil
}

// EvaluatePressure mirrors Evaluate for the pressure entry point.
func (g *Guard) EvaluatePressure(dst, velocities []float32, count int, p Params) error {
	if g.degraded {
		return g.fallback.EvaluatePressure(dst, velocities, count, p)
	}
	if err := g.primary.EvaluatePressure(dst, velocities, count, p); err != nil {
		g.recordFailure(err)
		return g.fallback.EvaluatePressure(dst, velocities, count, p)
	}
	g.consecutive = 0
	return nil
}

func (g *Guard) recordFailure(err error) {
	g.consecutive++
	g.log.Warn("batch kernel failed, serving tick from fallback",
		"error", err,
		"consecutive", g.consecutive,
	)
	if g.consecutive >= g.failureThreshold {
		g.degraded = true
		g.log.Warn("batch kernel abandoned for the session",
			"failures", g.consecutive,
			"fallback", g.fallback.Name(),
		)
	}
}

// Select builds the evaluator for a session: the batch kernel guarded by the
// scalar reference when the startup probe passes, the scalar reference alone
// otherwise. Probe failure is not fatal; it is logged and the session runs
// on the scalar path with identical external behavior.
func Select(parallelThreshold, failureThreshold int, log *slog.Logger) Evaluator {
	if log == nil {
		log = slog.Default()
	}
	kernel := NewKernel(parallelThreshold)
	if err := Probe(kernel); err != nil {
		log.Warn("batch kernel failed capability probe, using scalar evaluator", "error", err)
		kernel.Close()
		return Scalar{}
	}
	log.Info("batch kernel selected", "workers", kernel.numWorkers, "parallel_threshold", kernel.threshold)
	return NewGuard(kernel, Scalar{}, failureThreshold, log)
}
