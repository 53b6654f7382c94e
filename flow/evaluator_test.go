package flow

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

// flaky fails its first n Evaluate calls, then defers to the scalar
// reference.
type flaky struct {
	failUntil int
	calls     int
}

func (f *flaky) Name() string { return "flaky" }

func (f *flaky) Evaluate(dst, positions []float32, count int, p Params) error {
	f.calls++
	if f.calls <= f.failUntil {
		return errors.New("injected failure")
	}
	return Scalar{}.Evaluate(dst, positions, count, p)
}

func (f *flaky) EvaluatePressure(dst, velocities []float32, count int, p Params) error {
	return Scalar{}.EvaluatePressure(dst, velocities, count, p)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProbeAcceptsKernel(t *testing.T) {
	kernel := NewKernel(0)
	defer kernel.Close()
	if err := Probe(kernel); err != nil {
		t.Fatalf("probe rejected a correct kernel: %v", err)
	}
}

func TestProbeAcceptsScalar(t *testing.T) {
	if err := Probe(Scalar{}); err != nil {
		t.Fatalf("probe rejected the scalar reference: %v", err)
	}
}

// broken returns plausibly-shaped but wrong velocities.
type broken struct{}

func (broken) Name() string { return "broken" }

func (broken) Evaluate(dst, positions []float32, count int, p Params) error {
	for i := 0; i < count*3; i++ {
		dst[i] = float32(p.FreeStream) * 0.5
	}
	return nil
}

func (broken) EvaluatePressure(dst, velocities []float32, count int, p Params) error {
	for i := 0; i < count; i++ {
		dst[i] = 0
	}
	return nil
}

func TestProbeRejectsWrongResults(t *testing.T) {
	if err := Probe(broken{}); err == nil {
		t.Fatal("probe accepted an evaluator producing wrong velocities")
	}
}

func TestGuardServesTransientFailureFromFallback(t *testing.T) {
	primary := &flaky{failUntil: 1}
	guard := NewGuard(primary, Scalar{}, 3, quietLogger())

	p := Params{FreeStream: 1, Density: 1, Kind: Sphere, Radius: 1}
	positions := []float32{2, 0, 0}
	dst := make([]float32, 3)

	// First call fails on the primary; the tick is still served correctly.
	if err := guard.Evaluate(dst, positions, 1, p); err != nil {
		t.Fatalf("guarded evaluate returned error: %v", err)
	}
	if dst[0] != 0.875 {
		t.Errorf("fallback result vx = %v, want 0.875", dst[0])
	}
	if guard.Degraded() {
		t.Error("one transient failure must not degrade the session")
	}

	// Second call succeeds on the primary and resets the failure count.
	if err := guard.Evaluate(dst, positions, 1, p); err != nil {
		t.Fatalf("guarded evaluate returned error: %v", err)
	}
	if guard.consecutive != 0 {
		t.Errorf("consecutive failures = %d after success, want 0", guard.consecutive)
	}
}

func TestGuardDegradesAfterThreshold(t *testing.T) {
	primary := &flaky{failUntil: 1 << 30}
	guard := NewGuard(primary, Scalar{}, 3, quietLogger())

	p := Params{FreeStream: 1, Density: 1, Kind: Sphere, Radius: 1}
	positions := []float32{2, 0, 0}
	dst := make([]float32, 3)

	for i := 0; i < 5; i++ {
		if err := guard.Evaluate(dst, positions, 1, p); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		// Every tick is still served correctly throughout.
		if dst[0] != 0.875 {
			t.Errorf("call %d: vx = %v, want 0.875", i, dst[0])
		}
	}

	if !guard.Degraded() {
		t.Fatal("guard not degraded after repeated failures")
	}
	if primary.calls != 3 {
		t.Errorf("primary attempted %d times, want exactly 3 before abandonment", primary.calls)
	}
	if guard.Name() != "scalar" {
		t.Errorf("degraded guard reports %q, want scalar", guard.Name())
	}
}

func TestSelectReturnsGuardedKernel(t *testing.T) {
	eval := Select(0, 3, quietLogger())
	if eval.Name() != "batch" {
		t.Fatalf("selected %q, want batch kernel", eval.Name())
	}
	guard, ok := eval.(*Guard)
	if !ok {
		t.Fatalf("selected evaluator is %T, want *Guard", eval)
	}
	if kernel, ok := guard.primary.(*Kernel); ok {
		defer kernel.Close()
	}

	// The selected evaluator must produce reference results.
	p := Params{FreeStream: 1, Density: 1, Kind: Cylinder, Radius: 1}
	positions := []float32{0, 2, 0}
	dst := make([]float32, 3)
	if err := eval.Evaluate(dst, positions, 1, p); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if dst[0] != 1.25 {
		t.Errorf("vx = %v, want 1.25", dst[0])
	}
}
