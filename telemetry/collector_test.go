package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindowTicks(t *testing.T) {
	// 1 second window at dt=0.01 is 100 ticks
	c := NewCollector(1.0, 0.01)

	if c.WindowDurationTicks() != 100 {
		t.Errorf("expected 100 ticks per window, got %d", c.WindowDurationTicks())
	}

	if c.ShouldFlush(99) {
		t.Error("should not flush before window ends")
	}
	if !c.ShouldFlush(100) {
		t.Error("should flush at window end")
	}
}

func TestCollectorFlushAggregatesAndResets(t *testing.T) {
	c := NewCollector(1.0, 0.01)

	for i := 0; i < 10; i++ {
		c.RecordRecycled(2, 1)
	}

	sample := FieldSample{
		Speeds:    []float64{1, 1, 1, 1},
		Pressures: []float64{-0.5, 0, 0.25},
	}
	stats := c.Flush(100, 4000, 1.0, "sphere", sample, "batch", false)

	if stats.RecycledAxial != 20 {
		t.Errorf("expected 20 axial recycles, got %d", stats.RecycledAxial)
	}
	if stats.RecycledLateral != 10 {
		t.Errorf("expected 10 lateral recycles, got %d", stats.RecycledLateral)
	}
	// 30 recycles over 100 ticks
	if math.Abs(stats.RecycleRate-0.3) > 1e-9 {
		t.Errorf("expected recycle rate 0.3, got %f", stats.RecycleRate)
	}
	if stats.SpeedMean != 1 {
		t.Errorf("expected speed mean 1, got %f", stats.SpeedMean)
	}
	if stats.PressureMin != -0.5 || stats.PressureMax != 0.25 {
		t.Errorf("expected pressure range [-0.5, 0.25], got [%f, %f]", stats.PressureMin, stats.PressureMax)
	}
	// dt is carried as float32, so allow its rounding in the product.
	if math.Abs(stats.SimTimeSec-1.0) > 1e-6 {
		t.Errorf("expected sim time 1.0, got %f", stats.SimTimeSec)
	}
	if stats.Evaluator != "batch" || stats.Degraded {
		t.Errorf("expected evaluator batch, not degraded, got %q degraded=%v", stats.Evaluator, stats.Degraded)
	}

	// Counters reset after flush
	next := c.Flush(200, 4000, 1.0, "sphere", FieldSample{}, "batch", false)
	if next.RecycledAxial != 0 || next.RecycledLateral != 0 {
		t.Errorf("expected counters reset after flush, got axial=%d lateral=%d",
			next.RecycledAxial, next.RecycledLateral)
	}
	if next.WindowStartTick != 100 {
		t.Errorf("expected window start 100, got %d", next.WindowStartTick)
	}
}
