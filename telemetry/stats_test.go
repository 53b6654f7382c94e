package telemetry

import (
	"math"
	"testing"
)

func TestComputeFieldStats(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	mean, std, p10, p50, p90 := ComputeFieldStats(values)

	if math.Abs(mean-5.5) > 1e-9 {
		t.Errorf("expected mean 5.5, got %f", mean)
	}
	if std <= 0 {
		t.Errorf("expected positive std, got %f", std)
	}
	if p10 != 1 {
		t.Errorf("expected p10 = 1, got %f", p10)
	}
	if p50 != 5 {
		t.Errorf("expected p50 = 5, got %f", p50)
	}
	if p90 != 9 {
		t.Errorf("expected p90 = 9, got %f", p90)
	}
}

func TestComputeFieldStatsEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeFieldStats(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("expected all zeros for empty input")
	}
}

func TestComputeFieldStatsUnsortedInput(t *testing.T) {
	// Input order must not matter, and the input must not be mutated.
	values := []float64{7, 1, 9, 3, 5}
	_, _, _, p50, _ := ComputeFieldStats(values)

	if p50 != 5 {
		t.Errorf("expected p50 = 5, got %f", p50)
	}
	if values[0] != 7 {
		t.Errorf("input slice was mutated: %v", values)
	}
}

func TestComputeFieldStatsSingleValue(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeFieldStats([]float64{2.5})
	if mean != 2.5 || p10 != 2.5 || p50 != 2.5 || p90 != 2.5 {
		t.Errorf("expected all quantiles 2.5, got mean=%f p10=%f p50=%f p90=%f", mean, p10, p50, p90)
	}
	if std != 0 {
		t.Errorf("expected zero std for single value, got %f", std)
	}
}
