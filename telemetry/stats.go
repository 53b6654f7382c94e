package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Simulation state at window end
	ParticleCount int     `csv:"particles"`
	FreeStream    float64 `csv:"free_stream"`
	Obstacle      string  `csv:"obstacle"`

	// Recycling during window
	RecycledAxial   int     `csv:"recycled_axial"`
	RecycledLateral int     `csv:"recycled_lateral"`
	RecycleRate     float64 `csv:"recycle_rate"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Pressure distribution
	PressureMean float64 `csv:"pressure_mean"`
	PressureMin  float64 `csv:"pressure_min"`
	PressureMax  float64 `csv:"pressure_max"`

	// Evaluator health
	Evaluator string `csv:"evaluator"`
	Degraded  bool   `csv:"degraded"`
}

// ComputeFieldStats calculates mean, std, and percentiles from sampled
// field values. Returns zeros for an empty slice.
func ComputeFieldStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	// Quantile wants the data sorted
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.ParticleCount),
		slog.Float64("free_stream", s.FreeStream),
		slog.String("obstacle", s.Obstacle),
		slog.Int("recycled_axial", s.RecycledAxial),
		slog.Int("recycled_lateral", s.RecycledLateral),
		slog.Float64("recycle_rate", s.RecycleRate),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("pressure_mean", s.PressureMean),
		slog.Float64("pressure_min", s.PressureMin),
		slog.Float64("pressure_max", s.PressureMax),
		slog.String("evaluator", s.Evaluator),
		slog.Bool("degraded", s.Degraded),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.ParticleCount,
		"free_stream", s.FreeStream,
		"obstacle", s.Obstacle,
		"recycled_axial", s.RecycledAxial,
		"recycled_lateral", s.RecycledLateral,
		"recycle_rate", s.RecycleRate,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"pressure_mean", s.PressureMean,
		"pressure_min", s.PressureMin,
		"pressure_max", s.PressureMax,
		"evaluator", s.Evaluator,
		"degraded", s.Degraded,
	)
}
