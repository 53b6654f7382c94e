package flow

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// conformanceTol is the agreement required between the batch kernel and the
// scalar reference. Applied as absolute-or-relative: near stagnation points
// the velocity components cancel to near zero and a pure relative check
// would amplify float32 rounding into spurious failures.
const conformanceTol = 1e-5

// randomParams draws flow parameters covering all kinds, negative
// free-stream speeds included.
func randomParams(rng *rand.Rand) Params {
	return Params{
		FreeStream: rng.Float64()*5 - 1, // [-1, 4)
		Density:    0.5 + rng.Float64()*1.5,
		ObstacleX:  rng.Float64()*2 - 1,
		ObstacleY:  rng.Float64()*2 - 1,
		ObstacleZ:  rng.Float64()*2 - 1,
		Kind:       Kind(rng.Intn(3)),
		Radius:     1.0,
	}
}

func TestKernelConformance(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	kernel := NewKernel(0)
	defer kernel.Close()
	ref := Scalar{}

	const rounds = 100
	const n = 100 // 10k total samples

	positions := make([]float32, n*3)
	got := make([]float32, n*3)
	want := make([]float32, n*3)
	gotP := make([]float32, n)
	wantP := make([]float32, n)

	for round := 0; round < rounds; round++ {
		p := randomParams(rng)
		absTol := conformanceTol * math.Max(1, math.Abs(p.FreeStream))

		for i := 0; i < n; i++ {
			// Bias a fraction of samples toward the kind boundary where
			// the formulas transition to the zero branch.
			scale := 4.0
			if i%5 == 0 {
				scale = 1.2
			}
			positions[i*3] = float32(p.ObstacleX + (rng.Float64()*2-1)*scale)
			positions[i*3+1] = float32(p.ObstacleY + (rng.Float64()*2-1)*scale)
			positions[i*3+2] = float32(p.ObstacleZ + (rng.Float64()*2-1)*scale)
		}

		if err := kernel.Evaluate(got, positions, n, p); err != nil {
			t.Fatalf("round %d: kernel: %v", round, err)
		}
		if err := ref.Evaluate(want, positions, n, p); err != nil {
			t.Fatalf("round %d: reference: %v", round, err)
		}

		for i := range got {
			if !scalar.EqualWithinAbsOrRel(float64(got[i]), float64(want[i]), absTol, conformanceTol) {
				t.Fatalf("round %d (%s): velocity[%d] = %v, reference %v",
					round, p.Kind, i, got[i], want[i])
			}
		}

		if err := kernel.EvaluatePressure(gotP, want, n, p); err != nil {
			t.Fatalf("round %d: kernel pressure: %v", round, err)
		}
		if err := ref.EvaluatePressure(wantP, want, n, p); err != nil {
			t.Fatalf("round %d: reference pressure: %v", round, err)
		}
		for i := range gotP {
			if !scalar.EqualWithinAbsOrRel(float64(gotP[i]), float64(wantP[i]), absTol, conformanceTol) {
				t.Fatalf("round %d (%s): pressure[%d] = %v, reference %v",
					round, p.Kind, i, gotP[i], wantP[i])
			}
		}
	}
}

func TestKernelParallelPathMatchesSequential(t *testing.T) {
	// A low threshold forces worker dispatch; results must be identical to
	// the sequential path since chunks share no state.
	rng := rand.New(rand.NewSource(2))
	parallel := NewKernel(64)
	defer parallel.Close()
	sequential := NewKernel(1 << 30)
	defer sequential.Close()

	const n = 5000
	positions := make([]float32, n*3)
	for i := range positions {
		positions[i] = float32(rng.Float64()*8 - 4)
	}
	got := make([]float32, n*3)
	want := make([]float32, n*3)

	for _, kind := range []Kind{Sphere, Cylinder, Airfoil} {
		p := Params{FreeStream: 1.3, Density: 1, Kind: kind, Radius: 1}
		if err := parallel.Evaluate(got, positions, n, p); err != nil {
			t.Fatalf("%s: parallel: %v", kind, err)
		}
		if err := sequential.Evaluate(want, positions, n, p); err != nil {
			t.Fatalf("%s: sequential: %v", kind, err)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s: component %d differs: %v != %v", kind, i, got[i], want[i])
			}
		}
	}
}

func TestKernelInsideObstacleIsExactZero(t *testing.T) {
	kernel := NewKernel(0)
	defer kernel.Close()

	positions := []float32{0, 0, 0, 0.4, -0.3, 0.2}
	dst := make([]float32, 6)
	for _, kind := range []Kind{Sphere, Cylinder, Airfoil} {
		p := Params{FreeStream: 2, Density: 1, Kind: kind, Radius: 1}
		if err := kernel.Evaluate(dst, positions, 2, p); err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		for i, v := range dst {
			if v != 0 {
				t.Errorf("%s: component %d = %v, want exact zero inside obstacle", kind, i, v)
			}
		}
	}
}

func BenchmarkKernelEvaluate(b *testing.B) {
	rng := rand.New(rand.NewSource(3))
	const n = 4096
	positions := make([]float32, n*3)
	for i := range positions {
		positions[i] = float32(rng.Float64()*8 - 4)
	}
	dst := make([]float32, n*3)
	p := Params{FreeStream: 1, Density: 1, Kind: Sphere, Radius: 1}

	for _, bench := range []struct {
		name      string
		threshold int
	}{
		{"sequential", 1 << 30},
		{"parallel", 256},
	} {
		b.Run(bench.name, func(b *testing.B) {
			kernel := NewKernel(bench.threshold)
			defer kernel.Close()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := kernel.Evaluate(dst, positions, n, p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScalarEvaluate(b *testing.B) {
	rng := rand.New(rand.NewSource(3))
	const n = 4096
	positions := make([]float32, n*3)
	for i := range positions {
		positions[i] = float32(rng.Float64()*8 - 4)
	}
	dst := make([]float32, n*3)
	p := Params{FreeStream: 1, Density: 1, Kind: Sphere, Radius: 1}
	ref := Scalar{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ref.Evaluate(dst, positions, n, p); err != nil {
			b.Fatal(err)
		}
	}
}
