package flow

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// kernelThresholdDefault is the minimum point count for worker dispatch.
// Below this, single-threaded is faster due to channel overhead.
const kernelThresholdDefault = 1024

// kernelParams is Params narrowed to float32 once per call so the hot loop
// never converts.
type kernelParams struct {
	u, density float32
	ox, oy, oz float32
	radius     float32
	kind       Kind
}

// chunk is a range of points for one worker.
type chunk struct {
	start, end int
}

// Kernel is the batch evaluator: the potential-flow formulas in float32
// arithmetic over flat buffers, chunked across a persistent worker pool for
// large point counts. It allocates nothing per call beyond what the caller
// passes in.
//
// Ticks are strictly sequential, so a single Kernel is never evaluated
// concurrently; the per-call fields below rely on that.
type Kernel struct {
	numWorkers int
	threshold  int

	workChan chan chunk
	doneChan chan error
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool

	// Per-call state, set before dispatch.
	dst       []float32
	positions []float32
	params    kernelParams
}

// NewKernel creates a batch kernel. parallelThreshold is the minimum point
// count for parallel dispatch; pass 0 for the default.
func NewKernel(parallelThreshold int) *Kernel {
	if parallelThreshold <= 0 {
		parallelThreshold = kernelThresholdDefault
	}
	return &Kernel{
		numWorkers: runtime.GOMAXPROCS(0),
		threshold:  parallelThreshold,
	}
}

// Name identifies the implementation in logs and the HUD.
func (k *Kernel) Name() string { return "batch" }

// Evaluate computes velocities for count points into dst. Both buffers hold
// 3*count floats. A panic inside the kernel is recovered and returned as an
// error so the caller can serve the tick another way.
func (k *Kernel) Evaluate(dst, positions []float32, count int, p Params) error {
	k.dst = dst
	k.positions = positions
	k.params = kernelParams{
		u:       float32(p.FreeStream),
		density: float32(p.Density),
		ox:      float32(p.ObstacleX),
		oy:      float32(p.ObstacleY),
		oz:      float32(p.ObstacleZ),
		radius:  float32(p.Radius),
		kind:    p.Kind,
	}

	if count < k.threshold {
		return k.runChunk(0, count)
	}
	return k.dispatch(count)
}

// EvaluatePressure computes Bernoulli pressure for count velocities into
// dst (count floats). velocities holds 3*count floats.
func (k *Kernel) EvaluatePressure(dst, velocities []float32, count int, p Params) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("kernel: pressure: %v", r)
		}
	}()

	u := float32(p.FreeStream)
	density := float32(p.Density)
	pRef := 0.5 * density * u * u

	for i := 0; i < count; i++ {
		idx := i * 3
		vx := velocities[idx]
		vy := velocities[idx+1]
		vz := velocities[idx+2]
		dst[i] = pRef - 0.5*density*(vx*vx+vy*vy+vz*vz)
	}
	return nil
}

// Close stops the worker pool. Safe to call on a kernel that never started.
func (k *Kernel) Close() {
	if !k.running {
		return
	}
	close(k.stopChan)
	k.wg.Wait()
	close(k.workChan)
	close(k.doneChan)
	k.running = false
}

// startWorkers launches persistent worker goroutines.
func (k *Kernel) startWorkers() {
	if k.running {
		return
	}
	k.workChan = make(chan chunk, k.numWorkers)
	k.doneChan = make(chan error, k.numWorkers)
	k.stopChan = make(chan struct{})
	k.running = true

	for i := 0; i < k.numWorkers; i++ {
		k.wg.Add(1)
		go k.worker()
	}
}

// worker processes chunks until stopped. Panics are recovered inside
// runChunk so a failing chunk never takes the process down.
func (k *Kernel) worker() {
	defer k.wg.Done()
	for {
		select {
		case <-k.stopChan:
			return
		case c, ok := <-k.workChan:
			if !ok {
				return
			}
			k.doneChan <- k.runChunk(c.start, c.end)
		}
	}
}

// dispatch splits count points across the worker pool and collects results.
func (k *Kernel) dispatch(count int) error {
	if !k.running {
		k.startWorkers()
	}

	chunkSize := (count + k.numWorkers - 1) / k.numWorkers
	dispatched := 0
	for w := 0; w < k.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > count {
			end = count
		}
		if start >= end {
			continue
		}
		k.workChan <- chunk{start: start, end: end}
		dispatched++
	}

	var firstErr error
	for i := 0; i < dispatched; i++ {
		if err := <-k.doneChan; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// runChunk evaluates a chunk, converting any panic to an error.
func (k *Kernel) runChunk(i0, i1 int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("kernel: chunk [%d,%d): %v", i0, i1, r)
		}
	}()
	k.computeChunk(i0, i1)
	return nil
}

// computeChunk evaluates points [i0, i1). Pure float32 math over the flat
// buffers; no shared mutable state between points.
func (k *Kernel) computeChunk(i0, i1 int) {
	pp := k.params
	u := pp.u
	a := pp.radius

	for i := i0; i < i1; i++ {
		idx := i * 3
		x := k.positions[idx] - pp.ox
		y := k.positions[idx+1] - pp.oy
		z := k.positions[idx+2] - pp.oz

		r := sqrtf(x*x + y*y + z*z)

		var vx, vy, vz float32
		vx = u

		if r <= a {
			vx, vy, vz = 0, 0, 0
		} else {
			switch pp.kind {
			case Sphere:
				factor := (a * a * a) / (r * r * r)
				vx = u * (1 - factor*(3*x*x/(2*r*r)-0.5))
				vy = u * (-factor * 3 * x * y / (2 * r * r))
				vz = u * (-factor * 3 * x * z / (2 * r * r))

			case Cylinder:
				rxy := sqrtf(x*x + y*y)
				if rxy > a {
					factor := (a / rxy) * (a / rxy)
					vx = u * (1 - factor*(2*x*x/(rxy*rxy)-1))
					vy = u * (-factor * 2 * x * y / (rxy * rxy))

					pressure := pp.density * (0.5*u*u - 0.5*(vx*vx+vy*vy))
					vz += z * pressure * 0.01
				} else {
					vx, vy, vz = 0, 0, 0
				}

			case Airfoil:
				rxy := sqrtf(x*x + y*y)
				angle := atan2f(y, x)
				circulation := u * 4 * math.Pi * a * sinf(angle)

				if rxy > a {
					factor := (a / rxy) * (a / rxy)
					vx = u * (1 - factor*cosf(2*angle))
					vy = u*(-factor*sinf(2*angle)) + circulation/(2*math.Pi*rxy)
					vz = 0.1 * z * (vx*vx + vy*vy) / (a * u)
				} else {
					vx, vy, vz = 0, 0, 0
				}
			}
		}

		k.dst[idx] = vx
		k.dst[idx+1] = vy
		k.dst[idx+2] = vz
	}
}

// float32 wrappers around the math package.

func sqrtf(x float32) float32 { return float32(math.Sqrt(float64(x))) }

func sinf(x float32) float32 { return float32(math.Sin(float64(x))) }

func cosf(x float32) float32 { return float32(math.Cos(float64(x))) }

func atan2f(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }
