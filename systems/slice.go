package systems

import (
	"image/color"

	"github.com/pthm-cable/windtunnel/flow"
)

// SlicePlane selects which coordinate plane the sample grid lies in. All
// planes pass through the obstacle center.
type SlicePlane int

const (
	PlaneXY SlicePlane = iota
	PlaneXZ
	PlaneYZ
)

// PlaneNames lists the planes in code order.
var PlaneNames = []string{"xy", "xz", "yz"}

func (p SlicePlane) String() string {
	if p < 0 || int(p) >= len(PlaneNames) {
		return "unknown"
	}
	return PlaneNames[p]
}

// PlaneFromName maps a lowercase plane name to its code. Unknown names map
// to PlaneXY.
func PlaneFromName(name string) SlicePlane {
	for i, n := range PlaneNames {
		if n == name {
			return SlicePlane(i)
		}
	}
	return PlaneXY
}

// SliceField selects the scalar shown on the slice.
type SliceField int

const (
	FieldSpeed SliceField = iota
	FieldPressure
)

// FieldNames lists the fields in code order.
var FieldNames = []string{"speed", "pressure"}

func (f SliceField) String() string {
	if f < 0 || int(f) >= len(FieldNames) {
		return "unknown"
	}
	return FieldNames[f]
}

// FieldFromName maps a lowercase field name to its code. Unknown names map
// to FieldSpeed.
func FieldFromName(name string) SliceField {
	for i, n := range FieldNames {
		if n == name {
			return SliceField(i)
		}
	}
	return FieldSpeed
}

// SliceGrid is a Resolution x Resolution lattice of field samples in one
// coordinate plane, with per-point scalar values and derived colors. Grids
// are built from scratch on every parameter change and never mutated in
// place.
type SliceGrid struct {
	Resolution int
	Plane      SlicePlane
	Field      SliceField
	Extent     float32 // half-size of the sampled square

	Values []float32    // Resolution*Resolution scalars, row-major
	Pixels []color.RGBA // same layout, ready for texture upload
	Min    float32
	Max    float32
}

// BuildSliceGrid samples the field on a res x res lattice centered on the
// obstacle and spanning [-extent, extent] in the two in-plane axes. The
// whole grid goes through the session evaluator in one batch call.
func BuildSliceGrid(res int, plane SlicePlane, field SliceField, extent float32, p flow.Params, eval flow.Evaluator) *SliceGrid {
	g := &SliceGrid{
		Resolution: res,
		Plane:      plane,
		Field:      field,
		Extent:     extent,
		Values:     make([]float32, res*res),
		Pixels:     make([]color.RGBA, res*res),
	}

	n := res * res
	positions := make([]float32, n*3)
	step := 2 * extent / float32(res-1)

	cx := float32(p.ObstacleX)
	cy := float32(p.ObstacleY)
	cz := float32(p.ObstacleZ)

	for row := 0; row < res; row++ {
		b := -extent + float32(row)*step
		for col := 0; col < res; col++ {
			a := -extent + float32(col)*step
			idx := (row*res + col) * 3
			switch plane {
			case PlaneXY:
				positions[idx] = cx + a
				positions[idx+1] = cy + b
				positions[idx+2] = cz
			case PlaneXZ:
				positions[idx] = cx + a
				positions[idx+1] = cy
				positions[idx+2] = cz + b
			case PlaneYZ:
				positions[idx] = cx
				positions[idx+1] = cy + a
				positions[idx+2] = cz + b
			}
		}
	}

	velocities := make([]float32, n*3)
	_ = eval.Evaluate(velocities, positions, n, p)

	switch field {
	case FieldSpeed:
		for i := 0; i < n; i++ {
			g.Values[i] = magnitude3(velocities[i*3], velocities[i*3+1], velocities[i*3+2])
		}
	case FieldPressure:
		_ = eval.EvaluatePressure(g.Values, velocities, n, p)
	}

	g.Min, g.Max = g.Values[0], g.Values[0]
	for _, v := range g.Values[1:] {
		if v < g.Min {
			g.Min = v
		}
		if v > g.Max {
			g.Max = v
		}
	}

	span := g.Max - g.Min
	for i, v := range g.Values {
		t := float32(0)
		if span > 0 {
			t = (v - g.Min) / span
		}
		g.Pixels[i] = Colormap(t)
	}

	return g
}

// Colormap maps a normalized value in [0,1] to the blue-white-red gradient
// used by the slice plane and the legend.
func Colormap(t float32) color.RGBA {
	t = clamp01(t)
	var r, g, b float32
	if t < 0.5 {
		// Blue to white
		k := t * 2
		r = 40 + k*215
		g = 80 + k*175
		b = 200 + k*55
	} else {
		// White to red
		k := (t - 0.5) * 2
		r = 255
		g = 255 - k*195
		b = 255 - k*205
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
