package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/systems"
)

// SliceRenderer uploads slice grids to a GPU texture and draws them as an
// inset panel with a color legend.
type SliceRenderer struct {
	tex         rl.Texture2D
	texRes      int
	initialized bool
}

// NewSliceRenderer creates a slice renderer. The texture is allocated
// lazily on first Update because it needs a live GL context.
func NewSliceRenderer() *SliceRenderer {
	return &SliceRenderer{}
}

// Update uploads a freshly built grid to the texture, reallocating if the
// resolution changed.
func (r *SliceRenderer) Update(grid *systems.SliceGrid) {
	if !r.initialized || r.texRes != grid.Resolution {
		if r.initialized {
			rl.UnloadTexture(r.tex)
		}
		img := rl.GenImageColor(grid.Resolution, grid.Resolution, rl.Black)
		r.tex = rl.LoadTextureFromImage(img)
		rl.SetTextureFilter(r.tex, rl.FilterBilinear)
		rl.UnloadImage(img)
		r.texRes = grid.Resolution
		r.initialized = true
	}

	rl.UpdateTexture(r.tex, grid.Pixels)
}

// Draw renders the slice panel and legend in screen space. x, y is the
// top-left corner, size the panel edge length in pixels.
func (r *SliceRenderer) Draw(grid *systems.SliceGrid, x, y, size int32) {
	if !r.initialized || grid == nil {
		return
	}

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texRes), Height: float32(r.texRes)}
	dst := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(size), Height: float32(size)}
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
	rl.DrawRectangleLines(x, y, size, size, rl.Gray)

	label := fmt.Sprintf("%s / %s plane", grid.Field, grid.Plane)
	rl.DrawText(label, x, y-14, 10, rl.RayWhite)

	r.drawLegend(grid, x+size+8, y, size)
}

// drawLegend draws a vertical color ramp with min/max labels next to it.
func (r *SliceRenderer) drawLegend(grid *systems.SliceGrid, x, y, height int32) {
	const barWidth = 12

	for i := int32(0); i < height; i++ {
		// Top of the bar is the max value
		t := 1 - float32(i)/float32(height-1)
		rl.DrawRectangle(x, y+i, barWidth, 1, systems.Colormap(t))
	}
	rl.DrawRectangleLines(x, y, barWidth, height, rl.Gray)

	rl.DrawText(fmt.Sprintf("%.2f", grid.Max), x+barWidth+4, y, 10, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("%.2f", grid.Min), x+barWidth+4, y+height-10, 10, rl.RayWhite)
}

// Unload frees the GPU texture.
func (r *SliceRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
