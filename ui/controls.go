package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/flow"
	"github.com/pthm-cable/windtunnel/systems"
)

// Settings is the mutable slice of the session state the control panel
// edits. The app applies changes after the panel is drawn.
type Settings struct {
	FreeStream float32
	Density    float32
	Radius     float32
	Kind       flow.Kind

	ParticleCount int
	MaxCount      int // slider upper bound, from config

	Plane        systems.SlicePlane
	Field        systems.SliceField
	SliceVisible bool
}

// Changes reports which parts of the settings were edited this frame.
type Changes struct {
	Flow  bool // free stream, density, radius or obstacle kind
	Count bool // particle count
	Slice bool // slice plane, field or visibility
}

// Any returns true if anything changed.
func (c Changes) Any() bool {
	return c.Flow || c.Count || c.Slice
}

// ControlsPanel renders the right-side parameter panel with sliders.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Contains reports whether a screen point falls inside the drawn panel, so
// clicks on the panel do not fall through into the 3D scene.
func (c *ControlsPanel) Contains(x, y int32) bool {
	if !c.visible {
		return false
	}
	return x >= c.x && x < c.x+c.width && y >= c.y && y < c.y+panelHeight
}

const panelHeight = 340

// Draw renders the panel and mutates settings through the sliders.
// Returns what changed so the caller can rebuild only what it must.
func (c *ControlsPanel) Draw(s *Settings) Changes {
	var changes Changes
	if !c.visible {
		return changes
	}

	r := c.renderer
	padding := r.Theme.Padding

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := c.x + padding
	y := c.y + padding
	sliderW := float32(c.width - padding*2 - 50)

	y = r.DrawSectionHeader(x, y, "Flow")
	y += 4

	newSpeed := c.slider(x, y, sliderW, "speed", s.FreeStream, -2, 5, "%.2f")
	if newSpeed != s.FreeStream {
		s.FreeStream = newSpeed
		changes.Flow = true
	}
	y += 34

	newDensity := c.slider(x, y, sliderW, "density", s.Density, 0.1, 5, "%.2f")
	if newDensity != s.Density {
		s.Density = newDensity
		changes.Flow = true
	}
	y += 34

	newRadius := c.slider(x, y, sliderW, "radius", s.Radius, 0.2, 2, "%.2f")
	if newRadius != s.Radius {
		s.Radius = newRadius
		changes.Flow = true
	}
	y += 34

	// Obstacle kind cycles through the three closed forms
	label := fmt.Sprintf("obstacle: %s", s.Kind)
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: sliderW, Height: 22}, label) {
		s.Kind = flow.Kind((int(s.Kind) + 1) % len(flow.KindNames))
		changes.Flow = true
	}
	y += 34

	y = r.DrawSectionHeader(x, y, "Particles")
	y += 4

	newCount := c.slider(x, y, sliderW, "count", float32(s.ParticleCount), 500, float32(s.MaxCount), "%.0f")
	if int(newCount) != s.ParticleCount {
		s.ParticleCount = int(newCount)
		changes.Count = true
	}
	y += 34

	y = r.DrawSectionHeader(x, y, "Slice")
	y += 4

	planeLabel := fmt.Sprintf("plane: %s", s.Plane)
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: sliderW/2 - 4, Height: 22}, planeLabel) {
		s.Plane = systems.SlicePlane((int(s.Plane) + 1) % len(systems.PlaneNames))
		changes.Slice = true
	}
	fieldLabel := fmt.Sprintf("field: %s", s.Field)
	if gui.Button(rl.Rectangle{X: float32(x) + sliderW/2 + 4, Y: float32(y), Width: sliderW/2 - 4, Height: 22}, fieldLabel) {
		s.Field = systems.SliceField((int(s.Field) + 1) % len(systems.FieldNames))
		changes.Slice = true
	}
	y += 30

	sliceLabel := "show slice"
	if s.SliceVisible {
		sliceLabel = "hide slice"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: sliderW, Height: 22}, sliceLabel) {
		s.SliceVisible = !s.SliceVisible
		changes.Slice = true
	}

	return changes
}

// slider draws a labeled SliderBar with the current value printed to the
// right, the way the parameter preview tools lay theirs out.
func (c *ControlsPanel) slider(x, y int32, width float32, label string, value, min, max float32, format string) float32 {
	rl.DrawText(label, x, y-2, c.renderer.Theme.FontSize, c.renderer.Theme.LabelColor)
	v := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y) + 12, Width: width, Height: 16},
		"", "",
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, v), x+int32(width)+6, y+14, c.renderer.Theme.FontSize, c.renderer.Theme.ValueColor)
	return v
}
