package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/systems"
)

// HUDData holds the values shown in the top-left status panel.
type HUDData struct {
	Tick          int32
	FPS           int32
	ParticleCount int
	Evaluator     string
	Degraded      bool
	RecycledTick  int
	Paused        bool
}

// HUD renders the status panel.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a HUD anchored at the given position.
func NewHUD(x, y, width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the HUD panel.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	lines := int32(5)
	if data.Degraded {
		lines++
	}
	panelHeight := lines*lineHeight + padding*2

	r.DrawPanel(h.x, h.y, h.width, panelHeight)

	x := h.x + padding
	y := h.y + padding

	y = r.DrawLabelValue(x, y, "tick", fmt.Sprintf("%d", data.Tick))
	y = r.DrawLabelValue(x, y, "fps", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "particles", fmt.Sprintf("%d", data.ParticleCount))
	y = r.DrawLabelValue(x, y, "evaluator", data.Evaluator)
	y = r.DrawLabelValue(x, y, "recycled", fmt.Sprintf("%d", data.RecycledTick))

	if data.Degraded {
		rl.DrawText("kernel degraded, using reference path", x, y, r.Theme.FontSize, rl.Orange)
	}

	if data.Paused {
		rl.DrawText("PAUSED", h.x+h.width+10, h.y+padding, 20, rl.Yellow)
	}
}

// ProbePanel renders the list of probe readouts under the HUD.
type ProbePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewProbePanel creates a probe readout panel.
func NewProbePanel(x, y, width int32) *ProbePanel {
	return &ProbePanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders one line per probe. Draws nothing when no probes are placed.
func (p *ProbePanel) Draw(readouts []systems.ProbeReadout) {
	if len(readouts) == 0 {
		return
	}

	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	panelHeight := int32(len(readouts)+1)*lineHeight + padding*2
	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := p.x + padding
	y := r.DrawSectionHeader(x, p.y+padding, "Probes")

	for i := range readouts {
		ro := &readouts[i]
		line := fmt.Sprintf("%d (%.1f, %.1f, %.1f)  |v|=%.3f  p=%.3f",
			i+1, ro.X, ro.Y, ro.Z, ro.Speed, ro.Pressure)
		rl.DrawText(line, x, y, r.Theme.FontSize, r.Theme.ValueColor)
		y += lineHeight
	}
}
