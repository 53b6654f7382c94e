// Slice plane preview tool - interactive field visualization with sliders.
//
// Usage: go run ./cmd/slicepreview
package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windtunnel/flow"
	"github.com/pthm-cable/windtunnel/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// PreviewParams holds the flow parameters driven by the sliders.
type PreviewParams struct {
	FreeStream float32
	Density    float32
	Radius     float32
	Extent     float32
	Kind       flow.Kind
	Plane      systems.SlicePlane
	Field      systems.SliceField
}

func defaultParams() PreviewParams {
	return PreviewParams{
		FreeStream: 1.0,
		Density:    1.0,
		Radius:     1.0,
		Extent:     3.0,
		Kind:       flow.Sphere,
		Plane:      systems.PlaneXY,
		Field:      systems.FieldSpeed,
	}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Slice Plane Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	// Create texture for rendering
	gridSize := 256
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	// The preview runs everything through the scalar reference; there is
	// no session here for a kernel to serve.
	eval := flow.Scalar{}

	grid := buildGrid(gridSize, params, eval)
	rl.UpdateTexture(texture, grid.Pixels)

	needsRegen := false

	for !rl.WindowShouldClose() {
		if needsRegen {
			grid = buildGrid(gridSize, params, eval)
			rl.UpdateTexture(texture, grid.Pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridSize), Height: float32(gridSize)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		// Draw stats
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f", grid.Min, grid.Max), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("%s on the %s plane", grid.Field, grid.Plane), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Flow Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Free stream slider
		rl.DrawText("Free stream speed U", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newU := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-2.0", "5.0",
			params.FreeStream, -2.0, 5.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.FreeStream), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newU != params.FreeStream {
			params.FreeStream = newU
			needsRegen = true
		}
		panelY += 35

		// Density slider
		rl.DrawText("Density (pressure scale)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newDensity := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.1", "5.0",
			params.Density, 0.1, 5.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Density), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newDensity != params.Density {
			params.Density = newDensity
			needsRegen = true
		}
		panelY += 35

		// Radius slider
		rl.DrawText("Obstacle radius", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRadius := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.2", "2.0",
			params.Radius, 0.2, 2.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Radius), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newRadius != params.Radius {
			params.Radius = newRadius
			needsRegen = true
		}
		panelY += 35

		// Extent slider
		rl.DrawText("Sample extent (half-size)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newExtent := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1.5", "8.0",
			params.Extent, 1.5, 8.0,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.Extent), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newExtent != params.Extent {
			params.Extent = newExtent
			needsRegen = true
		}
		panelY += 45

		// Toggles
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, fmt.Sprintf("Obstacle: %s", params.Kind)) {
			params.Kind = flow.Kind((int(params.Kind) + 1) % len(flow.KindNames))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, fmt.Sprintf("Plane: %s", params.Plane)) {
			params.Plane = systems.SlicePlane((int(params.Plane) + 1) % len(systems.PlaneNames))
			needsRegen = true
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, fmt.Sprintf("Field: %s", params.Field)) {
			params.Field = systems.SliceField((int(params.Field) + 1) % len(systems.FieldNames))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlLines := []string{
			"flow:",
			fmt.Sprintf("  free_stream: %.2f", params.FreeStream),
			fmt.Sprintf("  density: %.2f", params.Density),
			fmt.Sprintf("  radius: %.2f", params.Radius),
			fmt.Sprintf("  obstacle: %s", params.Kind),
			"slice:",
			fmt.Sprintf("  extent: %.1f", params.Extent),
			fmt.Sprintf("  plane: %s", params.Plane),
			fmt.Sprintf("  field: %s", params.Field),
		}
		for _, line := range yamlLines {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) {
			yaml := fmt.Sprintf(`flow:
  free_stream: %.2f
  density: %.2f
  radius: %.2f
  obstacle: %s
slice:
  extent: %.1f
  plane: %s
  field: %s`,
				params.FreeStream, params.Density, params.Radius, params.Kind,
				params.Extent, params.Plane, params.Field)
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// buildGrid samples the field for the current slider values.
func buildGrid(gridSize int, params PreviewParams, eval flow.Evaluator) *systems.SliceGrid {
	p := flow.Params{
		FreeStream: float64(params.FreeStream),
		Density:    float64(params.Density),
		Radius:     float64(params.Radius),
		Kind:       params.Kind,
	}
	return systems.BuildSliceGrid(gridSize, params.Plane, params.Field, params.Extent, p, eval)
}
