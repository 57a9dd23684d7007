package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Speed limits for the ticks-per-frame slider.
const (
	MinSpeed = 1
	MaxSpeed = 50
)

// Controls is the state edited by the control panel.
type Controls struct {
	Paused      bool
	Speed       float32 // ticks per frame, slider value
	StepOnce    bool    // advance one tick while paused; cleared by the caller
	ResetCamera bool    // cleared by the caller
}

// NewControls returns running controls at one tick per frame.
func NewControls() *Controls {
	return &Controls{Speed: MinSpeed}
}

// TicksThisFrame returns how many ticks to advance in the current frame.
func (c *Controls) TicksThisFrame() int {
	if c.Paused {
		if c.StepOnce {
			return 1
		}
		return 0
	}
	return c.SpeedTicks()
}

// SpeedTicks returns the slider value as a whole tick count within limits.
func (c *Controls) SpeedTicks() int {
	n := int(math.Round(float64(c.Speed)))
	return min(max(n, MinSpeed), MaxSpeed)
}

// ControlsPanel renders the raygui control panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Draw renders the panel and applies clicks to c. Returns the Y below the panel.
func (p *ControlsPanel) Draw(c *Controls) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	height := int32(120)
	r.DrawPanel(p.x, p.y, p.width, height)

	y := r.DrawSectionHeader(p.x+padding, p.y+padding, "Controls")

	bx := float32(p.x + padding)
	by := float32(y)
	bw := float32(p.width-padding*3) / 2

	label := "Pause"
	if c.Paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: bx, Y: by, Width: bw, Height: 24}, label) {
		c.Paused = !c.Paused
	}
	if gui.Button(rl.Rectangle{X: bx + bw + float32(padding), Y: by, Width: bw, Height: 24}, "Step") {
		c.StepOnce = true
	}
	by += 32

	rl.DrawText("Ticks per frame", int32(bx), int32(by), r.Theme.FontSize, r.Theme.LabelColor)
	by += 16
	c.Speed = gui.SliderBar(
		rl.Rectangle{X: bx, Y: by, Width: float32(p.width-padding*2) - 40, Height: 16},
		"", fmt.Sprintf("%d", c.SpeedTicks()),
		c.Speed, MinSpeed, MaxSpeed,
	)
	by += 24

	if gui.Button(rl.Rectangle{X: bx, Y: by - 4, Width: bw, Height: 20}, "Reset view") {
		c.ResetCamera = true
	}
	return p.y + height
}
