package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Tick         int
	TicksPerYear int
	RunYears     float64 // run length in years, 0 = unbounded
	Speed        int
	FPS          int32
	Paused       bool
	Voxels       int
	Metrics      telemetry.Metrics
}

// Year returns the simulated year of the HUD tick.
func (d HUDData) Year() float64 {
	if d.TicksPerYear <= 0 {
		return 0
	}
	return float64(d.Tick) / float64(d.TicksPerYear)
}

// YearLabel formats the current year against the run length.
func (d HUDData) YearLabel() string {
	if d.RunYears <= 0 {
		return fmt.Sprintf("%.1f", d.Year())
	}
	return fmt.Sprintf("%.1f/%.0f", d.Year(), d.RunYears)
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	m := data.Metrics
	rl.DrawText("Reef", 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Year: %s | Speed: %d/frame | FPS: %d | Voxels: %d",
			data.Tick, data.YearLabel(), data.Speed, data.FPS, data.Voxels),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Colonies: %d live, %d dead | Cover: %.1f%% | Rugosity: %.3f | Simpson: %.3f",
			m.LiveColonies, m.DeadColonies, m.TotalCover, m.Rugosity, m.Simpson),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// CoverPanel renders per-form coral cover bars.
type CoverPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewCoverPanel creates a new cover panel.
func NewCoverPanel(x, y, width int32) *CoverPanel {
	return &CoverPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Draw renders the panel and returns the Y below it.
func (c *CoverPanel) Draw(m telemetry.Metrics) int32 {
	r := c.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight*int32(components.NumForms+1) + padding*2
	r.DrawPanel(c.x, c.y, c.width, height)

	y := r.DrawSectionHeader(c.x+padding, c.y+padding, "Cover by form")
	for _, f := range components.AllForms() {
		y = r.DrawBar(c.x+padding, y, f.String(), ToColor(f.Color()), m.Form(f).Cover/100, c.width-padding*2)
	}
	return c.y + height
}

// LogPanel renders the most recent event log lines.
type LogPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	rows     int
}

// NewLogPanel creates a log panel showing up to rows lines.
func NewLogPanel(x, y, width int32, rows int) *LogPanel {
	return &LogPanel{renderer: NewRenderer(), x: x, y: y, width: width, rows: rows}
}

// SetPosition updates the panel position.
func (l *LogPanel) SetPosition(x, y int32) {
	l.x = x
	l.y = y
}

// Draw renders the newest lines, oldest at the top.
func (l *LogPanel) Draw(lines []string) {
	r := l.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight*int32(l.rows+1) + padding*2
	r.DrawPanel(l.x, l.y, l.width, height)

	y := r.DrawSectionHeader(l.x+padding, l.y+padding, "Events")
	for _, line := range Tail(lines, l.rows) {
		rl.DrawText(line, l.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}
}

// Tail returns the last n lines.
func Tail(lines []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}
