// Package viewer is a raylib window onto a running reef. It renders only
// what tick diffs tell it, through a mirrored scene.
package viewer

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/reef/camera"
	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/game"
	"github.com/pthm-cable/reef/ui"
)

const controlsHelp = "Drag: orbit | Wheel: zoom | WASD: pan | Q/E: raise | Space: pause | N: step | R: reset view"

// Options configures the viewer window.
type Options struct {
	Width, Height int32
	TargetFPS     int32
	MaxTicks      int // 0 = unlimited
	Logger        *slog.Logger
	// OnTick is called with every diff after the scene applies it.
	OnTick func(game.Tick)
}

// Viewer owns the window state for one simulator.
type Viewer struct {
	sim  *game.Simulator
	opts Options

	scene    *game.Scene
	exposed  []game.SceneVoxel
	cam      *camera.Orbit
	controls *ui.Controls

	hud      *ui.HUD
	panel    *ui.ControlsPanel
	cover    *ui.CoverPanel
	logPanel *ui.LogPanel
}

// New creates a viewer; the window opens in Run.
func New(sim *game.Simulator, opts Options) *Viewer {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = 60
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	const panelW = 240
	x := opts.Width - panelW - 10
	return &Viewer{
		sim:      sim,
		opts:     opts,
		scene:    game.NewScene(),
		cam:      camera.NewOrbit(sim.Config().World.Size),
		controls: ui.NewControls(),
		hud:      ui.NewHUD(),
		panel:    ui.NewControlsPanel(x, 10, panelW),
		cover:    ui.NewCoverPanel(x, 140, panelW),
		logPanel: ui.NewLogPanel(10, opts.Height-200, 520, 8),
	}
}

// Run opens the window and steps the simulation until the window closes
// or MaxTicks is reached. A step error stops the loop and is returned.
func (v *Viewer) Run() error {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(v.opts.Width, v.opts.Height, "Reef")
	defer rl.CloseWindow()
	rl.SetTargetFPS(v.opts.TargetFPS)

	for !rl.WindowShouldClose() {
		v.handleInput()

		if err := v.advance(v.controls.TicksThisFrame()); err != nil {
			return err
		}
		v.controls.StepOnce = false

		v.draw()

		if v.opts.MaxTicks > 0 && v.sim.CurrentTick() >= v.opts.MaxTicks {
			v.opts.Logger.Info("max ticks reached", "tick", v.sim.CurrentTick())
			break
		}
	}
	return nil
}

// ticksWithin clamps a frame's n ticks so the run stops at maxTicks.
// maxTicks 0 means unlimited.
func ticksWithin(n, tick, maxTicks int) int {
	if maxTicks <= 0 {
		return max(n, 0)
	}
	return max(min(n, maxTicks-tick), 0)
}

// advance runs up to n ticks within the budget, folding each diff into the scene.
func (v *Viewer) advance(n int) error {
	n = ticksWithin(n, v.sim.CurrentTick(), v.opts.MaxTicks)
	if n == 0 {
		return nil
	}
	for range n {
		t, err := v.sim.Step()
		if err != nil {
			return fmt.Errorf("viewer: tick %d: %w", v.sim.CurrentTick(), err)
		}
		v.scene.Apply(t)
		if v.opts.OnTick != nil {
			v.opts.OnTick(t)
		}
	}
	v.exposed = Exposed(v.scene, v.sim.Config().World.Size)
	return nil
}

func (v *Viewer) handleInput() {
	c := v.controls
	if rl.IsKeyPressed(rl.KeySpace) {
		c.Paused = !c.Paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		c.StepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyR) || c.ResetCamera {
		v.cam.Reset()
		c.ResetCamera = false
	}

	dt := rl.GetFrameTime()
	pan := v.cam.Distance * dt
	if rl.IsKeyDown(rl.KeyW) {
		v.cam.Pan(0, pan)
	}
	if rl.IsKeyDown(rl.KeyS) {
		v.cam.Pan(0, -pan)
	}
	if rl.IsKeyDown(rl.KeyD) {
		v.cam.Pan(pan, 0)
	}
	if rl.IsKeyDown(rl.KeyA) {
		v.cam.Pan(-pan, 0)
	}
	if rl.IsKeyDown(rl.KeyE) {
		v.cam.Raise(pan)
	}
	if rl.IsKeyDown(rl.KeyQ) {
		v.cam.Raise(-pan)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 - wheel*0.1)
	}

	// Drags starting over the side panels belong to raygui.
	mouse := rl.GetMousePosition()
	overPanel := mouse.X > float32(v.opts.Width-260)
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !overPanel {
		d := rl.GetMouseDelta()
		v.cam.Rotate(-d.X*0.005, d.Y*0.005)
	}
}

func (v *Viewer) raylibCamera() rl.Camera3D {
	x, y, z := v.cam.Position()
	return rl.Camera3D{
		Position:   rl.NewVector3(x, y, z),
		Target:     rl.NewVector3(0, v.cam.TargetY, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

func (v *Viewer) draw() {
	if rl.IsWindowResized() {
		v.opts.Width = int32(rl.GetScreenWidth())
		v.opts.Height = int32(rl.GetScreenHeight())
		v.logPanel.SetPosition(10, v.opts.Height-200)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 40, B: 64, A: 255})

	rl.BeginMode3D(v.raylibCamera())
	n := float32(v.sim.Config().World.Size)
	rl.DrawPlane(rl.NewVector3(0, 0, 0), rl.NewVector2(n, n), rl.Color{R: 194, G: 178, B: 128, A: 255})

	dead := ui.ToColor(components.DeadColor)
	for _, sv := range v.exposed {
		col := dead
		if !sv.Dead {
			col = ui.ToColor(sv.Form.Color())
		}
		x, y, z := v.cam.Relative(float32(sv.X), float32(sv.Y), float32(sv.Z))
		rl.DrawCube(rl.NewVector3(x, y+0.5, z), 1, 1, 1, col)
	}
	rl.EndMode3D()

	m := v.sim.Metrics()
	v.hud.Draw(ui.HUDData{
		Tick:         v.sim.CurrentTick(),
		TicksPerYear: v.sim.Config().Run.TicksPerYear,
		RunYears:     v.sim.Config().Derived.Years,
		Speed:        v.controls.SpeedTicks(),
		FPS:          rl.GetFPS(),
		Paused:       v.controls.Paused,
		Voxels:       v.scene.Len(),
		Metrics:      m,
	})
	v.panel.Draw(v.controls)
	v.cover.Draw(m)
	v.logPanel.Draw(v.sim.Log())
	v.hud.DrawControls(v.opts.Height, controlsHelp)

	rl.EndDrawing()
}
