package app

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/debug"
	"github.com/Faultbox/prism/internal/engine/hotreload"
	"github.com/Faultbox/prism/internal/engine/input"
	"github.com/Faultbox/prism/internal/engine/material"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/internal/logger"
)

// Key bindings.
const (
	keyQuit    = sdl.SCANCODE_ESCAPE
	keyCapture = sdl.SCANCODE_F12
)

// App runs the frame loop for one scene.
type App struct {
	ctx     *Context
	cfg     *config.Config
	scene   *scene.Scene
	watcher *hotreload.Watcher
	capture *debug.Capture
	orbit   *camera.OrbitController

	running  bool
	dragging bool
	lastFPS  float64

	// Set by the capture key, served after the next draw.
	captureRequested bool
}

// New creates an app for s. A shader watcher is started when hot reload is
// enabled in cfg.
func New(ctx *Context, cfg *config.Config, s *scene.Scene) (*App, error) {
	a := &App{
		ctx:     ctx,
		cfg:     cfg,
		scene:   s,
		capture: debug.NewCapture(cfg.Capture.OutputDir, cfg.Capture.Prefix, cfg.Capture.Scale),
	}
	if cfg.Render.HotReload {
		w, err := hotreload.New()
		if err != nil {
			return nil, err
		}
		a.watcher = w
		logger.Info("shader hot reload enabled")
	}
	return a, nil
}

// SetOrbit routes mouse and movement keys to c.
func (a *App) SetOrbit(c *camera.OrbitController) { a.orbit = c }

// Track registers file-backed passes with the shader watcher. It does
// nothing when hot reload is off.
func (a *App) Track(passes ...*material.Pass) error {
	if a.watcher == nil {
		return nil
	}
	for _, p := range passes {
		if err := a.watcher.Track(p); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the frame loop and returns when the window closes or a frame
// fails.
func (a *App) Run() error {
	a.running = true

	logger.Info("starting frame loop",
		zap.String("scene", a.scene.Name()),
		zap.Int("targets", len(a.scene.Targets())),
	)

	for a.running {
		dt := a.ctx.Timer.Tick()

		// 1. Process input
		if a.ctx.Input.Update() {
			// Quit event received
			break
		}
		for _, ev := range a.ctx.Input.Events() {
			if err := a.handle(ev); err != nil {
				return err
			}
		}
		a.move()

		// 2. Update and draw
		if err := a.step(dt); err != nil {
			return fmt.Errorf("frame error: %w", err)
		}

		// 3. Present (swap buffers)
		a.ctx.Window.SwapBuffers()

		a.reportFPS()
	}

	return nil
}

// step runs one frame: shader reloads, logic, purge, then every target.
// A pending capture reads the frame back before it is presented.
func (a *App) step(dt float64) error {
	if a.watcher != nil {
		a.watcher.Poll()
	}
	a.scene.Update(dt)
	a.scene.RemoveDeadActors()
	if err := a.scene.Draw(); err != nil {
		return err
	}
	if a.captureRequested {
		a.captureRequested = false
		a.takeCapture()
	}
	return nil
}

func (a *App) handle(ev input.Event) error {
	switch ev.Type {
	case input.EventWindowResize:
		if err := a.scene.Resize(ev.Width, ev.Height); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
	case input.EventKeyDown:
		switch ev.Key {
		case keyQuit:
			a.running = false
		case keyCapture:
			a.captureRequested = true
		}
	case input.EventMouseDown:
		if ev.Button == sdl.BUTTON_LEFT {
			a.dragging = true
		}
	case input.EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT {
			a.dragging = false
		}
	case input.EventMouseMove:
		if a.dragging && a.orbit != nil {
			a.orbit.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
		}
	case input.EventMouseWheel:
		if a.orbit != nil {
			a.orbit.HandleZoom(float32(ev.DeltaY))
		}
	}
	return nil
}

// move pans the orbit center with WASD, Q and E.
func (a *App) move() {
	if a.orbit == nil {
		return
	}
	in := a.ctx.Input
	var forward, right, up float32
	if in.IsKeyDown(sdl.SCANCODE_W) {
		forward++
	}
	if in.IsKeyDown(sdl.SCANCODE_S) {
		forward--
	}
	if in.IsKeyDown(sdl.SCANCODE_D) {
		right++
	}
	if in.IsKeyDown(sdl.SCANCODE_A) {
		right--
	}
	if in.IsKeyDown(sdl.SCANCODE_E) {
		up++
	}
	if in.IsKeyDown(sdl.SCANCODE_Q) {
		up--
	}
	if forward != 0 || right != 0 || up != 0 {
		a.orbit.HandleMovement(forward, right, up)
	}
}

// takeCapture saves the configured target. Failures are logged, not fatal.
func (a *App) takeCapture() {
	t, ok := a.scene.Target(a.cfg.Capture.Target)
	if !ok {
		logger.Warn("capture target not found", zap.String("target", a.cfg.Capture.Target))
		return
	}
	if _, err := a.capture.Target(t); err != nil {
		logger.Warn("capture failed", zap.Error(err))
	}
}

func (a *App) reportFPS() {
	fps := a.ctx.Timer.FPS()
	if fps == a.lastFPS {
		return
	}
	a.lastFPS = fps
	logger.Debug("fps", zap.Float64("fps", fps))
	if a.cfg.Render.ShowFPS {
		a.ctx.Window.SetTitle(fmt.Sprintf("%s - %.0f FPS", a.cfg.Window.Title, fps))
	}
}

// Close stops the shader watcher and releases the scene.
func (a *App) Close() error {
	logger.Info("closing app")

	var err error
	if a.watcher != nil {
		err = a.watcher.Close()
	}
	return multierr.Append(err, a.scene.Close())
}
