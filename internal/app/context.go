// Package app wires the window, input, timer and GPU device into the frame
// loop that drives a scene.
package app

import (
	"fmt"

	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/engine/gpu/opengl"
	"github.com/Faultbox/prism/internal/engine/input"
	"github.com/Faultbox/prism/internal/engine/timer"
	"github.com/Faultbox/prism/internal/engine/window"
)

// Context carries the runtime services a frame needs. It is passed
// explicitly rather than kept in package globals.
type Context struct {
	Window *window.Window
	Input  *input.Input
	Timer  *timer.Timer
	Device gpu.Device
}

// NewContext opens the window and creates the OpenGL device.
func NewContext(cfg *config.Config) (*Context, error) {
	// Create window (this also creates OpenGL context)
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      int32(cfg.Window.Width),
		Height:     int32(cfg.Window.Height),
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Device loads GL function pointers, so it must come after the context
	dev, err := opengl.New()
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	return &Context{
		Window: win,
		Input:  input.New(),
		Timer:  timer.New(cfg.Render.MaxDelta),
		Device: dev,
	}, nil
}

// Close destroys the window and its GL context.
func (c *Context) Close() {
	if c.Window != nil {
		c.Window.Close()
	}
}
