package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/prism/internal/engine/gpu"
)

// Validation errors.
var (
	ErrWindowSize        = errors.New("window size must be positive")
	ErrNoTargets         = errors.New("at least one render target is required")
	ErrTargetName        = errors.New("target name is empty or duplicated")
	ErrTargetPriority    = errors.New("target priority is duplicated")
	ErrTargetSize        = errors.New("off-screen target size must be positive")
	ErrScreenLayers      = errors.New("screen target cannot declare layers")
	ErrMultipleDepth     = errors.New("target declares more than one depth layer")
	ErrTargetCamera      = errors.New("target camera is empty")
	ErrTargetTags        = errors.New("target has no tags")
	ErrClearColor        = errors.New("clear_color must have four components")
	ErrCaptureScale      = errors.New("capture scale must be positive")
	ErrTargetDefinition  = errors.New("invalid target definition")
	ErrUnknownCaptureRef = errors.New("capture target does not exist")
)

// Validate checks the whole config and reports every problem found.
func (c *Config) Validate() error {
	var errs error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %dx%d", ErrWindowSize, c.Window.Width, c.Window.Height))
	}
	if c.Capture.Scale <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrCaptureScale, c.Capture.Scale))
	}
	if len(c.Targets) == 0 {
		return multierr.Append(errs, ErrNoTargets)
	}

	names := make(map[string]bool, len(c.Targets))
	priorities := make(map[int]string, len(c.Targets))
	for i, t := range c.Targets {
		if t.Name == "" || names[t.Name] {
			errs = multierr.Append(errs, fmt.Errorf("targets[%d]: %w: %q", i, ErrTargetName, t.Name))
		}
		names[t.Name] = true

		if other, ok := priorities[t.Priority]; ok {
			errs = multierr.Append(errs, fmt.Errorf("target %q: %w: %d also used by %q", t.Name, ErrTargetPriority, t.Priority, other))
		} else {
			priorities[t.Priority] = t.Name
		}

		errs = multierr.Append(errs, t.validate())
	}

	if c.Capture.Target != "" && !names[c.Capture.Target] {
		errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrUnknownCaptureRef, c.Capture.Target))
	}
	return errs
}

func (t TargetConfig) validate() error {
	var errs error
	wrap := func(err error) {
		errs = multierr.Append(errs, fmt.Errorf("target %q: %w", t.Name, err))
	}

	shape, err := gpu.ParseShape(t.Shape)
	if err != nil {
		wrap(fmt.Errorf("%w: %v", ErrTargetDefinition, err))
	}
	if err == nil && shape != gpu.ShapeScreen && (t.Width <= 0 || t.Height <= 0) {
		wrap(fmt.Errorf("%w: %dx%d", ErrTargetSize, t.Width, t.Height))
	}
	if err == nil && shape == gpu.ShapeCube && t.Width != t.Height {
		wrap(fmt.Errorf("%w: cube faces must be square, got %dx%d", ErrTargetSize, t.Width, t.Height))
	}
	if err == nil && shape == gpu.ShapeScreen && len(t.Layers) > 0 {
		wrap(ErrScreenLayers)
	}
	if t.Camera == "" {
		wrap(ErrTargetCamera)
	}
	if len(t.Tags) == 0 {
		wrap(ErrTargetTags)
	}
	if len(t.ClearColor) != 0 && len(t.ClearColor) != 4 {
		wrap(fmt.Errorf("%w: got %d", ErrClearColor, len(t.ClearColor)))
	}

	depths := 0
	for i, l := range t.Layers {
		kind, err := gpu.ParseLayerKind(l.Kind)
		if err != nil {
			wrap(fmt.Errorf("layers[%d]: %w: %v", i, ErrTargetDefinition, err))
		} else if kind == gpu.LayerDepth {
			depths++
		}
		if _, err := gpu.ParsePermission(l.Permission); err != nil {
			wrap(fmt.Errorf("layers[%d]: %w: %v", i, ErrTargetDefinition, err))
		}
		if _, err := gpu.ParseFilter(l.Filter); err != nil {
			wrap(fmt.Errorf("layers[%d]: %w: %v", i, ErrTargetDefinition, err))
		}
	}
	if depths > 1 {
		wrap(ErrMultipleDepth)
	}
	return errs
}
