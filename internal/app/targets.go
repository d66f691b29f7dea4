package app

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/engine/framebuffer"
	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/engine/render"
	"github.com/Faultbox/prism/internal/logger"
)

// BuildTargets creates one configured render target per entry. Screen
// targets take the drawable size; the others use their configured size.
// Targets are not initialized; Scene.Init does that once they are added.
func BuildTargets(dev gpu.Device, cfgs []config.TargetConfig, screenWidth, screenHeight int32) ([]*render.Target, error) {
	targets := make([]*render.Target, 0, len(cfgs))
	var errs error
	for _, tc := range cfgs {
		t, err := buildTarget(dev, tc, screenWidth, screenHeight)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("target %q: %w", tc.Name, err))
			continue
		}
		targets = append(targets, t)
	}
	if errs != nil {
		return nil, errs
	}
	return targets, nil
}

func buildTarget(dev gpu.Device, tc config.TargetConfig, screenWidth, screenHeight int32) (*render.Target, error) {
	shape, err := gpu.ParseShape(tc.Shape)
	if err != nil {
		return nil, err
	}
	width, height := int32(tc.Width), int32(tc.Height)
	if shape == gpu.ShapeScreen {
		width, height = screenWidth, screenHeight
	}

	fb, err := framebuffer.New(dev, shape, width, height)
	if err != nil {
		return nil, err
	}
	if len(tc.ClearColor) == 4 {
		fb.SetClearColor(true, [4]float32{tc.ClearColor[0], tc.ClearColor[1], tc.ClearColor[2], tc.ClearColor[3]})
	}

	t := render.NewTarget(tc.Name, tc.Priority, fb)
	for i, lc := range tc.Layers {
		kind, err := gpu.ParseLayerKind(lc.Kind)
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		perm, err := gpu.ParsePermission(lc.Permission)
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		filter, err := gpu.ParseFilter(lc.Filter)
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		if _, err := t.AddLayer(kind, perm, filter); err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
	}
	t.SetCamera(tc.Camera)
	t.SetTags(tc.Tags...)

	logger.Debug("render target configured",
		zap.String("name", tc.Name),
		zap.Int("priority", tc.Priority),
		zap.Stringer("shape", shape),
		zap.Int32("width", width),
		zap.Int32("height", height),
		zap.Strings("tags", tc.Tags),
	)
	return t, nil
}
