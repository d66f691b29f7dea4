// Package main is the entry point for the prism demo.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/app"
	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := initLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== prism ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, err := app.NewContext(cfg)
	if err != nil {
		logger.Fatal("failed to create context", zap.Error(err))
	}
	defer ctx.Close()

	width, height := ctx.Window.Size()
	d, err := buildDemo(ctx.Device, cfg, width, height)
	if err != nil {
		logger.Fatal("failed to build scene", zap.Error(err))
	}

	a, err := app.New(ctx, cfg, d.scene)
	if err != nil {
		logger.Fatal("failed to create app", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close failed", zap.Error(err))
		}
	}()
	a.SetOrbit(d.orbit)
	if err := a.Track(d.passes...); err != nil {
		logger.Warn("shader watch failed", zap.Error(err))
	}

	// Errors past this point leave GPU state undefined.
	if err := a.Run(); err != nil {
		logger.Fatal("frame loop failed", zap.Error(err))
	}

	logger.Info("closed normally")
}

func initLogger(cfg config.LoggingConfig) error {
	if cfg.LogFile == "" {
		return logger.Init(cfg.Level, "")
	}
	return logger.InitWithFileConfig(cfg.Level, logger.FileConfig{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, true)
}
