package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// Runs before any test in this package calls Init.
func TestNopBeforeInit(t *testing.T) {
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.ErrorLevel} {
		if Log.Core().Enabled(lvl) {
			t.Errorf("expected the default logger to discard %s", lvl)
		}
	}

	// Must not panic: packages log during init paths that tests exercise
	// without configuring the logger.
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	Sugar.Infof("sugar %d", 1)
	Sync()
}
