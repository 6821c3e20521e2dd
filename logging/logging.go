// ABOUTME: zap logger factory shared by every surface
// ABOUTME: Production builds JSON output; anything else uses the console encoder
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for env at level. Unknown levels fall back to info.
func New(env, level string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	// Logs go to stderr so CLI output on stdout stays parseable.
	config.OutputPaths = []string{"stderr"}

	return config.Build()
}
