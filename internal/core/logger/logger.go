package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry.
const ServiceName = "gel-tracker"

var globalLogger *zap.Logger

// Option adjusts the zap config before the logger is built.
type Option func(*zap.Config)

// WithOutput replaces the sinks entries are written to, e.g. "stderr" or a file path.
func WithOutput(paths ...string) Option {
	return func(c *zap.Config) {
		c.OutputPaths = paths
	}
}

// WithFields adds fields to every entry.
func WithFields(fields map[string]interface{}) Option {
	return func(c *zap.Config) {
		for k, v := range fields {
			c.InitialFields[k] = v
		}
	}
}

// Init initializes the global logger.
// "production" emits JSON; any other environment emits colored console output.
// An unknown level keeps the environment default.
func Init(environment string, level string, opts ...Option) error {
	config := configFor(environment)

	if l, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(l)
	}
	for _, opt := range opts {
		opt(&config)
	}

	built, err := config.Build()
	if err != nil {
		return err
	}

	globalLogger = built
	return nil
}

func configFor(environment string) zap.Config {
	var config zap.Config
	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.InitialFields = map[string]interface{}{"service": ServiceName}
	return config
}

// Get returns the global logger, or a no-op logger before Init.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Named returns a child of the global logger for one component.
func Named(component string) *zap.Logger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
