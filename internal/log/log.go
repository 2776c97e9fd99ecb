package log

import (
	"sync"
)

// Logger is the logging facade used across strix. It hides the logrus
// backend so packages never import it directly.
type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	mu     sync.Mutex
	logger Logger
)

// GetLogger returns the process logger, initializing a plain console logger
// on first use when Init was never called (tests, library use).
func GetLogger() Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newAdapter(DefaultConfig())
	}
	return logger
}

// Init configures the process logger from the loaded configuration.
func Init(cfg *LoggerConfig) {
	mu.Lock()
	defer mu.Unlock()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger = newAdapter(cfg)
}
