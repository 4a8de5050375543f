package build

import (
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btclog/v2"
)

// LogLevel is the default logging level applied to newly created subsystem
// loggers. It can be overridden at link time.
var LogLevel = "info"

// NewSubLogger constructs a new subsystem logger. For production builds the
// provided constructor is consulted so that all subsystems share the
// process wide logging backend; if none is given, logging is disabled. For
// development builds, e.g. when running unit tests, output goes straight to
// stdout.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	switch Deployment {
	case Production:
		if genSubLogger != nil {
			return genSubLogger(subsystem)
		}

	case Development:
		handler := btclog.NewDefaultHandler(os.Stdout)
		logger := btclog.NewSLogger(handler.SubSystem(subsystem))

		level, _ := btclog.LevelFromString(LogLevel)
		logger.SetLevel(level)

		return logger
	}

	return btclog.Disabled
}

// SubLoggers holds a map of subsystem loggers keyed by their subsystem name.
type SubLoggers map[string]btclog.Logger

// LeveledSubLogger provides the ability to retrieve the subsystem loggers of
// a logger and set their log levels individually or all at once.
type LeveledSubLogger interface {
	// SubLoggers returns the map of all registered subsystem loggers.
	SubLoggers() SubLoggers

	// SupportedSubsystems returns the names of the registered
	// subsystems, sorted.
	SupportedSubsystems() []string

	// SetLogLevel assigns an individual subsystem logger a new log
	// level.
	SetLogLevel(subsystemID string, logLevel string)

	// SetLogLevels assigns all subsystem loggers the same new log level.
	SetLogLevels(logLevel string)
}

// ParseAndSetDebugLevels parses a debug level specification of the form
// "level" or "subsystem1=level1,subsystem2=level2" and applies it to the
// given logger.
func ParseAndSetDebugLevels(level string, logger LeveledSubLogger) error {
	levels := strings.Split(level, ",")

	// A first entry without an "=" sets the level for all subsystems.
	globalLevel := levels[0]
	if !strings.Contains(globalLevel, "=") {
		if !validLogLevel(globalLevel) {
			return fmt.Errorf("invalid log level %v", globalLevel)
		}
		logger.SetLogLevels(globalLevel)

		levels = levels[1:]
	}

	for _, pair := range levels {
		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			return fmt.Errorf("invalid subsystem/level pair %v",
				pair)
		}

		subsystem, logLevel := fields[0], fields[1]
		if _, ok := logger.SubLoggers()[subsystem]; !ok {
			return fmt.Errorf("invalid subsystem %v, supported "+
				"subsystems are %v", subsystem,
				logger.SupportedSubsystems())
		}
		if !validLogLevel(logLevel) {
			return fmt.Errorf("invalid log level %v", logLevel)
		}

		logger.SetLogLevel(subsystem, logLevel)
	}

	return nil
}

// validLogLevel returns whether logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace", "debug", "info", "warn", "error", "critical", "off":
		return true
	}

	return false
}
