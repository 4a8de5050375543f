package build

import (
	"sort"
	"sync"

	"github.com/btcsuite/btclog/v2"
)

// SubLoggerManager hands out subsystem loggers backed by a shared handler
// and keeps track of them so their levels can be adjusted at run time, for
// instance from a debuglevel option.
type SubLoggerManager struct {
	handler btclog.Handler

	mu      sync.Mutex
	loggers SubLoggers
}

// A compile time check to ensure SubLoggerManager implements the
// LeveledSubLogger interface.
var _ LeveledSubLogger = (*SubLoggerManager)(nil)

// NewSubLoggerManager constructs a manager whose subsystem loggers write to
// the given handler.
func NewSubLoggerManager(handler btclog.Handler) *SubLoggerManager {
	return &SubLoggerManager{
		handler: handler,
		loggers: make(SubLoggers),
	}
}

// GenSubLogger returns the logger registered for the given subsystem,
// creating it on first use.
func (m *SubLoggerManager) GenSubLogger(subsystem string) btclog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if logger, ok := m.loggers[subsystem]; ok {
		return logger
	}

	logger := btclog.NewSLogger(m.handler.SubSystem(subsystem))
	m.loggers[subsystem] = logger

	return logger
}

// SubLoggers returns all currently registered subsystem loggers.
//
// NOTE: Part of the LeveledSubLogger interface.
func (m *SubLoggerManager) SubLoggers() SubLoggers {
	m.mu.Lock()
	defer m.mu.Unlock()

	loggers := make(SubLoggers, len(m.loggers))
	for name, logger := range m.loggers {
		loggers[name] = logger
	}

	return loggers
}

// SupportedSubsystems returns the names of all registered subsystems,
// sorted.
//
// NOTE: Part of the LeveledSubLogger interface.
func (m *SubLoggerManager) SupportedSubsystems() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	subsystems := make([]string, 0, len(m.loggers))
	for name := range m.loggers {
		subsystems = append(subsystems, name)
	}
	sort.Strings(subsystems)

	return subsystems
}

// SetLogLevel assigns the given subsystem logger a new log level. Unknown
// subsystems are ignored.
//
// NOTE: Part of the LeveledSubLogger interface.
func (m *SubLoggerManager) SetLogLevel(subsystemID string, logLevel string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setLogLevel(subsystemID, logLevel)
}

// SetLogLevels assigns all registered subsystem loggers the same log level.
//
// NOTE: Part of the LeveledSubLogger interface.
func (m *SubLoggerManager) SetLogLevels(logLevel string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name := range m.loggers {
		m.setLogLevel(name, logLevel)
	}
}

// setLogLevel applies the level to a single registered logger.
//
// NOTE: the manager mutex must be held when calling this method.
func (m *SubLoggerManager) setLogLevel(subsystemID string, logLevel string) {
	logger, ok := m.loggers[subsystemID]
	if !ok {
		return
	}

	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}
