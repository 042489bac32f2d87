package logging

import (
	"fmt"
	"sync"
)

// Manager hands out one Logger per named subsystem, creating it lazily.
type Manager struct {
	mu      sync.RWMutex
	dir     string
	loggers map[string]*Logger
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// Default returns the process-wide Manager, writing log files under dir
// (set on first call only; later calls reuse the existing manager).
func Default(dir string) *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			dir:     dir,
			loggers: make(map[string]*Logger),
		}
	})
	return globalManager
}

// Get returns the logger for component, creating it if necessary.
func (m *Manager) Get(component string) (*Logger, error) {
	m.mu.RLock()
	if logger, exists := m.loggers[component]; exists {
		m.mu.RUnlock()
		return logger, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if logger, exists := m.loggers[component]; exists {
		return logger, nil
	}

	logger, err := New(component, m.dir)
	if err != nil {
		return nil, fmt.Errorf("logging: create logger for %s: %w", component, err)
	}

	m.loggers[component] = logger
	return logger, nil
}

// MustGet returns the logger for component, falling back to a
// console-only logger if creation fails (e.g. the log directory is not
// writable).
func (m *Manager) MustGet(component string) *Logger {
	logger, err := m.Get(component)
	if err != nil {
		fallback, _ := New(component, "")
		return fallback
	}
	return logger
}

// CloseAll closes every logger the manager has created.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for component, logger := range m.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("logging: close logger for %s: %w", component, err)
		}
	}
	m.loggers = make(map[string]*Logger)
	return lastErr
}

// Components lists the subsystems that currently have a logger.
func (m *Manager) Components() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	components := make([]string, 0, len(m.loggers))
	for component := range m.loggers {
		components = append(components, component)
	}
	return components
}
