package memspace

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerLock sync.RWMutex
	logger     = zap.NewNop()
)

// Logger returns the logger memory spaces report to. It discards
// everything until SetLogger is called.
func Logger() *zap.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()

	return logger
}

// SetLogger replaces the package logger. Passing nil restores the no-op
// logger. It is safe to call while spaces are in use.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}

	loggerLock.Lock()
	defer loggerLock.Unlock()

	logger = l
}
