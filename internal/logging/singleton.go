package logging

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	instance  *Logger
	once      sync.Once
	mu        sync.RWMutex
	logConfig *Config
)

// Configure sets the process-wide logging configuration. Call it once at
// startup, before the first GetGlobalLogger.
func Configure(config *Config) {
	mu.Lock()
	defer mu.Unlock()
	logConfig = config
}

// GetGlobalLogger returns the process-wide logger. It panics when Configure
// was never called. A configuration that cannot be applied (bad level,
// unwritable log file) falls back to stdout at info level and says so.
func GetGlobalLogger() *Logger {
	once.Do(func() {
		mu.RLock()
		config := logConfig
		mu.RUnlock()

		if config == nil {
			panic("logger configuration not set - call logging.Configure() first")
		}
		instance = newGlobalLogger(config, os.Stdout)
	})
	return instance
}

func newGlobalLogger(config *Config, fallback io.Writer) *Logger {
	logger, err := NewLogger(config)
	if err == nil {
		return logger
	}
	logger = &Logger{Logger: log.New(fallback, "", log.LstdFlags), level: levelRank[LevelInfo]}
	logger.Warn("Logging configuration rejected, using stdout: %v", err)
	return logger
}
