package logging

import (
	"errors"
	"fmt"
	"strings"
)

// Config selects the level and, for the API server, a rotated log file.
type Config struct {
	Level      string `json:"level"`       // debug, info, warn, error
	File       string `json:"file"`        // empty logs to stdout only
	MaxSize    int    `json:"max_size"`    // MB before rotation
	MaxBackups int    `json:"max_backups"` // rotated files kept
	MaxAge     int    `json:"max_age"`     // days a rotated file is kept
}

// Validate reports an unknown level or unusable rotation settings.
func (l *Config) Validate() error {
	if _, ok := levelRank[strings.ToLower(l.Level)]; !ok {
		return fmt.Errorf("invalid log level: %q", l.Level)
	}
	if l.File == "" {
		return nil
	}
	if l.MaxSize <= 0 {
		return errors.New("max_size must be positive when a log file is set")
	}
	if l.MaxBackups < 0 || l.MaxAge < 0 {
		return errors.New("max_backups and max_age must be non-negative")
	}
	return nil
}
