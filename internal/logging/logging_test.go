package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "stdout", config: Config{Level: "info"}},
		{name: "level is case insensitive", config: Config{Level: "WARN"}},
		{name: "unknown level", config: Config{Level: "verbose"}, wantErr: true},
		{name: "file with rotation", config: Config{Level: "debug", File: "yantra.log", MaxSize: 10}},
		{name: "file without size", config: Config{Level: "debug", File: "yantra.log"}, wantErr: true},
		{name: "negative backups", config: Config{Level: "debug", File: "yantra.log", MaxSize: 1, MaxBackups: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriterLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelWarn)

	logger.Info("joined team %s", "Nova Squad")
	logger.Warn("round %s locked", "round2")
	logger.Error("backend down")

	out := buf.String()
	assert.NotContains(t, out, "Nova Squad")
	assert.Contains(t, out, "round round2 locked")
	assert.Contains(t, out, "backend down")
}

func TestGlobalLoggerFallsBackOnRejectedConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := newGlobalLogger(&Config{Level: "loud"}, &buf)

	require.NotNil(t, logger)
	assert.Contains(t, buf.String(), "invalid log level")

	logger.Debug("hidden")
	logger.Info("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "api.log")
	logger, err := NewLogger(&Config{Level: LevelInfo, File: path, MaxSize: 1})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("started")
	assert.FileExists(t, path)
}
