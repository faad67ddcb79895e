package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("BACKEND", BackendMemory)
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "logs", "api.log"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"round1", "round2", "round3", "round4"}, cfg.Rounds)
	assert.Equal(t, "round3", cfg.SubmissionRound)
	assert.False(t, cfg.SubmissionRequiresOpenRound)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxSubmissionBytes())
	assert.Equal(t, 20, cfg.CodeGenerationAttempts)
	assert.Equal(t, 15*time.Second, cfg.LeaderboardCacheTTL)
	assert.Equal(t, 12*time.Hour, cfg.SessionIdleTimeout)
	assert.False(t, cfg.IsProduction())
	assert.DirExists(t, filepath.Dir(cfg.LogFile))
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("BACKEND", BackendMemory)
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "api.log"))
	t.Setenv("ROUNDS", "qualifier,final")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"qualifier", "final"}, cfg.Rounds)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedHosts)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend:                BackendMemory,
			Rounds:                 []string{"round1"},
			CodeGenerationAttempts: 20,
			MaxSubmissionMB:        50,
			BackendTimeout:         time.Second,
			RateLimitRPS:           10,
			RateLimitBurst:         20,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"firebase without api key", func(c *Config) { c.Backend = BackendFirebase }},
		{"unknown backend", func(c *Config) { c.Backend = "postgres" }},
		{"no rounds", func(c *Config) { c.Rounds = nil }},
		{"no code attempts", func(c *Config) { c.CodeGenerationAttempts = 0 }},
		{"no upload limit", func(c *Config) { c.MaxSubmissionMB = 0 }},
		{"no timeout", func(c *Config) { c.BackendTimeout = 0 }},
		{"no rate limit", func(c *Config) { c.RateLimitRPS = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
