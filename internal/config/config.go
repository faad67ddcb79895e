package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	BackendFirebase = "firebase"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment  string   `env:"ENV" envDefault:"development"`
	Port         string   `env:"API_PORT" envDefault:"8080"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string   `env:"LOG_FILE"`
	LogRequests  bool     `env:"LOG_REQUESTS" envDefault:"false"`
	AllowedHosts []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	// Forwarding headers are honoured only from these addresses
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Backend selection
	Backend string `env:"BACKEND" envDefault:"firebase"`

	// Firebase Configuration
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseAPIKey          string `env:"FIREBASE_API_KEY"`
	FirebaseStorageBucket   string `env:"FIREBASE_STORAGE_BUCKET"`
	IdentityToolkitURL      string `env:"IDENTITY_TOOLKIT_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`

	// Cache Configuration
	RedisURL            string        `env:"REDIS_URL"`
	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"15s"`

	// Backend call policy
	BackendTimeout         time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	ReadRetryAttempts      uint          `env:"READ_RETRY_ATTEMPTS" envDefault:"3"`
	CodeGenerationAttempts int           `env:"CODE_GENERATION_ATTEMPTS" envDefault:"20"`

	// Event Configuration
	Rounds                      []string `env:"ROUNDS" envSeparator:"," envDefault:"round1,round2,round3,round4"`
	SubmissionRound             string   `env:"SUBMISSION_ROUND" envDefault:"round3"`
	SubmissionRequiresOpenRound bool     `env:"SUBMISSION_REQUIRES_OPEN_ROUND" envDefault:"false"`
	MaxSubmissionMB             int64    `env:"MAX_SUBMISSION_MB" envDefault:"50"`

	// Session Configuration
	SessionIdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"12h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Telemetry Configuration
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	envLocations := []string{
		"internal/config/env/.env.production",
		"internal/config/env/.env.development",
		".env",
	}

	// If ENV is set, try to load that specific file first
	envName := os.Getenv("ENV")
	if envName != "" {
		envLocations = append([]string{fmt.Sprintf("internal/config/env/.env.%s", envName)}, envLocations...)
	}

	for _, loc := range envLocations {
		if err := godotenv.Load(loc); err == nil {
			break
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Set default log file if not set
	if cfg.LogFile == "" {
		if cfg.Environment == "production" {
			cfg.LogFile = "/app/logs/api.log"
		} else {
			cfg.LogFile = "./logs/api.log"
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFirebase:
		if c.FirebaseAPIKey == "" {
			return fmt.Errorf("FIREBASE_API_KEY is required for the firebase backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown BACKEND %q", c.Backend)
	}
	if len(c.Rounds) == 0 {
		return fmt.Errorf("ROUNDS must list at least one round")
	}
	if c.CodeGenerationAttempts < 1 {
		return fmt.Errorf("CODE_GENERATION_ATTEMPTS must be positive")
	}
	if c.MaxSubmissionMB < 1 {
		return fmt.Errorf("MAX_SUBMISSION_MB must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	return nil
}

// MaxSubmissionBytes is the upload limit in bytes.
func (c *Config) MaxSubmissionBytes() int64 {
	return c.MaxSubmissionMB * 1024 * 1024
}
