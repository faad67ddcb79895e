package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yantrahq/yantra/internal/config"
	"github.com/yantrahq/yantra/internal/config/firebase"
	"github.com/yantrahq/yantra/internal/identity"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/repository"
	"github.com/yantrahq/yantra/internal/repository/memory"
	"github.com/yantrahq/yantra/internal/server"
	"github.com/yantrahq/yantra/internal/tasks"
	"github.com/yantrahq/yantra/internal/telemetry"
	"github.com/yantrahq/yantra/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logging.Configure(&logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
	})
	logger := logging.GetGlobalLogger()
	defer logger.Close()

	logger.Info("Starting yantra API %s in %s mode (backend: %s)", version.Info(), cfg.Environment, cfg.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTLPEndpoint, version.Version, logger)
	if err != nil {
		logger.Error("Failed to initialize tracing: %v", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces: %v", err)
		}
	}()

	backend, closeBackend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize %s backend: %v", cfg.Backend, err)
		os.Exit(1)
	}
	defer closeBackend()

	svc := server.NewServices(cfg, backend, logger)

	roundWatcher := tasks.NewRoundWatcher(svc.Gate, backend.Settings, logger)
	roundWatcher.Start(ctx)
	defer roundWatcher.Stop()

	sweeper := tasks.NewSessionSweeper(svc.Sessions, cfg.SessionIdleTimeout, cfg.SessionSweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := server.NewServer(cfg, svc, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("Server stopped with error: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// newBackend builds the configured storage stack and a func releasing it.
func newBackend(ctx context.Context, cfg *config.Config, logger *logging.Logger) (server.Backend, func(), error) {
	if cfg.Backend == config.BackendMemory {
		logger.Warn("Using the in-memory backend; all state is lost on restart")
		return server.MemoryBackend(memory.NewStore()), func() {}, nil
	}

	clients, err := firebase.Initialize(ctx, cfg, logger)
	if err != nil {
		return server.Backend{}, nil, err
	}
	closers := []func(){func() {
		if err := clients.Close(); err != nil {
			logger.Warn("Failed to close Firebase clients: %v", err)
		}
	}}

	backend := server.Backend{
		Identity:   identity.NewFirebaseProvider(clients.Auth, cfg.IdentityToolkitURL, cfg.FirebaseAPIKey, cfg.BackendTimeout),
		Principals: repository.NewPrincipalRepository(clients.Firestore),
		Teams:      repository.NewTeamRepository(clients.Firestore),
		Settings:   repository.NewSettingsWatcher(clients.Firestore),
		Blobs:      repository.NewBlobStore(clients.Bucket, clients.BucketName),
	}

	if cfg.RedisURL != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			// The leaderboard works uncached
			logger.Warn("Leaderboard cache disabled: %v", err)
		} else {
			backend.Cache = repository.NewLeaderboardCache(rdb)
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	return backend, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
