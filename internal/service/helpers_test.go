package service

import (
	"io"
	"testing"
	"time"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/repository/memory"
	"github.com/yantrahq/yantra/internal/session"
)

type testEnv struct {
	store      *memory.Store
	logger     *logging.Logger
	teams      *TeamService
	identity   *IdentityService
	sessions   *session.Manager
	submission *SubmissionService
}

var testPolicy = CallPolicy{Timeout: time.Second, ReadAttempts: 2}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	logger := logging.NewWriterLogger(io.Discard, "debug")
	audit := NewAuditService(logger)

	teams := NewTeamService(store.Teams(), store.Principals(), audit, logger, testPolicy, 20)
	env := &testEnv{store: store, logger: logger, teams: teams}

	env.sessions = session.NewManager(session.NewBinder(NewProfileReader(store.Principals(), testPolicy), teams, logger))
	env.identity = NewIdentityService(store.Identity(), store.Principals(), env.sessions, audit, logger, testPolicy)

	env.submission = NewSubmissionService(store.Teams(), store.Blobs(), nil, audit, logger, testPolicy, SubmissionConfig{
		Round:    "round3",
		MaxBytes: 1024,
	})
	return env
}
