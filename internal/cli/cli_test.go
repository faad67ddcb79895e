package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yantrahq/yantra/internal/config"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository/memory"
	"github.com/yantrahq/yantra/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.Configure(&logging.Config{Level: logging.LevelError})
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*httptest.Server, server.Services) {
	t.Helper()
	cfg := &config.Config{
		Environment:            "test",
		Backend:                config.BackendMemory,
		Rounds:                 []string{"round1", "round2"},
		SubmissionRound:        "round2",
		MaxSubmissionMB:        1,
		CodeGenerationAttempts: 20,
		BackendTimeout:         time.Second,
		ReadRetryAttempts:      1,
		RateLimitRPS:           1000,
		RateLimitBurst:         1000,
	}
	logger := logging.NewWriterLogger(io.Discard, logging.LevelError)
	svc := server.NewServices(cfg, server.MemoryBackend(memory.NewStore()), logger)
	srv := httptest.NewServer(server.NewServer(cfg, svc, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestClientTeamFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	alice := NewClient(srv.URL+"/", "", 5*time.Second)
	sess, err := alice.Register(ctx, "alice@example.com", "pw", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "team", sess.Next)
	assert.Equal(t, sess.Token, alice.Token())

	created, err := alice.CreateTeam(ctx, "Nova Squad", "4")
	require.NoError(t, err)

	bob := NewClient(srv.URL, "", 5*time.Second)
	_, err = bob.Register(ctx, "bob@example.com", "pw", "Bob")
	require.NoError(t, err)
	joined, err := bob.JoinTeam(ctx, strings.ToLower(created.Code))
	require.NoError(t, err)
	assert.Equal(t, "Nova Squad", joined.TeamName)

	current, err := alice.CurrentTeam(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, current.MemberCount)

	byID, err := bob.Team(ctx, "Nova Squad")
	require.NoError(t, err)
	assert.Equal(t, created.Code, byID.Code)

	board, err := bob.Leaderboard(ctx, true)
	require.NoError(t, err)
	require.Len(t, board.Rows, 1)
	assert.Equal(t, "2/4", board.Rows[0].Members)

	health, err := bob.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	require.NoError(t, alice.Logout(ctx))
	assert.Empty(t, alice.Token())
}

func TestClientReturnsAPIErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.Login(ctx, "ghost@example.com", "pw")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)

	_, err = c.Session(ctx)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClientDashboardAndSubmit(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx := context.Background()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.Register(ctx, "alice@example.com", "pw", "Alice")
	require.NoError(t, err)
	_, err = c.CreateTeam(ctx, "Nova", "2")
	require.NoError(t, err)

	dash, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "intro", dash.Active)

	act, err := c.OpenSection(ctx, "round1")
	require.NoError(t, err)
	assert.True(t, act.Rejected)

	svc.Gate.Apply(models.RoundSettings{"round1": true}, true)
	act, err = c.OpenSection(ctx, "round1")
	require.NoError(t, err)
	assert.Equal(t, "round1", act.Active)

	file := filepath.Join(t.TempDir(), "deck.pdf")
	require.NoError(t, os.WriteFile(file, []byte("slides"), 0600))
	sub, err := c.Submit(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, "submissions/Nova/deck.pdf", sub.Submission.Path)

	require.NoError(t, c.CloseDashboard(ctx))
}

func TestWatchDashboard(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.Register(ctx, "alice@example.com", "pw", "Alice")
	require.NoError(t, err)

	var names []string
	err = c.WatchDashboard(ctx, func(ev Event) error {
		names = append(names, ev.Name)
		switch ev.Name {
		case "snapshot":
			svc.Gate.Apply(models.RoundSettings{"round2": true}, true)
		case "unlocked":
			return io.EOF
		}
		return nil
	})
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"snapshot", "unlocked"}, names)
}

func TestReadEvents(t *testing.T) {
	stream := ": comment\nevent:locked\ndata:{\"section\":\"round1\"}\n\ndata:line1\ndata: line2\n\n"

	var got []Event
	require.NoError(t, ReadEvents(strings.NewReader(stream), func(ev Event) error {
		got = append(got, ev)
		return nil
	}))

	require.Len(t, got, 2)
	assert.Equal(t, "locked", got[0].Name)
	assert.JSONEq(t, `{"section":"round1"}`, string(got[0].Data))
	assert.Equal(t, "message", got[1].Name)
	assert.Equal(t, "line1\nline2", string(got[1].Data))
}

func TestSessionStore(t *testing.T) {
	path := SessionPath(filepath.Join(t.TempDir(), ".yantra"))

	empty, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, &Session{}, empty)

	require.NoError(t, SaveSession(path, &Session{Server: "http://api.example", Token: "tok", Email: "a@example.com"}))
	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.Token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
