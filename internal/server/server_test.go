package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yantrahq/yantra/internal/config"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.Configure(&logging.Config{Level: logging.LevelError})
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testAPI struct {
	t       *testing.T
	store   *memory.Store
	svc     Services
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:            "test",
		Backend:                config.BackendMemory,
		Rounds:                 []string{"round1", "round2", "round3", "round4"},
		SubmissionRound:        "round3",
		MaxSubmissionMB:        1,
		CodeGenerationAttempts: 20,
		BackendTimeout:         time.Second,
		ReadRetryAttempts:      2,
		RateLimitRPS:           1000,
		RateLimitBurst:         1000,
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := testConfig()
	store := memory.NewStore()
	logger := logging.NewWriterLogger(io.Discard, logging.LevelError)
	svc := NewServices(cfg, MemoryBackend(store), logger)
	return &testAPI{t: t, store: store, svc: svc, handler: NewServer(cfg, svc, logger).Handler()}
}

func (a *testAPI) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(req)
}

func (a *testAPI) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type sessionData struct {
	Token     string `json:"token"`
	Next      string `json:"next"`
	Principal struct {
		ID       string `json:"id"`
		TeamID   string `json:"teamId"`
		IsLeader bool   `json:"isLeader"`
	} `json:"principal"`
	Team *teamData `json:"team"`
}

type teamData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Capacity    int    `json:"capacity"`
	MemberCount int    `json:"memberCount"`
	Members     []struct {
		DisplayName string `json:"displayName"`
		Leader      bool   `json:"leader"`
	} `json:"members"`
	Submission *struct {
		URL string `json:"url"`
	} `json:"submission"`
	Rounds map[string]bool `json:"rounds"`
}

func (a *testAPI) register(name string) sessionData {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":       strings.ToLower(name) + "@example.com",
		"password":    "pw-" + name,
		"displayName": name,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[sessionData](a.t, env)
}

func (a *testAPI) createTeam(token, name string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/v1/teams", token, map[string]interface{}{"name": name, "capacity": "4"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		Code string `json:"code"`
	}](a.t, env).Code
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[struct {
		Status         string `json:"status"`
		RoundsObserved bool   `json:"roundsObserved"`
	}](t, env)
	assert.Equal(t, "ok", health.Status)
	assert.False(t, health.RoundsObserved)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestTeamFlow(t *testing.T) {
	api := newTestAPI(t)

	alice := api.register("Alice")
	assert.Equal(t, "team", alice.Next)
	assert.Nil(t, alice.Team)
	bob := api.register("Bob")

	code := api.createTeam(alice.Token, "  Nova Squad ")
	assert.Len(t, code, 6)

	w, env := api.do(http.MethodGet, "/api/v1/teams/current", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	current := decode[teamData](t, env)
	assert.Equal(t, "Nova Squad", current.ID)
	assert.Equal(t, 1, current.MemberCount)

	w, env = api.do(http.MethodPost, "/api/v1/teams/join", bob.Token, map[string]string{"code": strings.ToLower(code)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	joined := decode[struct {
		TeamID   string    `json:"teamId"`
		TeamName string    `json:"teamName"`
		Team     *teamData `json:"team"`
	}](t, env)
	assert.Equal(t, "Nova Squad", joined.TeamName)
	require.NotNil(t, joined.Team)
	assert.Equal(t, 2, joined.Team.MemberCount)

	// Joining twice is a conflict
	w, env = api.do(http.MethodPost, "/api/v1/teams/join", bob.Token, map[string]string{"code": code})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_MEMBER", env.Error.Code)

	w, env = api.do(http.MethodGet, "/api/v1/teams/Nova%20Squad", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := decode[teamData](t, env)
	require.Len(t, details.Members, 2)
	assert.True(t, details.Members[0].Leader)

	// Login now lands on the dashboard
	w, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "bob@example.com", "password": "pw-Bob"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dashboard", decode[sessionData](t, env).Next)

	w, env = api.do(http.MethodPost, "/api/v1/leaderboard/refresh", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[struct {
		Rows []struct {
			Badge   string `json:"badge"`
			Name    string `json:"name"`
			Members string `json:"members"`
		} `json:"rows"`
		Empty bool `json:"empty"`
	}](t, env)
	require.Len(t, board.Rows, 1)
	assert.Equal(t, "🥇", board.Rows[0].Badge)
	assert.Equal(t, "2/4", board.Rows[0].Members)
	assert.False(t, board.Empty)
}

func TestTeamErrors(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("Alice")
	api.createTeam(alice.Token, "Nova")

	tests := []struct {
		name     string
		path     string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{"zero capacity", "/api/v1/teams", map[string]interface{}{"name": "Orbit", "capacity": 0}, http.StatusBadRequest, "INVALID_CAPACITY"},
		{"blank name", "/api/v1/teams", map[string]interface{}{"name": " ", "capacity": "3"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"name taken", "/api/v1/teams", map[string]interface{}{"name": "Nova", "capacity": "3"}, http.StatusConflict, "NAME_TAKEN"},
		{"unknown code", "/api/v1/teams/join", map[string]string{"code": "ZZZZZZ"}, http.StatusNotFound, "CODE_NOT_FOUND"},
		{"malformed body", "/api/v1/teams/join", "not an object", http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.do(http.MethodPost, tt.path, alice.Token, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
			assert.False(t, env.Success)
		})
	}

	w, env := api.do(http.MethodGet, "/api/v1/teams/Ghost", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TEAM_NOT_FOUND", env.Error.Code)
}

func TestAuthErrors(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice")

	w, env := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "alice@example.com", "password": "other", "displayName": "Alice 2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_ACCOUNT", env.Error.Code)

	w, env = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "nope", "password": "pw", "displayName": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CREDENTIAL_FORMAT", env.Error.Code)

	w, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/teams/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/teams/current", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionCookieAndLogout(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("Alice")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: alice.Token})
	w, env := api.serve(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alice.Principal.ID, decode[sessionData](t, env).Principal.ID)

	w, _ = api.do(http.MethodGet, "/api/v1/teams/current", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/logout", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, api.svc.Sessions.Len())

	w, _ = api.do(http.MethodGet, "/api/v1/session", alice.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsStaleCookie(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "swept-long-ago"})
	w, env := api.serve(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginSwapsSessionPrincipal(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("Alice")
	bob := api.register("Bob")
	api.createTeam(bob.Token, "Orbit")

	w, env := api.do(http.MethodPost, "/api/v1/auth/login", alice.Token, map[string]string{"email": "bob@example.com", "password": "pw-Bob"})
	require.Equal(t, http.StatusOK, w.Code)
	swapped := decode[sessionData](t, env)
	assert.Equal(t, alice.Token, swapped.Token)
	assert.Equal(t, bob.Principal.ID, swapped.Principal.ID)
	require.NotNil(t, swapped.Team)
	assert.Equal(t, "Orbit", swapped.Team.ID)
}

type dashboardData struct {
	Active   string `json:"active"`
	Rejected bool   `json:"rejected"`
	Entries  []struct {
		Section string `json:"section"`
		Enabled bool   `json:"enabled"`
	} `json:"entries"`
	Board *struct {
		Empty bool `json:"empty"`
	} `json:"board"`
}

func TestDashboardNavigation(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("Alice")

	w, env := api.do(http.MethodGet, "/api/v1/dashboard", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[dashboardData](t, env)
	assert.Equal(t, "intro", dash.Active)
	require.Len(t, dash.Entries, 6)

	w, env = api.do(http.MethodPost, "/api/v1/dashboard/sections/round1", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	act := decode[dashboardData](t, env)
	assert.True(t, act.Rejected)
	assert.Equal(t, "intro", act.Active)

	api.svc.Gate.Apply(models.RoundSettings{"round1": true}, true)

	w, env = api.do(http.MethodPost, "/api/v1/dashboard/sections/round1", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	act = decode[dashboardData](t, env)
	assert.False(t, act.Rejected)
	assert.Equal(t, "round1", act.Active)

	// Locking the active round sends the view back to the intro
	api.svc.Gate.Apply(models.RoundSettings{"round1": false}, true)
	w, env = api.do(http.MethodGet, "/api/v1/dashboard", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "intro", decode[dashboardData](t, env).Active)

	w, env = api.do(http.MethodPost, "/api/v1/dashboard/sections/leaderboard", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	act = decode[dashboardData](t, env)
	require.NotNil(t, act.Board)
	assert.True(t, act.Board.Empty)

	w, env = api.do(http.MethodPost, "/api/v1/dashboard/sections/bonus", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_SECTION", env.Error.Code)

	w, _ = api.do(http.MethodDelete, "/api/v1/dashboard", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sc, ok := api.svc.Sessions.Get(alice.Token)
	require.True(t, ok)
	assert.Nil(t, sc.Dashboard())
}

func TestDashboardEvents(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("Alice")

	srv := httptest.NewServer(api.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/dashboard/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+alice.Token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := make(chan string, 8)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event:"); ok {
				events <- name
			}
		}
	}()

	next := func() string {
		select {
		case ev := <-events:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
			return ""
		}
	}

	assert.Equal(t, "snapshot", next())

	api.svc.Gate.Apply(models.RoundSettings{"round2": true}, true)
	assert.Equal(t, "unlocked", next())

	sc, ok := api.svc.Sessions.Get(alice.Token)
	require.True(t, ok)
	sc.CloseDashboard()
	assert.Equal(t, "closed", next())
}

func TestSubmission(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("Alice")

	upload := func(name string, size int) (*httptest.ResponseRecorder, envelope) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte("x"), size))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+alice.Token)
		return api.serve(req)
	}

	w, env := upload("report.pdf", 10)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOT_IN_TEAM", env.Error.Code)

	api.createTeam(alice.Token, "Nova Squad")

	w, env = upload("report.pdf", 10)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[struct {
		Submission struct {
			URL  string `json:"url"`
			Path string `json:"path"`
		} `json:"submission"`
		Team *teamData `json:"team"`
	}](t, env)
	assert.Equal(t, "submissions/Nova_Squad/report.pdf", result.Submission.Path)
	require.NotNil(t, result.Team)
	require.NotNil(t, result.Team.Submission)
	assert.True(t, result.Team.Rounds["round3"])

	stored, ok := api.store.Blob("submissions/Nova_Squad/report.pdf")
	require.True(t, ok)
	assert.Len(t, stored, 10)

	w, env = upload("report.pdf", 10)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SUBMISSION_EXISTS", env.Error.Code)

	w, env = upload("huge.bin", 1<<20+1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)
}
