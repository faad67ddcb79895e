// Package cli is the client side of the yantra API used by the yantra
// command: an HTTP client, the local session file and terminal rendering.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/api/dto/v1/auth"
	"github.com/yantrahq/yantra/internal/api/dto/v1/dashboard"
	"github.com/yantrahq/yantra/internal/api/dto/v1/team"
	"github.com/yantrahq/yantra/internal/leaderboard"
	"github.com/yantrahq/yantra/internal/version"

	"github.com/go-resty/resty/v2"
)

// APIError is an error envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type envelope[T any] struct {
	Success bool                  `json:"success"`
	Data    T                     `json:"data"`
	Error   *common.ErrorResponse `json:"error"`
}

// HealthInfo is the server's health report
type HealthInfo struct {
	Status         string            `json:"status"`
	Version        version.BuildInfo `json:"version"`
	RoundsObserved bool              `json:"roundsObserved"`
}

// Client calls the yantra API with the session token of the local user.
type Client struct {
	http   *resty.Client
	stream *resty.Client
	token  string
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	userAgent := "yantra-cli/" + version.Version
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
		// Event streams stay open; no overall timeout
		stream: resty.New().
			SetBaseURL(baseURL).
			SetHeader("User-Agent", userAgent),
		token: token,
	}
}

// Token returns the session token in use
func (c *Client) Token() string {
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	return req
}

// call sends req and decodes the envelope's data into T
func call[T any](req *resty.Request, method, path string) (T, error) {
	var env envelope[T]
	req.SetResult(&env).SetError(&env)

	resp, err := req.Execute(method, path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() || !env.Success {
		var zero T
		if env.Error != nil {
			return zero, &APIError{Status: resp.StatusCode(), Code: env.Error.Code, Message: env.Error.Message}
		}
		return zero, &APIError{Status: resp.StatusCode(), Code: http.StatusText(resp.StatusCode()), Message: strings.TrimSpace(resp.String())}
	}
	return env.Data, nil
}

// Health returns the server's health report
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	info, err := call[HealthInfo](c.request(ctx), http.MethodGet, "/health")
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Register creates an account and adopts its session
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*auth.SessionResponse, error) {
	sess, err := call[auth.SessionResponse](c.request(ctx).SetBody(auth.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}), http.MethodPost, "/api/v1/auth/register")
	if err != nil {
		return nil, err
	}
	c.token = sess.Token
	return &sess, nil
}

// Login signs in and adopts the session. A current session is swapped to
// the new principal.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.SessionResponse, error) {
	sess, err := call[auth.SessionResponse](c.request(ctx).SetBody(auth.LoginRequest{
		Email:    email,
		Password: password,
	}), http.MethodPost, "/api/v1/auth/login")
	if err != nil {
		return nil, err
	}
	c.token = sess.Token
	return &sess, nil
}

// Logout ends the session and forgets the token
func (c *Client) Logout(ctx context.Context) error {
	_, err := call[common.MessageResponse](c.request(ctx), http.MethodPost, "/api/v1/auth/logout")
	c.token = ""
	return err
}

// Session returns the signed-in principal and current team
func (c *Client) Session(ctx context.Context) (*auth.SessionResponse, error) {
	sess, err := call[auth.SessionResponse](c.request(ctx), http.MethodGet, "/api/v1/session")
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// CreateTeam creates a team led by the signed-in principal
func (c *Client) CreateTeam(ctx context.Context, name, capacity string) (*team.CreateTeamResponse, error) {
	created, err := call[team.CreateTeamResponse](c.request(ctx).SetBody(team.CreateTeamRequest{
		Name:     name,
		Capacity: team.Capacity(capacity),
	}), http.MethodPost, "/api/v1/teams")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// JoinTeam joins the team with the given code
func (c *Client) JoinTeam(ctx context.Context, code string) (*team.JoinTeamResponse, error) {
	joined, err := call[team.JoinTeamResponse](c.request(ctx).SetBody(team.JoinTeamRequest{Code: code}), http.MethodPost, "/api/v1/teams/join")
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

// CurrentTeam returns the signed-in principal's team
func (c *Client) CurrentTeam(ctx context.Context) (*team.DetailsResponse, error) {
	details, err := call[team.DetailsResponse](c.request(ctx), http.MethodGet, "/api/v1/teams/current")
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// Team returns any team by id
func (c *Client) Team(ctx context.Context, id string) (*team.DetailsResponse, error) {
	details, err := call[team.DetailsResponse](c.request(ctx).SetPathParam("id", id), http.MethodGet, "/api/v1/teams/{id}")
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// Leaderboard returns the board; refresh bypasses the server cache
func (c *Client) Leaderboard(ctx context.Context, refresh bool) (*leaderboard.Board, error) {
	method, path := http.MethodGet, "/api/v1/leaderboard"
	if refresh {
		method, path = http.MethodPost, "/api/v1/leaderboard/refresh"
	}
	board, err := call[leaderboard.Board](c.request(ctx), method, path)
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// Dashboard returns the dashboard state
func (c *Client) Dashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	dash, err := call[dashboard.DashboardResponse](c.request(ctx), http.MethodGet, "/api/v1/dashboard")
	if err != nil {
		return nil, err
	}
	return &dash, nil
}

// OpenSection activates a dashboard section
func (c *Client) OpenSection(ctx context.Context, section string) (*dashboard.ActivateResponse, error) {
	act, err := call[dashboard.ActivateResponse](c.request(ctx).SetPathParam("section", section), http.MethodPost, "/api/v1/dashboard/sections/{section}")
	if err != nil {
		return nil, err
	}
	return &act, nil
}

// CloseDashboard closes the dashboard view of the session
func (c *Client) CloseDashboard(ctx context.Context) error {
	_, err := call[common.MessageResponse](c.request(ctx), http.MethodDelete, "/api/v1/dashboard")
	return err
}

// Submit uploads the file at path as the team submission
func (c *Client) Submit(ctx context.Context, path string) (*dashboard.SubmissionResponse, error) {
	sub, err := call[dashboard.SubmissionResponse](c.request(ctx).SetFile("file", path), http.MethodPost, "/api/v1/submissions")
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Event is one server-sent event
type Event struct {
	Name string
	Data []byte
}

// WatchDashboard streams dashboard events to fn until ctx is done, the
// server closes the stream, or fn returns an error.
func (c *Client) WatchDashboard(ctx context.Context, fn func(Event) error) error {
	req := c.stream.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream")
	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	resp, err := req.Get("/api/v1/dashboard/events")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		var env envelope[struct{}]
		raw, _ := io.ReadAll(body)
		if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
			return &APIError{Status: resp.StatusCode(), Code: env.Error.Code, Message: env.Error.Message}
		}
		return &APIError{Status: resp.StatusCode(), Code: http.StatusText(resp.StatusCode()), Message: strings.TrimSpace(string(raw))}
	}

	err = ReadEvents(body, fn)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// ReadEvents parses a text/event-stream body and calls fn per event.
func ReadEvents(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		name string
		data bytes.Buffer
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" || data.Len() > 0 {
				if name == "" {
					name = "message"
				}
				if err := fn(Event{Name: name, Data: bytes.Clone(data.Bytes())}); err != nil {
					return err
				}
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	return scanner.Err()
}
