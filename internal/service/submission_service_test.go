package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository"
)

type fixedGate map[string]bool

func (g fixedGate) IsOpen(round string) bool { return g[round] }

func upload(name, body string) Upload {
	return Upload{FileName: name, ContentType: "text/plain", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func teamMember(t *testing.T, env *testEnv) *models.Principal {
	t.Helper()
	alice := register(t, env, "alice")
	_, err := env.teams.CreateTeam(context.Background(), "Nova Squad", "4", alice.ID)
	require.NoError(t, err)
	p, err := env.identity.Profile(context.Background(), alice.ID)
	require.NoError(t, err)
	return p
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := teamMember(t, env)

	sub, err := env.submission.Submit(ctx, alice, upload("../../deck.pdf", "slides"))
	require.NoError(t, err)
	assert.Equal(t, "submissions/Nova_Squad/deck.pdf", sub.Path)
	assert.Equal(t, "memory://submissions/Nova_Squad/deck.pdf", sub.URL)

	data, ok := env.store.Blob(sub.Path)
	require.True(t, ok)
	assert.Equal(t, "slides", string(data))

	team, err := env.store.Teams().Get(ctx, "Nova Squad")
	require.NoError(t, err)
	require.NotNil(t, team.Submission)
	assert.Equal(t, sub.URL, team.Submission.URL)
	assert.True(t, team.Rounds["round3"])

	_, err = env.submission.Submit(ctx, alice, upload("deck.pdf", "again"))
	assert.ErrorIs(t, err, ErrSubmissionExists)
}

type flakyTeams struct {
	repository.TeamRepository
	setSubmissionFunc func(ctx context.Context, id string, submission *models.Submission, round string) error
}

func (f *flakyTeams) SetSubmission(ctx context.Context, id string, submission *models.Submission, round string) error {
	return f.setSubmissionFunc(ctx, id, submission, round)
}

func TestSubmitRetryAfterFailedRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := teamMember(t, env)

	failures := 1
	env.submission.teams = &flakyTeams{
		TeamRepository: env.store.Teams(),
		setSubmissionFunc: func(ctx context.Context, id string, submission *models.Submission, round string) error {
			if failures > 0 {
				failures--
				return repository.ErrUnavailable
			}
			return env.store.Teams().SetSubmission(ctx, id, submission, round)
		},
	}

	_, err := env.submission.Submit(ctx, alice, upload("deck.pdf", "slides"))
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	_, ok := env.store.Blob("submissions/Nova_Squad/deck.pdf")
	assert.False(t, ok)

	sub, err := env.submission.Submit(ctx, alice, upload("deck.pdf", "slides"))
	require.NoError(t, err)

	team, err := env.store.Teams().Get(ctx, "Nova Squad")
	require.NoError(t, err)
	require.NotNil(t, team.Submission)
	assert.Equal(t, sub.Path, team.Submission.Path)
}

func TestSubmitRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := teamMember(t, env)
	bob := register(t, env, "bob")

	_, err := env.submission.Submit(ctx, bob, upload("deck.pdf", "x"))
	assert.ErrorIs(t, err, ErrNotInTeam)

	_, err = env.submission.Submit(ctx, alice, upload("  ", "x"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.submission.Submit(ctx, alice, upload("big.bin", strings.Repeat("x", 2048)))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSubmitIgnoresRoundLockByDefault(t *testing.T) {
	env := newTestEnv(t)
	env.submission.gate = fixedGate{}
	alice := teamMember(t, env)

	_, err := env.submission.Submit(context.Background(), alice, upload("deck.pdf", "x"))
	assert.NoError(t, err)
}

func TestSubmitCanRequireOpenRound(t *testing.T) {
	env := newTestEnv(t)
	env.submission.gate = fixedGate{}
	env.submission.cfg.RequireOpenRound = true
	alice := teamMember(t, env)

	_, err := env.submission.Submit(context.Background(), alice, upload("deck.pdf", "x"))
	assert.ErrorIs(t, err, ErrRoundLocked)

	env.submission.gate = fixedGate{"round3": true}
	_, err = env.submission.Submit(context.Background(), alice, upload("deck.pdf", "x"))
	assert.NoError(t, err)
}

func TestSanitizePathSegment(t *testing.T) {
	tests := map[string]string{
		"Nova Squad":     "Nova_Squad",
		"  Team #1!  ":   "Team_1",
		"../etc":         "etc",
		"ÜberTeam":       "berTeam",
		"***":            "_",
		"snake_case-ok.": "snake_case-ok",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizePathSegment(in), in)
	}
}
