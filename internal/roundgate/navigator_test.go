package roundgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yantrahq/yantra/internal/models"
)

func TestNavigatorDefaultsToIntro(t *testing.T) {
	n := NewNavigator(newTestGate())
	defer n.Stop()

	assert.Equal(t, SectionIntro, n.Active())
	entries := n.Entries()
	require.Len(t, entries, 6)
	assert.Equal(t, SectionIntro, entries[0].Section)
	assert.True(t, entries[0].Active)
	assert.Equal(t, SectionLeaderboard, entries[5].Section)
	for _, e := range entries[1:5] {
		assert.True(t, e.Round)
		assert.False(t, e.Enabled)
	}
}

func TestNavigatorRejectsLockedRound(t *testing.T) {
	g := newTestGate()
	g.Apply(models.RoundSettings{"round1": true, "round2": false}, true)
	n := NewNavigator(g)
	defer n.Stop()

	events, cancel := n.Watch(4)
	defer cancel()

	act, err := n.Activate("round2")
	require.NoError(t, err)
	assert.True(t, act.Rejected)
	assert.Equal(t, SectionIntro, act.Active)
	assert.Equal(t, SectionIntro, n.Active())

	e := <-events
	assert.Equal(t, EventRejected, e.Type)
	assert.Equal(t, "round2", e.Section)
}

func TestNavigatorUnknownSection(t *testing.T) {
	n := NewNavigator(newTestGate())
	defer n.Stop()

	_, err := n.Activate("round9")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestNavigatorRedirectsWhenActiveRoundLocks(t *testing.T) {
	g := newTestGate()
	g.Apply(models.RoundSettings{"round2": true}, true)
	n := NewNavigator(g)
	defer n.Stop()

	act, err := n.Activate("round2")
	require.NoError(t, err)
	assert.False(t, act.Rejected)
	assert.Equal(t, "round2", n.Active())

	g.Apply(models.RoundSettings{"round2": false}, true)
	assert.Equal(t, SectionIntro, n.Active())

	act, err = n.Activate("round2")
	require.NoError(t, err)
	assert.True(t, act.Rejected)
}

func TestNavigatorLockOfInactiveRoundKeepsSection(t *testing.T) {
	g := newTestGate()
	g.Apply(models.RoundSettings{"round1": true, "round2": true}, true)
	n := NewNavigator(g)
	defer n.Stop()

	_, err := n.Activate("round1")
	require.NoError(t, err)

	g.Apply(models.RoundSettings{"round1": true}, true)
	assert.Equal(t, "round1", n.Active())
}

func TestNavigatorUnlockDoesNotNavigate(t *testing.T) {
	g := newTestGate()
	n := NewNavigator(g)
	defer n.Stop()

	_, err := n.Activate(SectionLeaderboard)
	require.NoError(t, err)

	g.Apply(models.RoundSettings{"round3": true}, true)
	assert.Equal(t, SectionLeaderboard, n.Active())
	assert.True(t, n.Entries()[3].Enabled)
}

func TestNavigatorStopIgnoresLateTransitions(t *testing.T) {
	g := newTestGate()
	g.Apply(models.RoundSettings{"round1": true}, true)
	n := NewNavigator(g)

	_, err := n.Activate("round1")
	require.NoError(t, err)

	events, _ := n.Watch(4)
	n.Stop()
	_, open := <-events
	assert.False(t, open)

	g.Apply(models.RoundSettings{}, true)
	assert.Equal(t, "round1", n.Active())

	_, err = n.Activate(SectionIntro)
	assert.ErrorIs(t, err, ErrStopped)
}
