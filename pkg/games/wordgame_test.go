package games

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedGame(t *testing.T, now time.Time) *WordGame {
	t.Helper()
	g := NewWordGame("host", 3)
	require.NoError(t, g.Join("player2"))
	require.NoError(t, g.Start("s", now, time.Minute))
	return g
}

func TestWordGame_LobbyRules(t *testing.T) {
	now := time.Now()
	g := NewWordGame("host", 3)

	assert.ErrorIs(t, g.Join("host"), ErrAlreadyJoined)
	assert.ErrorIs(t, g.Start("s", now, time.Minute), ErrNotEnough)

	require.NoError(t, g.Join("player2"))
	require.NoError(t, g.SetDifficulty("hard"))
	assert.ErrorIs(t, g.SetDifficulty("impossible"), ErrBadDifficulty)

	require.NoError(t, g.Start("s", now, time.Minute))
	assert.Equal(t, PhasePlaying, g.Phase)
	assert.Equal(t, 1, g.Round)

	assert.ErrorIs(t, g.Join("latecomer"), ErrNotInLobby)
	assert.ErrorIs(t, g.SetDifficulty("easy"), ErrNotInLobby)
}

func TestWordGame_SubmitScoresByLength(t *testing.T) {
	now := time.Now()
	g := startedGame(t, now)

	out, points, err := g.Submit("host", "Stone", now)
	require.NoError(t, err)
	assert.Equal(t, SubmitAccepted, out)
	assert.Equal(t, 5, points)
	assert.Equal(t, 5, g.Scores["host"])

	out, points, err = g.Submit("player2", "star", now)
	require.NoError(t, err)
	assert.Equal(t, SubmitAccepted, out)
	assert.Equal(t, 4, points)
	assert.Equal(t, "host", g.Leader())
}

func TestWordGame_SubmitRejections(t *testing.T) {
	now := time.Now()
	g := startedGame(t, now)

	_, _, err := g.Submit("stranger", "stone", now)
	assert.ErrorIs(t, err, ErrNotAPlayer)

	_, _, err = g.Submit("host", "table", now)
	assert.ErrorIs(t, err, ErrWrongLetter)

	_, _, err = g.Submit("host", "sip", now)
	assert.ErrorIs(t, err, ErrTooShort, "medium difficulty needs four letters")

	_, _, err = g.Submit("host", "stone", now)
	require.NoError(t, err)
	_, _, err = g.Submit("player2", "STONE", now)
	assert.ErrorIs(t, err, ErrWordUsed, "reuse check is case-insensitive")
	assert.Zero(t, g.Scores["player2"], "rejected words must not score")
}

func TestWordGame_NoRepeatsAcrossRounds(t *testing.T) {
	now := time.Now()
	g := startedGame(t, now)

	_, _, err := g.Submit("host", "stone", now)
	require.NoError(t, err)

	later := now.Add(2 * time.Minute)
	assert.True(t, g.RoundExpired(later))

	out, _, err := g.Submit("player2", "star", later)
	require.NoError(t, err)
	assert.Equal(t, SubmitRoundOver, out, "late submissions settle the round instead of scoring")

	done := g.NextRound("s", later, time.Minute)
	assert.False(t, done)
	assert.Equal(t, 2, g.Round)
	assert.Empty(t, g.RoundWords, "per-round set resets")

	_, _, err = g.Submit("host", "stone", later)
	assert.ErrorIs(t, err, ErrWordUsed, "game-wide set persists across rounds")
}

func TestWordGame_FinishesAfterConfiguredRounds(t *testing.T) {
	now := time.Now()
	g := NewWordGame("host", 2)
	require.NoError(t, g.Join("player2"))
	require.NoError(t, g.Start("a", now, time.Minute))

	assert.False(t, g.NextRound("b", now, time.Minute))
	assert.True(t, g.NextRound("c", now, time.Minute))
}

func TestWordGame_EmptiedLobbyDissolves(t *testing.T) {
	g := NewWordGame("host", 2)
	require.NoError(t, g.Join("player2"))

	assert.False(t, g.Forfeit("player2"), "the host can still start or dissolve the lobby")
	assert.True(t, g.Forfeit("host"), "a lobby with no players left must dissolve")
}

func TestWordGame_HostLeavingLobbyDissolves(t *testing.T) {
	g := NewWordGame("host", 2)
	require.NoError(t, g.Join("player2"))
	require.NoError(t, g.Join("player3"))

	assert.True(t, g.Forfeit("host"), "nobody else can start a hostless lobby")
}

func TestWordGame_ForfeitDissolvesBelowTwoPlayers(t *testing.T) {
	now := time.Now()
	g := NewWordGame("host", 3)
	require.NoError(t, g.Join("player2"))
	require.NoError(t, g.Join("player3"))
	require.NoError(t, g.Start("s", now, time.Minute))

	assert.False(t, g.Forfeit("player3"))
	assert.Len(t, g.Players, 2)

	assert.True(t, g.Forfeit("player2"))
}

func TestWordGame_MinLengthPerDifficulty(t *testing.T) {
	g := NewWordGame("host", 3)

	require.NoError(t, g.SetDifficulty("easy"))
	assert.Equal(t, 3, g.MinLength())
	require.NoError(t, g.SetDifficulty("medium"))
	assert.Equal(t, 4, g.MinLength())
	require.NoError(t, g.SetDifficulty("hard"))
	assert.Equal(t, 5, g.MinLength())
}

func TestWordGame_SurvivesJSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	g := startedGame(t, now)
	_, _, err := g.Submit("host", "stone", now)
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)

	restored := &WordGame{}
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, g.Scores, restored.Scores)
	assert.Equal(t, g.GameWords, restored.GameWords)
	_, _, err = restored.Submit("player2", "stone", now)
	assert.ErrorIs(t, err, ErrWordUsed)
}
