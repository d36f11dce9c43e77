package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordroyale/wordroyale/internal/randutil"
	"github.com/wordroyale/wordroyale/internal/words"
)

var t0 = time.Unix(2000, 0)

func newTestRound(t *testing.T, params Parameters, aliases ...string) *RoundState {
	t.Helper()
	catalog, err := words.NewCatalog()
	require.NoError(t, err)
	r := NewRoundState(params, DefaultPointSchedule(), catalog, randutil.New(1))
	for _, alias := range aliases {
		_, err := r.RegisterPlayer(alias, "conn-"+alias, t0)
		require.NoError(t, err)
	}
	return r
}

// startTestRound drives the round to Playing with a fixed answer.
func startTestRound(t *testing.T, r *RoundState, answer string) {
	t.Helper()
	for _, p := range r.Players {
		require.NoError(t, r.SetReady(p.Alias, true))
	}
	require.Equal(t, RoundReady, r.Status)
	require.NoError(t, r.Start(t0))
	r.Answer = answer
	r.WordLength = len(answer)
	require.NoError(t, r.BeginPlay())
}

func TestRoundReadiness(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice", "bob")
	assert.Equal(t, RoundWaiting, r.Status)

	require.NoError(t, r.SetReady("alice", true))
	assert.Equal(t, RoundWaiting, r.Status)
	require.NoError(t, r.SetReady("bob", true))
	assert.Equal(t, RoundReady, r.Status)

	// Un-readying regresses Ready to Waiting: the one allowed backward
	// transition.
	require.NoError(t, r.SetReady("bob", false))
	assert.Equal(t, RoundWaiting, r.Status)
	require.NoError(t, r.SetReady("bob", true))
	assert.Equal(t, RoundReady, r.Status)

	// So does a new joiner.
	_, err := r.RegisterPlayer("carol", "conn-carol", t0)
	require.NoError(t, err)
	assert.Equal(t, RoundWaiting, r.Status)

	// And a disconnect of the only unready player restores readiness.
	r.SetConnected("carol", false)
	assert.Equal(t, RoundReady, r.Status)
}

func TestRoundStartTransitions(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice")

	err := r.Start(t0)
	var gameErr *Error
	require.ErrorAs(t, err, &gameErr)
	assert.Equal(t, KindStateConflict, gameErr.Kind, "cannot start from Waiting")

	require.NoError(t, r.SetReady("alice", true))
	require.NoError(t, r.Start(t0))
	assert.Equal(t, RoundStarting, r.Status)
	assert.NotEmpty(t, r.Answer)
	assert.Equal(t, len(r.Answer), r.WordLength)
	require.NotNil(t, r.Players[0].Board)

	require.Error(t, r.Start(t0), "already starting")
	require.NoError(t, r.BeginPlay())
	assert.Equal(t, RoundPlaying, r.Status)
	require.Error(t, r.Start(t0), "already playing")
	require.Error(t, r.BeginPlay())
}

func TestRoundRegisterAlias(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice")

	// A live alias cannot be claimed from another connection.
	_, err := r.RegisterPlayer("alice", "conn-other", t0)
	var gameErr *Error
	require.ErrorAs(t, err, &gameErr)
	assert.Equal(t, CodeAliasTaken, gameErr.Code)

	// A disconnected player resumes their seat from a new connection.
	r.SetConnected("alice", false)
	p, err := r.RegisterPlayer("alice", "conn-new", t0)
	require.NoError(t, err)
	assert.True(t, p.IsConnected)
	assert.Equal(t, "conn-new", p.ConnectionID)
	assert.Len(t, r.Players, 1)

	_, err = r.RegisterBot("alice", t0)
	require.Error(t, err, "bot cannot take a player alias")
}

func TestRoundTwoPlayerScenario(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice", "bob")
	startTestRound(t, r, "blame")

	// Alice solves in 3, Bob burns all 6 guesses.
	play := func(alias, guess string, num int) bool {
		t.Helper()
		_, finished, err := r.PlayGuess(alias, guess, num, t0.Add(time.Duration(num)*time.Second))
		require.NoError(t, err)
		return finished
	}
	play("alice", "crate", 1)
	play("bob", "dusty", 1)
	play("alice", "slate", 2)
	play("bob", "dusty", 2)
	assert.False(t, play("alice", "blame", 3))
	alice, _ := r.Player("alice")
	assert.Equal(t, BoardSolved, alice.Board.Status)
	assert.Equal(t, 1, alice.Board.SolvedOrder)

	for num := 3; num <= 6; num++ {
		finished := play("bob", "dusty", num)
		assert.Equal(t, num == 6, finished)
	}

	bob, _ := r.Player("bob")
	assert.Equal(t, BoardFailed, bob.Board.Status)
	assert.Equal(t, RoundFinished, r.Status)
	assert.Equal(t, 1, alice.Rank)
	assert.False(t, alice.IsJointRank)
	assert.Equal(t, 2, bob.Rank)
	assert.False(t, bob.IsJointRank)
	assert.Greater(t, alice.Points, bob.Points)
}

func TestRoundGuessOutOfSync(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice")
	startTestRound(t, r, "blame")

	_, _, err := r.PlayGuess("alice", "crate", 2, t0)
	var gameErr *Error
	require.ErrorAs(t, err, &gameErr)
	assert.Equal(t, CodeGuessOutOfSync, gameErr.Code)

	alice, _ := r.Player("alice")
	assert.Empty(t, alice.Board.Rows)
}

func TestRoundPlayedOrder(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice", "bob")
	startTestRound(t, r, "blame")

	// Alice solves immediately.
	_, _, err := r.PlayGuess("alice", "blame", 1, t0)
	require.NoError(t, err)

	// Bob's first guess still has a meaningful order: alice needed just as
	// many rows.
	board, _, err := r.PlayGuess("bob", "dusty", 1, t0)
	require.NoError(t, err)
	assert.Equal(t, 2, board.Rows[0].PlayedOrder)

	// From guess two onward the answer was found with fewer rows, so the
	// order is nullified.
	_, _, err = r.PlayGuess("bob", "crown", 2, t0)
	require.NoError(t, err)
	assert.Zero(t, board.Rows[1].PlayedOrder)
}

func TestRoundGiveUpFinishes(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice", "bob")
	startTestRound(t, r, "blame")

	_, finished, err := r.GiveUp("alice", t0)
	require.NoError(t, err)
	assert.False(t, finished)

	board, finished, err := r.GiveUp("bob", t0)
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, BoardFailed, board.Status)
	assert.Equal(t, RoundFinished, r.Status)

	_, _, err = r.GiveUp("alice", t0)
	require.Error(t, err, "round no longer playing")
}

func TestRoundRemovePlayerFinishes(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice", "bob")
	startTestRound(t, r, "blame")

	_, _, err := r.PlayGuess("alice", "blame", 1, t0)
	require.NoError(t, err)
	assert.Equal(t, RoundPlaying, r.Status)

	// Removing the last unfinished board ends the round.
	_, finished, err := r.RemovePlayer("bob", t0)
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, RoundFinished, r.Status)
	assert.Len(t, r.Players, 1)
}

func TestRoundSuggestGuess(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice")
	startTestRound(t, r, "blame")

	suggestion, ok, err := r.SuggestGuess("alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, suggestion, 5)
	assert.NotEqual(t, "blame", suggestion, "the answer is never suggested")

	alice, _ := r.Player("alice")
	assert.Equal(t, -50, alice.Board.Points, "suggestion costs points")
}

func TestRoundReveals(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice")
	startTestRound(t, r, "blame")
	alice, _ := r.Player("alice")

	board, err := r.RevealAbsentLetter("alice")
	require.NoError(t, err)
	require.Len(t, board.AbsentLetters, 1)
	assert.NotContains(t, "blame", board.AbsentLetters[0])
	assert.Equal(t, -10, alice.Board.Points)

	board, err = r.RevealPresentLetter("alice")
	require.NoError(t, err)
	require.Len(t, board.PresentLetters, 1)
	assert.Contains(t, "blame", board.PresentLetters[0].Letter)
	assert.Equal(t, NoPosition, board.PresentLetters[0].Position)
	assert.Equal(t, -110, alice.Board.Points)
}

func TestRoundForceGuesses(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice", "bob")
	startTestRound(t, r, "blame")

	// Bob keeps up, alice stalls past the first deadline.
	_, _, err := r.PlayGuess("bob", "dusty", 1, t0.Add(10*time.Second))
	require.NoError(t, err)

	impacted := r.ForceGuesses(t0.Add(31 * time.Second))
	require.Len(t, impacted, 1)
	assert.Equal(t, "alice", impacted[0].Alias)

	board := impacted[0].Board
	require.Len(t, board.Rows, 1)
	assert.True(t, board.Rows[0].WasForced)
	assert.Zero(t, board.Rows[0].PlayedOrder, "forced rows carry no order bonus")
	assert.Equal(t, -50, board.Points, "the forced suggestion is charged")

	// Caught up now: a second call is a no-op.
	assert.Empty(t, r.ForceGuesses(t0.Add(31*time.Second)))
}

func TestRoundForceGuessesConsolationReveal(t *testing.T) {
	params := DefaultParameters()
	params.MaxGuesses = 2
	r := newTestRound(t, params, "alice")
	startTestRound(t, r, "blame")

	_, _, err := r.PlayGuess("alice", "dusty", 1, t0.Add(10*time.Second))
	require.NoError(t, err)
	alice, _ := r.Player("alice")
	absentBefore := len(alice.Board.AbsentLetters)

	// Only the final row remains, so instead of burning it the engine
	// reveals a free absent letter.
	impacted := r.ForceGuesses(t0.Add(61 * time.Second))
	require.Len(t, impacted, 1)
	assert.Len(t, alice.Board.Rows, 1)
	assert.Len(t, alice.Board.AbsentLetters, absentBefore+1)
	assert.Zero(t, alice.Board.Points, "the consolation reveal is free")
}

func TestRoundNextDeadline(t *testing.T) {
	params := DefaultParameters()
	params.HandicapSeconds = map[string]float64{"bob": 10}
	r := newTestRound(t, params, "alice", "bob")
	startTestRound(t, r, "blame")

	// Alice's schedule runs at 30s, bob's handicapped one at 40s.
	next, ok := r.NextDeadline(t0)
	require.True(t, ok)
	assert.Equal(t, t0.Add(30*time.Second), next)

	_, _, err := r.GiveUp("alice", t0)
	require.NoError(t, err)
	next, ok = r.NextDeadline(t0)
	require.True(t, ok)
	assert.Equal(t, t0.Add(40*time.Second), next, "finished boards drop out of the schedule")
}

func TestRoundBotDelay(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice")
	startTestRound(t, r, "blame")
	alice, _ := r.Player("alice")

	assert.Equal(t, 3*time.Second, r.BotDelay(alice.Board, 0.5), "opening word is quick")

	_, _, err := r.PlayGuess("alice", "dusty", 1, t0)
	require.NoError(t, err)

	fast := r.BotDelay(alice.Board, 1)
	slow := r.BotDelay(alice.Board, 0)
	assert.InDelta(t, 6.0, fast.Seconds(), 0.01)
	assert.InDelta(t, 33.0, slow.Seconds(), 0.01, "limit x1.1 for the weakest bot")
	assert.Less(t, fast, slow)
}

func TestRoundNextRound(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice", "bob")
	startTestRound(t, r, "blame")
	_, _, err := r.PlayGuess("alice", "blame", 1, t0)
	require.NoError(t, err)
	_, _, err = r.GiveUp("bob", t0)
	require.NoError(t, err)
	require.Equal(t, RoundFinished, r.Status)

	alice, _ := r.Player("alice")
	carried := alice.Points
	require.NotZero(t, carried)

	next := r.NextRound(DefaultParameters())
	assert.Equal(t, RoundReady, next.Status)
	assert.Equal(t, 2, next.RoundNumber)
	require.Len(t, next.Players, 2)

	nextAlice, _ := next.Player("alice")
	assert.Equal(t, carried, nextAlice.Points, "cumulative points carry forward")
	assert.Nil(t, nextAlice.Board, "boards reset between rounds")
}

func TestRoundLateJoinerGetsBoard(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice")
	startTestRound(t, r, "blame")

	p, err := r.RegisterPlayer("carol", "conn-carol", t0.Add(5*time.Second))
	require.NoError(t, err)
	require.NotNil(t, p.Board)
	assert.Equal(t, RoundPlaying, r.Status, "joining mid-round does not disturb the round")

	_, _, err = r.PlayGuess("carol", "dusty", 1, t0.Add(6*time.Second))
	require.NoError(t, err)
}

func TestRoundMask(t *testing.T) {
	r := newTestRound(t, DefaultParameters(), "alice", "bob")
	startTestRound(t, r, "blame")
	_, _, err := r.PlayGuess("alice", "crate", 1, t0)
	require.NoError(t, err)

	masked := r.Mask()
	assert.Equal(t, RoundPlaying, masked.Status)
	assert.Equal(t, 5, masked.WordLength)
	require.Len(t, masked.Players, 2)
	for _, p := range masked.Players {
		require.NotNil(t, p.Board)
	}
}
