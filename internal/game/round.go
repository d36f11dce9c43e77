package game

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/wordroyale/wordroyale/internal/words"
)

// RoundStatus is the round state machine. Transitions only move forward,
// with the single exception of Ready regressing to Waiting when a player
// joins, disconnects or un-readies before the start.
type RoundStatus string

const (
	// RoundWaiting: waiting for players to be ready.
	RoundWaiting RoundStatus = "waiting"
	// RoundReady: all connected players ready, waiting for a start vote.
	RoundReady RoundStatus = "ready"
	// RoundStarting: counting down to the start.
	RoundStarting RoundStatus = "starting"
	RoundPlaying  RoundStatus = "playing"
	// RoundFinished: every board terminal, waiting for the next round.
	RoundFinished RoundStatus = "finished"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RoundState aggregates every player's board for one round of one room.
// It is not self-locking: the owning room serializes access.
type RoundState struct {
	// Answer is only serialized in unmasked projections, which are sent
	// exclusively to audiences allowed to see it.
	Answer string `json:"correctAnswer,omitempty"`

	Players     []*Player   `json:"players"`
	Status      RoundStatus `json:"status"`
	StartTime   time.Time   `json:"startTime,omitzero"`
	EndTime     time.Time   `json:"endTime,omitzero"`
	RoundNumber int         `json:"roundNumber"`
	MaxGuesses  int         `json:"maxGuesses"`
	WordLength  int         `json:"wordLength"`

	params   Parameters
	schedule *PointSchedule
	catalog  *words.Catalog
	rng      *rand.Rand
}

// NewRoundState creates the first round of a room.
func NewRoundState(params Parameters, schedule *PointSchedule, catalog *words.Catalog, rng *rand.Rand) *RoundState {
	return &RoundState{
		Status:      RoundWaiting,
		RoundNumber: 1,
		MaxGuesses:  params.MaxGuesses,
		params:      params,
		schedule:    schedule,
		catalog:     catalog,
		rng:         rng,
	}
}

// NextRound carries the players forward into a fresh round. The new round
// starts Ready: everyone who stayed for another round is presumed willing.
func (r *RoundState) NextRound(params Parameters) *RoundState {
	next := &RoundState{
		Status:      RoundReady,
		RoundNumber: r.RoundNumber + 1,
		MaxGuesses:  params.MaxGuesses,
		params:      params,
		schedule:    r.schedule,
		catalog:     r.catalog,
		rng:         r.rng,
	}
	for _, p := range r.Players {
		next.Players = append(next.Players, p.CopyForNewRound())
	}
	next.RecalculateRanking()
	return next
}

// ApplyParameters updates the round's configuration. Only allowed before
// boards exist; mid-round changes wait for the next round.
func (r *RoundState) ApplyParameters(params Parameters) error {
	if r.Status == RoundStarting || r.Status == RoundPlaying {
		return NewStateConflictError(CodeInvalidState, "cannot change parameters while a round is in play")
	}
	r.params = params
	r.MaxGuesses = params.MaxGuesses
	return nil
}

// Player finds a player by alias.
func (r *RoundState) Player(alias string) (*Player, bool) {
	for _, p := range r.Players {
		if p.Alias == alias {
			return p, true
		}
	}
	return nil, false
}

func (r *RoundState) board(alias string) (*Board, error) {
	p, ok := r.Player(alias)
	if !ok || p.Board == nil {
		return nil, NewNotFoundError(CodePlayerNotFound, "no board for %q", alias)
	}
	return p.Board, nil
}

// RegisterPlayer adds a player or reconnects an existing alias. An alias
// held by a live different connection is taken; a disconnected player may
// resume their seat from a new connection.
func (r *RoundState) RegisterPlayer(alias, connectionID string, now time.Time) (*Player, error) {
	if existing, ok := r.Player(alias); ok {
		if existing.IsBot {
			return nil, NewValidationError(CodeAliasTaken, "alias %q is taken", alias)
		}
		if existing.IsConnected && existing.ConnectionID != connectionID {
			return nil, NewValidationError(CodeAliasTaken, "alias %q is taken", alias)
		}
		existing.ConnectionID = connectionID
		existing.IsConnected = true
		r.refreshReadiness()
		return existing, nil
	}

	player := &Player{
		Alias:        alias,
		ConnectionID: connectionID,
		IsConnected:  true,
		Rank:         1,
		IsJointRank:  true,
	}
	r.Players = append(r.Players, player)
	r.RecalculateRanking()

	switch r.Status {
	case RoundReady:
		r.Status = RoundWaiting
	case RoundStarting:
		player.Board = NewBoard(r.StartTime, r.params.TimeLimitFor(alias), r.MaxGuesses)
	case RoundPlaying, RoundFinished:
		// Late joiners get a board immediately so they can play along.
		player.Board = NewBoard(now, r.params.TimeLimitFor(alias), r.MaxGuesses)
	}
	return player, nil
}

// RegisterBot seats a bot. Bots are always ready and never block the start.
func (r *RoundState) RegisterBot(alias string, now time.Time) (*Player, error) {
	if _, ok := r.Player(alias); ok {
		return nil, NewValidationError(CodeAliasTaken, "alias %q is taken", alias)
	}
	player := &Player{
		Alias:       alias,
		IsBot:       true,
		IsConnected: true,
		Ready:       true,
		Rank:        1,
		IsJointRank: true,
	}
	r.Players = append(r.Players, player)
	r.RecalculateRanking()

	switch r.Status {
	case RoundStarting:
		player.Board = NewBoard(r.StartTime, r.params.TimeLimitFor(alias), r.MaxGuesses)
	case RoundPlaying, RoundFinished:
		player.Board = NewBoard(now, r.params.TimeLimitFor(alias), r.MaxGuesses)
	}
	r.refreshReadiness()
	return player, nil
}

// RemovePlayer drops a player from the round. Returns whether the removal
// finished the round (the remaining boards were all terminal).
func (r *RoundState) RemovePlayer(alias string, now time.Time) (*Player, bool, error) {
	for i, p := range r.Players {
		if p.Alias != alias {
			continue
		}
		r.Players = append(r.Players[:i], r.Players[i+1:]...)
		finished := false
		if r.Status == RoundPlaying && r.allBoardsFinished() {
			r.Finish(now)
			finished = true
		}
		r.refreshReadiness()
		return p, finished, nil
	}
	return nil, false, NewNotFoundError(CodePlayerNotFound, "player %q not found", alias)
}

// SetConnected flips a player's connection flag, regressing Ready to
// Waiting if the departure breaks readiness.
func (r *RoundState) SetConnected(alias string, connected bool) {
	if p, ok := r.Player(alias); ok {
		p.IsConnected = connected
		if !connected {
			p.Ready = false
		}
		r.refreshReadiness()
	}
}

// SetReady records a player's ready toggle.
func (r *RoundState) SetReady(alias string, ready bool) error {
	if r.Status != RoundWaiting && r.Status != RoundReady {
		return NewStateConflictError(CodeInvalidState, "cannot change readiness while round is %s", r.Status)
	}
	p, ok := r.Player(alias)
	if !ok {
		return NewNotFoundError(CodePlayerNotFound, "player %q not found", alias)
	}
	p.Ready = ready
	r.refreshReadiness()
	return nil
}

// refreshReadiness moves Waiting to Ready when every connected human is
// ready and somebody is seated, and regresses Ready to Waiting otherwise.
func (r *RoundState) refreshReadiness() {
	switch r.Status {
	case RoundWaiting:
		if r.everyoneReady() {
			r.Status = RoundReady
		}
	case RoundReady:
		if !r.everyoneReady() {
			r.Status = RoundWaiting
		}
	}
}

func (r *RoundState) everyoneReady() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.IsBot && p.IsConnected && !p.Ready {
			return false
		}
	}
	return true
}

// Start fixes the round's answer, allocates every player's board with its
// deadline schedule anchored at startTime, and enters Starting. The caller
// owns the countdown timer that later flips the round to Playing.
func (r *RoundState) Start(startTime time.Time) error {
	switch r.Status {
	case RoundWaiting:
		return NewStateConflictError(CodeInvalidState, "cannot start: not everyone is ready")
	case RoundStarting:
		return NewStateConflictError(CodeInvalidState, "round is already starting")
	case RoundPlaying:
		return NewStateConflictError(CodeInvalidState, "cannot start while a round is in play")
	}

	answer, err := r.catalog.RandomAnswer(r.params.AnswerList, r.rng)
	if err != nil {
		return err
	}
	r.Answer = answer
	r.WordLength = len(answer)
	r.Status = RoundStarting
	r.StartTime = startTime

	for _, p := range r.Players {
		p.Board = NewBoard(startTime, r.params.TimeLimitFor(p.Alias), r.MaxGuesses)
	}
	return nil
}

// BeginPlay flips Starting to Playing when the countdown elapses.
func (r *RoundState) BeginPlay() error {
	if r.Status != RoundStarting {
		return NewStateConflictError(CodeInvalidState, "cannot begin play while round is %s", r.Status)
	}
	r.Status = RoundPlaying
	return nil
}

// PlayGuess applies one player's guess. expectedGuessNumber guards against
// double-submits from a stale client. Returns the board and whether this
// guess finished the round.
func (r *RoundState) PlayGuess(alias, guess string, expectedGuessNumber int, now time.Time) (*Board, bool, error) {
	if r.Status != RoundPlaying {
		return nil, false, NewStateConflictError(CodeInvalidState, "cannot play a guess while round is %s", r.Status)
	}
	board, err := r.board(alias)
	if err != nil {
		return nil, false, err
	}
	guessNumber := len(board.Rows) + 1
	if guessNumber != expectedGuessNumber {
		return nil, false, NewStateConflictError(CodeGuessOutOfSync,
			"guess number %d is out of sync with server (%d)", expectedGuessNumber, guessNumber)
	}

	playedOrder := r.playedOrder(guessNumber)
	solvedCount := r.solvedCount()

	_, pointsChanged, err := board.AddRow(guess, r.Answer, playedOrder, solvedCount, len(r.Players), r.schedule, false, now)
	if err != nil {
		return nil, false, err
	}
	if pointsChanged {
		r.RecalculateRanking()
	}

	finished := false
	if board.IsFinished() && r.allBoardsFinished() {
		r.Finish(now)
		finished = true
	}
	return board, finished, nil
}

// playedOrder ranks a guess among all players reaching guessNumber; 0 once
// a faster player has already solved with fewer rows, making the order
// irrelevant for scoring.
func (r *RoundState) playedOrder(guessNumber int) int {
	reached := 0
	for _, p := range r.Players {
		if p.Board == nil {
			continue
		}
		if p.Board.Status == BoardSolved && len(p.Board.Rows) < guessNumber {
			return 0
		}
		if len(p.Board.Rows) >= guessNumber {
			reached++
		}
	}
	return reached + 1
}

func (r *RoundState) solvedCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Board != nil && p.Board.Status == BoardSolved {
			count++
		}
	}
	return count
}

// GiveUp fails the player's board and finishes the round if it was the
// last one playing.
func (r *RoundState) GiveUp(alias string, now time.Time) (*Board, bool, error) {
	if r.Status != RoundPlaying {
		return nil, false, NewStateConflictError(CodeInvalidState, "cannot give up while round is %s", r.Status)
	}
	board, err := r.board(alias)
	if err != nil {
		return nil, false, err
	}
	if err := board.GiveUp(); err != nil {
		return nil, false, err
	}
	finished := false
	if r.allBoardsFinished() {
		r.Finish(now)
		finished = true
	}
	return board, finished, nil
}

// SuggestGuess returns a word consistent with everything the board knows,
// charging the schedule's cost. ok is false when no consistent word
// remains.
func (r *RoundState) SuggestGuess(alias string) (string, bool, error) {
	if r.Status != RoundPlaying {
		return "", false, NewStateConflictError(CodeInvalidState, "cannot suggest a guess while round is %s", r.Status)
	}
	board, err := r.board(alias)
	if err != nil {
		return "", false, err
	}
	suggestion, ok := r.suggestFor(board)
	if !ok {
		return "", false, nil
	}
	if cost := r.schedule.SuggestedGuessCost; cost > 0 {
		if board.AddPointAdjustment(AdjustGuessSuggested, -cost, "Guess suggested", "Guess suggested") {
			r.RecalculateRanking()
		}
	}
	return suggestion, true, nil
}

// suggestFor picks a random valid guess for the board, never the answer.
func (r *RoundState) suggestFor(board *Board) (string, bool) {
	candidates := r.catalog.PossibleGuesses(board.Constraints(), r.WordLength)
	filtered := candidates[:0:0]
	for _, w := range candidates {
		if w != r.Answer {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return "", false
	}
	return filtered[r.rng.IntN(len(filtered))], true
}

// ForceGuesses catches up every board that is behind its deadline
// schedule: a forced row when a suggestion exists and a row remains before
// the last, otherwise a free absent-letter reveal as consolation. Returns
// the impacted players.
func (r *RoundState) ForceGuesses(now time.Time) []*Player {
	if r.Status != RoundPlaying {
		return nil
	}
	var impacted []*Player
	pointsChanged := false
	for _, p := range r.Players {
		if p.Board == nil || !p.Board.DeadlineElapsed(now) {
			continue
		}
		impacted = append(impacted, p)

		suggestion, ok := r.suggestFor(p.Board)
		if ok && len(p.Board.Rows) < r.MaxGuesses-1 {
			if cost := r.schedule.SuggestedGuessCost; cost != 0 {
				if p.Board.AddPointAdjustment(AdjustGuessSuggested, -cost, "Word not played in time", "Word not played in time") {
					pointsChanged = true
				}
			}
			// Forced rows are unscored: no order bonus, no penalties.
			p.Board.AddRow(suggestion, r.Answer, 0, r.solvedCount(), len(r.Players), nil, true, now)
		} else {
			if r.revealAbsentOn(p.Board, false) {
				pointsChanged = true
			}
		}
	}
	if pointsChanged {
		r.RecalculateRanking()
	}
	return impacted
}

// RevealAbsentLetter uncovers a random letter that is neither in the
// answer nor already known absent, at the schedule's cost.
func (r *RoundState) RevealAbsentLetter(alias string) (*Board, error) {
	if r.Status != RoundPlaying {
		return nil, NewStateConflictError(CodeInvalidState, "cannot reveal a letter while round is %s", r.Status)
	}
	board, err := r.board(alias)
	if err != nil {
		return nil, err
	}
	if r.revealAbsentOn(board, true) {
		r.RecalculateRanking()
	}
	return board, nil
}

func (r *RoundState) revealAbsentOn(board *Board, charge bool) bool {
	var remaining []string
	for _, ch := range alphabet {
		letter := string(ch)
		if board.hasAbsentLetter(letter) || strings.Contains(r.Answer, letter) {
			continue
		}
		remaining = append(remaining, letter)
	}
	if len(remaining) == 0 {
		return false
	}
	board.RevealAbsentLetter(remaining[r.rng.IntN(len(remaining))])
	if charge {
		if cost := r.schedule.RevealAbsentCost; cost != 0 {
			return board.AddPointAdjustment(AdjustAbsentLetterRevealed, -cost, "Absent letter revealed", "Absent letter revealed")
		}
	}
	return false
}

// RevealPresentLetter uncovers one answer letter the board does not yet
// know about, at the schedule's cost.
func (r *RoundState) RevealPresentLetter(alias string) (*Board, error) {
	if r.Status != RoundPlaying {
		return nil, NewStateConflictError(CodeInvalidState, "cannot reveal a letter while round is %s", r.Status)
	}
	board, err := r.board(alias)
	if err != nil {
		return nil, err
	}

	// The answer's letters minus every instance already known present.
	remaining := strings.Split(r.Answer, "")
	for letter, count := range board.PresentLetterCounts {
		for i := 0; i < count; i++ {
			for j, rem := range remaining {
				if rem == letter {
					remaining = append(remaining[:j], remaining[j+1:]...)
					break
				}
			}
		}
	}
	if len(remaining) == 0 {
		return board, nil
	}

	board.RevealPresentLetter(remaining[r.rng.IntN(len(remaining))])
	if cost := r.schedule.RevealPresentCost; cost != 0 {
		if board.AddPointAdjustment(AdjustPresentLetterRevealed, -cost, "Present letter revealed", "Present letter revealed") {
			r.RecalculateRanking()
		}
	}
	return board, nil
}

// BotDelay maps a bot's ability onto its thinking time: three seconds for
// the opening word, otherwise a slide between a floor and just past the
// room's guess time limit, faster for higher ability.
func (r *RoundState) BotDelay(board *Board, ability float64) time.Duration {
	if len(board.Rows) == 0 {
		return 3 * time.Second
	}
	const minSeconds = 6.0
	maxSeconds := r.params.GuessTimeLimit.Seconds() * 1.1
	if maxSeconds < minSeconds {
		maxSeconds = minSeconds
	}
	seconds := (maxSeconds-minSeconds)*(1-ability) + minSeconds
	return time.Duration(seconds * float64(time.Second))
}

// NextDeadline is the earliest pending guess deadline across unfinished
// boards; the room arms its forcing timer with it.
func (r *RoundState) NextDeadline(now time.Time) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, p := range r.Players {
		if p.Board == nil {
			continue
		}
		if d, ok := p.Board.NextDeadline(now); ok && (!found || d.Before(earliest)) {
			earliest = d
			found = true
		}
	}
	return earliest, found
}

// Finish ends the round: board points bank into cumulative player points
// and final ranks are computed by strict descending comparison.
func (r *RoundState) Finish(now time.Time) {
	r.Status = RoundFinished
	r.EndTime = now

	for _, p := range r.Players {
		if p.Board != nil {
			p.Points += p.Board.Points
		}
	}
	for _, p := range r.Players {
		higher, equal := 0, 0
		for _, other := range r.Players {
			if other.Points > p.Points {
				higher++
			}
			if other.Points == p.Points {
				equal++
			}
		}
		p.Rank = higher + 1
		p.IsJointRank = equal > 1
	}
}

// RecalculateRanking rebuilds every board's in-round rank. Cheap and
// rerun on any point-affecting event.
func (r *RoundState) RecalculateRanking() {
	for _, p := range r.Players {
		if p.Board == nil {
			continue
		}
		higher, equal := 0, 0
		for _, other := range r.Players {
			if other.Board == nil {
				continue
			}
			if other.Board.Points > p.Board.Points {
				higher++
			}
			if other.Board.Points == p.Board.Points {
				equal++
			}
		}
		p.Board.Rank = higher + 1
		p.Board.IsJointRank = equal > 1
	}
}

func (r *RoundState) allBoardsFinished() bool {
	for _, p := range r.Players {
		if p.Board == nil || !p.Board.IsFinished() {
			return false
		}
	}
	return true
}

// MaskedRoundState is the audience projection: no answer, masked boards.
type MaskedRoundState struct {
	Status      RoundStatus     `json:"status"`
	Players     []*MaskedPlayer `json:"players"`
	WordLength  int             `json:"wordLength"`
	MaxGuesses  int             `json:"maxGuesses"`
	StartTime   time.Time       `json:"startTime,omitzero"`
	EndTime     time.Time       `json:"endTime,omitzero"`
	RoundNumber int             `json:"roundNumber"`
}

func (r *RoundState) Mask() *MaskedRoundState {
	players := make([]*MaskedPlayer, len(r.Players))
	for i, p := range r.Players {
		players[i] = p.Mask()
	}
	return &MaskedRoundState{
		Status:      r.Status,
		Players:     players,
		WordLength:  r.WordLength,
		MaxGuesses:  r.MaxGuesses,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		RoundNumber: r.RoundNumber,
	}
}
