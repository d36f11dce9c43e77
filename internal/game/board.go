package game

import (
	"sort"
	"time"

	"github.com/wordroyale/wordroyale/internal/words"
)

// BoardStatus is the lifecycle of one player's puzzle. Transitions are
// monotonic: Playing moves to Solved or Failed and never back.
type BoardStatus string

const (
	BoardPlaying BoardStatus = "playing"
	BoardSolved  BoardStatus = "solved"
	BoardFailed  BoardStatus = "failed"
)

// Board is one player's puzzle instance for one round: the played rows plus
// every piece of letter knowledge derived from them. The owning room's lock
// guards all mutation.
type Board struct {
	Rows []*Row `json:"rows"`

	// Adjustments charged since the last row, folded into the next row
	// played.
	CurrentAdjustments []PointAdjustment `json:"currentRowAdjustments"`

	CorrectLetters      []LetterPosition      `json:"correctLetters"`
	PresentLetters      []LetterPosition      `json:"presentLetters"`
	AbsentLetters       []string              `json:"absentLetters"`
	PresentLetterCounts map[string]int        `json:"presentLetterCounts"`
	LetterStatuses      map[string]TileStatus `json:"letterStatuses"`

	// KnownTileHashes maps a tile's StatusHash to its letter, letting the
	// client resolve identity hints it has already earned the answer to.
	KnownTileHashes map[string]string `json:"knownTileHashes"`

	Status           BoardStatus `json:"status"`
	SolvedOrder      int         `json:"solvedOrder,omitempty"`
	CompletionTimeMs float64     `json:"completionTimeMs,omitempty"`
	Points           int         `json:"points"`
	Rank             int         `json:"rank"`
	IsJointRank      bool        `json:"isJointRank"`

	StartTime  time.Time `json:"startTime"`
	MaxGuesses int       `json:"maxGuesses"`

	// Deadlines holds one wall-clock deadline per expected guess. Boards
	// with a handicap get their own stretched schedule.
	Deadlines      []time.Time   `json:"guessDeadlines"`
	GuessTimeLimit time.Duration `json:"-"`
}

// NewBoard allocates a fresh board with its full deadline schedule: guess k
// is due at start + k*timeLimit.
func NewBoard(start time.Time, timeLimit time.Duration, maxGuesses int) *Board {
	deadlines := make([]time.Time, maxGuesses)
	for k := 1; k <= maxGuesses; k++ {
		deadlines[k-1] = start.Add(time.Duration(k) * timeLimit)
	}
	return &Board{
		PresentLetterCounts: make(map[string]int),
		LetterStatuses:      make(map[string]TileStatus),
		KnownTileHashes:     make(map[string]string),
		Status:              BoardPlaying,
		Rank:                1,
		IsJointRank:         true,
		StartTime:           start,
		MaxGuesses:          maxGuesses,
		Deadlines:           deadlines,
		GuessTimeLimit:      timeLimit,
	}
}

// IsFinished reports whether the board is terminal.
func (b *Board) IsFinished() bool {
	return b.Status == BoardSolved || b.Status == BoardFailed
}

// AddRow accepts a guess, classifies it, folds in pending adjustments,
// detects hard-mode errors against prior knowledge and updates the
// knowledge sets. playedOrder and solvedCount come from the round;
// schedule may be nil for unscored boards. Returns the hard-mode errors
// and whether the board's points changed.
func (b *Board) AddRow(guess, answer string, playedOrder, solvedCount, playerCount int, schedule *PointSchedule, wasForced bool, now time.Time) ([]TileError, bool, error) {
	if len(guess) != len(answer) {
		return nil, false, NewValidationError(CodeInvalidGuess, "word must be %d letters", len(answer))
	}
	if b.Status != BoardPlaying || len(b.Rows) >= b.MaxGuesses {
		return nil, false, NewStateConflictError(CodeBoardComplete, "board is already complete")
	}

	row := newRow(guess, answer, playedOrder, len(b.Rows)+1, b.CurrentAdjustments, wasForced, now)
	b.CurrentAdjustments = nil
	b.Rows = append(b.Rows, row)

	// Errors are judged against the knowledge the player had before this
	// row, so compute them before absorbing the row.
	row.Errors = b.rowErrors(row)
	b.absorbRow(row)

	if row.IsCorrect {
		b.Status = BoardSolved
		b.SolvedOrder = solvedCount + 1
		b.CompletionTimeMs = float64(now.Sub(b.StartTime)) / float64(time.Millisecond)
	} else if len(b.Rows) == b.MaxGuesses {
		b.Status = BoardFailed
	}

	pointsChanged := false
	if schedule != nil {
		row.addAdjustments(schedule.GuessAdjustments(row, b.SolvedOrder, playerCount))
		pointsChanged = b.recalcPoints()
	}

	return row.Errors, pointsChanged, nil
}

// absorbRow merges a played row into the knowledge sets.
func (b *Board) absorbRow(row *Row) {
	var rowPresent []string
	for _, tile := range row.Tiles {
		switch tile.Status {
		case TileCorrect:
			b.addCorrectLetter(tile.letterPosition())
			rowPresent = append(rowPresent, tile.Letter)
			b.LetterStatuses[tile.Letter] = TileCorrect
		case TilePresent:
			b.addPresentLetter(tile.letterPosition())
			rowPresent = append(rowPresent, tile.Letter)
			if _, known := b.LetterStatuses[tile.Letter]; !known {
				b.LetterStatuses[tile.Letter] = TilePresent
			}
		case TileAbsent:
			b.addAbsentLetter(tile.Letter)
			if _, known := b.LetterStatuses[tile.Letter]; !known {
				b.LetterStatuses[tile.Letter] = TileAbsent
			}
		}
		b.KnownTileHashes[tile.StatusHash()] = tile.Letter
	}

	counts := make(map[string]int)
	for _, letter := range rowPresent {
		counts[letter]++
	}
	for letter, count := range counts {
		if count > b.PresentLetterCounts[letter] {
			b.PresentLetterCounts[letter] = count
		}
	}
}

// rowErrors flags hard-mode violations: contradictions between the new row
// and knowledge accumulated from earlier rows and hints.
func (b *Board) rowErrors(row *Row) []TileError {
	var errors []TileError
	for _, tile := range row.Tiles {
		if tile.Status == TileCorrect {
			continue
		}
		if b.hasPresentLetter(tile.letterPosition()) {
			lp := tile.letterPosition()
			errors = append(errors, TileError{LetterPosition: &lp, Kind: PresentLetterPlayedInSamePlace})
		}
		if tile.Status == TileAbsent && b.hasAbsentLetter(tile.Letter) {
			lp := tile.letterPosition()
			errors = append(errors, TileError{LetterPosition: &lp, Kind: AbsentLetterPlayed})
		}
		if known, ok := b.correctLetterAt(tile.Position); ok {
			errors = append(errors, TileError{LetterPosition: &known, Kind: CorrectLetterMissed})
		}
	}

	for letter, minCount := range b.PresentLetterCounts {
		played := 0
		for _, tile := range row.Tiles {
			if tile.Letter == letter {
				played++
			}
		}
		if played >= minCount {
			continue
		}
		// Missed correct positions of this letter are already flagged
		// above; only charge for the remainder.
		missedCorrect := 0
		for _, e := range errors {
			if e.Kind == CorrectLetterMissed && e.LetterPosition != nil && e.LetterPosition.Letter == letter {
				missedCorrect++
			}
		}
		for i := 0; i < minCount-played-missedCorrect; i++ {
			errors = append(errors, TileError{
				LetterPosition: &LetterPosition{Letter: letter, Position: NoPosition},
				Kind:           PresentLetterMissed,
			})
		}
	}

	return errors
}

// GiveUp fails the board.
func (b *Board) GiveUp() error {
	if b.Status != BoardPlaying {
		return NewStateConflictError(CodeInvalidState, "cannot give up while board is %s", b.Status)
	}
	b.Status = BoardFailed
	return nil
}

// AddPointAdjustment charges or awards points between rows. Returns whether
// the total changed, so the round can recompute ranks.
func (b *Board) AddPointAdjustment(reason AdjustmentReason, points int, description, maskedDescription string) bool {
	b.CurrentAdjustments = append(b.CurrentAdjustments, PointAdjustment{
		Reason:            reason,
		Points:            points,
		Description:       description,
		MaskedDescription: maskedDescription,
	})
	return b.recalcPoints()
}

// RevealAbsentLetter records a hint-revealed absent letter.
func (b *Board) RevealAbsentLetter(letter string) {
	b.addAbsentLetter(letter)
	b.LetterStatuses[letter] = TileAbsent
}

// RevealPresentLetter records a hint-revealed present letter with no known
// position.
func (b *Board) RevealPresentLetter(letter string) {
	b.PresentLetters = append(b.PresentLetters, LetterPosition{Letter: letter, Position: NoPosition})
	b.PresentLetterCounts[letter]++
	if _, known := b.LetterStatuses[letter]; !known {
		b.LetterStatuses[letter] = TilePresent
	}
}

func (b *Board) recalcPoints() bool {
	prev := b.Points
	total := 0
	for _, row := range b.Rows {
		total += row.PointsAwarded
	}
	for _, a := range b.CurrentAdjustments {
		total += a.Points
	}
	b.Points = total
	return b.Points != prev
}

// Constraints expresses the board's letter knowledge in the form the word
// catalog filters on.
func (b *Board) Constraints() words.Constraints {
	c := words.Constraints{
		Correct:   make(map[int]rune),
		Excluded:  make(map[rune]map[int]struct{}),
		Absent:    make(map[rune]struct{}),
		MinCounts: make(map[rune]int),
	}
	for _, lp := range b.CorrectLetters {
		c.Correct[lp.Position] = rune(lp.Letter[0])
	}
	for _, lp := range b.PresentLetters {
		if lp.Position == NoPosition {
			continue
		}
		ch := rune(lp.Letter[0])
		if c.Excluded[ch] == nil {
			c.Excluded[ch] = make(map[int]struct{})
		}
		c.Excluded[ch][lp.Position] = struct{}{}
	}
	for _, letter := range b.AbsentLetters {
		c.Absent[rune(letter[0])] = struct{}{}
	}
	for letter, count := range b.PresentLetterCounts {
		c.MinCounts[rune(letter[0])] = count
	}
	return c
}

// NextDeadline returns the earliest deadline still ahead of now, or false
// when the board is finished or out of deadlines.
func (b *Board) NextDeadline(now time.Time) (time.Time, bool) {
	if b.IsFinished() {
		return time.Time{}, false
	}
	for _, d := range b.Deadlines {
		if d.After(now) {
			return d, true
		}
	}
	return time.Time{}, false
}

// ExpectedGuessCount is how many rows the schedule demands by now.
func (b *Board) ExpectedGuessCount(now time.Time) int {
	count := 0
	for _, d := range b.Deadlines {
		if !d.After(now) {
			count++
		}
	}
	return count
}

// DeadlineElapsed reports whether the board is behind schedule.
func (b *Board) DeadlineElapsed(now time.Time) bool {
	return !b.IsFinished() && len(b.Rows) < b.ExpectedGuessCount(now)
}

// MaskedBoard hides tile letters and pending hint descriptions.
type MaskedBoard struct {
	Rows             []MaskedRow `json:"rows"`
	Status           BoardStatus `json:"status"`
	SolvedOrder      int         `json:"solvedOrder,omitempty"`
	Points           int         `json:"points"`
	CurrentRowPoints int         `json:"currentRowPoints"`
	Rank             int         `json:"rank"`
	IsJointRank      bool        `json:"isJointRank"`
	CompletionTimeMs float64     `json:"completionTimeMs,omitempty"`
	Deadlines        []time.Time `json:"guessDeadlines"`
}

// Mask produces the opponent-visible view of the board. Masking is a pure
// projection: calling it twice on unchanged state yields identical views.
func (b *Board) Mask() *MaskedBoard {
	rows := make([]MaskedRow, len(b.Rows))
	for i, r := range b.Rows {
		rows[i] = r.Mask()
	}
	currentRowPoints := 0
	for _, a := range b.CurrentAdjustments {
		currentRowPoints += a.Points
	}
	return &MaskedBoard{
		Rows:             rows,
		Status:           b.Status,
		SolvedOrder:      b.SolvedOrder,
		Points:           b.Points,
		CurrentRowPoints: currentRowPoints,
		Rank:             b.Rank,
		IsJointRank:      b.IsJointRank,
		CompletionTimeMs: b.CompletionTimeMs,
		Deadlines:        b.Deadlines,
	}
}

func (b *Board) addCorrectLetter(lp LetterPosition) {
	for _, existing := range b.CorrectLetters {
		if existing == lp {
			return
		}
	}
	b.CorrectLetters = append(b.CorrectLetters, lp)
}

func (b *Board) addPresentLetter(lp LetterPosition) {
	for _, existing := range b.PresentLetters {
		if existing == lp {
			return
		}
	}
	b.PresentLetters = append(b.PresentLetters, lp)
}

func (b *Board) hasPresentLetter(lp LetterPosition) bool {
	for _, existing := range b.PresentLetters {
		if existing == lp {
			return true
		}
	}
	return false
}

func (b *Board) addAbsentLetter(letter string) {
	if b.hasAbsentLetter(letter) {
		return
	}
	b.AbsentLetters = append(b.AbsentLetters, letter)
	sort.Strings(b.AbsentLetters)
}

func (b *Board) hasAbsentLetter(letter string) bool {
	for _, existing := range b.AbsentLetters {
		if existing == letter {
			return true
		}
	}
	return false
}

func (b *Board) correctLetterAt(position int) (LetterPosition, bool) {
	for _, lp := range b.CorrectLetters {
		if lp.Position == position {
			return lp, true
		}
	}
	return LetterPosition{}, false
}
