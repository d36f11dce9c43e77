package game

import (
	"fmt"
	"time"
)

// HardModeError names a way a guess contradicts knowledge already revealed
// on the same board.
type HardModeError string

const (
	AbsentLetterPlayed             HardModeError = "absent_letter_played"
	PresentLetterPlayedInSamePlace HardModeError = "present_letter_played_in_same_place"
	CorrectLetterMissed            HardModeError = "correct_letter_missed"
	PresentLetterMissed            HardModeError = "present_letter_missed"
)

// TileError records one hard-mode violation on a played row. LetterPosition
// is nil when the error is not tied to a specific letter instance.
type TileError struct {
	LetterPosition *LetterPosition `json:"letterPosition,omitempty"`
	Kind           HardModeError   `json:"kind"`
}

func (e TileError) String() string {
	if e.LetterPosition != nil {
		return fmt.Sprintf("%s (%s)", e.Kind, e.LetterPosition.Letter)
	}
	return string(e.Kind)
}

// MaskedString drops the letter so the description can be shown to
// opponents.
func (e TileError) MaskedString() string { return string(e.Kind) }

// AdjustmentReason names why points were added to or removed from a row.
type AdjustmentReason string

const (
	AdjustGuessSuggested         AdjustmentReason = "guess_suggested"
	AdjustAbsentLetterRevealed   AdjustmentReason = "absent_letter_revealed"
	AdjustPresentLetterRevealed  AdjustmentReason = "present_letter_revealed"
	AdjustSolveOrder             AdjustmentReason = "solve_order"
	AdjustSolveGuessNumber       AdjustmentReason = "solve_guess_number"
	AdjustValidGuessOrder        AdjustmentReason = "valid_guess_order"
	AdjustHardModeError          AdjustmentReason = "hard_mode_error"
)

// PointAdjustment is one scoring delta with a human-readable description.
// MaskedDescription, when set, replaces Description in masked views so hint
// text cannot leak letters.
type PointAdjustment struct {
	Reason            AdjustmentReason `json:"reason"`
	Points            int              `json:"points"`
	Description       string           `json:"description,omitempty"`
	MaskedDescription string           `json:"-"`
}

func (a PointAdjustment) Mask() PointAdjustment {
	return PointAdjustment{Reason: a.Reason, Points: a.Points, Description: a.MaskedDescription}
}

// Row is one accepted guess. Tiles and classification are immutable; point
// adjustments may be appended until the row is scored.
type Row struct {
	Tiles     []Tile      `json:"tiles"`
	IsCorrect bool        `json:"isCorrect"`
	Errors    []TileError `json:"errors,omitempty"`
	PlayedAt  time.Time   `json:"playedAt"`

	// GuessNumber is 1-based. PlayedOrder is the player's order among all
	// players reaching this guess number, 0 once the answer has already
	// been found by a faster player.
	GuessNumber int `json:"guessNumber"`
	PlayedOrder int `json:"playedOrder,omitempty"`

	WasForced     bool              `json:"wasForced"`
	Adjustments   []PointAdjustment `json:"pointsAdjustments"`
	PointsAwarded int               `json:"pointsAwarded"`
}

func newRow(guess, answer string, playedOrder, guessNumber int, pending []PointAdjustment, wasForced bool, playedAt time.Time) *Row {
	r := &Row{
		Tiles:       classifyGuess(guess, answer),
		IsCorrect:   guess == answer,
		PlayedAt:    playedAt,
		GuessNumber: guessNumber,
		PlayedOrder: playedOrder,
		WasForced:   wasForced,
		Adjustments: append([]PointAdjustment{}, pending...),
	}
	for _, a := range pending {
		r.PointsAwarded += a.Points
	}
	return r
}

// classifyGuess assigns a status to every position. Exact matches are
// consumed first across the whole guess; remaining answer occurrences are
// then granted to non-matching positions left to right, so a repeated letter
// is Present only as many times as the answer still has unconsumed copies.
func classifyGuess(guess, answer string) []Tile {
	correctCount := make(map[byte]int)
	for i := 0; i < len(guess); i++ {
		if guess[i] == answer[i] {
			correctCount[guess[i]]++
		}
	}
	answerCount := make(map[byte]int)
	for i := 0; i < len(answer); i++ {
		answerCount[answer[i]]++
	}

	presentSoFar := make(map[byte]int)
	tiles := make([]Tile, len(guess))
	for i := 0; i < len(guess); i++ {
		ch := guess[i]
		status := TileAbsent
		switch {
		case ch == answer[i]:
			status = TileCorrect
		case answerCount[ch] > presentSoFar[ch]+correctCount[ch]:
			status = TilePresent
			presentSoFar[ch]++
		}
		tiles[i] = Tile{Letter: string(ch), Position: i, Status: status}
	}
	return tiles
}

// Word reassembles the guessed word from the tiles.
func (r *Row) Word() string {
	word := make([]byte, len(r.Tiles))
	for i, t := range r.Tiles {
		word[i] = t.Letter[0]
	}
	return string(word)
}

// WordHash is the identity hint for the whole row, used to hydrate a known
// word on an opponent's masked board.
func (r *Row) WordHash() string { return hashHex(r.Word()) }

func (r *Row) addAdjustments(adjustments []PointAdjustment) {
	r.Adjustments = append(r.Adjustments, adjustments...)
	r.PointsAwarded = 0
	for _, a := range r.Adjustments {
		r.PointsAwarded += a.Points
	}
}

// MaskedRow hides tile letters behind status hashes.
type MaskedRow struct {
	Tiles         []MaskedTile      `json:"tiles"`
	IsCorrect     bool              `json:"isCorrect"`
	PlayedAt      time.Time         `json:"playedAt"`
	GuessNumber   int               `json:"guessNumber"`
	PlayedOrder   int               `json:"playedOrder,omitempty"`
	PointsAwarded int               `json:"pointsAwarded"`
	Adjustments   []PointAdjustment `json:"pointsAdjustments"`
	WasForced     bool              `json:"wasForced"`
	WordHash      string            `json:"wordHash"`
}

func (r *Row) Mask() MaskedRow {
	tiles := make([]MaskedTile, len(r.Tiles))
	for i, t := range r.Tiles {
		tiles[i] = t.Mask()
	}
	adjustments := make([]PointAdjustment, len(r.Adjustments))
	for i, a := range r.Adjustments {
		adjustments[i] = a.Mask()
	}
	return MaskedRow{
		Tiles:         tiles,
		IsCorrect:     r.IsCorrect,
		PlayedAt:      r.PlayedAt,
		GuessNumber:   r.GuessNumber,
		PlayedOrder:   r.PlayedOrder,
		PointsAwarded: r.PointsAwarded,
		Adjustments:   adjustments,
		WasForced:     r.WasForced,
		WordHash:      r.WordHash(),
	}
}
