package game

import (
	"fmt"
	"math"
)

// ScaleType selects how order-based awards scale with the field size.
type ScaleType string

const (
	// ScaleFixed reads points straight from an ordered table.
	ScaleFixed ScaleType = "fixed"
	// ScaleDynamic scales a base award by finishing order relative to the
	// player count.
	ScaleDynamic ScaleType = "dynamic"
)

// PointSchedule parameterises scoring. It is pure configuration: all
// computation lives in the methods below, which never mutate the schedule.
type PointSchedule struct {
	ScaleType ScaleType `json:"scaleType"`

	// ValidGuessOrderPoints[guessNumber-1][playedOrder-1], fixed scale only.
	ValidGuessOrderPoints [][]int `json:"validGuessOrderPoints"`
	// FirstValidGuessPoints[guessNumber-1] is the dynamic-scale base award
	// for making a clean guess before other players.
	FirstValidGuessPoints []int `json:"firstValidGuessPoints"`

	// SolveOrderPoints[solvedOrder-1], fixed scale only.
	SolveOrderPoints []int `json:"solveOrderPoints"`
	// FirstSolvePoints is the dynamic-scale base award for solving first.
	FirstSolvePoints int `json:"firstSolvePoints"`

	// SolveGuessNumberPoints[guessNumber-1] rewards solving in few guesses.
	SolveGuessNumberPoints []int `json:"solveGuessNumberPoints"`

	HardModeErrorPoints map[HardModeError]int `json:"hardModeErrorPoints"`

	SuggestedGuessCost int `json:"suggestedGuessCost"`
	RevealAbsentCost   int `json:"revealAbsentCost"`
	RevealPresentCost  int `json:"revealPresentCost"`
}

// DefaultPointSchedule returns the standard dynamic-scale schedule.
func DefaultPointSchedule() *PointSchedule {
	return &PointSchedule{
		ScaleType: ScaleDynamic,
		ValidGuessOrderPoints: [][]int{
			{0},
			{20, 15, 10, 5, 0},
			{20, 15, 10, 5, 0},
			{20, 15, 10, 5, 0},
			{0},
			{0},
		},
		FirstValidGuessPoints:  []int{0, 20, 20, 20, 0, 0},
		SolveOrderPoints:       []int{200, 150, 100, 50, 20, 10},
		FirstSolvePoints:       200,
		SolveGuessNumberPoints: []int{250, 200, 150, 100, 80, 50},
		HardModeErrorPoints: map[HardModeError]int{
			AbsentLetterPlayed:             -5,
			CorrectLetterMissed:            -10,
			PresentLetterMissed:            -10,
			PresentLetterPlayedInSamePlace: -10,
		},
		SuggestedGuessCost: 50,
		RevealAbsentCost:   10,
		RevealPresentCost:  100,
	}
}

// GuessAdjustments computes every scoring delta earned or lost by a freshly
// played row. solvedOrder is the board's finish order (0 while unsolved).
// Awards are computed once at submission and never rewritten.
func (s *PointSchedule) GuessAdjustments(row *Row, solvedOrder, playerCount int) []PointAdjustment {
	var adjustments []PointAdjustment

	if row.IsCorrect && solvedOrder != 0 {
		guessPoints := clampIndex(s.SolveGuessNumberPoints, row.GuessNumber)
		if guessPoints != 0 {
			adjustments = append(adjustments, PointAdjustment{
				Reason:      AdjustSolveGuessNumber,
				Points:      guessPoints,
				Description: fmt.Sprintf("Solved in %d guesses", row.GuessNumber),
			})
		}
		orderPoints := s.solveOrderPoints(solvedOrder, playerCount)
		if orderPoints != 0 {
			adjustments = append(adjustments, PointAdjustment{
				Reason:      AdjustSolveOrder,
				Points:      orderPoints,
				Description: fmt.Sprintf("Solved %s", ordinal(solvedOrder)),
			})
		}
	}

	for _, tileErr := range row.Errors {
		adjustments = append(adjustments, PointAdjustment{
			Reason:            AdjustHardModeError,
			Points:            s.HardModeErrorPoints[tileErr.Kind],
			Description:       tileErr.String(),
			MaskedDescription: tileErr.MaskedString(),
		})
	}

	if len(row.Errors) == 0 && row.PlayedOrder != 0 {
		orderPoints := s.validGuessOrderPoints(row.GuessNumber, row.PlayedOrder, playerCount)
		if orderPoints != 0 {
			adjustments = append(adjustments, PointAdjustment{
				Reason:      AdjustValidGuessOrder,
				Points:      orderPoints,
				Description: fmt.Sprintf("Made %s guess %s", ordinal(row.GuessNumber), ordinal(row.PlayedOrder)),
			})
		}
	}

	return adjustments
}

func (s *PointSchedule) validGuessOrderPoints(guessNumber, playedOrder, playerCount int) int {
	switch s.ScaleType {
	case ScaleFixed:
		table := s.ValidGuessOrderPoints[min(guessNumber, len(s.ValidGuessOrderPoints))-1]
		if playedOrder <= len(table) {
			return table[playedOrder-1]
		}
		return 0
	default:
		base := clampIndex(s.FirstValidGuessPoints, guessNumber)
		return int(math.Round(float64(base) * orderRatio(playedOrder, playerCount)))
	}
}

func (s *PointSchedule) solveOrderPoints(solvedOrder, playerCount int) int {
	switch s.ScaleType {
	case ScaleFixed:
		if solvedOrder <= len(s.SolveOrderPoints) {
			return s.SolveOrderPoints[solvedOrder-1]
		}
		return 0
	default:
		return int(math.Round(float64(s.FirstSolvePoints) * orderRatio(solvedOrder, playerCount)))
	}
}

// orderRatio maps a 1-based finishing order onto [0,1]: first of N gets the
// full award, last gets nothing, the rest fall linearly in between. A lone
// player always gets the full award.
func orderRatio(order, playerCount int) float64 {
	if playerCount == 1 {
		return 1
	}
	return float64(playerCount-order) / float64(playerCount-1)
}

// clampIndex reads table[i-1], clamping to the last entry when i runs past
// the end.
func clampIndex(table []int, i int) int {
	if len(table) == 0 {
		return 0
	}
	if i > len(table) {
		return table[len(table)-1]
	}
	return table[i-1]
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
