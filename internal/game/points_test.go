package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRatio(t *testing.T) {
	tests := []struct {
		order, playerCount int
		want               float64
	}{
		{1, 1, 1.0},
		{1, 2, 1.0},
		{2, 2, 0.0},
		{1, 4, 1.0},
		{2, 4, 2.0 / 3.0},
		{3, 4, 1.0 / 3.0},
		{4, 4, 0.0},
	}
	for _, tt := range tests {
		got := orderRatio(tt.order, tt.playerCount)
		assert.InDelta(t, tt.want, got, 1e-9, "order %d of %d", tt.order, tt.playerCount)
	}
}

func TestClampIndex(t *testing.T) {
	table := []int{250, 200, 150}
	assert.Equal(t, 250, clampIndex(table, 1))
	assert.Equal(t, 150, clampIndex(table, 3))
	assert.Equal(t, 150, clampIndex(table, 9), "reads clamp to the last entry")
	assert.Equal(t, 0, clampIndex(nil, 1))
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, "1st", ordinal(1))
	assert.Equal(t, "2nd", ordinal(2))
	assert.Equal(t, "3rd", ordinal(3))
	assert.Equal(t, "4th", ordinal(4))
	assert.Equal(t, "11th", ordinal(11))
	assert.Equal(t, "12th", ordinal(12))
	assert.Equal(t, "21st", ordinal(21))
}

func TestGuessAdjustmentsSolve(t *testing.T) {
	schedule := DefaultPointSchedule()
	row := newRow("blame", "blame", 0, 3, nil, false, time.Now())
	require.True(t, row.IsCorrect)

	// Sole player solving on guess 3: full solve award plus guess-number
	// points.
	adjustments := schedule.GuessAdjustments(row, 1, 1)
	require.Len(t, adjustments, 2)
	assert.Equal(t, AdjustSolveGuessNumber, adjustments[0].Reason)
	assert.Equal(t, 150, adjustments[0].Points)
	assert.Equal(t, AdjustSolveOrder, adjustments[1].Reason)
	assert.Equal(t, 200, adjustments[1].Points)
}

func TestGuessAdjustmentsSolveOrderScales(t *testing.T) {
	schedule := DefaultPointSchedule()
	row := newRow("blame", "blame", 0, 1, nil, false, time.Now())

	// Last of three solvers gets nothing for order, still gets the
	// guess-number award.
	adjustments := schedule.GuessAdjustments(row, 3, 3)
	require.Len(t, adjustments, 1)
	assert.Equal(t, AdjustSolveGuessNumber, adjustments[0].Reason)
	assert.Equal(t, 250, adjustments[0].Points)
}

func TestGuessAdjustmentsHardModePenalties(t *testing.T) {
	schedule := DefaultPointSchedule()
	row := newRow("slate", "blame", 1, 2, nil, false, time.Now())
	row.Errors = []TileError{
		{LetterPosition: &LetterPosition{Letter: "q", Position: 0}, Kind: AbsentLetterPlayed},
		{LetterPosition: &LetterPosition{Letter: "b", Position: 0}, Kind: CorrectLetterMissed},
	}

	adjustments := schedule.GuessAdjustments(row, 0, 2)
	require.Len(t, adjustments, 2, "errors suppress the valid-guess-order bonus")
	assert.Equal(t, -5, adjustments[0].Points)
	assert.Equal(t, -10, adjustments[1].Points)
	assert.NotEmpty(t, adjustments[0].MaskedDescription, "penalty text has a letter-free variant")
}

func TestGuessAdjustmentsValidGuessOrder(t *testing.T) {
	schedule := DefaultPointSchedule()

	// Second guess, played first of two players: full base of 20.
	row := newRow("slate", "blame", 1, 2, nil, false, time.Now())
	adjustments := schedule.GuessAdjustments(row, 0, 2)
	require.Len(t, adjustments, 1)
	assert.Equal(t, AdjustValidGuessOrder, adjustments[0].Reason)
	assert.Equal(t, 20, adjustments[0].Points)

	// Played order zeroed (a faster player already solved): no bonus.
	row = newRow("slate", "blame", 0, 2, nil, false, time.Now())
	assert.Empty(t, schedule.GuessAdjustments(row, 0, 2))

	// Guess numbers past the table earn nothing on the default schedule.
	row = newRow("slate", "blame", 1, 6, nil, false, time.Now())
	assert.Empty(t, schedule.GuessAdjustments(row, 0, 2))
}

func TestGuessAdjustmentsFixedScale(t *testing.T) {
	schedule := DefaultPointSchedule()
	schedule.ScaleType = ScaleFixed

	row := newRow("blame", "blame", 0, 1, nil, false, time.Now())
	adjustments := schedule.GuessAdjustments(row, 2, 5)
	require.Len(t, adjustments, 2)
	assert.Equal(t, 250, adjustments[0].Points, "solved on guess 1")
	assert.Equal(t, 150, adjustments[1].Points, "second solver from the fixed table")

	// Orders past the fixed table award nothing.
	adjustments = schedule.GuessAdjustments(row, 7, 9)
	require.Len(t, adjustments, 1)
	assert.Equal(t, AdjustSolveGuessNumber, adjustments[0].Reason)
}
