// Package game implements the round engine: boards, tile classification,
// scoring, ranking and the round state machine. All state here is plain data
// guarded by the owning room's lock; nothing in this package starts
// goroutines or performs I/O.
package game

import (
	"fmt"
	"hash/fnv"
)

// TileStatus is the classification of one guessed letter against the answer.
type TileStatus string

const (
	TileNone    TileStatus = "none"
	TileCorrect TileStatus = "correct"
	TilePresent TileStatus = "present"
	TileAbsent  TileStatus = "absent"
)

// LetterPosition identifies a letter at a board position. Position is -1
// when the position is unknown, e.g. a letter revealed by a hint.
type LetterPosition struct {
	Letter   string `json:"letter"`
	Position int    `json:"position"`
}

// NoPosition marks a LetterPosition with no known position.
const NoPosition = -1

// Tile is one classified letter of a played row. Immutable once created.
type Tile struct {
	Letter   string     `json:"letter"`
	Position int        `json:"position"`
	Status   TileStatus `json:"status"`
}

func (t Tile) letterPosition() LetterPosition {
	return LetterPosition{Letter: t.Letter, Position: t.Position}
}

// StatusHash is a stable non-cryptographic identity hint for this tile.
// Clients use it to recognise an already-known tile on an opponent's masked
// board without learning the letter. Absent tiles hash letter and status
// only: the position of an absent letter carries no information.
func (t Tile) StatusHash() string {
	switch t.Status {
	case TileAbsent:
		return hashHex(t.Letter + string(t.Status))
	default:
		return hashHex(fmt.Sprintf("%s%s%d", t.Letter, t.Status, t.Position))
	}
}

// MaskedTile is the opponent-visible view of a tile: status and position
// only, plus the identity hint.
type MaskedTile struct {
	Position   int        `json:"position"`
	Status     TileStatus `json:"status"`
	StatusHash string     `json:"statusHash"`
}

func (t Tile) Mask() MaskedTile {
	return MaskedTile{Position: t.Position, Status: t.Status, StatusHash: t.StatusHash()}
}

func hashHex(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%X", h.Sum32())
}
