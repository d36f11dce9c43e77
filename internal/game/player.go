package game

// Player is one identity in a room. Bots are plain players flagged IsBot;
// their move loop lives with the room, not here.
type Player struct {
	Alias        string `json:"alias"`
	ConnectionID string `json:"-"`
	IsBot        bool   `json:"isBot"`
	IsConnected  bool   `json:"isConnected"`
	Ready        bool   `json:"ready"`

	// Points accumulates across rounds; Rank is recomputed on finish.
	Points      int  `json:"points"`
	Rank        int  `json:"rank"`
	IsJointRank bool `json:"isJointRank"`

	Board *Board `json:"board,omitempty"`
}

// CopyForNewRound carries a player into the next round: identity and
// cumulative points survive, the board and ready flag reset.
func (p *Player) CopyForNewRound() *Player {
	return &Player{
		Alias:        p.Alias,
		ConnectionID: p.ConnectionID,
		IsBot:        p.IsBot,
		IsConnected:  p.IsConnected,
		Ready:        p.IsBot,
		Points:       p.Points,
		Rank:         p.Rank,
		IsJointRank:  p.IsJointRank,
	}
}

// MaskedPlayer is the audience view of a player.
type MaskedPlayer struct {
	Alias       string       `json:"alias"`
	IsBot       bool         `json:"isBot"`
	IsConnected bool         `json:"isConnected"`
	Ready       bool         `json:"ready"`
	Points      int          `json:"points"`
	Rank        int          `json:"rank"`
	IsJointRank bool         `json:"isJointRank"`
	Board       *MaskedBoard `json:"board,omitempty"`
}

func (p *Player) Mask() *MaskedPlayer {
	masked := &MaskedPlayer{
		Alias:       p.Alias,
		IsBot:       p.IsBot,
		IsConnected: p.IsConnected,
		Ready:       p.Ready,
		Points:      p.Points,
		Rank:        p.Rank,
		IsJointRank: p.IsJointRank,
	}
	if p.Board != nil {
		masked.Board = p.Board.Mask()
	}
	return masked
}
