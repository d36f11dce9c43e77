package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/wordroyale/wordroyale/internal/game"
	"github.com/wordroyale/wordroyale/internal/words"
)

// RandomBot guesses a uniformly random word consistent with everything its
// board has revealed so far.
type RandomBot struct {
	catalog *words.Catalog
	rng     *rand.Rand
	logger  *log.Logger
}

// NewRandomBot creates a new RandomBot instance
func NewRandomBot(catalog *words.Catalog, rng *rand.Rand, logger *log.Logger) *RandomBot {
	return &RandomBot{catalog: catalog, rng: rng, logger: logger.WithPrefix("bot.random")}
}

func (b *RandomBot) ChooseGuess(board *game.Board, length int) (string, bool) {
	var cons words.Constraints
	if board != nil {
		cons = board.Constraints()
	}
	candidates := b.catalog.PossibleGuesses(cons, length)
	if len(candidates) == 0 {
		b.logger.Warn("no consistent words left", "length", length)
		return "", false
	}
	word := candidates[b.rng.IntN(len(candidates))]
	b.logger.Debug("chose guess", "word", word, "candidates", len(candidates))
	return word, true
}

func (b *RandomBot) Ability() float64 { return 0.35 }
