package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/wordroyale/wordroyale/internal/game"
	"github.com/wordroyale/wordroyale/internal/words"
)

// SharpBot plays a frequency strategy: among the words still consistent
// with its board it favours the one whose distinct letters are most common
// across the remaining candidates, so each guess prunes the most.
type SharpBot struct {
	catalog *words.Catalog
	rng     *rand.Rand
	logger  *log.Logger
}

// NewSharpBot creates a new SharpBot instance
func NewSharpBot(catalog *words.Catalog, rng *rand.Rand, logger *log.Logger) *SharpBot {
	return &SharpBot{catalog: catalog, rng: rng, logger: logger.WithPrefix("bot.sharp")}
}

func (b *SharpBot) ChooseGuess(board *game.Board, length int) (string, bool) {
	var cons words.Constraints
	if board != nil {
		cons = board.Constraints()
	}
	candidates := b.catalog.PossibleGuesses(cons, length)
	if len(candidates) == 0 {
		b.logger.Warn("no consistent words left", "length", length)
		return "", false
	}

	freq := make(map[rune]int)
	for _, word := range candidates {
		seen := make(map[rune]struct{}, length)
		for _, ch := range word {
			if _, dup := seen[ch]; dup {
				continue
			}
			seen[ch] = struct{}{}
			freq[ch]++
		}
	}

	best, bestScore := "", -1
	for _, word := range candidates {
		score := 0
		seen := make(map[rune]struct{}, length)
		for _, ch := range word {
			if _, dup := seen[ch]; dup {
				continue
			}
			seen[ch] = struct{}{}
			score += freq[ch]
		}
		if score > bestScore {
			best, bestScore = word, score
		}
	}
	b.logger.Debug("chose guess", "word", best, "score", bestScore, "candidates", len(candidates))
	return best, true
}

func (b *SharpBot) Ability() float64 { return 0.8 }

var smackTalk = []string{
	"Is that the best you've got?",
	"I had this one three guesses ago.",
	"My dictionary is bigger than yours.",
	"Don't worry, someone has to come second.",
	"Tick tock.",
	"I'd suggest a word but that would cost you.",
}

func (b *SharpBot) SmackTalk() (string, bool) {
	return smackTalk[b.rng.IntN(len(smackTalk))], true
}
