// Package bot provides the computer players that fill out a room. A
// selector only ever sees its own board's letter knowledge, never the
// answer, so bots solve under the same rules as humans.
package bot

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/wordroyale/wordroyale/internal/game"
	"github.com/wordroyale/wordroyale/internal/words"
)

// Selector picks guesses for a bot player.
type Selector interface {
	// ChooseGuess returns the bot's next guess for the board. ok is false
	// when no word in the pool is consistent with the board's knowledge.
	ChooseGuess(board *game.Board, length int) (word string, ok bool)

	// Ability grades the bot from 0 (slowest thinker) to 1 (fastest).
	Ability() float64
}

// Chatty is implemented by selectors that answer chat mentions.
type Chatty interface {
	SmackTalk() (string, bool)
}

// New creates a selector by kind. An empty kind gets the random bot.
func New(kind string, catalog *words.Catalog, rng *rand.Rand, logger *log.Logger) (Selector, error) {
	switch kind {
	case "", "random":
		return NewRandomBot(catalog, rng, logger), nil
	case "sharp":
		return NewSharpBot(catalog, rng, logger), nil
	default:
		return nil, fmt.Errorf("bot: unknown kind %q", kind)
	}
}

var aliasNames = []string{
	"Lexi", "Wordsworth", "Verbose", "Scrabbles", "Quill",
	"Vowelyn", "Consonant Carl", "Dot Matrix", "Glyph", "Syllabus",
	"Anagram Annie", "Pangram Pete", "Thesaurus Rex", "Miss Spell", "Inky",
}

// NextAlias picks an unused bot name, falling back to a unique suffix when
// the pool is exhausted.
func NextAlias(rng *rand.Rand, taken func(string) bool) string {
	free := make([]string, 0, len(aliasNames))
	for _, name := range aliasNames {
		if !taken(name) {
			free = append(free, name)
		}
	}
	if len(free) > 0 {
		return free[rng.IntN(len(free))]
	}
	return "Bot-" + uuid.NewString()[:8]
}
