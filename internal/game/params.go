package game

import (
	"time"

	"github.com/wordroyale/wordroyale/internal/words"
)

// Parameters is a room's game configuration. Each room owns its own copy;
// there are no shared defaults to mutate.
type Parameters struct {
	MaxGuesses     int            `json:"maxGuesses"`
	GuessTimeLimit time.Duration  `json:"-"`
	AnswerList     words.ListType `json:"answerList"`

	// HandicapSeconds stretches a player's per-guess deadline schedule.
	// Keyed by alias; absent means no handicap.
	HandicapSeconds map[string]float64 `json:"handicapSeconds,omitempty"`

	GuessTimeLimitSeconds float64 `json:"guessTimeLimitSeconds"`
}

// DefaultParameters returns the standard room configuration.
func DefaultParameters() Parameters {
	return Parameters{
		MaxGuesses:            6,
		GuessTimeLimit:        30 * time.Second,
		GuessTimeLimitSeconds: 30,
		AnswerList:            words.FiveLetterEasy,
	}
}

// Clone deep-copies the parameters.
func (p Parameters) Clone() Parameters {
	out := p
	if p.HandicapSeconds != nil {
		out.HandicapSeconds = make(map[string]float64, len(p.HandicapSeconds))
		for alias, seconds := range p.HandicapSeconds {
			out.HandicapSeconds[alias] = seconds
		}
	}
	return out
}

// SetGuessTimeLimit keeps the duration and its serialized form in sync.
func (p *Parameters) SetGuessTimeLimit(d time.Duration) {
	p.GuessTimeLimit = d
	p.GuessTimeLimitSeconds = d.Seconds()
}

// TimeLimitFor returns the per-guess limit for an alias, handicap included.
func (p Parameters) TimeLimitFor(alias string) time.Duration {
	limit := p.GuessTimeLimit
	if seconds, ok := p.HandicapSeconds[alias]; ok {
		limit += time.Duration(seconds * float64(time.Second))
	}
	return limit
}

// Validate rejects configurations no round could run with.
func (p Parameters) Validate() error {
	if p.MaxGuesses < 1 {
		return NewValidationError(CodeBadParameter, "max guesses must be at least 1")
	}
	if p.GuessTimeLimit < time.Second {
		return NewValidationError(CodeBadParameter, "guess time limit must be at least 1s")
	}
	if _, err := words.ParseListType(string(p.AnswerList)); err != nil {
		return NewValidationError(CodeBadParameter, "%v", err)
	}
	return nil
}
