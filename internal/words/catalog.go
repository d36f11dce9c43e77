// Package words owns the embedded word lists: the per-length answer pools
// players draw solutions from, the wider accepted-guess dictionaries, and the
// curated subset bots guess from. It also implements the constraint filter
// used for guess suggestions and bot play.
package words

import (
	"bufio"
	"embed"
	"fmt"
	"math/rand/v2"
	"strings"
)

//go:embed lists/*.txt
var listFS embed.FS

// ListType names an answer pool a room can be configured to draw from.
type ListType string

const (
	FourLetter        ListType = "four_letter"
	FiveLetterEasy    ListType = "five_letter_easy"
	FiveLetterClassic ListType = "five_letter_classic"
	SixLetter         ListType = "six_letter"
	// Random draws from the union of every fixed-length pool, so consecutive
	// rounds may use different word lengths.
	Random ListType = "random"
)

// ParseListType validates a client-supplied list name.
func ParseListType(s string) (ListType, error) {
	switch lt := ListType(s); lt {
	case FourLetter, FiveLetterEasy, FiveLetterClassic, SixLetter, Random:
		return lt, nil
	default:
		return "", fmt.Errorf("unknown answer list %q", s)
	}
}

// answer list file per type; extra_*.txt widen the accepted dictionaries.
var answerFiles = map[ListType]string{
	FourLetter:        "lists/answers_4.txt",
	FiveLetterEasy:    "lists/answers_5_easy.txt",
	FiveLetterClassic: "lists/answers_5_classic.txt",
	SixLetter:         "lists/answers_6.txt",
}

var extraFiles = map[int]string{
	4: "lists/extra_4.txt",
	5: "lists/extra_5.txt",
	6: "lists/extra_6.txt",
}

// Catalog holds every word list, pre-indexed for lookup. It is immutable
// after construction and safe for concurrent use.
type Catalog struct {
	answers      map[ListType][]string
	randomPool   []string
	dictionaries map[int][]string
	byLength     map[int]map[string]struct{}
	accepted     map[string]struct{}
	botWords     map[int][]string
}

// NewCatalog parses the embedded lists. An error here means a corrupt embed
// and should be fatal at startup.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{
		answers:      make(map[ListType][]string),
		dictionaries: make(map[int][]string),
		byLength:     make(map[int]map[string]struct{}),
		accepted:     make(map[string]struct{}),
		botWords:     make(map[int][]string),
	}

	for lt, path := range answerFiles {
		list, err := readList(path)
		if err != nil {
			return nil, err
		}
		c.answers[lt] = list
		c.randomPool = append(c.randomPool, list...)
	}

	for length, path := range extraFiles {
		extras, err := readList(path)
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{})
		for _, w := range extras {
			if len(w) != length {
				return nil, fmt.Errorf("words: %s: %q is not %d letters", path, w, length)
			}
			set[w] = struct{}{}
		}
		c.byLength[length] = set
	}

	for lt, list := range c.answers {
		for _, w := range list {
			set, ok := c.byLength[len(w)]
			if !ok {
				return nil, fmt.Errorf("words: %s: unexpected word length for %q", answerFiles[lt], w)
			}
			set[w] = struct{}{}
		}
	}

	for length, set := range c.byLength {
		dict := make([]string, 0, len(set))
		for w := range set {
			dict = append(dict, w)
			c.accepted[w] = struct{}{}
		}
		c.dictionaries[length] = dict
	}

	// Bots guess from the answer pools only. Obscure dictionary words make
	// bots look inhuman and make their forced guesses useless as hints.
	c.botWords[4] = c.answers[FourLetter]
	c.botWords[5] = append(append([]string{}, c.answers[FiveLetterEasy]...), c.answers[FiveLetterClassic]...)
	c.botWords[6] = c.answers[SixLetter]

	return c, nil
}

func readList(path string) ([]string, error) {
	f, err := listFS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if w == "" {
			continue
		}
		list = append(list, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("words: %s is empty", path)
	}
	return list, nil
}

// IsAccepted reports whether word is a legal guess at any supported length.
func (c *Catalog) IsAccepted(word string) bool {
	_, ok := c.accepted[strings.ToLower(word)]
	return ok
}

// RandomAnswer draws a solution from the given pool.
func (c *Catalog) RandomAnswer(lt ListType, rng *rand.Rand) (string, error) {
	pool, ok := c.answers[lt]
	if lt == Random {
		pool, ok = c.randomPool, true
	}
	if !ok || len(pool) == 0 {
		return "", fmt.Errorf("words: no answer pool for list %q", lt)
	}
	return pool[rng.IntN(len(pool))], nil
}

// Dictionary returns every accepted guess of the given length.
func (c *Catalog) Dictionary(length int) []string {
	return c.dictionaries[length]
}

// BotWords returns the curated pool bots and forced guesses draw from.
func (c *Catalog) BotWords(length int) []string {
	return c.botWords[length]
}

// Constraints is the accumulated letter knowledge of a board, expressed
// positionally. Positions are zero-based.
type Constraints struct {
	// Correct pins a letter to a position.
	Correct map[int]rune
	// Excluded lists positions a known-present letter cannot occupy.
	Excluded map[rune]map[int]struct{}
	// Absent letters do not appear in the answer at all, except that a
	// letter with a known minimum count is only absent beyond that count.
	Absent map[rune]struct{}
	// MinCounts is the known minimum multiplicity per letter.
	MinCounts map[rune]int
}

// PossibleGuesses filters the bot word pool down to words consistent with
// the constraints. The candidate order follows the pool order; callers
// wanting a random pick index with their own RNG.
func (c *Catalog) PossibleGuesses(cons Constraints, length int) []string {
	// A letter marked absent may still be required: when only its surplus
	// instance scored absent, the minimum count keeps the letter alive and
	// the absent mark only caps the multiplicity.
	absent := make(map[rune]struct{}, len(cons.Absent))
	for ch := range cons.Absent {
		correctCount := 0
		for _, cl := range cons.Correct {
			if cl == ch {
				correctCount++
			}
		}
		if cons.MinCounts[ch] > correctCount {
			continue
		}
		absent[ch] = struct{}{}
	}

	var out []string
candidates:
	for _, word := range c.botWords[length] {
		runes := []rune(word)
		if len(runes) != length {
			continue
		}
		for i, ch := range runes {
			if want, ok := cons.Correct[i]; ok {
				if ch != want {
					continue candidates
				}
				continue
			}
			if _, ok := absent[ch]; ok {
				continue candidates
			}
			if positions, ok := cons.Excluded[ch]; ok {
				if _, banned := positions[i]; banned {
					continue candidates
				}
			}
		}
		for ch, min := range cons.MinCounts {
			count := strings.Count(word, string(ch))
			if count < min {
				continue candidates
			}
			if _, ok := absent[ch]; ok && count > min {
				continue candidates
			}
		}
		out = append(out, word)
	}
	return out
}
