package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordroyale/wordroyale/internal/randutil"
)

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	for _, length := range []int{4, 5, 6} {
		assert.NotEmpty(t, c.Dictionary(length), "dictionary for length %d", length)
		assert.NotEmpty(t, c.BotWords(length), "bot words for length %d", length)
	}

	// Every answer must be an accepted guess.
	for lt, list := range c.answers {
		for _, w := range list {
			require.True(t, c.IsAccepted(w), "answer %q from %s not accepted", w, lt)
		}
	}
}

func TestIsAccepted(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	assert.True(t, c.IsAccepted("house"))
	assert.True(t, c.IsAccepted("HOUSE"), "lookup is case-insensitive")
	assert.False(t, c.IsAccepted("zzzzz"))
	assert.False(t, c.IsAccepted(""))
}

func TestRandomAnswer(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	lengths := map[ListType]int{
		FourLetter:        4,
		FiveLetterEasy:    5,
		FiveLetterClassic: 5,
		SixLetter:         6,
	}
	for lt, want := range lengths {
		rng := randutil.New(7)
		for i := 0; i < 20; i++ {
			w, err := c.RandomAnswer(lt, rng)
			require.NoError(t, err)
			assert.Len(t, w, want, "list %s", lt)
			assert.True(t, c.IsAccepted(w))
		}
	}

	// Random draws across lengths.
	rng := randutil.New(7)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		w, err := c.RandomAnswer(Random, rng)
		require.NoError(t, err)
		seen[len(w)] = true
	}
	assert.True(t, seen[4] && seen[5] && seen[6], "random pool should span lengths, got %v", seen)

	// Same seed, same sequence.
	a, _ := c.RandomAnswer(FiveLetterEasy, randutil.New(42))
	b, _ := c.RandomAnswer(FiveLetterEasy, randutil.New(42))
	assert.Equal(t, a, b)

	_, err = c.RandomAnswer(ListType("bogus"), randutil.New(1))
	assert.Error(t, err)
}

func TestParseListType(t *testing.T) {
	tests := []struct {
		in      string
		want    ListType
		wantErr bool
	}{
		{in: "four_letter", want: FourLetter},
		{in: "five_letter_easy", want: FiveLetterEasy},
		{in: "five_letter_classic", want: FiveLetterClassic},
		{in: "six_letter", want: SixLetter},
		{in: "random", want: Random},
		{in: "FIVE_LETTER_EASY", wantErr: true},
		{in: "", wantErr: true},
		{in: "seven_letter", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseListType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// fixtureCatalog builds a catalog with a hand-picked bot pool so filter
// results are exact.
func fixtureCatalog(pool ...string) *Catalog {
	return &Catalog{botWords: map[int][]string{5: pool}}
}

func TestPossibleGuesses(t *testing.T) {
	t.Run("correct letters pin positions", func(t *testing.T) {
		c := fixtureCatalog("slate", "slane", "crate", "slats")
		got := c.PossibleGuesses(Constraints{
			Correct: map[int]rune{0: 's', 1: 'l'},
		}, 5)
		assert.Equal(t, []string{"slate", "slane", "slats"}, got)
	})

	t.Run("present letter excluded from its tried position", func(t *testing.T) {
		c := fixtureCatalog("slate", "least", "tesla")
		got := c.PossibleGuesses(Constraints{
			Excluded:  map[rune]map[int]struct{}{'s': {0: {}}},
			MinCounts: map[rune]int{'s': 1},
		}, 5)
		assert.Equal(t, []string{"least", "tesla"}, got)
	})

	t.Run("absent letters excluded everywhere", func(t *testing.T) {
		c := fixtureCatalog("slate", "crate", "carve")
		got := c.PossibleGuesses(Constraints{
			Absent: map[rune]struct{}{'t': {}},
		}, 5)
		assert.Equal(t, []string{"carve"}, got)
	})

	t.Run("minimum multiplicity enforced", func(t *testing.T) {
		c := fixtureCatalog("eager", "slate", "melee")
		got := c.PossibleGuesses(Constraints{
			MinCounts: map[rune]int{'e': 2},
		}, 5)
		assert.Equal(t, []string{"eager", "melee"}, got)
	})

	t.Run("absent mark caps a counted letter", func(t *testing.T) {
		// 'a' is pinned at position 0 and a second instance scored absent:
		// only words with exactly one 'a', at the pinned spot, pass.
		c := fixtureCatalog("apple", "aroma", "crate")
		got := c.PossibleGuesses(Constraints{
			Correct:   map[int]rune{0: 'a'},
			Absent:    map[rune]struct{}{'a': {}},
			MinCounts: map[rune]int{'a': 1},
		}, 5)
		assert.Equal(t, []string{"apple"}, got)
	})

	t.Run("present unknown letter is not treated as absent", func(t *testing.T) {
		// 'a' is pinned once, a second 'a' is known present somewhere, and a
		// third instance scored absent. The letter must not be filtered out
		// of open positions.
		c := fixtureCatalog("aroma", "arose", "crate")
		got := c.PossibleGuesses(Constraints{
			Correct:   map[int]rune{0: 'a'},
			Absent:    map[rune]struct{}{'a': {}},
			MinCounts: map[rune]int{'a': 2},
		}, 5)
		assert.Equal(t, []string{"aroma"}, got)
	})

	t.Run("no constraints returns whole pool", func(t *testing.T) {
		c := fixtureCatalog("slate", "crate")
		got := c.PossibleGuesses(Constraints{}, 5)
		assert.Equal(t, []string{"slate", "crate"}, got)
	})
}
