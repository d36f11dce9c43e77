package main

import (
	"fmt"
	"time"

	"github.com/wordroyale/wordroyale/internal/randutil"
	"github.com/wordroyale/wordroyale/internal/words"
)

// WordsCmd prints word list statistics, or sample answers from a list
type WordsCmd struct {
	List  string `kong:"help='Answer list to sample from (four_letter, five_letter_easy, five_letter_classic, six_letter, random)'"`
	Count int    `kong:"default='1',help='Number of sample answers to draw'"`
	Seed  *int64 `kong:"help='Deterministic RNG seed (optional)'"`
}

func (c *WordsCmd) Run() error {
	catalog, err := words.NewCatalog()
	if err != nil {
		return fmt.Errorf("failed to load word lists: %w", err)
	}

	if c.List == "" {
		for _, length := range []int{4, 5, 6} {
			fmt.Printf("%d letters: %d accepted, %d bot-known\n",
				length, len(catalog.Dictionary(length)), len(catalog.BotWords(length)))
		}
		return nil
	}

	lt, err := words.ParseListType(c.List)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	rng := randutil.New(seed)

	for range c.Count {
		answer, err := catalog.RandomAnswer(lt, rng)
		if err != nil {
			return err
		}
		fmt.Println(answer)
	}
	return nil
}
