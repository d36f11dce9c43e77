// Package game implements the core word-guessing game logic.
//
// The main type is RoundState, which manages a single round across all
// players: registration and readiness, guess classification, letter
// knowledge, scoring, hint reveals, deadline forcing, and ranking.
//
// The package is purely computational. It owns no goroutines, timers, or
// I/O; every time-dependent operation takes an explicit now argument and
// the server layer above drives transitions and broadcasts. That keeps
// every state change deterministic and directly testable.
//
// # Basic Usage
//
// Create a round, seat players, and play it out:
//
//	catalog, _ := words.NewCatalog()
//	round := game.NewRoundState(game.DefaultParameters(), game.DefaultPointSchedule(), catalog, rng)
//
//	round.RegisterPlayer("alice", connID, time.Now())
//	round.SetReady("alice", true)
//	round.Start(time.Now())
//	round.BeginPlay()
//
//	board, updated, err := round.PlayGuess("alice", "crane", 1, time.Now())
//
// Opponent-visible projections come from Mask, which hides letters and
// replaces tiles with stable identity hashes.
package game
