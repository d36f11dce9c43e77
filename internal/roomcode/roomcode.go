// Package roomcode generates the short human-readable codes players use to
// join a room.
package roomcode

import (
	"crypto/rand"
	"fmt"
)

// Codes are uppercase letters only so they can be read out loud without
// ambiguity between letters and digits.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Length is the fixed length of every room code.
const Length = 5

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator handles room code generation with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator with optional RandSource
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new room code using crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new room code using the generator's RandSource
func (g *Generator) Generate() string {
	buf := make([]byte, Length)
	if g.randSource != nil {
		// Use provided RandSource for deterministic testing
		for i := range buf {
			buf[i] = alphabet[g.randSource.IntN(len(alphabet))]
		}
		return string(buf)
	}

	raw := make([]byte, Length)
	if _, err := rand.Read(raw); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	for i, b := range raw {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}

// Validate checks if a room code is well formed (5 characters, A-Z only)
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return fmt.Errorf("invalid character %c at position %d", code[i], i)
		}
	}
	return nil
}
