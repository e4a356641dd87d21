// Package deployid generates the short identities handed out for queued
// application deployments.
//
// Identities are drawn from crypto/rand over a lowercase alphanumeric
// alphabet, so they are safe to embed in URLs and the generator holds no
// state besides its configured length.
package deployid

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	MinLength     = 7
	MaxLength     = 32
	DefaultLength = 24
)

// Generator produces deployment identities of a fixed length.
type Generator struct {
	length int
}

// New returns a generator for identities of the given length.
func New(length int) (*Generator, error) {
	if length < MinLength || length > MaxLength {
		return nil, fmt.Errorf("deployment id length %d out of range [%d, %d]", length, MinLength, MaxLength)
	}
	return &Generator{length: length}, nil
}

// Must is New that panics on an invalid length.
func Must(length int) *Generator {
	g, err := New(length)
	if err != nil {
		panic(err)
	}
	return g
}

// Len reports the identity length.
func (g *Generator) Len() int { return g.length }

// New draws a fresh identity.
func (g *Generator) New() (string, error) {
	id, err := gonanoid.Generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("generate deployment id: %w", err)
	}
	return id, nil
}

// Valid reports whether s has the shape of an identity from any generator.
func Valid(s string) bool {
	if len(s) < MinLength || len(s) > MaxLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
