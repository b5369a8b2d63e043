// Package idgen mints short, unguessable game ids.
package idgen

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	startLength       = 5
	attemptsPerLength = 10
)

// Generate returns a nanoid of the given length.
func Generate(length int) (string, error) {
	return gonanoid.New(length)
}

// Mint finds a fresh id by repeatedly generating nanoids and testing them
// with taken. It starts at a 5-character id and, after attemptsPerLength
// failed tries at a given length, grows the length by one and keeps going —
// the id space only gets sparser as it grows, so collisions become
// vanishingly unlikely long before length matters for readability.
func Mint(taken func(id string) bool) (string, error) {
	length := startLength
	for {
		for i := 0; i < attemptsPerLength; i++ {
			id, err := Generate(length)
			if err != nil {
				return "", err
			}
			if !taken(id) {
				return id, nil
			}
		}
		length++
	}
}
