// Package rng provides the randomness sources for the Voltfall combat
// engine: a minimal Source interface with crypto-backed, seeded, and
// logging implementations. The dice arithmetic itself lives with the
// combat resolver, which consumes any Source through its own interface.
package rng

// Source is the randomness provider for all engine rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
