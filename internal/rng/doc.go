// Package rng provides a deterministic, splittable pseudo-random generator.
//
// A [Random] is a single 64-bit key. Drawing numbers advances the key with a
// SplitMix64 step; [Random.Spawn] derives child generators from the current
// key and the child index without touching the parent, so the same parent
// key always yields the same children:
//
//	parent := rng.New(42)
//	children, _ := parent.Spawn(4)
//	// children[2] produces the same stream as parent.Derive(2)
//
// # Thread Safety
//
// A Random is NOT safe for concurrent use. Spawn one child per goroutine
// instead of sharing a generator; children never share state with their
// parent after derivation.
package rng
