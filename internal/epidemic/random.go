package epidemic

import "math/rand"

// roll performs a single Bernoulli trial. It draws from the process-wide
// source, which is safe for concurrent use, so the parallel interaction and
// update passes can roll without sharing a generator. Chances at or below
// zero never succeed, which is how a "no spread" symptom silences a
// pathogen outright.
func roll(chance float64) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 1 {
		return true
	}
	return rand.Float64() < chance
}

// between returns a uniform sample from [lo, hi).
func between(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}
