package epidemic

import (
	"fmt"
	"time"
)

// A fresh infection starts with a handful of pathogen copies.
const initialPathogenCount = 5

// Bounds of the multiplicative growth step: each successful in-host spread
// raises the load by a random fraction of itself in this range.
const (
	minGrowthFraction = 0.20
	maxGrowthFraction = 1.02
)

// Infection tracks one pathogen's progress inside a single host. It moves
// through three states: incubating (load below the symptom threshold and
// growing), active (load at or past the threshold, aging toward the sampled
// recovery moment, and the only state that transmits or damages health),
// and recovered, which is terminal.
type Infection struct {
	pathogen      *Pathogen
	age           Age
	pathogenCount int
	recoverAfter  time.Duration
	recovered     bool
}

// NewInfection creates an infection and samples its recovery moment once,
// uniformly from the pathogen's average +/- spread, stretched by the host's
// pre-existing-condition factor (a factor below one prolongs recovery).
//
// A pathogen whose spread is not strictly below its average is a
// misconfigured scenario; that inconsistency is tolerated on the Pathogen
// itself and only panics here, at the first infection it produces.
func NewInfection(p *Pathogen, conditionFactor float64) *Infection {
	if p.RecoverySpread() >= p.AverageRecovery() {
		panic(fmt.Sprintf(
			"pathogen %q: recovery spread %v must be less than average recovery %v",
			p.Name(), p.RecoverySpread(), p.AverageRecovery(),
		))
	}

	recoverAfter := NeverRecovers
	if p.AverageRecovery() != NeverRecovers {
		lo := float64(p.AverageRecovery() - p.RecoverySpread())
		hi := float64(p.AverageRecovery() + p.RecoverySpread())
		sampled := between(lo, hi)
		if conditionFactor > 0 {
			sampled /= conditionFactor
		}
		recoverAfter = time.Duration(sampled)
	}

	return &Infection{
		pathogen:      p,
		pathogenCount: initialPathogenCount,
		recoverAfter:  recoverAfter,
	}
}

// Pathogen returns the causative pathogen generation.
func (inf *Infection) Pathogen() *Pathogen { return inf.pathogen }

// Age returns how long the infection has been running.
func (inf *Infection) Age() Age { return inf.age }

// PathogenCount returns the current in-host load.
func (inf *Infection) PathogenCount() int { return inf.pathogenCount }

// RecoverAfter returns the sampled recovery moment.
func (inf *Infection) RecoverAfter() time.Duration { return inf.recoverAfter }

// Recovered reports whether the infection has run its course. The flag only
// ever moves from false to true.
func (inf *Infection) Recovered() bool { return inf.recovered }

// ActiveCase reports whether the infection is in its transmissible window:
// not yet recovered and with a load strictly past the symptom threshold.
func (inf *Infection) ActiveCase() bool {
	return !inf.recovered && inf.pathogenCount > inf.pathogen.MinCountForSymptoms()
}

// Update advances the infection by delta. While incubating the load grows
// multiplicatively; once the threshold is reached growth stops and the
// accumulated age is compared against the sampled recovery moment instead.
func (inf *Infection) Update(delta time.Duration) {
	if inf.recovered {
		return
	}
	inf.age += delta
	if inf.pathogenCount < inf.pathogen.MinCountForSymptoms() {
		if roll(inf.pathogen.InternalSpreadRate()) {
			inf.pathogenCount += int(between(minGrowthFraction, maxGrowthFraction) * float64(inf.pathogenCount))
		}
		return
	}
	if inf.age >= inf.recoverAfter {
		inf.recovered = true
	}
}
