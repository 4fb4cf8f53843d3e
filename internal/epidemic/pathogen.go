package epidemic

import (
	"math"
	"time"
)

// Baseline effective values for a freshly built pathogen, before any
// symptom has been folded in. Catch chance, severity and fatality start
// vanishingly small; the in-host spread rate starts at one percent.
const (
	baseCatchChance    = 0.000001
	baseSeverity       = 0.000001
	baseFatality       = 0.000001
	baseInternalSpread = 0.01
)

// NeverRecovers marks a recovery duration pushed to infinity by an undying
// symptom. No infection age ever reaches it.
const NeverRecovers = time.Duration(math.MaxInt64)

// Pathogen is an immutable-per-generation set of epidemiological parameters
// plus the record of acquired symptoms. The four chance parameters are
// stored as complements (1 - effective value) so that folding a symptom in
// multiplies by (1 - delta/100) and folding it out divides by the same
// factor.
//
// Mutate produces a new, independent generation; a Pathogen value is never
// modified after construction, which is what lets the interaction pass read
// it without locks.
type Pathogen struct {
	name string

	catchComplement    float64
	severityComplement float64
	fatalityComplement float64
	spreadComplement   float64

	minCountForSymptoms int

	averageRecovery time.Duration
	recoverySpread  time.Duration

	graph    *SymptomGraph
	acquired map[int]struct{}

	// Recovery effects keep their list position for the pathogen's whole
	// lineage; removing a symptom tombstones its slot so the positions of
	// the others stay valid.
	onRecover       []RecoveryEffect
	recoverPosition map[int]int
}

// NewPathogen builds a pathogen from baseline parameters, taking ownership
// of the graph and folding in the seed symptoms. averageRecovery and
// recoverySpread bound the recovery moment sampled per infection; their
// consistency (average > spread) is checked when the first Infection is
// constructed, not here.
func NewPathogen(name string, minCountForSymptoms int, averageRecovery, recoverySpread time.Duration, graph *SymptomGraph, acquired []int) *Pathogen {
	p := &Pathogen{
		name:                name,
		catchComplement:     1 - baseCatchChance,
		severityComplement:  1 - baseSeverity,
		fatalityComplement:  1 - baseFatality,
		spreadComplement:    1 - baseInternalSpread,
		minCountForSymptoms: minCountForSymptoms,
		averageRecovery:     averageRecovery,
		recoverySpread:      recoverySpread,
		graph:               graph,
		acquired:            make(map[int]struct{}, len(acquired)),
		recoverPosition:     make(map[int]int),
	}
	for _, id := range acquired {
		if s, ok := graph.SymptomAt(id); ok {
			p.acquireSymptom(id, s)
		}
	}
	return p
}

// Name returns the pathogen's full name.
func (p *Pathogen) Name() string { return p.name }

// CatchChance is the per-interaction transmission probability.
func (p *Pathogen) CatchChance() float64 { return 1 - p.catchComplement }

// Severity is the probability the host seeks care; it also dampens the
// host's mobility during interactions.
func (p *Pathogen) Severity() float64 { return 1 - p.severityComplement }

// Fatality is the per-tick probability of health damage while active.
func (p *Pathogen) Fatality() float64 { return 1 - p.fatalityComplement }

// InternalSpreadRate is the per-tick probability the pathogen load grows
// inside a host.
func (p *Pathogen) InternalSpreadRate() float64 { return 1 - p.spreadComplement }

// MinCountForSymptoms is the load threshold separating incubation from the
// active, transmissible state.
func (p *Pathogen) MinCountForSymptoms() int { return p.minCountForSymptoms }

// AverageRecovery is the center of the recovery-duration range.
func (p *Pathogen) AverageRecovery() time.Duration { return p.averageRecovery }

// RecoverySpread is the half-width of the recovery-duration range.
func (p *Pathogen) RecoverySpread() time.Duration { return p.recoverySpread }

// Acquired returns the ids of the acquired symptoms.
func (p *Pathogen) Acquired() []int {
	out := make([]int, 0, len(p.acquired))
	for id := range p.acquired {
		out = append(out, id)
	}
	return out
}

// HasSymptom reports whether the symptom id has been acquired.
func (p *Pathogen) HasSymptom(id int) bool {
	_, ok := p.acquired[id]
	return ok
}

// PotentialGains lists the symptoms one mutation step could acquire.
func (p *Pathogen) PotentialGains() []MutationCandidate {
	return p.graph.PotentialGains(p.acquired)
}

// PotentialLosses lists the symptoms one mutation step could shed.
func (p *Pathogen) PotentialLosses() []MutationCandidate {
	return p.graph.PotentialLosses(p.acquired)
}

func (p *Pathogen) acquireSymptom(id int, s *Symptom) {
	p.catchComplement *= 1 - s.CatchChanceDelta()/100
	p.severityComplement *= 1 - s.SeverityDelta()/100
	p.fatalityComplement *= 1 - s.FatalityDelta()/100
	p.spreadComplement *= 1 - s.InternalSpreadDelta()/100
	p.averageRecovery = scaleDuration(p.averageRecovery, s.DurationMultiplier())
	p.recoverySpread = scaleDuration(p.recoverySpread, s.SpreadRangeMultiplier())
	if eff := s.Effect(); eff != nil {
		p.recoverPosition[id] = len(p.onRecover)
		p.onRecover = append(p.onRecover, eff)
	}
	p.acquired[id] = struct{}{}
	s.fireAcquire()
}

func (p *Pathogen) removeSymptom(id int, s *Symptom) {
	p.catchComplement /= 1 - s.CatchChanceDelta()/100
	p.severityComplement /= 1 - s.SeverityDelta()/100
	p.fatalityComplement /= 1 - s.FatalityDelta()/100
	p.spreadComplement /= 1 - s.InternalSpreadDelta()/100
	p.averageRecovery = scaleDuration(p.averageRecovery, 1/s.DurationMultiplier())
	p.recoverySpread = scaleDuration(p.recoverySpread, 1/s.SpreadRangeMultiplier())
	if pos, ok := p.recoverPosition[id]; ok {
		p.onRecover[pos] = nil
		delete(p.recoverPosition, id)
	}
	delete(p.acquired, id)
}

// scaleDuration multiplies a duration by a factor, saturating at
// NeverRecovers on infinity or overflow.
func scaleDuration(d time.Duration, factor float64) time.Duration {
	if factor == 1 {
		return d
	}
	v := float64(d) * factor
	if math.IsInf(v, 1) || v >= float64(math.MaxInt64) {
		return NeverRecovers
	}
	return time.Duration(v)
}

func (p *Pathogen) clone() *Pathogen {
	next := &Pathogen{
		name:                p.name,
		catchComplement:     p.catchComplement,
		severityComplement:  p.severityComplement,
		fatalityComplement:  p.fatalityComplement,
		spreadComplement:    p.spreadComplement,
		minCountForSymptoms: p.minCountForSymptoms,
		averageRecovery:     p.averageRecovery,
		recoverySpread:      p.recoverySpread,
		graph:               p.graph.Clone(),
		acquired:            make(map[int]struct{}, len(p.acquired)),
		onRecover:           make([]RecoveryEffect, len(p.onRecover)),
		recoverPosition:     make(map[int]int, len(p.recoverPosition)),
	}
	for id := range p.acquired {
		next.acquired[id] = struct{}{}
	}
	copy(next.onRecover, p.onRecover)
	for id, pos := range p.recoverPosition {
		next.recoverPosition[id] = pos
	}
	return next
}

// Mutate derives the next pathogen generation. Gains and losses are both
// evaluated against this generation's acquired set, so a symptom gained in
// this step can never be re-rolled for loss in the same step. The receiver
// is left untouched.
func (p *Pathogen) Mutate() *Pathogen {
	next := p.clone()

	for _, cand := range p.PotentialGains() {
		if !roll(cand.Probability) {
			continue
		}
		if next.HasSymptom(cand.ID) {
			continue
		}
		if s, ok := p.graph.SymptomAt(cand.ID); ok {
			next.acquireSymptom(cand.ID, s)
		}
	}

	for _, cand := range p.PotentialLosses() {
		if !roll(cand.Probability) {
			continue
		}
		if !next.HasSymptom(cand.ID) {
			continue
		}
		if s, ok := p.graph.SymptomAt(cand.ID); ok {
			next.removeSymptom(cand.ID, s)
		}
	}

	return next
}

// performRecovery runs the acquired recovery effects, in acquisition order,
// against a freshly recovered host.
func (p *Pathogen) performRecovery(host Host) {
	for _, eff := range p.onRecover {
		if eff != nil {
			eff.Apply(host)
		}
	}
}
