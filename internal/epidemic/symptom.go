package epidemic

import (
	"fmt"
	"math"
)

// Host is the view of a Person that a recovery effect is allowed to touch.
// Effects run while the person's lock is already held, so they must go
// through this narrow surface instead of the exported Person API.
type Host interface {
	// RemoveImmunity strips the latched immunity of a recovered host,
	// making it susceptible again.
	RemoveImmunity()
}

// RecoveryEffect is invoked once when a host recovers from a pathogen
// carrying the owning symptom. A single effect value is shared by every
// pathogen generation that references the symptom.
type RecoveryEffect interface {
	Apply(host Host)
}

// RecoveryEffectFunc adapts a plain function to RecoveryEffect.
type RecoveryEffectFunc func(host Host)

func (f RecoveryEffectFunc) Apply(host Host) { f(host) }

// SymptomConfig describes a symptom to NewSymptom. The four percentage
// deltas must lie in the open interval (-100, 100): applying a delta
// multiplies the pathogen's stored complement by (1 - delta/100), which in
// that range is never zero and therefore invertible on removal.
//
// DurationMultiplier and SpreadRangeMultiplier scale the pathogen's average
// recovery duration and its spread; zero means "leave unchanged", and
// math.Inf(1) on the duration makes the host never recover (and the symptom
// irreversible). OnAcquire is a one-shot side effect that also marks the
// symptom irreversible.
type SymptomConfig struct {
	Name        string
	Description string

	CatchChanceDelta    float64
	SeverityDelta       float64
	FatalityDelta       float64
	InternalSpreadDelta float64

	DurationMultiplier    float64
	SpreadRangeMultiplier float64

	OnAcquire      func()
	RecoveryEffect RecoveryEffect
}

// Symptom is an immutable, shared modifier to a pathogen's parameters.
type Symptom struct {
	name        string
	description string

	catchChanceDelta    float64
	severityDelta       float64
	fatalityDelta       float64
	internalSpreadDelta float64

	durationMultiplier    float64
	spreadRangeMultiplier float64

	onAcquire      func()
	recoveryEffect RecoveryEffect
}

// NewSymptom validates the config and builds a Symptom.
func NewSymptom(cfg SymptomConfig) (*Symptom, error) {
	deltas := []struct {
		label string
		value float64
	}{
		{"catch chance", cfg.CatchChanceDelta},
		{"severity", cfg.SeverityDelta},
		{"fatality", cfg.FatalityDelta},
		{"internal spread", cfg.InternalSpreadDelta},
	}
	for _, d := range deltas {
		if d.value <= -100 || d.value >= 100 || math.IsNaN(d.value) {
			return nil, fmt.Errorf("symptom %q: %s delta %v outside the open interval (-100, 100)", cfg.Name, d.label, d.value)
		}
	}
	durationMult := cfg.DurationMultiplier
	if durationMult == 0 {
		durationMult = 1
	}
	spreadMult := cfg.SpreadRangeMultiplier
	if spreadMult == 0 {
		spreadMult = 1
	}
	if durationMult < 0 || spreadMult < 0 {
		return nil, fmt.Errorf("symptom %q: negative duration multipliers are not meaningful", cfg.Name)
	}
	return &Symptom{
		name:                  cfg.Name,
		description:           cfg.Description,
		catchChanceDelta:      cfg.CatchChanceDelta,
		severityDelta:         cfg.SeverityDelta,
		fatalityDelta:         cfg.FatalityDelta,
		internalSpreadDelta:   cfg.InternalSpreadDelta,
		durationMultiplier:    durationMult,
		spreadRangeMultiplier: spreadMult,
		onAcquire:             cfg.OnAcquire,
		recoveryEffect:        cfg.RecoveryEffect,
	}, nil
}

// MustSymptom is NewSymptom for compile-time catalogues; an invalid config
// is a programmer error and panics.
func MustSymptom(cfg SymptomConfig) *Symptom {
	s, err := NewSymptom(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the symptom's display name.
func (s *Symptom) Name() string { return s.name }

// Description returns the symptom's flavor text.
func (s *Symptom) Description() string { return s.description }

// CatchChanceDelta returns the percentage delta applied to catch chance.
func (s *Symptom) CatchChanceDelta() float64 { return s.catchChanceDelta }

// SeverityDelta returns the percentage delta applied to severity.
func (s *Symptom) SeverityDelta() float64 { return s.severityDelta }

// FatalityDelta returns the percentage delta applied to fatality.
func (s *Symptom) FatalityDelta() float64 { return s.fatalityDelta }

// InternalSpreadDelta returns the percentage delta applied to the in-host
// spread rate.
func (s *Symptom) InternalSpreadDelta() float64 { return s.internalSpreadDelta }

// DurationMultiplier returns the factor applied to average recovery time.
func (s *Symptom) DurationMultiplier() float64 { return s.durationMultiplier }

// SpreadRangeMultiplier returns the factor applied to the recovery spread.
func (s *Symptom) SpreadRangeMultiplier() float64 { return s.spreadRangeMultiplier }

// Effect returns the recovery-time capability, or nil.
func (s *Symptom) Effect() RecoveryEffect { return s.recoveryEffect }

// CanReverse reports whether a mutation may shed this symptom again. A
// one-shot acquisition effect or an infinite recovery duration cannot be
// undone, so either marks the symptom permanent.
func (s *Symptom) CanReverse() bool {
	return s.onAcquire == nil && !math.IsInf(s.durationMultiplier, 1)
}

func (s *Symptom) fireAcquire() {
	if s.onAcquire != nil {
		s.onAcquire()
	}
}

// SymptomMapBuilder assigns node ids and assembles the mutation graph for a
// pathogen type.
type SymptomMapBuilder struct {
	graph  *SymptomGraph
	nextID int
}

// NewSymptomMapBuilder creates an empty builder.
func NewSymptomMapBuilder() *SymptomMapBuilder {
	return &SymptomMapBuilder{graph: NewSymptomGraph()}
}

// Add registers a symptom and returns its assigned node id.
func (b *SymptomMapBuilder) Add(s *Symptom) int {
	id := b.nextID
	b.nextID++
	// Ids are handed out by this builder, so the insert cannot collide.
	if err := b.graph.AddNode(id, s); err != nil {
		panic(err)
	}
	return id
}

// Connect adds a mutation edge between two previously added symptoms.
func (b *SymptomMapBuilder) Connect(from, to int, probability float64) error {
	return b.graph.Connect(from, to, probability)
}

// Chain adds a symptom and connects it as a successor of from in one step,
// returning the new node id.
func (b *SymptomMapBuilder) Chain(from int, s *Symptom, probability float64) (int, error) {
	id := b.Add(s)
	if err := b.graph.Connect(from, id, probability); err != nil {
		return 0, err
	}
	return id, nil
}

// Graph returns the assembled symptom graph.
func (b *SymptomMapBuilder) Graph() *SymptomGraph {
	return b.graph
}
