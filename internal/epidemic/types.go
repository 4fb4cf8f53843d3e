package epidemic

import (
	"fmt"
	"time"
)

// PathogenType stamps out fully formed starting pathogens. It fixes the name
// prefix, the symptom-count threshold, the tendency to mutate, the recovery
// duration bounds, and the mutation graph.
type PathogenType interface {
	// Prefix is prepended to every pathogen name of this type.
	Prefix() string

	// MinCountForSymptoms is the in-host load threshold for the active state.
	MinCountForSymptoms() int

	// Mutativity describes how readily variants of this type drift.
	Mutativity() float64

	// AverageRecovery and RecoverySpread bound the recovery moment sampled
	// for each infection.
	AverageRecovery() time.Duration
	RecoverySpread() time.Duration

	// SymptomMap builds the type's mutation graph and the ids of the
	// symptoms every starting pathogen already carries.
	SymptomMap() (*SymptomGraph, []int)
}

// CreatePathogen stamps a starting pathogen of the given type, then ages it
// through the requested number of synthetic mutation rounds so a scenario
// can begin mid-drift.
func CreatePathogen(t PathogenType, name string, mutationRounds int) *Pathogen {
	graph, seed := t.SymptomMap()
	p := NewPathogen(
		fmt.Sprintf("%s %s", t.Prefix(), name),
		t.MinCountForSymptoms(),
		t.AverageRecovery(),
		t.RecoverySpread(),
		graph,
		seed,
	)
	for i := 0; i < mutationRounds; i++ {
		p = p.Mutate()
	}
	return p
}

// Virus is the stock pathogen type: a large symptom threshold, mild
// mutativity, and a runny-nose-to-cough starter graph.
type Virus struct{}

func (Virus) Prefix() string { return "Virus" }

func (Virus) MinCountForSymptoms() int { return 1_000_000 }

func (Virus) Mutativity() float64 { return 0.05 }

func (Virus) AverageRecovery() time.Duration { return 7 * Day }

func (Virus) RecoverySpread() time.Duration { return 2 * Day }

func (Virus) SymptomMap() (*SymptomGraph, []int) {
	b := NewSymptomMapBuilder()
	root := b.Add(RunnyNose())
	if _, err := b.Chain(root, Cough(), 0.02); err != nil {
		panic(err)
	}
	return b.Graph(), []int{root}
}
