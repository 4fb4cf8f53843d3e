package client

import (
	"github.com/JoshuaRadin37/Infection/pkg/scenario"
)

// ScenarioBuilder provides a fluent API for authoring scenario
// configurations. Use it to define the population shape and the pathogen's
// symptom graph without writing YAML.
type ScenarioBuilder struct {
	name           string
	population     scenario.PopulationConfig
	pathogen       *PathogenBuilder
	ticksPerStep   int
	steps          int
	seedInfections int
}

// NewScenario creates a new scenario builder with the given name.
func NewScenario(name string) *ScenarioBuilder {
	return &ScenarioBuilder{name: name}
}

// Population sets the population size and growth rate.
func (sb *ScenarioBuilder) Population(size int, growthRate float64) *ScenarioBuilder {
	sb.population.Size = size
	sb.population.GrowthRate = growthRate
	return sb
}

// UniformAges selects a uniform age distribution over [minAge, maxAge) years.
func (sb *ScenarioBuilder) UniformAges(minAge, maxAge int) *ScenarioBuilder {
	sb.population.Distribution = scenario.DistributionConfig{
		Type:   "uniform",
		MinAge: minAge,
		MaxAge: maxAge,
	}
	return sb
}

// Pathogen sets the scenario's pathogen.
func (sb *ScenarioBuilder) Pathogen(pb *PathogenBuilder) *ScenarioBuilder {
	sb.pathogen = pb
	return sb
}

// TicksPerStep sets how many simulated minutes each step advances.
func (sb *ScenarioBuilder) TicksPerStep(ticks int) *ScenarioBuilder {
	sb.ticksPerStep = ticks
	return sb
}

// Steps sets the default number of steps a batch simulation should run.
func (sb *ScenarioBuilder) Steps(steps int) *ScenarioBuilder {
	sb.steps = steps
	return sb
}

// SeedInfections sets how many agents start infected.
func (sb *ScenarioBuilder) SeedInfections(count int) *ScenarioBuilder {
	sb.seedInfections = count
	return sb
}

// Build converts the builder to a scenario.Config that can be used with
// CreateRun or written out as YAML.
func (sb *ScenarioBuilder) Build() scenario.Config {
	cfg := scenario.Config{
		Name:           sb.name,
		Population:     sb.population,
		TicksPerStep:   sb.ticksPerStep,
		Steps:          sb.steps,
		SeedInfections: sb.seedInfections,
	}
	if sb.pathogen != nil {
		cfg.Pathogen = sb.pathogen.Build()
	}
	return cfg
}

// PathogenBuilder provides a fluent API for authoring the starting
// pathogen and its symptom mutation graph.
type PathogenBuilder struct {
	name                string
	minCountForSymptoms int
	averageRecoveryDays float64
	recoverySpreadDays  float64
	preMutations        int
	symptoms            []scenario.SymptomConfig
	edges               []scenario.EdgeConfig
}

// NewPathogen creates a new pathogen builder with the given name.
func NewPathogen(name string) *PathogenBuilder {
	return &PathogenBuilder{
		name:                name,
		minCountForSymptoms: 1_000_000,
	}
}

// MinCountForSymptoms sets the internal pathogen count an infection must
// reach before it is contagious and symptomatic.
func (pb *PathogenBuilder) MinCountForSymptoms(count int) *PathogenBuilder {
	pb.minCountForSymptoms = count
	return pb
}

// Recovery sets the average recovery time and its spread, in days.
// The spread must stay strictly below the average.
func (pb *PathogenBuilder) Recovery(averageDays, spreadDays float64) *PathogenBuilder {
	pb.averageRecoveryDays = averageDays
	pb.recoverySpreadDays = spreadDays
	return pb
}

// PreMutations sets how many mutation rounds to apply before the pathogen
// first infects anyone.
func (pb *PathogenBuilder) PreMutations(rounds int) *PathogenBuilder {
	pb.preMutations = rounds
	return pb
}

// Symptom adds a symptom node to the graph.
func (pb *PathogenBuilder) Symptom(sc scenario.SymptomConfig) *PathogenBuilder {
	pb.symptoms = append(pb.symptoms, sc)
	return pb
}

// Edge adds a mutation edge between two named symptoms.
func (pb *PathogenBuilder) Edge(from, to string, probability float64) *PathogenBuilder {
	pb.edges = append(pb.edges, scenario.EdgeConfig{
		From:        from,
		To:          to,
		Probability: probability,
	})
	return pb
}

// Build converts the builder to a PathogenConfig.
func (pb *PathogenBuilder) Build() scenario.PathogenConfig {
	return scenario.PathogenConfig{
		Name:                pb.name,
		MinCountForSymptoms: pb.minCountForSymptoms,
		AverageRecoveryDays: pb.averageRecoveryDays,
		RecoverySpreadDays:  pb.recoverySpreadDays,
		PreMutations:        pb.preMutations,
		Symptoms:            pb.symptoms,
		Edges:               pb.edges,
	}
}
