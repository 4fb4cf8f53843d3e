// Package scenario loads, validates, and builds simulation scenarios from
// YAML documents: a population shape plus a pathogen and its symptom
// mutation graph.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoshuaRadin37/Infection/internal/epidemic"
)

// Config is the root of a scenario document.
type Config struct {
	Name           string           `yaml:"name"`
	Population     PopulationConfig `yaml:"population"`
	Pathogen       PathogenConfig   `yaml:"pathogen"`
	TicksPerStep   int              `yaml:"ticks_per_step"`
	Steps          int              `yaml:"steps"`
	SeedInfections int              `yaml:"seed_infections"`
}

// PopulationConfig shapes the agent population.
type PopulationConfig struct {
	Size         int                `yaml:"size"`
	GrowthRate   float64            `yaml:"growth_rate"`
	Distribution DistributionConfig `yaml:"distribution"`
}

// DistributionConfig selects an age distribution.
type DistributionConfig struct {
	Type   string `yaml:"type"`
	MinAge int    `yaml:"min_age"`
	MaxAge int    `yaml:"max_age"`
}

// PathogenConfig authors the starting pathogen.
type PathogenConfig struct {
	Name                string          `yaml:"name"`
	MinCountForSymptoms int             `yaml:"min_count_for_symptoms"`
	AverageRecoveryDays float64         `yaml:"average_recovery_days"`
	RecoverySpreadDays  float64         `yaml:"recovery_spread_days"`
	PreMutations        int             `yaml:"pre_mutations"`
	Symptoms            []SymptomConfig `yaml:"symptoms"`
	Edges               []EdgeConfig    `yaml:"edges"`
}

// SymptomConfig authors one symptom node. YAML's .inf literal on
// duration_multiplier produces an undying symptom. The recovery_effect
// field names a built-in capability; "remove_immunity" is the only one.
type SymptomConfig struct {
	Name                  string  `yaml:"name"`
	Description           string  `yaml:"description"`
	CatchChanceDelta      float64 `yaml:"catch_chance_delta"`
	SeverityDelta         float64 `yaml:"severity_delta"`
	FatalityDelta         float64 `yaml:"fatality_delta"`
	InternalSpreadDelta   float64 `yaml:"internal_spread_delta"`
	DurationMultiplier    float64 `yaml:"duration_multiplier"`
	SpreadRangeMultiplier float64 `yaml:"spread_range_multiplier"`
	RecoveryEffect        string  `yaml:"recovery_effect"`
	Initial               bool    `yaml:"initial"`
}

// EdgeConfig authors one mutation edge between named symptoms.
type EdgeConfig struct {
	From        string  `yaml:"from"`
	To          string  `yaml:"to"`
	Probability float64 `yaml:"probability"`
}

// RecoveryEffectRemoveImmunity is the name of the built-in recovery effect
// that strips immunity after recovery.
const RecoveryEffectRemoveImmunity = "remove_immunity"

// Parse decodes a scenario document.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	return cfg, nil
}

// Load reads and decodes a scenario file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// Build validates the config and assembles the population and the starting
// pathogen. The factory supplies agent ids; share one factory across every
// population whose ids must stay unique.
func Build(cfg Config, factory *epidemic.PersonFactory) (*epidemic.Population, *epidemic.Pathogen, error) {
	if err := Validate(cfg); err != nil {
		return nil, nil, err
	}

	pathogen, err := buildPathogen(cfg.Pathogen)
	if err != nil {
		return nil, nil, err
	}

	dist := epidemic.UniformDistribution(cfg.Population.Distribution.MinAge, cfg.Population.Distribution.MaxAge)
	pop := epidemic.NewPopulation(factory, cfg.Population.GrowthRate, cfg.Population.Size, dist)
	return pop, pathogen, nil
}

func buildPathogen(cfg PathogenConfig) (*epidemic.Pathogen, error) {
	builder := epidemic.NewSymptomMapBuilder()
	ids := make(map[string]int, len(cfg.Symptoms))
	var initial []int

	for _, sc := range cfg.Symptoms {
		symptom, err := epidemic.NewSymptom(epidemic.SymptomConfig{
			Name:                  sc.Name,
			Description:           sc.Description,
			CatchChanceDelta:      sc.CatchChanceDelta,
			SeverityDelta:         sc.SeverityDelta,
			FatalityDelta:         sc.FatalityDelta,
			InternalSpreadDelta:   sc.InternalSpreadDelta,
			DurationMultiplier:    sc.DurationMultiplier,
			SpreadRangeMultiplier: sc.SpreadRangeMultiplier,
			RecoveryEffect:        recoveryEffectFor(sc.RecoveryEffect),
		})
		if err != nil {
			return nil, fmt.Errorf("building symptom %q: %w", sc.Name, err)
		}
		id := builder.Add(symptom)
		ids[sc.Name] = id
		if sc.Initial {
			initial = append(initial, id)
		}
	}

	for _, ec := range cfg.Edges {
		if err := builder.Connect(ids[ec.From], ids[ec.To], ec.Probability); err != nil {
			return nil, fmt.Errorf("connecting %q -> %q: %w", ec.From, ec.To, err)
		}
	}

	p := epidemic.NewPathogen(
		cfg.Name,
		cfg.MinCountForSymptoms,
		daysToDuration(cfg.AverageRecoveryDays),
		daysToDuration(cfg.RecoverySpreadDays),
		builder.Graph(),
		initial,
	)
	for i := 0; i < cfg.PreMutations; i++ {
		p = p.Mutate()
	}
	return p, nil
}

func recoveryEffectFor(name string) epidemic.RecoveryEffect {
	if name == RecoveryEffectRemoveImmunity {
		return epidemic.RecoveryEffectFunc(func(host epidemic.Host) {
			host.RemoveImmunity()
		})
	}
	return nil
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(epidemic.Day))
}
