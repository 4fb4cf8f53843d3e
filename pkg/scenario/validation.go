package scenario

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError collects every issue found in a scenario so an author
// sees them all at once.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid scenario: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "scenario validation errors: " + strings.Join(e.Issues, "; ")
}

// Add records one issue.
func (e *ValidationError) Add(format string, v ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, v...))
}

// HasIssues reports whether anything was recorded.
func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// Known distribution types.
var validDistributions = map[string]bool{
	"uniform": true,
}

// Known recovery effect names.
var validRecoveryEffects = map[string]bool{
	"":                           true,
	RecoveryEffectRemoveImmunity: true,
}

// Validate checks a scenario config before it is built. It returns a
// *ValidationError holding every issue, or nil.
func Validate(cfg Config) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("scenario name is required")
	}

	validatePopulation(cfg, err)
	validatePathogen(cfg.Pathogen, err)

	if cfg.TicksPerStep < 0 {
		err.Add("ticks_per_step cannot be negative")
	}
	if cfg.Steps < 0 {
		err.Add("steps cannot be negative")
	}
	if cfg.SeedInfections < 0 {
		err.Add("seed_infections cannot be negative")
	}
	if cfg.SeedInfections > cfg.Population.Size {
		err.Add("seed_infections (%d) exceeds population size (%d)", cfg.SeedInfections, cfg.Population.Size)
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func validatePopulation(cfg Config, err *ValidationError) {
	p := cfg.Population
	if p.Size <= 0 {
		err.Add("population size must be positive, got %d", p.Size)
	}
	d := p.Distribution
	if !validDistributions[d.Type] {
		err.Add("unknown distribution type %q", d.Type)
	}
	if d.MinAge < 0 || d.MaxAge > 120 {
		err.Add("distribution ages must lie in [0, 120], got [%d, %d]", d.MinAge, d.MaxAge)
	}
	if d.MinAge >= d.MaxAge {
		err.Add("distribution min_age %d must be below max_age %d", d.MinAge, d.MaxAge)
	}
}

func validatePathogen(p PathogenConfig, err *ValidationError) {
	if p.Name == "" {
		err.Add("pathogen name is required")
	}
	if p.MinCountForSymptoms <= 0 {
		err.Add("pathogen min_count_for_symptoms must be positive, got %d", p.MinCountForSymptoms)
	}
	if p.AverageRecoveryDays <= 0 {
		err.Add("pathogen average_recovery_days must be positive, got %v", p.AverageRecoveryDays)
	}
	if p.RecoverySpreadDays < 0 {
		err.Add("pathogen recovery_spread_days cannot be negative, got %v", p.RecoverySpreadDays)
	}
	if p.RecoverySpreadDays >= p.AverageRecoveryDays {
		err.Add("pathogen recovery_spread_days (%v) must be below average_recovery_days (%v)", p.RecoverySpreadDays, p.AverageRecoveryDays)
	}
	if p.PreMutations < 0 {
		err.Add("pathogen pre_mutations cannot be negative")
	}

	names := make(map[string]bool, len(p.Symptoms))
	for _, s := range p.Symptoms {
		if s.Name == "" {
			err.Add("symptom name is required")
			continue
		}
		if names[s.Name] {
			err.Add("duplicate symptom name %q", s.Name)
		}
		names[s.Name] = true

		for label, delta := range map[string]float64{
			"catch_chance_delta":    s.CatchChanceDelta,
			"severity_delta":        s.SeverityDelta,
			"fatality_delta":        s.FatalityDelta,
			"internal_spread_delta": s.InternalSpreadDelta,
		} {
			if delta <= -100 || delta >= 100 {
				err.Add("symptom %q: %s %v outside the open interval (-100, 100)", s.Name, label, delta)
			}
		}
		if s.DurationMultiplier < 0 || s.SpreadRangeMultiplier < 0 {
			err.Add("symptom %q: negative duration multipliers are not meaningful", s.Name)
		}
		if math.IsInf(s.SpreadRangeMultiplier, 1) {
			err.Add("symptom %q: spread_range_multiplier cannot be infinite", s.Name)
		}
		if !validRecoveryEffects[s.RecoveryEffect] {
			err.Add("symptom %q: unknown recovery_effect %q", s.Name, s.RecoveryEffect)
		}
	}

	for _, e := range p.Edges {
		if !names[e.From] {
			err.Add("edge references unknown symptom %q", e.From)
		}
		if !names[e.To] {
			err.Add("edge references unknown symptom %q", e.To)
		}
		if e.Probability < 0 || e.Probability > 1 {
			err.Add("edge %q -> %q: probability %v outside [0, 1]", e.From, e.To, e.Probability)
		}
	}
}
