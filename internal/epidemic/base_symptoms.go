package epidemic

import "math"

// Base symptom catalogue. These are shared immutable values; every pathogen
// generation that references one holds the same pointer.

// Undying makes the immune system unable to clear the pathogen: the
// recovery duration is pushed to infinity and the catch chance close to
// certainty. The infinite duration marks the symptom irreversible.
func Undying() *Symptom {
	return MustSymptom(SymptomConfig{
		Name:               "Immunity Immunity",
		Description:        "The immune system can never beat the pathogen, and the person will never recover",
		CatchChanceDelta:   99.9999,
		SeverityDelta:      0.01,
		DurationMultiplier: math.Inf(1),
	})
}

// NeverImmune defeats permanent immunity: when a host does recover, the
// recovery effect strips the latched immunity so the host is immediately
// susceptible again.
func NeverImmune() *Symptom {
	return MustSymptom(SymptomConfig{
		Name:             "Immunity Escape",
		Description:      "Recovery confers no lasting immunity against this pathogen",
		CatchChanceDelta: 99.9999,
		SeverityDelta:    0.01,
		RecoveryEffect: RecoveryEffectFunc(func(host Host) {
			host.RemoveImmunity()
		}),
	})
}

// RunnyNose is the usual mild entry point of a symptom chain.
func RunnyNose() *Symptom {
	return MustSymptom(SymptomConfig{
		Name:             "A Runny Nose",
		Description:      "Some serious leakage problems",
		CatchChanceDelta: 25,
		SeverityDelta:    0.01,
	})
}

// Cough raises both transmission and severity.
func Cough() *Symptom {
	return MustSymptom(SymptomConfig{
		Name:             "Cough",
		Description:      "An upper respiratory cough",
		CatchChanceDelta: 35,
		SeverityDelta:    10,
	})
}
