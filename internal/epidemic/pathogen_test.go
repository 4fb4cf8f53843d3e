package epidemic

import (
	"math"
	"testing"
)

// twoNodeGraph builds root -> next with the given edge probability and
// returns the graph along with both ids.
func twoNodeGraph(root, next *Symptom, probability float64) (*SymptomGraph, int, int) {
	b := NewSymptomMapBuilder()
	rootID := b.Add(root)
	nextID, err := b.Chain(rootID, next, probability)
	if err != nil {
		panic(err)
	}
	return b.Graph(), rootID, nextID
}

func TestPathogen_Baselines(t *testing.T) {
	g := NewSymptomGraph()
	p := NewPathogen("bare", 1000, 7*Day, 2*Day, g, nil)

	if p.CatchChance() >= 0.001 {
		t.Errorf("Expected vanishing baseline catch chance, got %v", p.CatchChance())
	}
	if got := p.InternalSpreadRate(); math.Abs(got-0.01) > 1e-12 {
		t.Errorf("Expected baseline internal spread 0.01, got %v", got)
	}
	if p.AverageRecovery() != 7*Day || p.RecoverySpread() != 2*Day {
		t.Errorf("Recovery bounds not preserved: %v / %v", p.AverageRecovery(), p.RecoverySpread())
	}
}

func TestPathogen_AcquireRemoveRoundTrip(t *testing.T) {
	// Deltas of 50 and 75 give complement factors 0.5 and 0.25, which are
	// exact in floating point, so removal restores the prior values
	// bit-for-bit.
	extra := MustSymptom(SymptomConfig{
		Name:               "exact",
		CatchChanceDelta:   50,
		SeverityDelta:      75,
		DurationMultiplier: 2,
	})
	g, rootID, nextID := twoNodeGraph(mildSymptom("root"), extra, 1)
	p := NewPathogen("round-trip", 1000, 7*Day, 2*Day, g, []int{rootID})

	beforeCatch := p.CatchChance()
	beforeSeverity := p.Severity()
	beforeRecovery := p.AverageRecovery()

	p.acquireSymptom(nextID, extra)
	if !p.HasSymptom(nextID) {
		t.Fatal("symptom not recorded as acquired")
	}
	if p.CatchChance() <= beforeCatch {
		t.Error("catch chance should rise when a positive delta is folded in")
	}
	if p.AverageRecovery() != 2*beforeRecovery {
		t.Errorf("Expected recovery %v, got %v", 2*beforeRecovery, p.AverageRecovery())
	}

	p.removeSymptom(nextID, extra)
	if p.HasSymptom(nextID) {
		t.Fatal("symptom still recorded after removal")
	}
	if p.CatchChance() != beforeCatch {
		t.Errorf("catch chance did not round-trip: %v != %v", p.CatchChance(), beforeCatch)
	}
	if p.Severity() != beforeSeverity {
		t.Errorf("severity did not round-trip: %v != %v", p.Severity(), beforeSeverity)
	}
	if p.AverageRecovery() != beforeRecovery {
		t.Errorf("recovery did not round-trip: %v != %v", p.AverageRecovery(), beforeRecovery)
	}
}

func TestPathogen_MutateGainsCertainEdge(t *testing.T) {
	g, rootID, nextID := twoNodeGraph(mildSymptom("root"), mildSymptom("next"), 1)
	p := NewPathogen("gainer", 1000, 7*Day, 2*Day, g, []int{rootID})

	next := p.Mutate()
	if !next.HasSymptom(nextID) {
		t.Error("a probability-1 edge should always be gained")
	}
	if p.HasSymptom(nextID) {
		t.Error("Mutate must not modify the receiver")
	}
	if next.CatchChance() <= p.CatchChance() {
		t.Error("gained symptom should raise the catch chance")
	}
}

func TestPathogen_MutateNeverGainsZeroEdge(t *testing.T) {
	g, rootID, nextID := twoNodeGraph(mildSymptom("root"), mildSymptom("next"), 0)
	p := NewPathogen("stuck", 1000, 7*Day, 2*Day, g, []int{rootID})

	for i := 0; i < 100; i++ {
		p = p.Mutate()
	}
	if p.HasSymptom(nextID) {
		t.Error("a probability-0 edge must never be gained")
	}
}

func TestPathogen_ScaleDurationSaturates(t *testing.T) {
	if got := scaleDuration(7*Day, math.Inf(1)); got != NeverRecovers {
		t.Errorf("Expected NeverRecovers on infinite factor, got %v", got)
	}
	if got := scaleDuration(NeverRecovers, 2); got != NeverRecovers {
		t.Errorf("Expected NeverRecovers on overflow, got %v", got)
	}
	if got := scaleDuration(7*Day, 1); got != 7*Day {
		t.Errorf("Factor 1 must be the identity, got %v", got)
	}
}

type recordingHost struct {
	removed int
}

func (h *recordingHost) RemoveImmunity() { h.removed++ }

func TestPathogen_RecoveryEffectsSurviveCloning(t *testing.T) {
	withEffect := MustSymptom(SymptomConfig{
		Name: "escape",
		RecoveryEffect: RecoveryEffectFunc(func(host Host) {
			host.RemoveImmunity()
		}),
	})
	g, rootID, _ := twoNodeGraph(withEffect, mildSymptom("next"), 1)
	p := NewPathogen("effects", 1000, 7*Day, 2*Day, g, []int{rootID})

	next := p.Mutate()
	host := &recordingHost{}
	next.performRecovery(host)
	if host.removed != 1 {
		t.Errorf("Expected 1 recovery effect call, got %d", host.removed)
	}
}

func TestPathogen_RemovedSymptomEffectIsTombstoned(t *testing.T) {
	withEffect := MustSymptom(SymptomConfig{
		Name: "removable-effect",
		RecoveryEffect: RecoveryEffectFunc(func(host Host) {
			host.RemoveImmunity()
		}),
	})
	g := NewSymptomGraph()
	_ = g.AddNode(0, withEffect)
	p := NewPathogen("tombstone", 1000, 7*Day, 2*Day, g, []int{0})

	p.removeSymptom(0, withEffect)

	host := &recordingHost{}
	p.performRecovery(host)
	if host.removed != 0 {
		t.Errorf("Removed symptom's effect still fired %d times", host.removed)
	}
}

func TestCreatePathogen_StampsNameAndSeeds(t *testing.T) {
	p := CreatePathogen(Virus{}, "H1N1", 0)
	if p.Name() != "Virus H1N1" {
		t.Errorf("Expected name 'Virus H1N1', got %q", p.Name())
	}
	if len(p.Acquired()) == 0 {
		t.Error("Expected the starter symptom to be acquired")
	}
	if p.MinCountForSymptoms() != 1_000_000 {
		t.Errorf("Expected virus threshold 1000000, got %d", p.MinCountForSymptoms())
	}
}
