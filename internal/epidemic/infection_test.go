package epidemic

import (
	"testing"
	"time"
)

// hotPathogen builds a pathogen with a low symptom threshold and a nearly
// certain in-host spread, so infections turn active within a few ticks.
func hotPathogen(threshold int, avg, spread time.Duration) *Pathogen {
	virulent := MustSymptom(SymptomConfig{
		Name:                "virulent",
		CatchChanceDelta:    99.9999,
		InternalSpreadDelta: 99,
	})
	g := NewSymptomGraph()
	if err := g.AddNode(0, virulent); err != nil {
		panic(err)
	}
	return NewPathogen("hot", threshold, avg, spread, g, []int{0})
}

func TestNewInfection_PanicsOnInconsistentRecoveryBounds(t *testing.T) {
	g := NewSymptomGraph()
	p := NewPathogen("bad-bounds", 1000, 2*Day, 2*Day, g, nil)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when spread is not below average")
		}
	}()
	NewInfection(p, 1.0)
}

func TestNewInfection_SamplesRecoveryWithinBounds(t *testing.T) {
	g := NewSymptomGraph()
	p := NewPathogen("bounded", 1000, 4*Day, 1*Day, g, nil)

	for i := 0; i < 50; i++ {
		inf := NewInfection(p, 1.0)
		if inf.RecoverAfter() < 3*Day || inf.RecoverAfter() >= 5*Day {
			t.Fatalf("recovery moment %v outside [3d, 5d)", inf.RecoverAfter())
		}
	}
}

func TestNewInfection_ConditionFactorProlongsRecovery(t *testing.T) {
	g := NewSymptomGraph()
	p := NewPathogen("prolonged", 1000, 4*Day, 1*Day, g, nil)

	// A factor of 0.5 doubles the sampled duration, pushing every sample
	// past the healthy-host maximum of 5 days.
	inf := NewInfection(p, 0.5)
	if inf.RecoverAfter() < 6*Day {
		t.Errorf("Expected recovery beyond 6d for a weakened host, got %v", inf.RecoverAfter())
	}
}

func TestInfection_GrowthReachesActive(t *testing.T) {
	p := hotPathogen(100, 300*Day, 1*Day)
	inf := NewInfection(p, 1.0)

	if inf.ActiveCase() {
		t.Fatal("fresh infection must start incubating")
	}

	for i := 0; i < 10_000 && !inf.ActiveCase(); i++ {
		inf.Update(time.Minute)
	}
	if !inf.ActiveCase() {
		t.Fatal("infection never reached the active state")
	}
	if inf.PathogenCount() <= 100 {
		t.Errorf("active case must be past the threshold, count=%d", inf.PathogenCount())
	}
}

func TestInfection_RecoversAfterSampledDuration(t *testing.T) {
	// Threshold 1 is already passed by the initial load, so the infection
	// skips incubation and ages straight toward recovery.
	p := hotPathogen(1, 2*Day, 1*Day)
	inf := NewInfection(p, 1.0)

	if !inf.ActiveCase() {
		t.Fatal("expected an immediately active case")
	}

	inf.Update(4 * Day)
	if !inf.Recovered() {
		t.Fatal("infection should have recovered after 4 days")
	}
	if inf.ActiveCase() {
		t.Error("a recovered infection is not an active case")
	}

	// Recovery is terminal.
	inf.Update(Year)
	if !inf.Recovered() {
		t.Error("recovery latch must not reset")
	}
}

func TestInfection_UndyingNeverRecovers(t *testing.T) {
	b := NewSymptomMapBuilder()
	root := b.Add(Undying())
	p := NewPathogen("forever", 1, 7*Day, 2*Day, b.Graph(), []int{root})

	if p.AverageRecovery() != NeverRecovers {
		t.Fatalf("Expected NeverRecovers average, got %v", p.AverageRecovery())
	}

	inf := NewInfection(p, 1.0)
	for i := 0; i < 100; i++ {
		inf.Update(Year)
	}
	if inf.Recovered() {
		t.Error("an undying infection must never recover")
	}
	if !inf.ActiveCase() {
		t.Error("an undying infection past its threshold stays active")
	}
}
