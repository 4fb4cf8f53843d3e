package epidemic

import (
	"math"
	"testing"
)

func TestNewSymptom_RejectsOutOfRangeDeltas(t *testing.T) {
	cases := []struct {
		name string
		cfg  SymptomConfig
	}{
		{"catch chance at 100", SymptomConfig{Name: "x", CatchChanceDelta: 100}},
		{"catch chance at -100", SymptomConfig{Name: "x", CatchChanceDelta: -100}},
		{"severity above 100", SymptomConfig{Name: "x", SeverityDelta: 250}},
		{"fatality NaN", SymptomConfig{Name: "x", FatalityDelta: math.NaN()}},
		{"internal spread below -100", SymptomConfig{Name: "x", InternalSpreadDelta: -150}},
		{"negative duration multiplier", SymptomConfig{Name: "x", DurationMultiplier: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSymptom(tc.cfg); err == nil {
				t.Errorf("Expected error for %s", tc.name)
			}
		})
	}
}

func TestNewSymptom_ZeroMultipliersDefaultToOne(t *testing.T) {
	s, err := NewSymptom(SymptomConfig{Name: "plain", CatchChanceDelta: 5})
	if err != nil {
		t.Fatalf("NewSymptom failed: %v", err)
	}
	if s.DurationMultiplier() != 1 {
		t.Errorf("Expected duration multiplier 1, got %v", s.DurationMultiplier())
	}
	if s.SpreadRangeMultiplier() != 1 {
		t.Errorf("Expected spread range multiplier 1, got %v", s.SpreadRangeMultiplier())
	}
}

func TestSymptom_CanReverse(t *testing.T) {
	plain := MustSymptom(SymptomConfig{Name: "plain", CatchChanceDelta: 5})
	if !plain.CanReverse() {
		t.Error("plain symptom should be reversible")
	}

	oneShot := MustSymptom(SymptomConfig{Name: "one-shot", OnAcquire: func() {}})
	if oneShot.CanReverse() {
		t.Error("symptom with an acquisition side effect should be irreversible")
	}

	undying := MustSymptom(SymptomConfig{Name: "undying", DurationMultiplier: math.Inf(1)})
	if undying.CanReverse() {
		t.Error("symptom with an infinite duration should be irreversible")
	}
}

func TestSymptom_FireAcquireRunsOnce(t *testing.T) {
	calls := 0
	s := MustSymptom(SymptomConfig{Name: "counted", OnAcquire: func() { calls++ }})
	s.fireAcquire()
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestSymptomMapBuilder(t *testing.T) {
	b := NewSymptomMapBuilder()
	root := b.Add(mildSymptom("root"))
	if root != 0 {
		t.Errorf("Expected first id 0, got %d", root)
	}

	next, err := b.Chain(root, mildSymptom("next"), 0.25)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	if next != 1 {
		t.Errorf("Expected second id 1, got %d", next)
	}

	g := b.Graph()
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("Expected 2 nodes and 1 edge, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
	if w, ok := g.Weight(root, next); !ok || w != 0.25 {
		t.Errorf("Expected edge weight 0.25, got %v (ok=%v)", w, ok)
	}
}
