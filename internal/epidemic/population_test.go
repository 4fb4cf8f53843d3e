package epidemic

import (
	"sync"
	"testing"
)

func TestNewPopulation_ExactSizeAndUniqueIDs(t *testing.T) {
	factory := NewPersonFactory()
	pop := NewPopulation(factory, 0, 1000, UniformDistribution(0, 100))

	if pop.Count() != 1000 {
		t.Fatalf("Expected 1000 agents, got %d", pop.Count())
	}
	if pop.OriginalCount() != 1000 {
		t.Errorf("Expected original count 1000, got %d", pop.OriginalCount())
	}

	seen := make(map[uint64]bool, 1000)
	for _, p := range pop.People() {
		if seen[p.ID()] {
			t.Fatalf("duplicate id %d", p.ID())
		}
		seen[p.ID()] = true
	}
}

func TestNewPopulation_NarrowDistributionStaysInRange(t *testing.T) {
	factory := NewPersonFactory()
	pop := NewPopulation(factory, 0, 200, UniformDistribution(20, 30))

	for _, p := range pop.People() {
		years := Years(p.Age())
		// Rounding shortfall is padded with newborns.
		if years != 0 && (years < 20 || years > 30) {
			t.Fatalf("agent aged %d outside [20, 30]", years)
		}
	}
}

func TestNewPopulation_SharedFactoryAcrossConcurrentBuilds(t *testing.T) {
	factory := NewPersonFactory()
	const builders = 10
	const size = 100

	pops := make([]*Population, builders)
	var wg sync.WaitGroup
	for i := 0; i < builders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pops[i] = NewPopulation(factory, 0, size, UniformDistribution(0, 100))
		}(i)
	}
	wg.Wait()

	if factory.Created() != builders*size {
		t.Fatalf("Expected %d agents created, got %d", builders*size, factory.Created())
	}

	seen := make(map[uint64]bool, builders*size)
	for _, pop := range pops {
		for _, p := range pop.People() {
			if seen[p.ID()] {
				t.Fatalf("duplicate id %d across populations", p.ID())
			}
			seen[p.ID()] = true
		}
	}
}

func TestPopulation_UpdateWithoutInfectionIsHarmless(t *testing.T) {
	factory := NewPersonFactory()
	pop := NewPopulation(factory, 0, 1000, UniformDistribution(10, 60))

	before := make(map[uint64]int, 1000)
	for _, p := range pop.People() {
		before[p.ID()] = p.HealthPoints()
	}

	// 1000 ticks is under a simulated day, so no agent crosses a birthday
	// and no ceiling moves.
	pop.Update(1000)

	if pop.Ticks() != 1000 {
		t.Errorf("Expected 1000 ticks recorded, got %d", pop.Ticks())
	}
	for _, p := range pop.People() {
		if p.HealthPoints() != before[p.ID()] {
			t.Fatalf("agent %d health changed without infection: %d -> %d",
				p.ID(), before[p.ID()], p.HealthPoints())
		}
	}

	stats := pop.CurrentStats()
	if stats.Infected != 0 || stats.Dead != 0 || stats.TotalEverInfected != 0 {
		t.Errorf("healthy population produced nonzero counters: %+v", stats)
	}
}

func TestPopulation_InfectOne(t *testing.T) {
	factory := NewPersonFactory()
	pop := NewPopulation(factory, 0, 50, UniformDistribution(20, 40))
	pathogen := hotPathogen(100, 300*Day, 1*Day)

	if !pop.InfectOne(pathogen) {
		t.Fatal("InfectOne failed")
	}
	if pop.InfectedCount() != 1 {
		t.Errorf("Expected 1 infected, got %d", pop.InfectedCount())
	}
	if pop.TotalEverInfected() != 1 {
		t.Errorf("Expected total ever infected 1, got %d", pop.TotalEverInfected())
	}
}

func TestPopulation_InfectOnePanicsWhenEmpty(t *testing.T) {
	factory := NewPersonFactory()
	pop := &Population{factory: factory, logger: NoOpLogger{}}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on empty population")
		}
	}()
	pop.InfectOne(hotPathogen(100, 300*Day, 1*Day))
}

func TestPopulation_SweepDropsRecoveredFromInfectedSubset(t *testing.T) {
	factory := NewPersonFactory()
	pop := NewPopulation(factory, 0, 20, UniformDistribution(20, 40))
	quick := hotPathogen(1, 2*Day, 1*Day)

	pop.InfectOne(quick)
	if pop.InfectedCount() != 1 {
		t.Fatal("seeding failed")
	}

	// The sampled recovery moment is under three days, stretched at worst
	// by the minimum condition factor of 0.30 to just under ten days.
	// Eleven simulated days covers every draw.
	pop.Update(11 * 24 * 60)

	if pop.InfectedCount() != 0 {
		t.Errorf("recovered agent still in infected subset")
	}
	stats := pop.CurrentStats()
	if stats.Recovered != 1 {
		t.Errorf("Expected 1 recovered, got %d", stats.Recovered)
	}
	if stats.Population != 20 {
		t.Errorf("Expected population 20, got %d", stats.Population)
	}
}

func TestPopulation_SweepRemovesDead(t *testing.T) {
	factory := NewPersonFactory()
	pop := NewPopulation(factory, 0, 10, UniformDistribution(20, 40))

	victim := pop.People()[0]
	victim.mu.Lock()
	victim.healthPoints = 0
	victim.mu.Unlock()

	pop.Update(1)

	if pop.Count() != 9 {
		t.Errorf("Expected 9 agents after sweep, got %d", pop.Count())
	}
	stats := pop.CurrentStats()
	if stats.Dead != 1 {
		t.Errorf("Expected 1 death recorded, got %d", stats.Dead)
	}
	for _, p := range pop.People() {
		if p.ID() == victim.ID() {
			t.Error("dead agent still present")
		}
	}
}

func TestPopulation_SnapshotMatchesCount(t *testing.T) {
	factory := NewPersonFactory()
	pop := NewPopulation(factory, 0, 25, UniformDistribution(0, 100))

	views := pop.Snapshot()
	if len(views) != 25 {
		t.Fatalf("Expected 25 views, got %d", len(views))
	}
	for _, v := range views {
		if v.Dead {
			t.Errorf("fresh agent %d reported dead", v.ID)
		}
	}
}
