package epidemic

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// PopulationDistribution maps an age in years to the fraction of the
// population holding that age. Its support is [0, 120] and it should
// integrate to roughly one over that range; any rounding shortfall is
// padded with newborns.
type PopulationDistribution func(ageYears int) float64

// UniformDistribution spreads the population evenly across [minAge, maxAge].
func UniformDistribution(minAge, maxAge int) PopulationDistribution {
	return func(ageYears int) float64 {
		if ageYears < minAge || ageYears > maxAge {
			return 0
		}
		return 1.0 / float64(maxAge-minAge)
	}
}

// Bounds of the pre-existing-condition factor sampled per agent; values
// below one weaken the agent and prolong its recoveries.
const (
	minPreExisting = 0.30
	maxPreExisting = 1.00
)

// Population is the top-level container of agents: everyone alive, plus the
// subset currently infected. The infected subset is a real second
// collection, not a derived view; every path that changes infection status
// is responsible for keeping it consistent. The two collections each sit
// behind their own mutex, held only for structural changes.
type Population struct {
	factory       *PersonFactory
	growthRate    float64
	originalCount int

	peopleMu sync.Mutex
	people   []*Person

	infectedMu sync.Mutex
	infected   []*Person

	ticks             atomic.Uint64
	totalEverInfected atomic.Uint64
	deaths            atomic.Uint64

	logger Logger
}

// NewPopulation deterministically partitions size agents across ages 0-120
// according to the distribution, assigning each a uniformly random sex and
// a pre-existing-condition factor from [0.30, 1.00]. Ids come from the
// shared factory, so populations built concurrently from the same factory
// never collide. Rounding shortfall is padded with newborns; exactly size
// agents come out.
func NewPopulation(factory *PersonFactory, growthRate float64, size int, distribution PopulationDistribution) *Population {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	people := make([]*Person, 0, size)

build:
	for age := 0; age <= 120; age++ {
		count := int(float64(size) * distribution(age))
		for i := 0; i < count; i++ {
			if len(people) == size {
				break build
			}
			people = append(people, factory.NewPerson(
				randomAgeInYear(rng, age),
				randomSex(rng),
				minPreExisting+rng.Float64()*(maxPreExisting-minPreExisting),
			))
		}
	}
	for len(people) < size {
		people = append(people, factory.NewPerson(0, randomSex(rng), 1.0))
	}

	return &Population{
		factory:       factory,
		growthRate:    growthRate,
		originalCount: size,
		people:        people,
		logger:        NoOpLogger{},
	}
}

func randomAgeInYear(rng *rand.Rand, years int) Age {
	return AgeOf(years, rng.Intn(12), rng.Intn(28))
}

func randomSex(rng *rand.Rand) Sex {
	if rng.Intn(2) == 0 {
		return Male
	}
	return Female
}

// SetLogger injects a logger; nil restores the no-op default.
func (pop *Population) SetLogger(l Logger) {
	if l == nil {
		l = NoOpLogger{}
	}
	pop.logger = l
}

// Count returns the number of live agents.
func (pop *Population) Count() int {
	pop.peopleMu.Lock()
	defer pop.peopleMu.Unlock()
	return len(pop.people)
}

// OriginalCount returns the population size at construction.
func (pop *Population) OriginalCount() int { return pop.originalCount }

// GrowthRate returns the configured growth rate. It is a hook for future
// demographic turnover; the simulation tick does not exercise it.
func (pop *Population) GrowthRate() float64 { return pop.growthRate }

// InfectedCount returns the size of the infected subset.
func (pop *Population) InfectedCount() int {
	pop.infectedMu.Lock()
	defer pop.infectedMu.Unlock()
	return len(pop.infected)
}

// TotalEverInfected counts every infection ever created in this population,
// including agents that have since recovered or died.
func (pop *Population) TotalEverInfected() uint64 {
	return pop.totalEverInfected.Load()
}

// Ticks returns how many tick units this population has been advanced.
func (pop *Population) Ticks() uint64 {
	return pop.ticks.Load()
}

// People returns a snapshot of the live agent handles.
func (pop *Population) People() []*Person {
	pop.peopleMu.Lock()
	defer pop.peopleMu.Unlock()
	out := make([]*Person, len(pop.people))
	copy(out, pop.people)
	return out
}

// Infected returns a snapshot of the infected-subset handles.
func (pop *Population) Infected() []*Person {
	pop.infectedMu.Lock()
	defer pop.infectedMu.Unlock()
	out := make([]*Person, len(pop.infected))
	copy(out, pop.infected)
	return out
}

// InfectOne seeds the outbreak: it samples uniformly random agents until
// one that is neither infected nor recovered accepts the pathogen, then
// records it in the infected subset. The caller must make sure a
// susceptible agent exists, otherwise the loop never terminates. Panics on
// an empty population.
func (pop *Population) InfectOne(pathogen *Pathogen) bool {
	people := pop.People()
	if len(people) == 0 {
		panic("population is empty, no one to infect")
	}
	for {
		person := people[rand.Intn(len(people))]
		if person.Infected() || person.Recovered() {
			continue
		}
		if person.Infect(pathogen) {
			pop.mergeInfected([]*Person{person})
			return true
		}
	}
}

// mergeInfected appends newly infected agents to the infected subset in one
// structural mutation and bumps the running total.
func (pop *Population) mergeInfected(newly []*Person) {
	if len(newly) == 0 {
		return
	}
	pop.infectedMu.Lock()
	pop.infected = append(pop.infected, newly...)
	pop.infectedMu.Unlock()
	pop.totalEverInfected.Add(uint64(len(newly)))
}

// UpdateSelf is the population's own per-tick work; demographic growth
// would land here once the growth-rate hook is exercised.
func (pop *Population) UpdateSelf(delta time.Duration) {}

// UpdateChildren exposes the live agents to the update tree.
func (pop *Population) UpdateChildren() []Updatable {
	pop.peopleMu.Lock()
	defer pop.peopleMu.Unlock()
	out := make([]Updatable, len(pop.people))
	for i, p := range pop.people {
		out[i] = p
	}
	return out
}

// Update advances every agent by the given number of ticks through the
// parallel update tree, then sweeps: agents whose infection has recovered
// leave the infected subset, and agents whose health reached zero leave the
// population entirely. The sweep runs after the parallel pass, densely,
// highest index first, and completes before any interaction pass starts.
func (pop *Population) Update(ticks int) {
	UpdateParallel(pop, TicksToDuration(ticks))
	pop.ticks.Add(uint64(ticks))
	pop.sweep()
}

func (pop *Population) sweep() {
	pop.infectedMu.Lock()
	for i := len(pop.infected) - 1; i >= 0; i-- {
		if !pop.infected[i].Infected() {
			pop.infected = append(pop.infected[:i], pop.infected[i+1:]...)
		}
	}
	pop.infectedMu.Unlock()

	removed := 0
	pop.peopleMu.Lock()
	for i := len(pop.people) - 1; i >= 0; i-- {
		if pop.people[i].Dead() {
			pop.people = append(pop.people[:i], pop.people[i+1:]...)
			removed++
		}
	}
	pop.peopleMu.Unlock()
	if removed > 0 {
		pop.deaths.Add(uint64(removed))
		pop.logger.Debugf("sweep removed %d dead agents", removed)
	}
}

// Stats is a point-in-time summary of the population.
type Stats struct {
	Tick              uint64 `json:"tick"`
	Population        int    `json:"population"`
	Infected          int    `json:"infected"`
	Recovered         int    `json:"recovered"`
	Dead              uint64 `json:"dead"`
	TotalEverInfected uint64 `json:"total_ever_infected"`
}

// CurrentStats gathers counts, transiently acquiring each agent's lock for
// the recovered scan.
func (pop *Population) CurrentStats() Stats {
	people := pop.People()
	recovered := 0
	for _, p := range people {
		if p.Recovered() {
			recovered++
		}
	}
	return Stats{
		Tick:              pop.ticks.Load(),
		Population:        len(people),
		Infected:          pop.InfectedCount(),
		Recovered:         recovered,
		Dead:              pop.deaths.Load(),
		TotalEverInfected: pop.totalEverInfected.Load(),
	}
}

// Snapshot returns read-only views of every live agent.
func (pop *Population) Snapshot() []PersonView {
	people := pop.People()
	out := make([]PersonView, len(people))
	for i, p := range people {
		out[i] = p.View()
	}
	return out
}
