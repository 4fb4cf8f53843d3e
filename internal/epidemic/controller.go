package epidemic

import (
	"math/rand"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Controller drives one phase of a simulation tick.
type Controller interface {
	Run()
}

const (
	// Baseline willingness to interact, before severity dampens it.
	interactionChance = 1.0

	// Upper bound (exclusive) on the contacts an infected agent attempts
	// per tick.
	maxContactsPerTick = 7

	// How many fresh targets a contact slot may sample after finding a
	// busy one before the slot is abandoned.
	lockRetryBudget = 8
)

// InteractionController has every currently infected agent attempt a
// handful of randomized contacts, in parallel, once per tick.
//
// Write access to a target is taken without blocking: a busy target is
// abandoned and a fresh one sampled, bounded by a retry budget. That
// trades a small bias against briefly-busy agents for deadlock freedom,
// since two infected agents could otherwise lock each other. The pass runs
// against the infected subset as it stood when Run was called; agents
// infected during the pass are buffered on the side and merged in one
// mutation afterwards.
type InteractionController struct {
	population *Population
	logger     Logger
}

// NewInteractionController creates a controller over the population.
func NewInteractionController(population *Population) *InteractionController {
	return &InteractionController{
		population: population,
		logger:     NoOpLogger{},
	}
}

// SetLogger injects a logger; nil restores the no-op default.
func (c *InteractionController) SetLogger(l Logger) {
	if l == nil {
		l = NoOpLogger{}
	}
	c.logger = l
}

// Run executes one interaction pass.
func (c *InteractionController) Run() {
	infected := c.population.Infected()
	people := c.population.People()
	if len(infected) == 0 || len(people) == 0 {
		return
	}

	var (
		newlyMu sync.Mutex
		newly   []*Person
	)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, source := range infected {
		source := source
		g.Go(func() error {
			pathogen, ok := source.transmissible()
			if !ok {
				// Recovered or died since the subset was built; the next
				// sweep will drop it.
				return nil
			}
			mobility := interactionChance * (1 - pathogen.Severity())
			contacts := rand.Intn(maxContactsPerTick)

			for i := 0; i < contacts; i++ {
				if !roll(mobility) {
					continue
				}
				for attempt := 0; attempt < lockRetryBudget; attempt++ {
					target := people[rand.Intn(len(people))]
					if target == source {
						continue
					}
					if !target.mu.TryLock() {
						// Busy target: resample rather than block.
						continue
					}
					caught := source.transmitLocked(pathogen, target)
					target.mu.Unlock()
					if caught {
						newlyMu.Lock()
						newly = append(newly, target)
						newlyMu.Unlock()
					}
					break
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(newly) > 0 {
		c.logger.Debugf("interaction pass infected %d new agents", len(newly))
		c.population.mergeInfected(newly)
	}
}
