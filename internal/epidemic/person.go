package epidemic

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Sex of an agent; it slightly shifts the health ceiling.
type Sex int

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

func (s Sex) healthFactor() float64 {
	if s == Male {
		return 0.95
	}
	return 1.0
}

// Condition is the coarse care tier of an agent. Higher tiers take more
// damage from a fatality roll.
type Condition int

const (
	ConditionNormal Condition = iota
	ConditionNeedsHospital
	ConditionHospitalized
)

func (c Condition) String() string {
	switch c {
	case ConditionNormal:
		return "normal"
	case ConditionNeedsHospital:
		return "needs-hospital"
	case ConditionHospitalized:
		return "hospitalized"
	default:
		return "unknown"
	}
}

func (c Condition) damageFactor() float64 {
	switch c {
	case ConditionNeedsHospital:
		return 2.0
	case ConditionHospitalized:
		return 3.0
	default:
		return 1.0
	}
}

// Health lost on a successful fatality roll, before the condition tier
// multiplies it.
const fatalityDamage = 10

// maxHealthFor derives the health ceiling from age band, sex, and the
// pre-existing-condition factor.
func maxHealthFor(ageYears int, sex Sex, preExisting float64) int {
	var base float64
	switch {
	case ageYears <= 3:
		base = 30
	case ageYears <= 9:
		base = 70
	case ageYears <= 19:
		base = 100
	case ageYears < 120:
		base = 10 * math.Sqrt(120-float64(ageYears))
	default:
		base = 0
	}
	return int(base * sex.healthFactor() * preExisting)
}

// Person is the basic agent of the simulation.
//
// A single RWMutex guards all mutable state, so one tick's bookkeeping is
// atomic. No code path ever holds two Person locks at once: the interaction
// path snapshots the source's transmitting state before touching the
// target, so no lock cycle can form.
type Person struct {
	mu sync.RWMutex

	id                   uint64
	age                  Age
	sex                  Sex
	preExistingCondition float64

	healthPoints int
	maxHealth    int
	condition    Condition

	infection *Infection
	recovered bool // latched on the tick the infection recovers
}

func newPerson(id uint64, age Age, sex Sex, preExisting float64) *Person {
	maxHealth := maxHealthFor(Years(age), sex, preExisting)
	return &Person{
		id:                   id,
		age:                  age,
		sex:                  sex,
		preExistingCondition: preExisting,
		healthPoints:         maxHealth,
		maxHealth:            maxHealth,
	}
}

// PersonFactory hands out globally unique ids. Share a single factory
// across every Population whose agents must not collide, including
// populations built concurrently.
type PersonFactory struct {
	counter atomic.Uint64
}

// NewPersonFactory creates a factory starting at id 0.
func NewPersonFactory() *PersonFactory {
	return &PersonFactory{}
}

// NewPerson creates an agent with the next unique id.
func (f *PersonFactory) NewPerson(age Age, sex Sex, preExisting float64) *Person {
	return newPerson(f.counter.Add(1)-1, age, sex, preExisting)
}

// Created returns how many agents the factory has produced.
func (f *PersonFactory) Created() uint64 {
	return f.counter.Load()
}

// ID returns the agent's unique id.
func (p *Person) ID() uint64 { return p.id }

// Sex returns the agent's sex.
func (p *Person) Sex() Sex { return p.sex }

// Age returns the agent's current age.
func (p *Person) Age() Age {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.age
}

// HealthPoints returns the agent's current health.
func (p *Person) HealthPoints() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthPoints
}

// MaxHealth returns the agent's current health ceiling.
func (p *Person) MaxHealth() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxHealth
}

// Condition returns the agent's care tier.
func (p *Person) Condition() Condition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.condition
}

// Alive reports whether the agent still has health left.
func (p *Person) Alive() bool {
	return p.HealthPoints() > 0
}

// Dead reports whether the agent's health has reached zero. Dead agents are
// inert: they no longer report infection or recovery no matter what their
// internal state says.
func (p *Person) Dead() bool {
	return !p.Alive()
}

// Infected reports whether the agent carries a still-running infection.
func (p *Person) Infected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.infectedLocked()
}

func (p *Person) infectedLocked() bool {
	if p.healthPoints == 0 {
		return false
	}
	return p.infection != nil && !p.infection.Recovered()
}

// Recovered reports whether the agent has beaten an infection and holds
// immunity against its pathogen.
func (p *Person) Recovered() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.healthPoints == 0 {
		return false
	}
	return p.recovered
}

// Infect gives the agent a new infection with the pathogen. It succeeds
// only when no infection is attached: an agent hosts at most one pathogen
// at a time, and a recovered agent keeps its spent infection as immunity
// until a symptom effect strips it.
func (p *Person) Infect(pathogen *Pathogen) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.infectLocked(pathogen)
}

func (p *Person) infectLocked(pathogen *Pathogen) bool {
	if p.infection != nil {
		return false
	}
	p.infection = NewInfection(pathogen, p.preExistingCondition)
	return true
}

// RemoveImmunity discards a beaten infection, un-latching the recovered
// flag so the agent is susceptible again. It only applies to an agent that
// is currently recovered with its infection still attached; this is the
// lever a "never immune" symptom uses to defeat permanent immunity.
func (p *Person) RemoveImmunity() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeImmunityLocked()
}

func (p *Person) removeImmunityLocked() {
	if p.recovered && p.infection != nil {
		p.infection = nil
		p.recovered = false
	}
}

// hostView exposes the narrow Host surface to recovery effects, which run
// while the person's lock is already held.
type hostView struct {
	p *Person
}

func (h hostView) RemoveImmunity() {
	h.p.removeImmunityLocked()
}

// transmissible snapshots the state needed to transmit from this agent:
// the pathogen of an active, unrecovered infection. The snapshot is taken
// under the read lock and used after release; the pathogen itself is
// immutable, so the caller can keep reading it lock-free.
func (p *Person) transmissible() (*Pathogen, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.healthPoints == 0 || p.recovered || p.infection == nil {
		return nil, false
	}
	if !p.infection.ActiveCase() {
		return nil, false
	}
	return p.infection.Pathogen(), true
}

// transmitLocked attempts one transmission onto other, whose lock the
// caller must hold. Already-infected, already-recovered (both mean an
// Infection is attached), and dead targets are untouchable. On a successful
// catch roll the target receives a freshly mutated variant, so in-host
// evolution rides along with every between-host hop.
func (p *Person) transmitLocked(pathogen *Pathogen, other *Person) bool {
	if other.healthPoints == 0 || other.infection != nil {
		return false
	}
	if !roll(pathogen.CatchChance()) {
		return false
	}
	return other.infectLocked(pathogen.Mutate())
}

// InteractWith attempts one transmission from p to other, returning whether
// other became newly infected. The source state is snapshotted before the
// target lock is taken, so the two locks are never held together.
func (p *Person) InteractWith(other *Person) bool {
	pathogen, ok := p.transmissible()
	if !ok {
		return false
	}
	other.mu.Lock()
	defer other.mu.Unlock()
	return p.transmitLocked(pathogen, other)
}

// UpdateSelf advances the agent by one tick delta: age, the infection (and
// its recovery bookkeeping), the health ceiling, and the fatality roll of
// an active case. The infection is advanced inline rather than as an
// update-tree child so the just-recovered transition, the latch, and the
// recovery side effects all happen under one lock acquisition.
func (p *Person) UpdateSelf(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.healthPoints == 0 {
		return
	}

	p.age += delta

	if p.infection != nil && !p.recovered {
		wasRecovered := p.infection.Recovered()
		p.infection.Update(delta)
		if !wasRecovered && p.infection.Recovered() {
			p.recovered = true
			p.infection.Pathogen().performRecovery(hostView{p})
		}
	}

	// The ceiling follows age downward; health never silently rises.
	p.maxHealth = maxHealthFor(Years(p.age), p.sex, p.preExistingCondition)
	if p.healthPoints > p.maxHealth {
		p.healthPoints = p.maxHealth
	}

	if p.infection != nil && p.infection.ActiveCase() {
		pathogen := p.infection.Pathogen()
		chance := pathogen.Fatality()
		if severity := pathogen.Severity(); severity < 1 {
			chance /= 1 - severity
		}
		if roll(chance) {
			damage := int(fatalityDamage * p.condition.damageFactor())
			p.healthPoints -= damage
			if p.healthPoints < 0 {
				p.healthPoints = 0
			}
			if p.healthPoints > 0 && p.healthPoints < p.maxHealth/4 {
				p.escalateConditionLocked()
			}
		}
	}
}

func (p *Person) escalateConditionLocked() {
	switch p.condition {
	case ConditionNormal:
		p.condition = ConditionNeedsHospital
	case ConditionNeedsHospital:
		p.condition = ConditionHospitalized
	}
}

// UpdateChildren returns nothing: the infection is advanced inside
// UpdateSelf (see there).
func (p *Person) UpdateChildren() []Updatable {
	return nil
}

// PersonView is a read-only snapshot of an agent's visible state, taken
// under a single lock acquisition.
type PersonView struct {
	ID           uint64    `json:"id"`
	AgeYears     int       `json:"age_years"`
	Sex          Sex       `json:"sex"`
	HealthPoints int       `json:"health_points"`
	MaxHealth    int       `json:"max_health"`
	Condition    Condition `json:"condition"`
	Infected     bool      `json:"infected"`
	Recovered    bool      `json:"recovered"`
	Dead         bool      `json:"dead"`
}

// View snapshots the agent.
func (p *Person) View() PersonView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	dead := p.healthPoints == 0
	return PersonView{
		ID:           p.id,
		AgeYears:     Years(p.age),
		Sex:          p.sex,
		HealthPoints: p.healthPoints,
		MaxHealth:    p.maxHealth,
		Condition:    p.condition,
		Infected:     p.infectedLocked(),
		Recovered:    !dead && p.recovered,
		Dead:         dead,
	}
}
