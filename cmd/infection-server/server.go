package main

import (
	"fmt"
	"sync"

	"github.com/JoshuaRadin37/Infection/internal/epidemic"
	"github.com/JoshuaRadin37/Infection/internal/epidemic/notifiers"
	"github.com/JoshuaRadin37/Infection/pkg/scenario"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run is a single simulation instance owned by the server. Stepping is
// serialized per run; distinct runs step independently.
type Run struct {
	ID           string
	Name         string
	TicksPerStep int

	mu         sync.Mutex
	population *epidemic.Population
	controller *epidemic.InteractionController
	dispatcher *epidemic.EventDispatcher
	stream     *notifiers.WebSocketNotifier
}

// Step advances the run by the given number of steps. Each step advances
// the population clock by TicksPerStep ticks and then runs one interaction
// pass. A tick event is enqueued after every step.
func (r *Run) Step(steps int) epidemic.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < steps; i++ {
		r.population.Update(r.TicksPerStep)
		r.controller.Run()
		r.dispatcher.Enqueue(epidemic.NewTickEvent(r.ID, r.population))
	}
	return r.population.CurrentStats()
}

// Stats returns the current statistics without advancing the run.
func (r *Run) Stats() epidemic.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.population.CurrentStats()
}

// Close shuts down the run's dispatcher and stream.
func (r *Run) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.dispatcher.Close()
}

// RunManager tracks active simulation runs by ID.
type RunManager struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	maxRuns int
	logger  epidemic.Logger
}

// NewRunManager creates a run manager that refuses to hold more than
// maxRuns simultaneous runs.
func NewRunManager(maxRuns int, logger epidemic.Logger) *RunManager {
	return &RunManager{
		runs:    make(map[string]*Run),
		maxRuns: maxRuns,
		logger:  logger,
	}
}

// CreateRun builds a run from a scenario config and registers it.
func (m *RunManager) CreateRun(cfg scenario.Config, defaultTicksPerStep int) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.runs) >= m.maxRuns {
		return nil, fmt.Errorf("run limit reached (%d active)", m.maxRuns)
	}

	factory := epidemic.NewPersonFactory()
	pop, pathogen, err := scenario.Build(cfg, factory)
	if err != nil {
		return nil, fmt.Errorf("build scenario: %w", err)
	}
	pop.SetLogger(m.logger)

	for i := 0; i < cfg.SeedInfections; i++ {
		pop.InfectOne(pathogen)
	}

	ticksPerStep := cfg.TicksPerStep
	if ticksPerStep <= 0 {
		ticksPerStep = defaultTicksPerStep
	}

	controller := epidemic.NewInteractionController(pop)
	controller.SetLogger(m.logger)

	id := uuid.NewString()
	stream := notifiers.NewWebSocketNotifier("stream-" + id)
	dispatcher := epidemic.NewEventDispatcher(m.logger)
	if err := dispatcher.Register(stream); err != nil {
		return nil, fmt.Errorf("register stream notifier: %w", err)
	}

	run := &Run{
		ID:           id,
		Name:         cfg.Name,
		TicksPerStep: ticksPerStep,
		population:   pop,
		controller:   controller,
		dispatcher:   dispatcher,
		stream:       stream,
	}
	m.runs[id] = run
	return run, nil
}

// GetRun returns the run with the given ID, if present.
func (m *RunManager) GetRun(id string) (*Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	return run, ok
}

// DeleteRun removes and closes a run.
func (m *RunManager) DeleteRun(id string) error {
	m.mu.Lock()
	run, ok := m.runs[id]
	if ok {
		delete(m.runs, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("run %s not found", id)
	}
	run.Close()
	return nil
}

// ListRuns returns the IDs of all active runs.
func (m *RunManager) ListRuns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	return ids
}

// CloseAll shuts down every active run.
func (m *RunManager) CloseAll() {
	m.mu.Lock()
	runs := make([]*Run, 0, len(m.runs))
	for id, run := range m.runs {
		runs = append(runs, run)
		delete(m.runs, id)
	}
	m.mu.Unlock()

	for _, run := range runs {
		run.Close()
	}
}

// Server is the HTTP front end for the simulation engine.
type Server struct {
	manager *RunManager
	cfg     ServerConfig
	zlog    *zap.SugaredLogger
}

// NewServer creates a server with its own run manager.
func NewServer(cfg ServerConfig, zlog *zap.SugaredLogger) *Server {
	return &Server{
		manager: NewRunManager(cfg.MaxRuns, zapAdapter{s: zlog}),
		cfg:     cfg,
		zlog:    zlog,
	}
}
