package epidemic

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// TickEvent summarizes a simulation run after one step. Events exist for
// observers (live dashboards, log sinks); the simulation itself never reads
// them back.
type TickEvent struct {
	RunID     string `json:"run_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Stats
}

// NewTickEvent stamps a population's current stats into an event.
func NewTickEvent(runID string, pop *Population) TickEvent {
	return TickEvent{
		RunID:     runID,
		Timestamp: time.Now().Unix(),
		Stats:     pop.CurrentStats(),
	}
}

// JSON returns the event as JSON bytes.
func (e TickEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is a delivery channel for tick events.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string

	// Type returns the kind of channel (e.g. "websocket").
	Type() string

	// Notify delivers one event; the context bounds the attempt.
	Notify(ctx context.Context, event TickEvent) error

	// Close releases the notifier's resources.
	Close() error
}

type eventJob struct {
	event       TickEvent
	notifierIDs []string
}

// EventDispatcher fans tick events out to registered notifiers through a
// bounded queue and a worker goroutine. Delivery is best effort: a full
// queue drops the event, and a failed delivery is logged rather than
// retried.
type EventDispatcher struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan eventJob
	closed    bool
	wg        sync.WaitGroup
	logger    Logger
}

// NewEventDispatcher creates a dispatcher with one running worker.
func NewEventDispatcher(logger Logger) *EventDispatcher {
	if logger == nil {
		logger = NoOpLogger{}
	}
	d := &EventDispatcher{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan eventJob, 1024),
		logger:    logger,
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Register adds a notifier under its own id.
func (d *EventDispatcher) Register(n Notifier) error {
	if n == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := n.ID()
	if id == "" {
		return fmt.Errorf("notifier id cannot be empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.notifiers[id]; exists {
		return fmt.Errorf("notifier %s already registered", id)
	}
	d.notifiers[id] = n
	return nil
}

// Unregister closes and removes a notifier.
func (d *EventDispatcher) Unregister(id string) error {
	d.mu.Lock()
	n, exists := d.notifiers[id]
	if exists {
		delete(d.notifiers, id)
	}
	d.mu.Unlock()
	if !exists {
		return fmt.Errorf("notifier %s not found", id)
	}
	if err := n.Close(); err != nil {
		return fmt.Errorf("closing notifier %s: %w", id, err)
	}
	return nil
}

// Notifiers lists the registered notifier ids.
func (d *EventDispatcher) Notifiers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.notifiers))
	for id := range d.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Enqueue hands an event to the worker without blocking. If notifierIDs is
// empty the event goes to every registered notifier.
func (d *EventDispatcher) Enqueue(event TickEvent, notifierIDs ...string) {
	d.mu.RLock()
	closed := d.closed
	if len(notifierIDs) == 0 {
		notifierIDs = make([]string, 0, len(d.notifiers))
		for id := range d.notifiers {
			notifierIDs = append(notifierIDs, id)
		}
	}
	d.mu.RUnlock()
	if closed || len(notifierIDs) == 0 {
		return
	}
	select {
	case d.jobs <- eventJob{event: event, notifierIDs: notifierIDs}:
	default:
		d.logger.Warnf("event queue full, dropping tick %d of run %s", event.Tick, event.RunID)
	}
}

func (d *EventDispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		for _, id := range job.notifierIDs {
			d.mu.RLock()
			n, ok := d.notifiers[id]
			d.mu.RUnlock()
			if !ok {
				d.logger.Warnf("event delivery skipped: notifier %s not found", id)
				continue
			}
			if err := n.Notify(ctx, job.event); err != nil {
				d.logger.Errorf("event delivery failed: notifier=%s err=%v", id, err)
			}
		}
		cancel()
	}
}

// Close drains the queue, stops the worker, and closes every notifier.
func (d *EventDispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	var firstErr error
	for id, n := range d.notifiers {
		if err := n.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing notifier %s: %w", id, err)
		}
	}
	d.notifiers = make(map[string]Notifier)
	return firstErr
}
