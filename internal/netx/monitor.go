// Package netx tracks connectivity to the authority server and notifies
// subscribers on state transitions. The monitor is an explicit object that
// is constructed and injected; there is no package-level singleton.
package netx

import (
	"context"
	"sync"
	"time"
)

// State is the current connectivity state.
type State string

const (
	StateOnline  State = "online"
	StateOffline State = "offline"
)

// Prober checks whether the authority is reachable right now.
type Prober interface {
	Probe(ctx context.Context) error
}

// Handler is invoked on every state transition. Handlers run synchronously
// in the order they subscribed; a slow handler delays the next probe, not
// other deliveries.
type Handler func(ctx context.Context, state State)

// Monitor turns periodic reachability probes into edge-triggered
// online/offline events. Subscribers only hear about transitions, never
// about repeated probes with an unchanged result.
type Monitor struct {
	prober   Prober
	interval time.Duration

	mu       sync.Mutex
	state    State
	handlers []Handler
}

// NewMonitor returns a Monitor starting in the offline state, so the first
// successful probe is delivered as an offline→online edge.
func NewMonitor(prober Prober, interval time.Duration) *Monitor {
	return &Monitor{prober: prober, interval: interval, state: StateOffline}
}

// Subscribe registers a transition handler. Not safe to call concurrently
// with Run; subscribe everything before starting the loop.
func (m *Monitor) Subscribe(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// State returns the last observed connectivity state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Set records a connectivity observation and, if it differs from the current
// state, delivers the transition to every subscriber. Platform connectivity
// callbacks may call Set directly instead of waiting for the next probe.
func (m *Monitor) Set(ctx context.Context, state State) {
	m.mu.Lock()
	if m.state == state {
		m.mu.Unlock()
		return
	}
	m.state = state
	handlers := make([]Handler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	for _, h := range handlers {
		h(ctx, state)
	}
}

// Run probes the authority on a ticker until ctx is cancelled, feeding
// results into Set. Probe failures are connectivity signals, not errors.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := m.prober.Probe(probeCtx)
			cancel()

			if err != nil {
				m.Set(ctx, StateOffline)
			} else {
				m.Set(ctx, StateOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
