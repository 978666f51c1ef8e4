package hook

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

type registration struct {
	handler Handler
	seq     int
}

// Manager dispatches events to registered handlers. Handlers of equal
// priority run in registration order.
type Manager struct {
	mu      sync.RWMutex
	byPoint map[Point][]registration
	seq     int
}

func NewManager() *Manager {
	return &Manager{byPoint: make(map[Point][]registration)}
}

func (m *Manager) Register(handlers ...Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range handlers {
		m.seq++
		for _, point := range h.Points() {
			// copy so a concurrent Trigger keeps iterating its own snapshot
			regs := append(slices.Clone(m.byPoint[point]), registration{handler: h, seq: m.seq})
			slices.SortStableFunc(regs, func(a, b registration) int {
				if c := cmp.Compare(b.handler.Priority(), a.handler.Priority()); c != 0 {
					return c
				}
				return cmp.Compare(a.seq, b.seq)
			})
			m.byPoint[point] = regs
		}
	}
}

func (m *Manager) snapshot(point Point) []registration {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byPoint[point]
}

// Trigger runs the handlers for a gated point until one denies or fails.
func (m *Manager) Trigger(ctx context.Context, e *Event) (Decision, error) {
	for _, reg := range m.snapshot(e.Point) {
		decision, err := reg.handler.Handle(ctx, e)
		if err != nil {
			return Decision{}, fmt.Errorf("hook %s: %w", reg.handler.Name(), err)
		}
		if decision.Deny {
			return decision, nil
		}
	}
	return Allow(), nil
}

// Notify runs every handler for an observational point. Decisions are
// ignored and handler errors are joined.
func (m *Manager) Notify(ctx context.Context, e *Event) error {
	var errs []error
	for _, reg := range m.snapshot(e.Point) {
		if _, err := reg.handler.Handle(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("hook %s: %w", reg.handler.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Clone returns a manager holding the same handlers. Registering on the clone
// leaves the original untouched, so a run can add its own handlers.
func (m *Manager) Clone() *Manager {
	clone := NewManager()
	if m == nil {
		return clone
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	clone.seq = m.seq
	for point, regs := range m.byPoint {
		clone.byPoint[point] = slices.Clone(regs)
	}
	return clone
}

// Handlers returns the handler names for a point in invocation order.
func (m *Manager) Handlers(point Point) []string {
	regs := m.snapshot(point)
	names := make([]string, len(regs))
	for i, reg := range regs {
		names[i] = reg.handler.Name()
	}
	return names
}
