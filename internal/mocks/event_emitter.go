package mocks

import (
	"context"
	"sync"

	"github.com/taskboard/taskboard-api/internal/events"
)

// MockEventEmitter records emitted events.
type MockEventEmitter struct {
	mu     sync.Mutex
	Events []*events.TaskEvent
	Err    error
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements events.EventEmitter
func (m *MockEventEmitter) EmitEvent(_ context.Context, event *events.TaskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

// Types returns the types of the recorded events in emission order.
func (m *MockEventEmitter) Types() []events.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.EventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}
