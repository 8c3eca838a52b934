package memory

import (
	"context"
	"slices"
	"sync"

	id "grantgate/pkg/domain"
	audit "grantgate/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ProgramID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ProgramID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.ProgramID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ProgramID] = append(s.events[event.ProgramID], event)
	return nil
}

// ListByProgram returns a program's events oldest first. A positive limit
// keeps only the most recent ones.
func (s *InMemoryStore) ListByProgram(_ context.Context, programID id.ProgramID, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := slices.Clone(s.events[programID])
	slices.SortStableFunc(events, func(a, b audit.Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}
