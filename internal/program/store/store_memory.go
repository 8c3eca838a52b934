package store

import (
	"context"
	"sort"
	"sync"

	"grantgate/internal/program/models"
	id "grantgate/pkg/domain"
	"grantgate/pkg/platform/sentinel"
)

// InMemory keeps programs in a map. Programs are deep-copied on the way in
// and out so callers never share state with the store.
type InMemory struct {
	mu       sync.RWMutex
	programs map[id.ProgramID]*models.Program
}

func NewInMemory() *InMemory {
	return &InMemory{programs: make(map[id.ProgramID]*models.Program)}
}

func (s *InMemory) Create(_ context.Context, program *models.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.programs[program.ID]; exists {
		return sentinel.ErrConflict
	}
	s.programs[program.ID] = program.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, programID id.ProgramID) (*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.programs[programID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// List returns programs ordered by creation time, then ID.
func (s *InMemory) List(_ context.Context) ([]*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Program, 0, len(s.programs))
	for _, p := range s.programs {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, programID id.ProgramID, fn func(*models.Program) error) (*models.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.programs[programID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.programs[programID] = working
	return working.Clone(), nil
}
