package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"itsg33/internal/assessment/models"
	"itsg33/pkg/sentinel"
)

// InMemoryStore holds assessments in a map. Used in unit tests and for
// running the server without Postgres or Redis.
type InMemoryStore struct {
	mu          sync.RWMutex
	assessments map[uuid.UUID]*models.Assessment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{assessments: make(map[uuid.UUID]*models.Assessment)}
}

func (s *InMemoryStore) Create(_ context.Context, a *models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := a.Clone()
	s.assessments[a.ID] = &clone
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := a.Clone()
	return &clone, nil
}

func (s *InMemoryStore) Update(_ context.Context, a *models.Assessment, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.assessments[a.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != expectedVersion {
		return sentinel.ErrVersionConflict
	}
	clone := a.Clone()
	clone.Version = expectedVersion + 1
	s.assessments[a.ID] = &clone
	a.Version = clone.Version
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.assessments, id)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		clone := a.Clone()
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
