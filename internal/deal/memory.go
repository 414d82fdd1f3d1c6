package deal

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore keeps deals in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	deals map[string]Profile
	now   func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{deals: make(map[string]Profile), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, profile Profile) (*Profile, error) {
	p, err := prepare(profile, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deals[p.ID] = p
	out := clone(p)
	return &out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.deals[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(p)
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.deals))
	for _, p := range s.deals {
		out = append(out, clone(p))
	}
	sortProfiles(out)
	return out, nil
}

func (s *MemoryStore) SaveCalculation(_ context.Context, id string, calc Calculation) (*Profile, error) {
	if err := checkCalculation(calc); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.deals[id]
	if !ok {
		return nil, ErrNotFound
	}

	now := s.now().UTC()
	calc.SavedAt = now
	calc.Inputs = maps.Clone(calc.Inputs)
	calc.Metrics = maps.Clone(calc.Metrics)

	calcs := make([]Calculation, 0, len(p.Calculations)+1)
	for _, existing := range p.Calculations {
		if existing.Calculator != calc.Calculator {
			calcs = append(calcs, existing)
		}
	}
	p.Calculations = append(calcs, calc)
	sortCalculations(p.Calculations)
	p.UpdatedAt = now
	s.deals[id] = p

	out := clone(p)
	return &out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deals[id]; !ok {
		return ErrNotFound
	}
	delete(s.deals, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func clone(p Profile) Profile {
	calcs := make([]Calculation, len(p.Calculations))
	for i, c := range p.Calculations {
		c.Inputs = maps.Clone(c.Inputs)
		c.Metrics = maps.Clone(c.Metrics)
		calcs[i] = c
	}
	p.Calculations = calcs
	return p
}
