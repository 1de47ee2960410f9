package enrollment

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStorage is an in-process Storage for tests and development.
type MemoryStorage struct {
	mu       sync.RWMutex
	bindings map[bindingKey]*Binding
}

type bindingKey struct {
	owner string
	label string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{bindings: make(map[bindingKey]*Binding)}
}

func (s *MemoryStorage) LoadBinding(_ context.Context, owner, label string) (*Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bindings[bindingKey{owner, label}]
	if !ok {
		return nil, ErrBindingNotFound
	}
	return b.Clone(), nil
}

func (s *MemoryStorage) SaveBinding(_ context.Context, b *Binding) error {
	if b == nil || b.Owner == "" {
		return ErrInvalidOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[bindingKey{b.Owner, b.Label}] = b.Clone()
	return nil
}

func (s *MemoryStorage) DeleteBinding(_ context.Context, owner, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bindingKey{owner, label}
	if _, ok := s.bindings[key]; !ok {
		return ErrBindingNotFound
	}
	delete(s.bindings, key)
	return nil
}

// ListBindings returns the owner's bindings ordered by creation time.
func (s *MemoryStorage) ListBindings(_ context.Context, owner string) ([]*Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Binding
	for key, b := range s.bindings {
		if key.owner == owner {
			out = append(out, b.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *Binding) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out, nil
}

var _ Storage = (*MemoryStorage)(nil)
