// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"sync"
)

// Store persists entities by reference.
type Store interface {
	Get(ctx context.Context, ref Ref) (Entity, error)
	Put(ctx context.Context, e Entity) error
}

// MemoryStore keeps entities in a map. Entities are cloned on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[Ref]Entity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entities: make(map[Ref]Entity)}
}

func (s *MemoryStore) Get(_ context.Context, ref Ref) (Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entities[ref]; ok {
		return e.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

func (s *MemoryStore) Put(_ context.Context, e Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.Ref()] = e.Clone()
	return nil
}

// Len returns the number of stored entities.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}
