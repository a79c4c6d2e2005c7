// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/outreach/pkg/types"
)

// Memory is a map-backed Store that keeps insertion order.
type Memory struct {
	mu    sync.RWMutex
	byID  map[string]int
	leads []types.Lead
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]int)}
}

func (m *Memory) Append(_ context.Context, lead types.Lead) error {
	if err := validate(lead); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[lead.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, lead.ID)
	}
	m.byID[lead.ID] = len(m.leads)
	m.leads = append(m.leads, lead)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (types.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byID[id]
	if !ok {
		return types.Lead{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.leads[idx], nil
}

func (m *Memory) Update(_ context.Context, id string, fn func(*types.Lead) error) (types.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.byID[id]
	if !ok {
		return types.Lead{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := applyUpdate(m.leads[idx], fn)
	if err != nil {
		return types.Lead{}, err
	}
	m.leads[idx] = next
	return next, nil
}

func (m *Memory) List(_ context.Context, f Filter) ([]types.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Lead, 0, len(m.leads))
	for _, l := range m.leads {
		if f.IsEmpty() || f.Match(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := newStats()
	for _, l := range m.leads {
		s.Total++
		s.ByStatus[l.Status]++
	}
	return s, nil
}

// Close is a no-op; the data lives only as long as the process.
func (m *Memory) Close() error { return nil }
