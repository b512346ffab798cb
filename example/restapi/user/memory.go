// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package user

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// Memory is an [EntityManager] which keeps users in memory.
type Memory struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

// NewMemory returns a [Memory] seeded with the given users.
func NewMemory(seed ...User) *Memory {
	m := &Memory{
		users:  make(map[int64]User, len(seed)),
		nextID: 1,
	}
	for _, u := range seed {
		m.users[u.ID] = u
		m.nextID = max(m.nextID, u.ID+1)
	}
	return m
}

// Get implements the [EntityManager] interface. Users are ordered by id.
func (m *Memory) Get(ctx context.Context, filter Filter) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]User, 0, len(m.users))
	for _, u := range m.users {
		if filter.Matches(u) {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b User) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return users, nil
}

// GetByID implements the [EntityManager] interface.
func (m *Memory) GetByID(ctx context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, NotFoundError{ID: id}
	}
	return u, nil
}

// Create implements the [EntityManager] interface. A zero id is
// replaced with the next free id.
func (m *Memory) Create(ctx context.Context, u User) (User, error) {
	err := validate(u)
	if err != nil {
		return User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if u.ID == 0 {
		u.ID = m.nextID
	}
	if _, exists := m.users[u.ID]; exists {
		return User{}, ConflictError{ID: u.ID}
	}

	m.users[u.ID] = u
	m.nextID = max(m.nextID, u.ID+1)
	return u, nil
}

// Update implements the [EntityManager] interface.
func (m *Memory) Update(ctx context.Context, u User) (User, error) {
	err := validate(u)
	if err != nil {
		return User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[u.ID]; !exists {
		return User{}, NotFoundError{ID: u.ID}
	}
	m.users[u.ID] = u
	return u, nil
}

// Delete implements the [EntityManager] interface.
func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[id]; !exists {
		return NotFoundError{ID: id}
	}
	delete(m.users, id)
	return nil
}
