// Package userstore keeps user records in memory.
//
// Records live in a slab: a growable slice of slots plus a stack of
// vacant slot indices. A user's ID is its slot index, so IDs freed by
// Delete are handed out again by later calls to Create, most recently
// freed first.
//
// A single mutex guards the whole store and every method holds it for
// its entire duration, so operations never interleave.
package userstore

import (
	"sync"

	"github.com/patric-chuzhbe/usersvc/internal/user"
)

type slot struct {
	user user.User
	live bool
}

// Store is a concurrency-safe in-memory user store.
// The zero value is an empty store ready to use.
type Store struct {
	mu    sync.Mutex
	slots []slot
	free  []int
	count int
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Create stores a user with default content and returns its ID.
// A vacant slot is reused when one exists.
func (s *Store) Create() user.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++

	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[idx] = slot{user: user.New(), live: true}
		return user.ID(idx)
	}

	s.slots = append(s.slots, slot{user: user.New(), live: true})
	return user.ID(len(s.slots) - 1)
}

// Get returns a copy of the user with the given ID.
// The boolean is false if no live user has that ID.
func (s *Store) Get(id user.ID) (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index(id)
	if !ok {
		return user.User{}, false
	}

	return s.slots[idx].user, true
}

// Replace overwrites the user with the given ID.
// It reports false and changes nothing if no live user has that ID.
func (s *Store) Replace(id user.ID, u user.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index(id)
	if !ok {
		return false
	}

	s.slots[idx].user = u
	return true
}

// Delete removes the user with the given ID and frees the ID for reuse.
// It reports false if no live user has that ID.
func (s *Store) Delete(id user.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index(id)
	if !ok {
		return false
	}

	s.slots[idx] = slot{}
	s.free = append(s.free, idx)
	s.count--
	return true
}

// ListIDs returns the IDs of all live users in ascending order.
// The result is never nil.
func (s *Store) ListIDs() []user.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]user.ID, 0, s.count)
	for idx, sl := range s.slots {
		if sl.live {
			ids = append(ids, user.ID(idx))
		}
	}

	return ids
}

// Len returns the number of live users.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.count
}

// index maps id to a live slot index. Callers must hold s.mu.
func (s *Store) index(id user.ID) (int, bool) {
	if uint64(id) >= uint64(len(s.slots)) {
		return 0, false
	}

	idx := int(id)
	if !s.slots[idx].live {
		return 0, false
	}

	return idx, true
}
