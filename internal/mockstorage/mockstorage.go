// Package mockstorage provides a testify-based mock implementation
// of the user store interface used by the router package.
// It is used for unit testing HTTP handlers by simulating store behavior.
package mockstorage

import (
	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/usersvc/internal/user"
)

// StorageMock is a testify mock that implements the store interface
// used by the router.
//
// Use it in router tests to check exactly which store calls a request
// produces.
type StorageMock struct {
	mock.Mock
}

// Create mocks allocating a new user.
func (m *StorageMock) Create() user.ID {
	args := m.Called()
	return args.Get(0).(user.ID)
}

// Get mocks fetching a user by ID.
func (m *StorageMock) Get(id user.ID) (user.User, bool) {
	args := m.Called(id)
	return args.Get(0).(user.User), args.Bool(1)
}

// Replace mocks overwriting a user.
func (m *StorageMock) Replace(id user.ID, u user.User) bool {
	args := m.Called(id, u)
	return args.Bool(0)
}

// Delete mocks removing a user.
func (m *StorageMock) Delete(id user.ID) bool {
	args := m.Called(id)
	return args.Bool(0)
}

// ListIDs mocks listing live user IDs.
func (m *StorageMock) ListIDs() []user.ID {
	args := m.Called()
	ids, _ := args.Get(0).([]user.ID)
	return ids
}
