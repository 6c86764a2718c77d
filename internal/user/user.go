// Package user defines the user record kept by the in-memory store
// and exposed over HTTP.
package user

import (
	"encoding/json"
	"strconv"
)

// ID is the identifier the store assigns to a user on creation.
// IDs are unique among live records only: a deleted user's ID may be
// handed out again to a later one.
type ID uint64

// String renders the ID as decimal text, the form used on the wire.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses decimal text into an ID.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}

	return ID(v), nil
}

// User represents a stored user.
// It has no fields yet; new user attributes go here.
type User struct{}

// New returns a user with default content.
func New() User {
	return User{}
}

// MarshalText returns the user's wire representation.
func (u User) MarshalText() ([]byte, error) {
	type plain User
	return json.Marshal(plain(u))
}

// String returns the text form of MarshalText, or "{}" if encoding fails.
func (u User) String() string {
	b, err := u.MarshalText()
	if err != nil {
		return "{}"
	}

	return string(b)
}
