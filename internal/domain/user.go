// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
)

const MaxUsernameLen = 80

var ErrUserIDEmpty = errors.New("user id empty")

type UserID int64

// Identity is the authenticated principal attached to a connection at
// handshake. It never changes for the lifetime of the connection.
type Identity struct {
	UserID UserID `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewIdentity(id UserID, name, email string) (Identity, error) {
	if id <= 0 {
		return Identity{}, ErrUserIDEmpty
	}
	return Identity{UserID: id, Name: Truncate(name, MaxUsernameLen), Email: email}, nil
}
