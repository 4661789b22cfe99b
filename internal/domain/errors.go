package domain

import "errors"

var (
	// ErrAuth rejects a handshake: missing, malformed or expired credential.
	ErrAuth = errors.New("unauthorized")
	// ErrNotAuthenticated means an event arrived for a connection the
	// registry does not know. Unreachable after a successful handshake.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAMember       = errors.New("not a member")
	ErrNotFound         = errors.New("not found")
	ErrNoChanges        = errors.New("no changes")
	ErrPersistence      = errors.New("persistence failure")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrRateLimited      = errors.New("rate limited")
)
