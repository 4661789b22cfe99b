package core

// SessionID identifies a live connection. Never reused.
type SessionID string
