package core

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
)

//go:generate mockgen -source=collaborators.go -destination=mocks/mock_collaborators.go -package=mocks

// MembershipAuthority is the source of truth for durable room membership.
// The hub asks, never caches.
type MembershipAuthority interface {
	IsMember(ctx context.Context, userID domain.UserID, roomID domain.RoomID) (bool, error)
	// RoomOfItem returns domain.ErrNotFound for an unknown item.
	RoomOfItem(ctx context.Context, itemID domain.TodoID) (domain.RoomID, error)
}

// Store persists chat and todo records.
type Store interface {
	InsertMessage(ctx context.Context, roomID domain.RoomID, userID domain.UserID, content string) (domain.MessageReceipt, error)
	InsertTodo(ctx context.Context, roomID domain.RoomID, text string) (*domain.TodoItem, error)
	// UpdateTodo and DeleteTodo return domain.ErrNotFound when the item is gone.
	UpdateTodo(ctx context.Context, itemID domain.TodoID, patch domain.TodoPatch) (*domain.TodoItem, error)
	DeleteTodo(ctx context.Context, itemID domain.TodoID) error
}

// CredentialVerifier turns a bearer credential into an Identity.
// Errors wrap domain.ErrAuth.
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}
