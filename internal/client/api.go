// Package client holds the client-resident view of the chat system: a typed
// API transport, a local cache of rooms, users and messages, and the
// ephemeral typing tracker. The cache is the presentation layer's single
// source of truth; it is only ever mutated with server-confirmed state.
package client

import (
	"context"

	"chatspace/internal/models"
)

// API is the server surface the sync client talks to. The HTTP
// implementation lives in this package; tests substitute their own.
type API interface {
	ListRooms(ctx context.Context) ([]models.RoomView, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	RoomMessages(ctx context.Context, roomID string) ([]models.Message, error)
	CreateRoom(ctx context.Context, req models.CreateRoomRequest) (*models.RoomView, error)
	AddMembers(ctx context.Context, roomID string, memberIDs []string) (*models.RoomView, error)
	SendMessage(ctx context.Context, roomID, text string) (*models.Message, error)
	Summarize(ctx context.Context, roomID string) (*models.Message, error)
}

// Room is the cache-side room shape: membership flattened to bare user ids,
// direct rooms renamed to the other participant. Normalization happens once,
// at the server-response boundary.
type Room struct {
	ID       string
	Name     string
	IsPublic bool
	Members  []string
}

func (r *Room) hasMember(userID string) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}
	return false
}
