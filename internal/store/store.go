// Package store defines the persistence interfaces the services are written
// against. The postgres package implements them for production; the memory
// package implements them for tests and seeding-free local runs.
package store

import (
	"context"

	"chatspace/internal/models"
)

type UserStore interface {
	// CreateUser persists a new user and fills in the generated id. A
	// duplicate username or email yields apperr.ErrUserExists.
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	// ListUsers returns every user except excludeID, insertion-stable.
	ListUsers(ctx context.Context, excludeID string) ([]models.User, error)
	// UsersByID resolves a set of ids to users; unknown ids are skipped.
	UsersByID(ctx context.Context, ids []string) ([]models.User, error)
}

type RoomStore interface {
	// CreateRoom persists a room. For a direct room, directKey must be the
	// canonical pair key; the store guarantees at most one room per key and
	// returns the already-existing room when the key is taken, so concurrent
	// creation by the same pair converges. directKey is empty for public
	// rooms, which are never deduplicated.
	CreateRoom(ctx context.Context, r *models.Room, directKey string) (*models.Room, error)
	RoomByID(ctx context.Context, id string) (*models.Room, error)
	RoomsForUser(ctx context.Context, userID string) ([]models.Room, error)
	// DirectRoomByKey returns the direct room with the given pair key, or
	// apperr.ErrRoomNotFound.
	DirectRoomByKey(ctx context.Context, directKey string) (*models.Room, error)
	// AddMembers unions memberIDs into the room's member set and returns the
	// updated room. Already-present ids are ignored.
	AddMembers(ctx context.Context, roomID string, memberIDs []string) (*models.Room, error)
}

type MessageStore interface {
	// AppendMessage persists m, assigning its id, arrival sequence and a
	// timestamp no earlier than the room's previous message.
	AppendMessage(ctx context.Context, m *models.Message) error
	// MessagesForRoom returns the room's full history ascending by
	// (timestamp, sequence).
	MessagesForRoom(ctx context.Context, roomID string) ([]models.Message, error)
}
