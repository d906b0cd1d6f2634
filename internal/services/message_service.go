package services

import (
	"context"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
	"chatspace/internal/store"
)

// MessageService owns the append-only message ledger. History is unbounded;
// pagination is a known scaling gap.
type MessageService struct {
	rooms    *RoomService
	messages store.MessageStore
}

func NewMessageService(rooms *RoomService, messages store.MessageStore) *MessageService {
	return &MessageService{rooms: rooms, messages: messages}
}

// Append stores a message from requester in roomID. The store assigns a
// timestamp no earlier than the room's previous message, so history order is
// monotone per room.
func (s *MessageService) Append(ctx context.Context, requester Identity, roomID, text string) (*models.Message, error) {
	if text == "" {
		return nil, apperr.ErrMessageTextRequired
	}
	if _, err := s.rooms.RoomForMember(ctx, requester.UserID, roomID); err != nil {
		return nil, err
	}

	msg := models.Message{
		RoomID:     roomID,
		AuthorID:   requester.UserID,
		AuthorName: requester.Username,
		Text:       text,
		Kind:       models.KindText,
	}
	if err := s.messages.AppendMessage(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// History returns roomID's messages ascending by timestamp.
func (s *MessageService) History(ctx context.Context, requester Identity, roomID string) ([]models.Message, error) {
	if _, err := s.rooms.RoomForMember(ctx, requester.UserID, roomID); err != nil {
		return nil, err
	}
	return s.messages.MessagesForRoom(ctx, roomID)
}

// AppendSynthetic stores a server-authored message. It is internal to the
// summary flow and skips the membership guard, but still gets an ordered
// timestamp and the reserved synthetic author identity.
func (s *MessageService) AppendSynthetic(ctx context.Context, roomID, text string) (*models.Message, error) {
	msg := models.Message{
		RoomID:     roomID,
		AuthorID:   models.SystemAuthorID,
		AuthorName: models.SystemAuthorName,
		Text:       text,
		Kind:       models.KindSummary,
	}
	if err := s.messages.AppendMessage(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
