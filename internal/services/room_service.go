package services

import (
	"context"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
	"chatspace/internal/store"
)

// RoomService owns room creation and membership mutation. It is the only
// component that writes the member set.
type RoomService struct {
	rooms store.RoomStore
	users store.UserStore
}

func NewRoomService(rooms store.RoomStore, users store.UserStore) *RoomService {
	return &RoomService{rooms: rooms, users: users}
}

// Create creates a room on behalf of requesterID, who is always part of the
// membership whether or not the request lists them. Direct rooms take exactly
// one other member and are deduplicated per unordered pair: creating the same
// pairing twice returns the existing room. Public rooms are never
// deduplicated; duplicate names are allowed.
func (s *RoomService) Create(ctx context.Context, requesterID string, req models.CreateRoomRequest) (*models.RoomView, error) {
	if req.Name == "" {
		return nil, apperr.ErrRoomNameRequired
	}

	members := unionMembers(requesterID, req.Members)

	var directKey string
	if !req.IsPublic {
		if len(members) != 2 {
			return nil, apperr.ErrDirectRoomMembers
		}
		directKey = models.DirectKey(members[0], members[1])
		if existing, err := s.rooms.DirectRoomByKey(ctx, directKey); err == nil {
			return s.view(ctx, existing)
		}
	}

	room := models.Room{
		Name:     req.Name,
		IsPublic: req.IsPublic,
		Members:  members,
	}
	created, err := s.rooms.CreateRoom(ctx, &room, directKey)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, created)
}

// ListFor returns the rooms where userID is a member.
func (s *RoomService) ListFor(ctx context.Context, userID string) ([]models.RoomView, error) {
	rooms, err := s.rooms.RoomsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]models.RoomView, 0, len(rooms))
	for i := range rooms {
		v, err := s.view(ctx, &rooms[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// AddMembers unions newMemberIDs into roomID's member set. Only current
// members may add others; ids already present are skipped without error.
// Direct rooms have fixed membership, so the call is rejected outright.
func (s *RoomService) AddMembers(ctx context.Context, requesterID, roomID string, newMemberIDs []string) (*models.RoomView, error) {
	if len(newMemberIDs) == 0 {
		return nil, apperr.ErrMemberIDsRequired
	}

	room, err := s.rooms.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(requesterID) {
		return nil, apperr.ErrNotRoomMember
	}
	if !room.IsPublic {
		return nil, apperr.ErrDirectRoomImmutable
	}

	var added []string
	for _, id := range newMemberIDs {
		if !room.HasMember(id) {
			added = append(added, id)
		}
	}
	if len(added) == 0 {
		return s.view(ctx, room)
	}

	updated, err := s.rooms.AddMembers(ctx, roomID, added)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// RoomForMember loads a room and enforces the membership guard in one step.
func (s *RoomService) RoomForMember(ctx context.Context, requesterID, roomID string) (*models.Room, error) {
	room, err := s.rooms.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(requesterID) {
		return nil, apperr.ErrNotRoomMember
	}
	return room, nil
}

func (s *RoomService) view(ctx context.Context, room *models.Room) (*models.RoomView, error) {
	users, err := s.users.UsersByID(ctx, room.Members)
	if err != nil {
		return nil, err
	}
	refs := make([]models.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, models.UserRef{ID: u.ID, Username: u.Username})
	}
	return &models.RoomView{
		ID:        room.ID,
		Name:      room.Name,
		IsPublic:  room.IsPublic,
		Members:   refs,
		CreatedAt: room.CreatedAt,
	}, nil
}

func unionMembers(requesterID string, memberIDs []string) []string {
	seen := map[string]bool{requesterID: true}
	members := []string{requesterID}
	for _, id := range memberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	return members
}
