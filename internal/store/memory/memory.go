// Package memory is an in-process implementation of the store interfaces.
// It mirrors the postgres semantics, including the direct-room uniqueness
// guarantee and monotone per-room message timestamps, so service behavior is
// identical under test.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
)

type Store struct {
	mu        sync.Mutex
	users     []models.User
	rooms     []models.Room
	directKey map[string]string // direct pair key -> room id
	messages  map[string][]models.Message
	lastTS    map[string]time.Time
	seq       int64
}

func New() *Store {
	return &Store{
		directKey: make(map[string]string),
		messages:  make(map[string][]models.Message),
		lastTS:    make(map[string]time.Time),
	}
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return apperr.ErrUserExists
		}
	}
	u.ID = uuid.New().String()
	s.users = append(s.users, *u)
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			c := u
			return &c, nil
		}
	}
	return nil, apperr.ErrInvalidCredentials
}

func (s *Store) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			c := u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (s *Store) ListUsers(_ context.Context, excludeID string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	for _, u := range s.users {
		if u.ID != excludeID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Store) UsersByID(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var users []models.User
	for _, u := range s.users {
		if want[u.ID] {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Store) CreateRoom(_ context.Context, r *models.Room, directKey string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if directKey != "" {
		if id, ok := s.directKey[directKey]; ok {
			return s.roomByIDLocked(id)
		}
	}
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now()
	sort.Strings(r.Members)
	s.rooms = append(s.rooms, *r)
	if directKey != "" {
		s.directKey[directKey] = r.ID
	}
	return r, nil
}

func (s *Store) RoomByID(_ context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomByIDLocked(id)
}

func (s *Store) DirectRoomByKey(_ context.Context, directKey string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.directKey[directKey]
	if !ok {
		return nil, apperr.ErrRoomNotFound
	}
	return s.roomByIDLocked(id)
}

func (s *Store) RoomsForUser(_ context.Context, userID string) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rooms []models.Room
	for _, r := range s.rooms {
		if r.HasMember(userID) {
			rooms = append(rooms, copyRoom(r))
		}
	}
	return rooms, nil
}

func (s *Store) AddMembers(_ context.Context, roomID string, memberIDs []string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rooms {
		if s.rooms[i].ID != roomID {
			continue
		}
		for _, id := range memberIDs {
			if !s.rooms[i].HasMember(id) {
				s.rooms[i].Members = append(s.rooms[i].Members, id)
			}
		}
		r := copyRoom(s.rooms[i])
		return &r, nil
	}
	return nil, apperr.ErrRoomNotFound
}

func (s *Store) AppendMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := time.Now()
	if last, ok := s.lastTS[m.RoomID]; ok && last.After(ts) {
		ts = last
	}
	s.seq++
	m.ID = uuid.New().String()
	m.Seq = s.seq
	m.Timestamp = ts
	s.lastTS[m.RoomID] = ts
	s.messages[m.RoomID] = append(s.messages[m.RoomID], *m)
	return nil
}

func (s *Store) MessagesForRoom(_ context.Context, roomID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[roomID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *Store) roomByIDLocked(id string) (*models.Room, error) {
	for _, r := range s.rooms {
		if r.ID == id {
			c := copyRoom(r)
			return &c, nil
		}
	}
	return nil, apperr.ErrRoomNotFound
}

func copyRoom(r models.Room) models.Room {
	c := r
	c.Members = append([]string(nil), r.Members...)
	return c
}
