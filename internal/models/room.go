package models

import (
	"sort"
	"time"
)

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"isPublic"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasMember is the single membership predicate gating every room read and
// write. It has no side effects.
func (r *Room) HasMember(userID string) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// RoomView is the wire shape with member references populated by username,
// mirroring what clients need to render direct rooms.
type RoomView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"isPublic"`
	Members   []UserRef `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// DirectKey returns the canonical identity of a direct room: the member pair
// sorted and joined, so {A,B} and {B,A} collide on the store's unique index.
func DirectKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return pair[0] + ":" + pair[1]
}

type CreateRoomRequest struct {
	Name     string   `json:"name"`
	IsPublic bool     `json:"isPublic"`
	Members  []string `json:"members"`
}

type AddMembersRequest struct {
	MemberIDs []string `json:"memberIds"`
}
