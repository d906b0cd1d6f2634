package client

import (
	"context"
	"log"
	"sync"
	"time"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
)

// defaultChannel is preferred as the initially selected room when present.
const defaultChannel = "#general"

// simulatedTypingDelay is how long a simulated participant's typing
// indicator lingers after their message lands.
const simulatedTypingDelay = 2 * time.Second

// Client is the client-resident source of truth: rooms, peers, per-room
// message caches and typing state. All mutations round-trip through the
// server and merge only the confirmed result; a rejected call never touches
// the cache.
type Client struct {
	mu       sync.Mutex
	api      API
	self     models.User
	users    []models.User
	rooms    []Room
	messages map[string][]models.Message
	loaded   map[string]bool
	activeID string
	presence *PresenceTracker
}

func New(api API, self models.User) *Client {
	return &Client{
		api:      api,
		self:     self,
		messages: make(map[string][]models.Message),
		loaded:   make(map[string]bool),
		presence: NewPresenceTracker(DefaultTypingTTL),
	}
}

// Initialize fetches the caller's rooms and the peer user list, normalizes
// room shapes into the cache and selects a default room: the well-known
// public channel if present, otherwise the first room.
func (c *Client) Initialize(ctx context.Context) error {
	rooms, err := c.api.ListRooms(ctx)
	if err != nil {
		return err
	}
	users, err := c.api.ListUsers(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.users = append([]models.User{c.self}, users...)
	c.rooms = c.rooms[:0]
	for i := range rooms {
		c.rooms = append(c.rooms, c.normalizeRoom(&rooms[i]))
	}

	var defaultID string
	for _, r := range c.rooms {
		if r.IsPublic && r.Name == defaultChannel {
			defaultID = r.ID
			break
		}
	}
	if defaultID == "" && len(c.rooms) > 0 {
		defaultID = c.rooms[0].ID
	}
	c.mu.Unlock()

	if defaultID != "" {
		return c.SelectRoom(ctx, defaultID)
	}
	return nil
}

// SelectRoom marks a room active and lazily loads its history. History is
// fetched at most once per room per session; a failed fetch is logged,
// leaves the cache absent for that room and is retried on the next select.
func (c *Client) SelectRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	c.activeID = roomID
	if c.loaded[roomID] {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	history, err := c.api.RoomMessages(ctx, roomID)
	if err != nil {
		log.Printf("Failed to fetch messages for room %s: %v", roomID, err)
		return err
	}

	c.mu.Lock()
	c.messages[roomID] = history
	c.loaded[roomID] = true
	c.mu.Unlock()
	return nil
}

// CreateRoom creates a public channel or a direct room. For direct rooms the
// local cache is checked first, mirroring the server's dedup invariant: an
// existing pairing is selected without any server call.
func (c *Client) CreateRoom(ctx context.Context, name string, isPublic bool, memberIDs []string) (*Room, error) {
	if !isPublic && len(memberIDs) == 1 && memberIDs[0] != c.self.ID {
		partnerID := memberIDs[0]
		c.mu.Lock()
		var existing *Room
		for i := range c.rooms {
			r := &c.rooms[i]
			if !r.IsPublic && len(r.Members) == 2 &&
				r.hasMember(partnerID) && r.hasMember(c.self.ID) {
				found := *r
				existing = &found
				break
			}
		}
		c.mu.Unlock()
		if existing != nil {
			if err := c.SelectRoom(ctx, existing.ID); err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	view, err := c.api.CreateRoom(ctx, models.CreateRoomRequest{
		Name:     name,
		IsPublic: isPublic,
		Members:  memberIDs,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	room := c.normalizeRoom(view)
	c.rooms = append(c.rooms, room)
	c.mu.Unlock()

	if err := c.SelectRoom(ctx, room.ID); err != nil {
		return nil, err
	}
	return &room, nil
}

// AddMembers asks the server to grow a room's membership and replaces the
// cached room with the confirmed result.
func (c *Client) AddMembers(ctx context.Context, roomID string, memberIDs []string) (*Room, error) {
	view, err := c.api.AddMembers(ctx, roomID, memberIDs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	room := c.normalizeRoom(view)
	for i := range c.rooms {
		if c.rooms[i].ID == roomID {
			c.rooms[i] = room
			break
		}
	}
	return &room, nil
}

// SendMessage posts to the server and appends the confirmed message to the
// cache. There is no speculative insert: on failure the cache is untouched.
// Sending also clears the caller's own typing entry.
func (c *Client) SendMessage(ctx context.Context, roomID, text string) (*models.Message, error) {
	msg, err := c.api.SendMessage(ctx, roomID, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.loaded[roomID] {
		c.messages[roomID] = append(c.messages[roomID], *msg)
	}
	c.mu.Unlock()

	c.presence.Set(roomID, c.self.ID, false)
	return msg, nil
}

// Summarize requests an AI summary of the room's recent activity. The
// minimum-context check runs against the local cache so an obviously
// hopeless request never reaches the network.
func (c *Client) Summarize(ctx context.Context, roomID string) (*models.Message, error) {
	c.mu.Lock()
	cached := len(c.messages[roomID])
	c.mu.Unlock()
	if cached < 3 {
		return nil, apperr.ErrInsufficientContext
	}

	msg, err := c.api.Summarize(ctx, roomID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.loaded[roomID] {
		c.messages[roomID] = append(c.messages[roomID], *msg)
	}
	c.mu.Unlock()
	return msg, nil
}

// Receive merges a server-pushed message into the cache. A simulated
// participant's typing indicator is scheduled to clear shortly after their
// message lands.
func (c *Client) Receive(msg *models.Message) {
	c.mu.Lock()
	if c.loaded[msg.RoomID] {
		c.messages[msg.RoomID] = append(c.messages[msg.RoomID], *msg)
	}
	c.mu.Unlock()

	if msg.AuthorID == models.SystemAuthorID {
		c.presence.SetFor(msg.RoomID, msg.AuthorID, simulatedTypingDelay)
	}
}

// SetTyping updates the caller's own typing state for a room: refreshed on
// every keystroke, cleared on blur.
func (c *Client) SetTyping(roomID string, typing bool) {
	c.presence.Set(roomID, c.self.ID, typing)
}

// TypingUsers returns who is currently typing in a room.
func (c *Client) TypingUsers(roomID string) []string {
	return c.presence.Typing(roomID)
}

func (c *Client) ActiveRoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

func (c *Client) Rooms() []Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Room, len(c.rooms))
	copy(out, c.rooms)
	return out
}

func (c *Client) Users() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.User, len(c.users))
	copy(out, c.users)
	return out
}

func (c *Client) Messages(roomID string) []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.messages[roomID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

// normalizeRoom is the single mapping step from the server's populated room
// shape to the cache shape: members flattened to ids, direct rooms renamed
// to the other participant's username. Callers hold c.mu.
func (c *Client) normalizeRoom(view *models.RoomView) Room {
	room := Room{
		ID:       view.ID,
		Name:     view.Name,
		IsPublic: view.IsPublic,
	}
	for _, ref := range view.Members {
		room.Members = append(room.Members, ref.ID)
	}
	if !view.IsPublic && len(view.Members) == 2 {
		for _, ref := range view.Members {
			if ref.ID != c.self.ID {
				room.Name = ref.Username
				break
			}
		}
	}
	return room
}
