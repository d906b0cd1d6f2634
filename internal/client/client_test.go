package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
)

// fakeAPI is a configurable in-memory server surface, counting calls so
// tests can assert on the client's fetch and short-circuit policies.
type fakeAPI struct {
	rooms    []models.RoomView
	users    []models.User
	messages map[string][]models.Message

	failSend       bool
	failMessages   bool
	failSummarize  bool
	failCreateRoom bool

	roomMessagesCalls map[string]int
	createRoomCalls   int
	summarizeCalls    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		messages:          make(map[string][]models.Message),
		roomMessagesCalls: make(map[string]int),
	}
}

func (f *fakeAPI) ListRooms(context.Context) ([]models.RoomView, error) {
	return f.rooms, nil
}

func (f *fakeAPI) ListUsers(context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeAPI) RoomMessages(_ context.Context, roomID string) ([]models.Message, error) {
	f.roomMessagesCalls[roomID]++
	if f.failMessages {
		return nil, apperr.Internal("boom")
	}
	return f.messages[roomID], nil
}

func (f *fakeAPI) CreateRoom(_ context.Context, req models.CreateRoomRequest) (*models.RoomView, error) {
	f.createRoomCalls++
	if f.failCreateRoom {
		return nil, apperr.ErrDirectRoomMembers
	}
	view := models.RoomView{
		ID:       "room-new",
		Name:     req.Name,
		IsPublic: req.IsPublic,
		Members:  []models.UserRef{{ID: "self", Username: "me"}},
	}
	for _, id := range req.Members {
		view.Members = append(view.Members, models.UserRef{ID: id, Username: "peer-" + id})
	}
	return &view, nil
}

func (f *fakeAPI) AddMembers(_ context.Context, roomID string, memberIDs []string) (*models.RoomView, error) {
	for i := range f.rooms {
		if f.rooms[i].ID == roomID {
			view := f.rooms[i]
			for _, id := range memberIDs {
				view.Members = append(view.Members, models.UserRef{ID: id, Username: "peer-" + id})
			}
			return &view, nil
		}
	}
	return nil, apperr.ErrRoomNotFound
}

func (f *fakeAPI) SendMessage(_ context.Context, roomID, text string) (*models.Message, error) {
	if f.failSend {
		return nil, apperr.ErrNotRoomMember
	}
	msg := models.Message{
		ID: "msg-new", RoomID: roomID, AuthorID: "self", AuthorName: "me",
		Text: text, Kind: models.KindText, Timestamp: time.Now(),
	}
	return &msg, nil
}

func (f *fakeAPI) Summarize(_ context.Context, roomID string) (*models.Message, error) {
	f.summarizeCalls++
	if f.failSummarize {
		return nil, apperr.ErrSummarizationFailed
	}
	msg := models.Message{
		ID: "msg-summary", RoomID: roomID,
		AuthorID: models.SystemAuthorID, AuthorName: models.SystemAuthorName,
		Text: "a summary", Kind: models.KindSummary, Timestamp: time.Now(),
	}
	return &msg, nil
}

var self = models.User{ID: "self", Username: "me", Email: "me@example.com"}

func fixtureRooms() []models.RoomView {
	return []models.RoomView{
		{
			ID: "room-dm", Name: "dm", IsPublic: false,
			Members: []models.UserRef{{ID: "self", Username: "me"}, {ID: "u2", Username: "bob"}},
		},
		{
			ID: "room-general", Name: "#general", IsPublic: true,
			Members: []models.UserRef{{ID: "self", Username: "me"}, {ID: "u2", Username: "bob"}},
		},
	}
}

func TestClient_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the general channel and resolves dm names", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()
		api.users = []models.User{{ID: "u2", Username: "bob"}}

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))

		assert.Equal(t, "room-general", c.ActiveRoomID())

		rooms := c.Rooms()
		require.Len(t, rooms, 2)
		assert.Equal(t, "bob", rooms[0].Name, "dm renamed to the other participant")
		assert.Equal(t, []string{"self", "u2"}, rooms[0].Members, "members flattened to ids")

		users := c.Users()
		require.Len(t, users, 2)
		assert.Equal(t, "self", users[0].ID, "caller listed first")
	})

	t.Run("falls back to the first room", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()[:1]

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))
		assert.Equal(t, "room-dm", c.ActiveRoomID())
	})

	t.Run("no rooms leaves nothing selected", func(t *testing.T) {
		api := newFakeAPI()
		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))
		assert.Empty(t, c.ActiveRoomID())
	})
}

func TestClient_SelectRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("history fetched once per room", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()
		api.messages["room-dm"] = []models.Message{
			{ID: "m1", RoomID: "room-dm", AuthorID: "u2", Text: "hi"},
		}

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))

		require.NoError(t, c.SelectRoom(ctx, "room-dm"))
		require.NoError(t, c.SelectRoom(ctx, "room-general"))
		require.NoError(t, c.SelectRoom(ctx, "room-dm"))

		assert.Equal(t, 1, api.roomMessagesCalls["room-dm"])
		assert.Len(t, c.Messages("room-dm"), 1)
	})

	t.Run("failed fetch leaves the cache absent and retries later", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()
		api.failMessages = true

		c := New(api, self)
		assert.Error(t, c.Initialize(ctx), "default selection surfaces the fetch failure")

		assert.Error(t, c.SelectRoom(ctx, "room-dm"))
		assert.Empty(t, c.Messages("room-dm"))

		api.failMessages = false
		require.NoError(t, c.SelectRoom(ctx, "room-dm"))
		assert.Equal(t, 3, api.roomMessagesCalls["room-dm"]+api.roomMessagesCalls["room-general"])
	})
}

func TestClient_CreateRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("dm short-circuits on the local cache", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))

		room, err := c.CreateRoom(ctx, "whatever", false, []string{"u2"})
		require.NoError(t, err)
		assert.Equal(t, "room-dm", room.ID)
		assert.Zero(t, api.createRoomCalls, "existing pairing must not hit the server")
		assert.Equal(t, "room-dm", c.ActiveRoomID())
	})

	t.Run("dm with self never matches the cache", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()
		api.failCreateRoom = true

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))

		_, err := c.CreateRoom(ctx, "", false, []string{"self"})
		assert.True(t, errors.Is(err, apperr.ErrDirectRoomMembers), "server rejection must surface")
		assert.Equal(t, 1, api.createRoomCalls)
	})

	t.Run("new room merges and becomes active", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))

		room, err := c.CreateRoom(ctx, "#random", true, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, api.createRoomCalls)
		assert.Equal(t, room.ID, c.ActiveRoomID())
		assert.Len(t, c.Rooms(), 3)
	})
}

func TestClient_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed message merges and clears own typing", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))
		require.NoError(t, c.SelectRoom(ctx, "room-general"))

		c.SetTyping("room-general", true)
		msg, err := c.SendMessage(ctx, "room-general", "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.Text)
		assert.Len(t, c.Messages("room-general"), 1)
		assert.Empty(t, c.TypingUsers("room-general"))
	})

	t.Run("rejection leaves the cache untouched", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()
		api.failSend = true

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))
		require.NoError(t, c.SelectRoom(ctx, "room-general"))

		_, err := c.SendMessage(ctx, "room-general", "hello")
		assert.True(t, errors.Is(err, apperr.ErrNotRoomMember))
		assert.Empty(t, c.Messages("room-general"))
	})
}

func TestClient_Summarize(t *testing.T) {
	ctx := context.Background()

	t.Run("too few cached messages rejected locally", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()
		api.messages["room-general"] = []models.Message{
			{ID: "m1", RoomID: "room-general", Text: "hi"},
			{ID: "m2", RoomID: "room-general", Text: "yo"},
		}

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))

		_, err := c.Summarize(ctx, "room-general")
		assert.True(t, errors.Is(err, apperr.ErrInsufficientContext))
		assert.Zero(t, api.summarizeCalls, "local reject must not call the server")
	})

	t.Run("summary merges into the cache", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()
		api.messages["room-general"] = []models.Message{
			{ID: "m1", RoomID: "room-general", Text: "hi"},
			{ID: "m2", RoomID: "room-general", Text: "yo"},
			{ID: "m3", RoomID: "room-general", Text: "hey"},
		}

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))

		msg, err := c.Summarize(ctx, "room-general")
		require.NoError(t, err)
		assert.Equal(t, models.KindSummary, msg.Kind)
		assert.Equal(t, models.SystemAuthorID, msg.AuthorID)

		cached := c.Messages("room-general")
		require.Len(t, cached, 4)
		assert.Equal(t, models.KindSummary, cached[3].Kind)
	})

	t.Run("failure appends nothing", func(t *testing.T) {
		api := newFakeAPI()
		api.rooms = fixtureRooms()
		api.messages["room-general"] = []models.Message{
			{ID: "m1"}, {ID: "m2"}, {ID: "m3"},
		}
		api.failSummarize = true

		c := New(api, self)
		require.NoError(t, c.Initialize(ctx))

		_, err := c.Summarize(ctx, "room-general")
		assert.True(t, errors.Is(err, apperr.ErrSummarizationFailed))
		assert.Len(t, c.Messages("room-general"), 3)
	})
}

func TestClient_Receive(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.rooms = fixtureRooms()
	api.users = []models.User{{ID: "u2", Username: "bob"}}

	c := New(api, self)
	require.NoError(t, c.Initialize(ctx))
	require.NoError(t, c.SelectRoom(ctx, "room-general"))

	t.Run("human message merges without typing side effects", func(t *testing.T) {
		c.Receive(&models.Message{ID: "m1", RoomID: "room-general", AuthorID: "u2", Text: "hi"})
		assert.Len(t, c.Messages("room-general"), 1)
		assert.Empty(t, c.TypingUsers("room-general"))
	})

	t.Run("unknown human author gets no typing indicator", func(t *testing.T) {
		// A user who signed up after Initialize is absent from the cached
		// list but is still human.
		c.Receive(&models.Message{ID: "m2", RoomID: "room-general", AuthorID: "u9", Text: "new here"})
		assert.Len(t, c.Messages("room-general"), 2)
		assert.Empty(t, c.TypingUsers("room-general"))
	})

	t.Run("simulated participant typing clears after the delay", func(t *testing.T) {
		c.Receive(&models.Message{
			ID: "m3", RoomID: "room-general",
			AuthorID: models.SystemAuthorID, Text: "beep",
		})
		assert.Equal(t, []string{models.SystemAuthorID}, c.TypingUsers("room-general"))

		assert.Eventually(t, func() bool {
			return len(c.TypingUsers("room-general")) == 0
		}, 5*time.Second, 50*time.Millisecond)
	})
}
