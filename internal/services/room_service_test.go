package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
	"chatspace/internal/store/memory"
)

type roomFixture struct {
	svc   *RoomService
	store *memory.Store
	alice models.User
	bob   models.User
	carol models.User
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()
	st := memory.New()
	f := &roomFixture{
		svc:   NewRoomService(st, st),
		store: st,
		alice: models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"},
		bob:   models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"},
		carol: models.User{Username: "carol", Email: "carol@example.com", PasswordHash: "x"},
	}
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, &f.alice))
	require.NoError(t, st.CreateUser(ctx, &f.bob))
	require.NoError(t, st.CreateUser(ctx, &f.carol))
	return f
}

func memberIDs(view *models.RoomView) []string {
	ids := make([]string, 0, len(view.Members))
	for _, m := range view.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestRoomService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("requester always included", func(t *testing.T) {
		f := newRoomFixture(t)
		room, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{
			Name: "#general", IsPublic: true, Members: []string{f.bob.ID},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{f.alice.ID, f.bob.ID}, memberIDs(room))
	})

	t.Run("requester in member list is not duplicated", func(t *testing.T) {
		f := newRoomFixture(t)
		room, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{
			Name: "#general", IsPublic: true, Members: []string{f.alice.ID, f.bob.ID},
		})
		require.NoError(t, err)
		assert.Len(t, room.Members, 2)
	})

	t.Run("name required", func(t *testing.T) {
		f := newRoomFixture(t)
		_, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{IsPublic: true})
		assert.True(t, errors.Is(err, apperr.ErrRoomNameRequired))
	})

	t.Run("duplicate public names allowed", func(t *testing.T) {
		f := newRoomFixture(t)
		first, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{Name: "#general", IsPublic: true})
		require.NoError(t, err)
		second, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{Name: "#general", IsPublic: true})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("direct room requires exactly one other member", func(t *testing.T) {
		f := newRoomFixture(t)
		_, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{Name: "dm"})
		assert.True(t, errors.Is(err, apperr.ErrDirectRoomMembers))

		_, err = f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{
			Name: "dm", Members: []string{f.bob.ID, f.carol.ID},
		})
		assert.True(t, errors.Is(err, apperr.ErrDirectRoomMembers))
	})

	t.Run("direct room dedup is idempotent in either order", func(t *testing.T) {
		f := newRoomFixture(t)
		first, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{
			Name: "dm", Members: []string{f.bob.ID},
		})
		require.NoError(t, err)

		again, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{
			Name: "dm", Members: []string{f.bob.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		// Same pair, reversed roles.
		reversed, err := f.svc.Create(ctx, f.bob.ID, models.CreateRoomRequest{
			Name: "dm", Members: []string{f.alice.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, reversed.ID)
	})
}

func TestRoomService_ListFor(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture(t)

	_, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{Name: "#general", IsPublic: true})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.bob.ID, models.CreateRoomRequest{Name: "#private", IsPublic: true})
	require.NoError(t, err)

	rooms, err := f.svc.ListFor(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "#general", rooms[0].Name)

	rooms, err = f.svc.ListFor(ctx, f.carol.ID)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestRoomService_AddMembers(t *testing.T) {
	ctx := context.Background()

	t.Run("member adds new member", func(t *testing.T) {
		f := newRoomFixture(t)
		room, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{Name: "#general", IsPublic: true})
		require.NoError(t, err)

		updated, err := f.svc.AddMembers(ctx, f.alice.ID, room.ID, []string{f.bob.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{f.alice.ID, f.bob.ID}, memberIDs(updated))
	})

	t.Run("already present ids are skipped without error", func(t *testing.T) {
		f := newRoomFixture(t)
		room, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{Name: "#general", IsPublic: true})
		require.NoError(t, err)

		updated, err := f.svc.AddMembers(ctx, f.alice.ID, room.ID, []string{f.alice.ID, f.bob.ID})
		require.NoError(t, err)
		assert.Len(t, updated.Members, 2)

		// Full overlap is a no-op, not an error.
		updated, err = f.svc.AddMembers(ctx, f.alice.ID, room.ID, []string{f.bob.ID})
		require.NoError(t, err)
		assert.Len(t, updated.Members, 2)
	})

	t.Run("empty list rejected", func(t *testing.T) {
		f := newRoomFixture(t)
		room, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{Name: "#general", IsPublic: true})
		require.NoError(t, err)

		_, err = f.svc.AddMembers(ctx, f.alice.ID, room.ID, nil)
		assert.True(t, errors.Is(err, apperr.ErrMemberIDsRequired))
	})

	t.Run("non-member forbidden", func(t *testing.T) {
		f := newRoomFixture(t)
		room, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{Name: "#general", IsPublic: true})
		require.NoError(t, err)

		_, err = f.svc.AddMembers(ctx, f.bob.ID, room.ID, []string{f.carol.ID})
		assert.True(t, errors.Is(err, apperr.ErrNotRoomMember))
	})

	t.Run("absent room not found", func(t *testing.T) {
		f := newRoomFixture(t)
		_, err := f.svc.AddMembers(ctx, f.alice.ID, "missing", []string{f.bob.ID})
		assert.True(t, errors.Is(err, apperr.ErrRoomNotFound))
	})

	t.Run("direct room membership is immutable", func(t *testing.T) {
		f := newRoomFixture(t)
		room, err := f.svc.Create(ctx, f.alice.ID, models.CreateRoomRequest{
			Name: "dm", Members: []string{f.bob.ID},
		})
		require.NoError(t, err)

		_, err = f.svc.AddMembers(ctx, f.alice.ID, room.ID, []string{f.carol.ID})
		assert.True(t, errors.Is(err, apperr.ErrDirectRoomImmutable))
	})
}
