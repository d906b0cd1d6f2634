package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
)

func (s *Store) CreateRoom(ctx context.Context, r *models.Room, directKey string) (*models.Room, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	defer tx.Rollback(ctx)

	var key *string
	if directKey != "" {
		key = &directKey
	}

	// ON CONFLICT against the partial unique index makes the direct-room
	// dedup atomic: a concurrent insert of the same pair returns no row here
	// and we fall through to reading the winner.
	var existing bool
	query := `INSERT INTO rooms (name, is_public, direct_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (direct_key) WHERE direct_key IS NOT NULL DO NOTHING
		RETURNING id, created_at`
	err = tx.QueryRow(ctx, query, r.Name, r.IsPublic, key).Scan(&r.ID, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		existing = true
	} else if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	if existing {
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return s.DirectRoomByKey(ctx, directKey)
	}

	for _, memberID := range r.Members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO room_members (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			r.ID, memberID); err != nil {
			return nil, fmt.Errorf("create room members: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) RoomByID(ctx context.Context, id string) (*models.Room, error) {
	var r models.Room
	query := `SELECT id, name, is_public, created_at FROM rooms WHERE id::text = $1`
	err := s.pool.QueryRow(ctx, query, id).Scan(&r.ID, &r.Name, &r.IsPublic, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrRoomNotFound
		}
		return nil, fmt.Errorf("room by id: %w", err)
	}
	if r.Members, err = s.roomMembers(ctx, r.ID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) DirectRoomByKey(ctx context.Context, directKey string) (*models.Room, error) {
	var r models.Room
	query := `SELECT id, name, is_public, created_at FROM rooms WHERE direct_key = $1`
	err := s.pool.QueryRow(ctx, query, directKey).Scan(&r.ID, &r.Name, &r.IsPublic, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrRoomNotFound
		}
		return nil, fmt.Errorf("direct room by key: %w", err)
	}
	if r.Members, err = s.roomMembers(ctx, r.ID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) RoomsForUser(ctx context.Context, userID string) ([]models.Room, error) {
	query := `
		SELECT r.id, r.name, r.is_public, r.created_at
		FROM rooms r
		JOIN room_members m ON r.id = m.room_id
		WHERE m.user_id = $1
		ORDER BY r.created_at`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("rooms for user: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.IsPublic, &r.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		if rooms[i].Members, err = s.roomMembers(ctx, rooms[i].ID); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

func (s *Store) AddMembers(ctx context.Context, roomID string, memberIDs []string) (*models.Room, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("add members: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, memberID := range memberIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO room_members (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			roomID, memberID); err != nil {
			return nil, fmt.Errorf("add members: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.RoomByID(ctx, roomID)
}

func (s *Store) roomMembers(ctx context.Context, roomID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM room_members WHERE room_id = $1 ORDER BY user_id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("room members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
