package postgres

import (
	"context"
	"fmt"

	"chatspace/internal/models"
)

func (s *Store) AppendMessage(ctx context.Context, m *models.Message) error {
	// The timestamp is pinned to be no earlier than the room's last message,
	// keeping per-room ordering monotone even if the server clock steps
	// backwards. Ties are broken by seq, which records arrival order.
	query := `
		INSERT INTO messages (room_id, author_id, author_name, text, kind, created_at)
		VALUES ($1, $2, $3, $4, $5,
			GREATEST(now(), COALESCE(
				(SELECT max(created_at) FROM messages WHERE room_id = $1), now())))
		RETURNING id, seq, created_at`
	err := s.pool.QueryRow(ctx, query,
		m.RoomID, m.AuthorID, m.AuthorName, m.Text, m.Kind).
		Scan(&m.ID, &m.Seq, &m.Timestamp)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *Store) MessagesForRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	query := `
		SELECT id, room_id, author_id, author_name, text, kind, seq, created_at
		FROM messages
		WHERE room_id::text = $1
		ORDER BY created_at, seq`
	rows, err := s.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("messages for room: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.AuthorID, &m.AuthorName,
			&m.Text, &m.Kind, &m.Seq, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
