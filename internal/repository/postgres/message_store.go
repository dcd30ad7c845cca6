package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

// MessageStore is the durable, ordered record of chat messages. Ids and
// timestamps are assigned by the database at insert time; the id sequence is
// the total order within a room.
type MessageStore struct {
	DB *sql.DB
}

func (s *MessageStore) Insert(ctx context.Context, roomID, senderID int64, content string) (*domain.Message, error) {
	msg := &domain.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
	}

	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO chat_messages (room_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, roomID, senderID, content).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return msg, nil
}

// ListByRoom returns a page of a room's messages oldest first, plus the
// room's total message count for the pagination envelope.
func (s *MessageStore) ListByRoom(ctx context.Context, roomID int64, limit, offset int) ([]*domain.Message, int, error) {
	var total int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chat_messages WHERE room_id = $1
	`, roomID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT m.id, m.room_id, m.sender_id, u.username, m.content, m.created_at
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = $1
		ORDER BY m.id ASC
		LIMIT $2 OFFSET $3
	`, roomID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		msg := &domain.Message{}
		if err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.SenderID,
			&msg.SenderUsername,
			&msg.Content,
			&msg.Timestamp,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, total, rows.Err()
}
