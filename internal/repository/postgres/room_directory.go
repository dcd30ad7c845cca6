package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

const pqForeignKeyViolation = "23503"

// RoomDirectory maps rooms to their pet listing and participant pair.
type RoomDirectory struct {
	DB *sql.DB
}

// GetOrCreate resolves the room for (pet, pair), creating it when absent.
// The pair is canonicalized before lookup so either ordering resolves to the
// same row, and the insert races on the unique key rather than on a
// read-then-write. Returns the room and whether this call created it.
func (d *RoomDirectory) GetOrCreate(ctx context.Context, petID, a, b int64) (*domain.Room, bool, error) {
	if a == b {
		return nil, false, domain.ErrInvalidCounterparty
	}

	userA, userB := domain.CanonicalPair(a, b)

	room := &domain.Room{PetID: petID, UserA: userA, UserB: userB}
	err := d.DB.QueryRowContext(ctx, `
		INSERT INTO chat_rooms (pet_id, user_a, user_b)
		VALUES ($1, $2, $3)
		ON CONFLICT (pet_id, user_a, user_b) DO NOTHING
		RETURNING id, created_at
	`, petID, userA, userB).Scan(&room.ID, &room.CreatedAt)

	if err == nil {
		return room, true, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return nil, false, domain.ErrListingNotFound
		}
		return nil, false, fmt.Errorf("failed to create room: %w", err)
	}

	// Lost the insert race or the room already existed.
	err = d.DB.QueryRowContext(ctx, `
		SELECT id, created_at
		FROM chat_rooms
		WHERE pet_id = $1 AND user_a = $2 AND user_b = $3
	`, petID, userA, userB).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch existing room: %w", err)
	}

	return room, false, nil
}

func (d *RoomDirectory) Resolve(ctx context.Context, roomID int64) (*domain.Room, error) {
	room := &domain.Room{}
	err := d.DB.QueryRowContext(ctx, `
		SELECT id, pet_id, user_a, user_b, created_at
		FROM chat_rooms
		WHERE id = $1
	`, roomID).Scan(&room.ID, &room.PetID, &room.UserA, &room.UserB, &room.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room: %w", err)
	}

	return room, nil
}

const roomSummaryColumns = `
	r.id, r.pet_id, r.user_a, r.user_b, r.created_at,
	p.name, po.username, ua.username, ub.username
`

const roomSummaryJoins = `
	FROM chat_rooms r
	JOIN pet_cards p ON p.id = r.pet_id
	JOIN users po ON po.id = p.created_by
	JOIN users ua ON ua.id = r.user_a
	JOIN users ub ON ub.id = r.user_b
`

func scanRoomSummary(row interface{ Scan(...any) error }) (*domain.RoomSummary, error) {
	s := &domain.RoomSummary{}
	err := row.Scan(
		&s.ID, &s.PetID, &s.UserA, &s.UserB, &s.CreatedAt,
		&s.PetName, &s.PetOwnerUsername, &s.UserAUsername, &s.UserBUsername,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *RoomDirectory) Summary(ctx context.Context, roomID int64) (*domain.RoomSummary, error) {
	row := d.DB.QueryRowContext(ctx,
		`SELECT `+roomSummaryColumns+roomSummaryJoins+` WHERE r.id = $1`, roomID)

	s, err := scanRoomSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room summary: %w", err)
	}
	return s, nil
}

func (d *RoomDirectory) ListForUser(ctx context.Context, userID int64) ([]*domain.RoomSummary, error) {
	rows, err := d.DB.QueryContext(ctx,
		`SELECT `+roomSummaryColumns+roomSummaryJoins+`
		WHERE r.user_a = $1 OR r.user_b = $1
		ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.RoomSummary
	for rows.Next() {
		s, err := scanRoomSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
