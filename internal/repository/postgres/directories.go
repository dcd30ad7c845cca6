package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

// UserDirectory is the identity lookup consumed from the external accounts
// subsystem. is_active is admin-controlled (block/unblock).
type UserDirectory struct {
	DB *sql.DB
}

func (d *UserDirectory) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user := &domain.User{}
	err := d.DB.QueryRowContext(ctx, `
		SELECT id, username, is_active
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.Active)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return user, nil
}

// ListingDirectory is the pet listing lookup consumed from the external pets
// subsystem, needed only to originate rooms.
type ListingDirectory struct {
	DB *sql.DB
}

func (d *ListingDirectory) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	listing := &domain.Listing{}
	err := d.DB.QueryRowContext(ctx, `
		SELECT id, name, created_by
		FROM pet_cards
		WHERE id = $1
	`, id).Scan(&listing.ID, &listing.Name, &listing.OwnerID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	return listing, nil
}
