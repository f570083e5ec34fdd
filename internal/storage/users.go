package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyLogin is returned when a user is resolved without a login.
var ErrEmptyLogin = errors.New("empty login")

// GetOrCreateUser returns the id of the user with the given login, creating
// it on first sight. A blank display name keeps the stored one.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return 0, ErrEmptyLogin
	}

	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, strings.TrimSpace(displayName)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving user %q: %w", login, err)
	}
	return id, nil
}
