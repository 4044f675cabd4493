package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

func GetUserByUsername(db *sqlx.DB, username string) (*models.User, error) {
	var user models.User
	err := db.Get(&user, `SELECT * FROM users WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func GetUserByID(db *sqlx.DB, id int) (*models.User, error) {
	var user models.User
	err := db.Get(&user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func TouchLastLogin(db *sqlx.DB, id int, at time.Time) error {
	if _, err := db.Exec(`UPDATE users SET last_login = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
