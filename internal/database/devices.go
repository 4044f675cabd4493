package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/models"
)

// UpsertFCMToken registers a device token, moving it to userID if another account owned it
func UpsertFCMToken(db *sqlx.DB, userID int, token, deviceType string) error {
	query := `
		INSERT INTO fcm_tokens (user_id, token, device_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			device_type = EXCLUDED.device_type,
			updated_at = NOW()
	`
	if _, err := db.Exec(query, userID, token, deviceType); err != nil {
		return fmt.Errorf("failed to save fcm token: %w", err)
	}
	return nil
}

// TokensForRoles returns every device token owned by active users with one of roles
func TokensForRoles(db *sqlx.DB, roles ...models.UserRole) ([]string, error) {
	query, args, err := sqlx.In(`
		SELECT f.token FROM fcm_tokens f
		JOIN users u ON u.id = f.user_id
		WHERE u.is_active = TRUE AND u.role IN (?)
	`, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to build token query: %w", err)
	}

	tokens := []string{}
	if err := db.Select(&tokens, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get fcm tokens: %w", err)
	}
	return tokens, nil
}

// DeleteFCMToken drops a token FCM reported as unregistered
func DeleteFCMToken(db *sqlx.DB, token string) error {
	if _, err := db.Exec(`DELETE FROM fcm_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete fcm token: %w", err)
	}
	return nil
}
