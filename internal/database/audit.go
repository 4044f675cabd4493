package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/models"
)

// InsertAuditLog appends an entry. e may be the pool or an open transaction.
func InsertAuditLog(e sqlx.Ext, entry models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, old_value, new_value, ip_address, user_agent, notes)
		VALUES (:user_id, :action, :entity_type, :entity_id, :old_value, :new_value, :ip_address, :user_agent, :notes)
	`
	if _, err := sqlx.NamedExec(e, query, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// ListAuditLogs returns the trail of one entity, newest first
func ListAuditLogs(db *sqlx.DB, entityType string, entityID int) ([]models.AuditLog, error) {
	logs := []models.AuditLog{}
	query := `SELECT * FROM audit_logs WHERE entity_type = $1 AND entity_id = $2 ORDER BY timestamp DESC`
	if err := db.Select(&logs, query, entityType, entityID); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}
