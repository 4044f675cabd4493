package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Audit actions
const (
	ActionRouteCheckout = "ROUTE_CHECKOUT"
	ActionRouteClosed   = "ROUTE_CLOSED"
	ActionDebtResolved  = "DEBT_RESOLVED"
)

// AuditLog is an immutable record of a sensitive action
type AuditLog struct {
	ID         int                `json:"id" db:"id"`
	Timestamp  time.Time          `json:"timestamp" db:"timestamp"`
	UserID     int                `json:"user_id" db:"user_id"`
	Action     string             `json:"action" db:"action"`
	EntityType string             `json:"entity_type" db:"entity_type"`
	EntityID   int                `json:"entity_id" db:"entity_id"`
	OldValue   types.NullJSONText `json:"old_value" db:"old_value"`
	NewValue   types.NullJSONText `json:"new_value" db:"new_value"`
	IPAddress  *string            `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string            `json:"user_agent,omitempty" db:"user_agent"`
	Notes      *string            `json:"notes,omitempty" db:"notes"`
}

// FCMToken is a device registered for push notifications
type FCMToken struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Token      string    `json:"token" db:"token"`
	DeviceType string    `json:"device_type" db:"device_type"` // "ios", "android" or "web"
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}
