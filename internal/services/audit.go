package services

import (
	"encoding/json"
	"log"
	"net"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"waterlog/internal/database"
	"waterlog/internal/models"
)

// ClientMeta is the caller information stored next to each audit entry
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// ClientMetaFromRequest reads the remote address (already rewritten by RealIP) and user agent
func ClientMetaFromRequest(r *http.Request) ClientMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return ClientMeta{IPAddress: ip, UserAgent: r.UserAgent()}
}

// AuditEntry describes one sensitive action
type AuditEntry struct {
	UserID     int
	Action     string
	EntityType string
	EntityID   int
	OldValue   interface{}
	NewValue   interface{}
	Notes      string
}

func toJSONText(v interface{}) types.NullJSONText {
	if v == nil {
		return types.NullJSONText{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("⚠️  Could not encode audit value: %v", err)
		return types.NullJSONText{}
	}
	return types.NullJSONText{JSONText: types.JSONText(b), Valid: true}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// LogActivity records an entry in the audit trail. Failures are logged, never
// returned, so an audit outage does not undo the action being audited.
func LogActivity(e sqlx.Ext, entry AuditEntry, meta ClientMeta) {
	record := models.AuditLog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValue:   toJSONText(entry.OldValue),
		NewValue:   toJSONText(entry.NewValue),
		IPAddress:  optional(meta.IPAddress),
		UserAgent:  optional(meta.UserAgent),
		Notes:      optional(entry.Notes),
	}
	if err := database.InsertAuditLog(e, record); err != nil {
		log.Printf("❌ Audit log failed for %s %s#%d: %v", entry.Action, entry.EntityType, entry.EntityID, err)
		return
	}
	log.Printf("📝 Audit: user %d %s %s#%d", entry.UserID, entry.Action, entry.EntityType, entry.EntityID)
}
