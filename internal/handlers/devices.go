package handlers

import (
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/database"
	"waterlog/internal/middleware"
	"waterlog/internal/models"
	"waterlog/pkg/utils"
)

// RegisterFCMToken stores the caller's device token for debt alerts
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, middleware.CredentialsError)
			return
		}

		var req models.RegisterFCMTokenRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Token == "" {
			utils.ValidationError(w, utils.BodyIssue(msgFieldRequired, "token"))
			return
		}
		switch req.DeviceType {
		case "ios", "android", "web":
		default:
			utils.ValidationError(w, utils.BodyIssue("Input should be 'ios', 'android' or 'web'", "device_type"))
			return
		}

		if err := database.UpsertFCMToken(db, user.UserID, req.Token, req.DeviceType); err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al registrar el dispositivo")
			return
		}

		log.Printf("✅ FCM token registered for user %d (%s)", user.UserID, req.DeviceType)
		utils.Success(w, map[string]string{"message": "Dispositivo registrado"})
	}
}
