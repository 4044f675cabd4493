package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"waterlog/internal/database"
	"waterlog/internal/middleware"
	"waterlog/internal/models"
	"waterlog/pkg/utils"
)

const msgBadCredentials = "Usuario o contraseña incorrectos"

// Login accepts an OAuth2 password form (username, password) and returns a bearer token
func Login(db *sqlx.DB, jwtSecret string, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			utils.ValidationError(w, utils.BodyIssue("Invalid form body"))
			return
		}

		username := r.PostForm.Get("username")
		password := r.PostForm.Get("password")

		var issues []utils.Issue
		if username == "" {
			issues = append(issues, utils.BodyIssue(msgFieldRequired, "username"))
		}
		if password == "" {
			issues = append(issues, utils.BodyIssue(msgFieldRequired, "password"))
		}
		if len(issues) > 0 {
			utils.ValidationError(w, issues...)
			return
		}

		log.Printf("🔐 Login attempt for: %s", username)

		user, err := database.GetUserByUsername(db, username)
		if errors.Is(err, database.ErrUserNotFound) {
			log.Printf("❌ User not found: %s", username)
			w.Header().Set("WWW-Authenticate", "Bearer")
			utils.Error(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		if err != nil {
			log.Printf("❌ Login lookup failed: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error interno")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
			log.Printf("❌ Invalid password for: %s", username)
			w.Header().Set("WWW-Authenticate", "Bearer")
			utils.Error(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}

		if !user.IsActive {
			log.Printf("⚠️  Inactive user tried to log in: %s", username)
			utils.Error(w, http.StatusForbidden, "Usuario inactivo")
			return
		}

		issuedAt := now()
		token, err := middleware.IssueToken(jwtSecret, user, ttl, issuedAt)
		if err != nil {
			log.Printf("❌ Failed to create token: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error interno")
			return
		}

		if err := database.TouchLastLogin(db, user.ID, issuedAt); err != nil {
			log.Printf("⚠️  %v", err)
		}

		log.Printf("✅ Login successful: %s (%s)", user.Username, user.Role)
		utils.Success(w, models.LoginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			User:        user.ToUserResponse(),
		})
	}
}

// Me returns the authenticated user
func Me(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, middleware.CredentialsError)
			return
		}

		user, err := database.GetUserByID(db, claims.UserID)
		if errors.Is(err, database.ErrUserNotFound) {
			utils.Error(w, http.StatusUnauthorized, middleware.CredentialsError)
			return
		}
		if err != nil {
			log.Printf("❌ Failed to load current user: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error interno")
			return
		}
		if !user.IsActive {
			utils.Error(w, http.StatusForbidden, "Usuario inactivo")
			return
		}

		utils.Success(w, user.ToUserResponse())
	}
}
