package models

import "time"

// UserRole mirrors the roles stored in users.role
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleDriver     UserRole = "CHOFER"
	RoleSupervisor UserRole = "SUPERVISOR"
	RoleAuditor    UserRole = "AUDITOR"
)

type User struct {
	ID             int        `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          *string    `json:"email" db:"email"`
	FullName       string     `json:"full_name" db:"full_name"`
	HashedPassword string     `json:"-" db:"hashed_password"` // Never return password in JSON
	Role           UserRole   `json:"role" db:"role"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	LastLogin      *time.Time `json:"last_login,omitempty" db:"last_login"`
}

type UserResponse struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Email    *string  `json:"email,omitempty"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	IsActive bool     `json:"is_active"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// LoginResponse is the body returned by POST /api/v1/auth/login
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// CreateDriverRequest is the request body for POST /api/v1/resources/drivers
type CreateDriverRequest struct {
	FullName string  `json:"full_name"`
	Email    *string `json:"email,omitempty"`
}
