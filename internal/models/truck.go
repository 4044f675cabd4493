package models

import "time"

// Truck represents a delivery unit
type Truck struct {
	ID        int       `json:"id" db:"id"`
	Plate     string    `json:"plate" db:"plate"`
	Nickname  string    `json:"nickname" db:"nickname"` // "La Blanca", "La Roja"
	Brand     *string   `json:"brand" db:"brand"`
	Model     *string   `json:"model" db:"model"`
	Year      *int      `json:"year" db:"year"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateTruckRequest is the request body for POST /api/v1/resources/trucks
type CreateTruckRequest struct {
	Plate    string `json:"plate"`
	Nickname string `json:"nickname"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
}
