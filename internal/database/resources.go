package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"waterlog/internal/models"
)

// DefaultDriverPassword is assigned to drivers created from the resources screen
const DefaultDriverPassword = "driver123"

// ErrDuplicatePlate is returned when a truck plate is already registered
var ErrDuplicatePlate = errors.New("plate already registered")

// ListActiveDrivers returns active users with the CHOFER role
func ListActiveDrivers(db *sqlx.DB) ([]models.User, error) {
	drivers := []models.User{}
	query := `SELECT * FROM users WHERE role = $1 AND is_active = TRUE ORDER BY full_name ASC`
	if err := db.Select(&drivers, query, models.RoleDriver); err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

// DriverUsername builds a login name from the full name plus a short random suffix
func DriverUsername(fullName string) string {
	clean := strings.ToLower(strings.ReplaceAll(fullName, " ", ""))
	if len(clean) > 10 {
		clean = clean[:10]
	}
	return fmt.Sprintf("%s_%s", clean, uuid.New().String()[:8])
}

// CreateDriver registers a driver account with a generated username
func CreateDriver(db *sqlx.DB, req models.CreateDriverRequest) (*models.User, error) {
	username := DriverUsername(req.FullName)
	email := req.Email
	if email == nil || *email == "" {
		generated := username + "@waterlog.local"
		email = &generated
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultDriverPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	query := `
		INSERT INTO users (username, email, full_name, hashed_password, role, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING *
	`
	if err := db.Get(&user, query, username, email, req.FullName, string(hashed), models.RoleDriver); err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return &user, nil
}

// ListActiveTrucks returns the trucks available for checkout
func ListActiveTrucks(db *sqlx.DB) ([]models.Truck, error) {
	trucks := []models.Truck{}
	if err := db.Select(&trucks, `SELECT * FROM trucks WHERE is_active = TRUE ORDER BY nickname ASC`); err != nil {
		return nil, fmt.Errorf("failed to list trucks: %w", err)
	}
	return trucks, nil
}

// CreateTruck inserts a truck; a duplicate plate yields ErrDuplicatePlate
func CreateTruck(db *sqlx.DB, req models.CreateTruckRequest) (*models.Truck, error) {
	var exists int
	if err := db.Get(&exists, `SELECT COUNT(*) FROM trucks WHERE plate = $1`, req.Plate); err != nil {
		return nil, fmt.Errorf("failed to check plate: %w", err)
	}
	if exists > 0 {
		return nil, ErrDuplicatePlate
	}

	var truck models.Truck
	query := `
		INSERT INTO trucks (plate, nickname, brand, model, year, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING *
	`
	err := db.Get(&truck, query, req.Plate, req.Nickname, req.Brand, req.Model, req.Year)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicatePlate
		}
		return nil, fmt.Errorf("failed to create truck: %w", err)
	}
	return &truck, nil
}

// DriverExists reports whether id is an active driver
func DriverExists(db *sqlx.DB, id int) (bool, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM users WHERE id = $1 AND role = $2 AND is_active = TRUE`, id, models.RoleDriver)
	if err != nil {
		return false, fmt.Errorf("failed to check driver: %w", err)
	}
	return count > 0, nil
}

// TruckExists reports whether id is an active truck
func TruckExists(db *sqlx.DB, id int) (bool, error) {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM trucks WHERE id = $1 AND is_active = TRUE`, id); err != nil {
		return false, fmt.Errorf("failed to check truck: %w", err)
	}
	return count > 0, nil
}
