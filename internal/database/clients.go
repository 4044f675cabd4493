package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"waterlog/internal/models"
)

var ErrClientNotFound = errors.New("client not found")

// ListActiveClients returns clients shown in the sales picker
func ListActiveClients(db *sqlx.DB) ([]models.Client, error) {
	clients := []models.Client{}
	if err := db.Select(&clients, `SELECT * FROM clients WHERE is_active = TRUE ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// GetClientsByIDs returns the active clients among ids, keyed by id
func GetClientsByIDs(db *sqlx.DB, ids []int) (map[int]models.Client, error) {
	found := make(map[int]models.Client, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	clients := []models.Client{}
	query := `SELECT * FROM clients WHERE id = ANY($1) AND is_active = TRUE`
	if err := db.Select(&clients, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	for _, c := range clients {
		found[c.ID] = c
	}
	return found, nil
}

func specialPrice(price *float64) decimal.NullDecimal {
	if price == nil || *price == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*price).Round(2))
}

func CreateClient(db *sqlx.DB, req models.ClientRequest) (*models.Client, error) {
	var client models.Client
	query := `
		INSERT INTO clients (name, address, special_price, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING *
	`
	if err := db.Get(&client, query, req.Name, req.Address, specialPrice(req.SpecialPrice)); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &client, nil
}

func UpdateClient(db *sqlx.DB, id int, req models.ClientRequest) (*models.Client, error) {
	var client models.Client
	query := `
		UPDATE clients SET name = $1, address = $2, special_price = $3
		WHERE id = $4
		RETURNING *
	`
	err := db.Get(&client, query, req.Name, req.Address, specialPrice(req.SpecialPrice), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return &client, nil
}
