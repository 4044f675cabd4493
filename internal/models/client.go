package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a sales counterparty / delivery point.
// A NULL special_price means the global bottle price applies.
type Client struct {
	ID           int                 `db:"id"`
	Name         string              `db:"name"`
	Address      *string             `db:"address"`
	SpecialPrice decimal.NullDecimal `db:"special_price"`
	IsActive     bool                `db:"is_active"`
	CreatedAt    time.Time           `db:"created_at"`
}

type ClientResponse struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Address      *string  `json:"address"`
	SpecialPrice *float64 `json:"special_price"`
	IsActive     bool     `json:"is_active"`
}

func (c *Client) ToClientResponse() ClientResponse {
	resp := ClientResponse{
		ID:       c.ID,
		Name:     c.Name,
		Address:  c.Address,
		IsActive: c.IsActive,
	}
	if c.SpecialPrice.Valid {
		price := c.SpecialPrice.Decimal.InexactFloat64()
		resp.SpecialPrice = &price
	}
	return resp
}

// UnitPrice returns the price charged to this client
func (c *Client) UnitPrice(globalPrice decimal.Decimal) decimal.Decimal {
	if c.SpecialPrice.Valid && c.SpecialPrice.Decimal.IsPositive() {
		return c.SpecialPrice.Decimal
	}
	return globalPrice
}

// ClientRequest is the body for POST /clients and PUT /clients/{id}
type ClientRequest struct {
	Name         string   `json:"name"`
	Address      *string  `json:"address"`
	SpecialPrice *float64 `json:"special_price"` // null or 0 to use the global price
}
