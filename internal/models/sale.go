package models

import "github.com/shopspring/decimal"

// SaleInput is one client sale line of a checkin request
type SaleInput struct {
	ClientID int `json:"client_id"`
	Quantity int `json:"quantity"`
}

// SalesDetail is a persisted sale line (sales_details table).
// UnitPrice is a snapshot of the price at checkin time.
type SalesDetail struct {
	ID         int             `db:"id"`
	RouteID    int             `db:"route_id"`
	ClientID   int             `db:"client_id"`
	ClientName *string         `db:"client_name"`
	Quantity   int             `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	Subtotal   decimal.Decimal `db:"subtotal"`
}

type SaleResponse struct {
	ClientID   int     `json:"client_id"`
	ClientName string  `json:"client_name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Subtotal   float64 `json:"subtotal"`
}

func (s *SalesDetail) ToSaleResponse() SaleResponse {
	name := ""
	if s.ClientName != nil {
		name = *s.ClientName
	}
	return SaleResponse{
		ClientID:   s.ClientID,
		ClientName: name,
		Quantity:   s.Quantity,
		UnitPrice:  s.UnitPrice.InexactFloat64(),
		Subtotal:   s.Subtotal.InexactFloat64(),
	}
}
