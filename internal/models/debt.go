package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus tracks how a route shortfall was settled
type DebtStatus string

const (
	DebtPending  DebtStatus = "PENDING"  // Waiting for payment
	DebtDeducted DebtStatus = "DEDUCTED" // Deducted from payroll
	DebtForgiven DebtStatus = "FORGIVEN" // Forgiven by an admin
	DebtDisputed DebtStatus = "DISPUTED" // Under review
	DebtPaid     DebtStatus = "PAID"     // Paid in cash
)

// ValidResolution reports whether a pending debt can move to s
func (s DebtStatus) ValidResolution() bool {
	switch s {
	case DebtDeducted, DebtForgiven, DebtDisputed, DebtPaid:
		return true
	}
	return false
}

type DebtRecord struct {
	ID               int             `db:"id"`
	RouteManifestID  int             `db:"route_manifest_id"`
	Amount           decimal.Decimal `db:"amount"`
	Status           DebtStatus      `db:"status"`
	CreatedAt        time.Time       `db:"created_at"`
	ResolvedAt       *time.Time      `db:"resolved_at"`
	ResolvedByUserID *int            `db:"resolved_by_user_id"`
	Notes            *string         `db:"notes"`
	ResolutionNotes  *string         `db:"resolution_notes"`
	DriverName       *string         `db:"driver_name"`
}

type DebtResponse struct {
	ID              int        `json:"id"`
	RouteID         int        `json:"route_id"`
	DriverName      string     `json:"driver_name"`
	Amount          float64    `json:"amount"`
	Status          DebtStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`
}

func (d *DebtRecord) ToDebtResponse() DebtResponse {
	driver := "N/A"
	if d.DriverName != nil {
		driver = *d.DriverName
	}
	return DebtResponse{
		ID:              d.ID,
		RouteID:         d.RouteManifestID,
		DriverName:      driver,
		Amount:          d.Amount.InexactFloat64(),
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
		ResolvedAt:      d.ResolvedAt,
		Notes:           d.Notes,
		ResolutionNotes: d.ResolutionNotes,
	}
}

// ResolveDebtRequest is the body for POST /api/v1/debts/{id}/resolve
type ResolveDebtRequest struct {
	Status          DebtStatus `json:"status"`
	ResolutionNotes string     `json:"resolution_notes"`
}
