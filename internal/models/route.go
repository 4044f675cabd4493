package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditStatus represents the lifecycle state of a route manifest
type AuditStatus string

const (
	StatusInProgress AuditStatus = "IN_PROGRESS" // Truck is out on the route
	StatusCleared    AuditStatus = "CLEARED"     // Closed, inventory accounted for
	StatusDebt       AuditStatus = "DEBT"        // Closed with an open shortfall
	StatusLockedDebt AuditStatus = "LOCKED_DEBT" // Shortfall detected at checkin, debt pending
	StatusPending    AuditStatus = "PENDING"     // Returned, waiting for validation
)

// IsClosed reports whether a route already went through checkin
func (s AuditStatus) IsClosed() bool {
	return s != StatusInProgress && s != StatusPending
}

// RouteManifest is one truck's single-day delivery assignment (route_manifests table)
type RouteManifest struct {
	ID                  int             `db:"id"`
	DriverID            int             `db:"driver_id"`
	TruckID             int             `db:"truck_id"`
	Date                time.Time       `db:"date"`
	InitialFullBottles  int             `db:"initial_full_bottles"`
	InitialEmptyBottles int             `db:"initial_empty_bottles"`
	CheckoutTimestamp   time.Time       `db:"checkout_timestamp"`
	CheckoutByUserID    *int            `db:"checkout_by_user_id"`
	ReturnedFull        *int            `db:"returned_full_bottles"`
	ReturnedEmpty       *int            `db:"returned_empty_bottles"`
	ReportedDamaged     int             `db:"reported_damaged"`
	CheckinTimestamp    *time.Time      `db:"checkin_timestamp"`
	CheckinByUserID     *int            `db:"checkin_by_user_id"`
	EvidenceVerified    bool            `db:"evidence_verified"`
	AuditStatus         AuditStatus     `db:"audit_status"`
	DebtAmount          decimal.Decimal `db:"debt_amount"`
	Notes               *string         `db:"notes"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// TotalInitial is every bottle that left the plant
func (r *RouteManifest) TotalInitial() int {
	return r.InitialFullBottles + r.InitialEmptyBottles
}

// RouteListRow is a route joined with driver and truck names
type RouteListRow struct {
	ID                 int             `db:"id"`
	DriverID           int             `db:"driver_id"`
	DriverName         *string         `db:"driver_name"`
	TruckID            int             `db:"truck_id"`
	TruckName          *string         `db:"truck_name"`
	Date               time.Time       `db:"date"`
	CheckoutTimestamp  time.Time       `db:"checkout_timestamp"`
	CheckinTimestamp   *time.Time      `db:"checkin_timestamp"`
	AuditStatus        AuditStatus     `db:"audit_status"`
	InitialFullBottles int             `db:"initial_full_bottles"`
	ReturnedFull       *int            `db:"returned_full_bottles"`
	ReturnedEmpty      *int            `db:"returned_empty_bottles"`
	ReportedDamaged    int             `db:"reported_damaged"`
	EvidenceVerified   bool            `db:"evidence_verified"`
	Notes              *string         `db:"notes"`
	DebtAmount         decimal.Decimal `db:"debt_amount"`
}

// RouteResponse is the JSON shape of a route in listings
type RouteResponse struct {
	ID                 int         `json:"id"`
	DriverID           int         `json:"driver_id"`
	DriverName         string      `json:"driver_name"`
	TruckID            int         `json:"truck_id"`
	TruckName          string      `json:"truck_name"`
	Date               string      `json:"date"`
	CheckoutTime       string      `json:"checkout_time"`
	CheckinTime        string      `json:"checkin_time"`
	Status             AuditStatus `json:"status"`
	InitialFullBottles int         `json:"initial_full_bottles"`
	ReturnedFull       *int        `json:"returned_full_bottles,omitempty"`
	ReturnedEmpty      *int        `json:"returned_empty_bottles,omitempty"`
	ReportedDamaged    int         `json:"reported_damaged"`
	EvidenceVerified   bool        `json:"evidence_verified"`
	Notes              *string     `json:"notes,omitempty"`
	DebtAmount         float64     `json:"debt_amount"`
}

// ClockFormat is how checkout/checkin times are rendered on the wire
const ClockFormat = "15:04"

// DateFormat is the wire format of route dates and report filters
const DateFormat = "2006-01-02"

// FormatClock renders a timestamp as HH:MM, or "--:--" when absent
func FormatClock(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "--:--"
	}
	return t.Local().Format(ClockFormat)
}

func (r *RouteListRow) ToRouteResponse() RouteResponse {
	driverName := "N/A"
	if r.DriverName != nil {
		driverName = *r.DriverName
	}
	truckName := "N/A"
	if r.TruckName != nil {
		truckName = *r.TruckName
	}
	checkout := r.CheckoutTimestamp
	return RouteResponse{
		ID:                 r.ID,
		DriverID:           r.DriverID,
		DriverName:         driverName,
		TruckID:            r.TruckID,
		TruckName:          truckName,
		Date:               r.Date.Format(DateFormat),
		CheckoutTime:       FormatClock(&checkout),
		CheckinTime:        FormatClock(r.CheckinTimestamp),
		Status:             r.AuditStatus,
		InitialFullBottles: r.InitialFullBottles,
		ReturnedFull:       r.ReturnedFull,
		ReturnedEmpty:      r.ReturnedEmpty,
		ReportedDamaged:    r.ReportedDamaged,
		EvidenceVerified:   r.EvidenceVerified,
		Notes:              r.Notes,
		DebtAmount:         r.DebtAmount.InexactFloat64(),
	}
}

// RouteListResponse is the body of GET /api/v1/routes
type RouteListResponse struct {
	Total  int             `json:"total"`
	Date   string          `json:"date"`
	Routes []RouteResponse `json:"routes"`
}

// RouteDetailResponse is the body of GET /api/v1/routes/{id}
type RouteDetailResponse struct {
	RouteResponse
	Sales      []SaleResponse `json:"sales"`
	SalesTotal float64        `json:"sales_total"`
}

// CheckoutRequest is the request body for POST /api/v1/routes/checkout
type CheckoutRequest struct {
	DriverID           *int `json:"driver_id"`
	TruckID            *int `json:"truck_id"`
	InitialFullBottles *int `json:"initial_full_bottles"`
}

type CheckoutResponse struct {
	Message            string      `json:"message"`
	ID                 int         `json:"id"`
	RouteID            int         `json:"route_id"`
	DriverID           int         `json:"driver_id"`
	TruckID            int         `json:"truck_id"`
	InitialFullBottles int         `json:"initial_full_bottles"`
	Status             AuditStatus `json:"status"`
	CheckoutTime       string      `json:"checkout_time"`
}

// CheckinRequest is the request body for POST /api/v1/routes/{id}/checkin
type CheckinRequest struct {
	ReturnedFullBottles  *int        `json:"returned_full_bottles"`
	ReturnedEmptyBottles *int        `json:"returned_empty_bottles"`
	ReportedDamaged      int         `json:"reported_damaged"`
	EvidenceVerified     bool        `json:"evidence_verified"`
	Notes                *string     `json:"notes"`
	Sales                []SaleInput `json:"sales"`
}

type CheckinResponse struct {
	Message     string      `json:"message"`
	ID          int         `json:"id"`
	RouteID     int         `json:"route_id"`
	CheckinTime string      `json:"checkin_time"`
	Status      AuditStatus `json:"status"`
	DebtAmount  float64     `json:"debt_amount"`
	Delta       int         `json:"delta"`
	SalesTotal  float64     `json:"sales_total"`
	SalesCount  int         `json:"sales_count"`
}

// RouteEvent is pushed to dashboard websocket clients when a route changes
type RouteEvent struct {
	Type       string      `json:"type"` // "route_checked_out" or "route_checked_in"
	RouteID    int         `json:"route_id"`
	DriverID   int         `json:"driver_id"`
	TruckID    int         `json:"truck_id"`
	Status     AuditStatus `json:"status"`
	DebtAmount float64     `json:"debt_amount"`
	Timestamp  string      `json:"timestamp"`
}
