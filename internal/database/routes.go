package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"waterlog/internal/models"
)

var (
	// ErrRouteNotFound is returned when no manifest has the requested id
	ErrRouteNotFound = errors.New("route not found")
	// ErrRouteClosed is returned when checkin targets a route that is no longer IN_PROGRESS
	ErrRouteClosed = errors.New("route already closed")
	// ErrTruckOnRoute is returned when a checkout targets a truck that has not come back yet
	ErrTruckOnRoute = errors.New("truck already has a route in progress")
)

const routeListQuery = `
	SELECT rm.id, rm.driver_id, u.full_name AS driver_name, rm.truck_id, t.nickname AS truck_name,
		rm.date, rm.checkout_timestamp, rm.checkin_timestamp, rm.audit_status,
		rm.initial_full_bottles, rm.returned_full_bottles, rm.returned_empty_bottles,
		rm.reported_damaged, rm.evidence_verified, rm.notes, rm.debt_amount
	FROM route_manifests rm
	LEFT JOIN users u ON u.id = rm.driver_id
	LEFT JOIN trucks t ON t.id = rm.truck_id`

// ListRoutesByDate returns every manifest of a given day, oldest checkout first
func ListRoutesByDate(db *sqlx.DB, day time.Time) ([]models.RouteListRow, error) {
	routes := []models.RouteListRow{}
	query := routeListQuery + ` WHERE rm.date = $1 ORDER BY rm.checkout_timestamp ASC, rm.id ASC`
	if err := db.Select(&routes, query, day.Format(models.DateFormat)); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

// GetRouteRow returns one manifest joined with driver and truck names
func GetRouteRow(db *sqlx.DB, id int) (*models.RouteListRow, error) {
	var route models.RouteListRow
	err := db.Get(&route, routeListQuery+` WHERE rm.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

// GetRoute returns the raw manifest row
func GetRoute(db *sqlx.DB, id int) (*models.RouteManifest, error) {
	var route models.RouteManifest
	err := db.Get(&route, `SELECT * FROM route_manifests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

// CreateRoute opens a manifest for today. Initial empty bottles are always 0 at checkout.
func CreateRoute(db *sqlx.DB, driverID, truckID, initialFull, byUserID int, now time.Time) (*models.RouteManifest, error) {
	var busy int
	if err := db.Get(&busy, `SELECT COUNT(*) FROM route_manifests WHERE truck_id = $1 AND audit_status = $2`,
		truckID, models.StatusInProgress); err != nil {
		return nil, fmt.Errorf("failed to check truck availability: %w", err)
	}
	if busy > 0 {
		return nil, ErrTruckOnRoute
	}

	var route models.RouteManifest
	query := `
		INSERT INTO route_manifests (
			driver_id, truck_id, date, initial_full_bottles, initial_empty_bottles,
			checkout_timestamp, checkout_by_user_id, audit_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $5, $5)
		RETURNING *
	`
	err := db.Get(&route, query,
		driverID, truckID, now.Format(models.DateFormat), initialFull,
		now, byUserID, models.StatusInProgress,
	)
	if err != nil {
		// a concurrent checkout of the same truck lost the race on uniq_route_manifests_truck_in_progress
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrTruckOnRoute
		}
		return nil, fmt.Errorf("failed to create route: %w", err)
	}
	return &route, nil
}

// CloseRouteParams carries everything written by a checkin
type CloseRouteParams struct {
	RouteID          int
	ReturnedFull     int
	ReturnedEmpty    int
	ReportedDamaged  int
	EvidenceVerified bool
	Notes            *string
	ByUserID         int
	Status           models.AuditStatus
	DebtAmount       decimal.Decimal
	Sales            []models.SalesDetail
	CheckinAt        time.Time
}

// CloseRoute writes the checkin, its sales lines and, on shortfall, a pending debt record
// in one transaction. The row is locked so two concurrent checkins cannot both close it.
func CloseRoute(db *sqlx.DB, p CloseRouteParams) (*models.RouteManifest, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.AuditStatus
	err = tx.Get(&status, `SELECT audit_status FROM route_manifests WHERE id = $1 FOR UPDATE`, p.RouteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock route: %w", err)
	}
	if status != models.StatusInProgress {
		return nil, ErrRouteClosed
	}

	var route models.RouteManifest
	updateQuery := `
		UPDATE route_manifests SET
			returned_full_bottles = $1,
			returned_empty_bottles = $2,
			reported_damaged = $3,
			evidence_verified = $4,
			notes = $5,
			checkin_by_user_id = $6,
			checkin_timestamp = $7,
			audit_status = $8,
			debt_amount = $9,
			updated_at = $7
		WHERE id = $10
		RETURNING *
	`
	err = tx.Get(&route, updateQuery,
		p.ReturnedFull, p.ReturnedEmpty, p.ReportedDamaged, p.EvidenceVerified, p.Notes,
		p.ByUserID, p.CheckinAt, p.Status, p.DebtAmount, p.RouteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to close route: %w", err)
	}

	for _, sale := range p.Sales {
		_, err := tx.Exec(`
			INSERT INTO sales_details (route_id, client_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
		`, p.RouteID, sale.ClientID, sale.Quantity, sale.UnitPrice, sale.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to insert sale for client %d: %w", sale.ClientID, err)
		}
	}

	if p.Status == models.StatusLockedDebt && p.DebtAmount.IsPositive() {
		_, err := tx.Exec(`
			INSERT INTO debt_records (route_manifest_id, amount, status, notes, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, p.RouteID, p.DebtAmount, models.DebtPending, p.Notes, p.CheckinAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create debt record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkin: %w", err)
	}
	return &route, nil
}

// GetRouteSales returns the sale lines of a route with client names
func GetRouteSales(db *sqlx.DB, routeID int) ([]models.SalesDetail, error) {
	sales := []models.SalesDetail{}
	query := `
		SELECT sd.id, sd.route_id, sd.client_id, c.name AS client_name, sd.quantity, sd.unit_price, sd.subtotal
		FROM sales_details sd
		LEFT JOIN clients c ON c.id = sd.client_id
		WHERE sd.route_id = $1
		ORDER BY sd.id ASC
	`
	if err := db.Select(&sales, query, routeID); err != nil {
		return nil, fmt.Errorf("failed to get route sales: %w", err)
	}
	return sales, nil
}
