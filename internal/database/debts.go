package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/models"
)

var (
	ErrDebtNotFound = errors.New("debt record not found")
	// ErrDebtResolved is returned when a debt already left PENDING
	ErrDebtResolved = errors.New("debt record already resolved")
)

const debtSelect = `
	SELECT dr.*, u.full_name AS driver_name
	FROM debt_records dr
	JOIN route_manifests rm ON rm.id = dr.route_manifest_id
	LEFT JOIN users u ON u.id = rm.driver_id`

// ListDebts returns debt records, optionally filtered by status, newest first
func ListDebts(db *sqlx.DB, status models.DebtStatus) ([]models.DebtRecord, error) {
	debts := []models.DebtRecord{}
	var err error
	if status == "" {
		err = db.Select(&debts, debtSelect+` ORDER BY dr.created_at DESC`)
	} else {
		err = db.Select(&debts, debtSelect+` WHERE dr.status = $1 ORDER BY dr.created_at DESC`, status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	return debts, nil
}

func GetDebt(db *sqlx.DB, id int) (*models.DebtRecord, error) {
	var debt models.DebtRecord
	err := db.Get(&debt, debtSelect+` WHERE dr.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDebtNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return &debt, nil
}

// ResolveDebt moves a PENDING debt to its final status. A forgiven debt also
// clears the route's LOCKED_DEBT; any other resolution leaves it as DEBT.
func ResolveDebt(db *sqlx.DB, id int, status models.DebtStatus, notes string, byUserID int, at time.Time) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current struct {
		Status  models.DebtStatus `db:"status"`
		RouteID int               `db:"route_manifest_id"`
	}
	err = tx.Get(&current, `SELECT status, route_manifest_id FROM debt_records WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDebtNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock debt: %w", err)
	}
	if current.Status != models.DebtPending {
		return ErrDebtResolved
	}

	_, err = tx.Exec(`
		UPDATE debt_records
		SET status = $1, resolution_notes = $2, resolved_by_user_id = $3, resolved_at = $4
		WHERE id = $5
	`, status, notes, byUserID, at, id)
	if err != nil {
		return fmt.Errorf("failed to resolve debt: %w", err)
	}

	routeStatus := models.StatusDebt
	if status == models.DebtForgiven {
		routeStatus = models.StatusCleared
	}
	_, err = tx.Exec(`UPDATE route_manifests SET audit_status = $1, updated_at = $2 WHERE id = $3`,
		routeStatus, at, current.RouteID)
	if err != nil {
		return fmt.Errorf("failed to update route status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit debt resolution: %w", err)
	}
	return nil
}
