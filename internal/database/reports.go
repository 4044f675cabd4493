package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/models"
)

// Routes counted as problematic in every report
const problematicStatuses = `('DEBT', 'LOCKED_DEBT')`

// GetKPIs computes the headline figures for [start, end] plus today's and active counts
func GetKPIs(db *sqlx.DB, start, end, today time.Time) (*models.KPIResponse, error) {
	var row struct {
		TotalRoutes       int     `db:"total_routes"`
		ProblematicRoutes int     `db:"problematic_routes"`
		TotalBottles      int     `db:"total_bottles"`
		TotalDebt         float64 `db:"total_debt"`
	}
	query := `
		SELECT
			COUNT(*) AS total_routes,
			COUNT(*) FILTER (WHERE audit_status IN ` + problematicStatuses + `) AS problematic_routes,
			COALESCE(SUM(initial_full_bottles + initial_empty_bottles), 0) AS total_bottles,
			COALESCE(SUM(debt_amount) FILTER (WHERE debt_amount > 0), 0)::FLOAT8 AS total_debt
		FROM route_manifests
		WHERE date >= $1 AND date <= $2
	`
	if err := db.Get(&row, query, start.Format(models.DateFormat), end.Format(models.DateFormat)); err != nil {
		return nil, fmt.Errorf("failed to compute kpis: %w", err)
	}

	var todayRoutes int
	if err := db.Get(&todayRoutes, `SELECT COUNT(*) FROM route_manifests WHERE date = $1`, today.Format(models.DateFormat)); err != nil {
		return nil, fmt.Errorf("failed to count today's routes: %w", err)
	}

	var activeRoutes int
	if err := db.Get(&activeRoutes, `SELECT COUNT(*) FROM route_manifests WHERE audit_status = $1`, models.StatusInProgress); err != nil {
		return nil, fmt.Errorf("failed to count active routes: %w", err)
	}

	return &models.KPIResponse{
		TotalRoutes:       row.TotalRoutes,
		ProblematicRoutes: row.ProblematicRoutes,
		TotalBottles:      row.TotalBottles,
		TotalDebt:         row.TotalDebt,
		SuccessRate:       models.SuccessRate(row.TotalRoutes, row.ProblematicRoutes),
		TodayRoutes:       todayRoutes,
		ActiveRoutes:      activeRoutes,
		Period: models.Period{
			Start: start.Format(models.DateFormat),
			End:   end.Format(models.DateFormat),
		},
	}, nil
}

// GetDailyTrends groups routes per day since start
func GetDailyTrends(db *sqlx.DB, start time.Time) ([]models.DailyTrend, error) {
	trends := []models.DailyTrend{}
	query := `
		SELECT
			TO_CHAR(date, 'YYYY-MM-DD') AS date,
			COUNT(*) AS total_routes,
			COUNT(*) FILTER (WHERE audit_status IN ` + problematicStatuses + `) AS routes_with_debt,
			COALESCE(SUM(debt_amount), 0)::FLOAT8 AS debt_amount
		FROM route_manifests
		WHERE date >= $1
		GROUP BY date
		ORDER BY date
	`
	if err := db.Select(&trends, query, start.Format(models.DateFormat)); err != nil {
		return nil, fmt.Errorf("failed to get daily trends: %w", err)
	}
	return trends, nil
}

func GetTruckPerformance(db *sqlx.DB, start, end time.Time) ([]models.TruckPerformance, error) {
	trucks := []models.TruckPerformance{}
	query := `
		SELECT
			t.id AS truck_id, t.nickname, t.plate,
			COUNT(rm.id) AS total_routes,
			COUNT(rm.id) FILTER (WHERE rm.audit_status IN ` + problematicStatuses + `) AS problematic_routes,
			COALESCE(SUM(rm.debt_amount), 0)::FLOAT8 AS total_debt,
			COALESCE(SUM(rm.initial_full_bottles), 0) AS total_bottles_delivered
		FROM trucks t
		JOIN route_manifests rm ON rm.truck_id = t.id
		WHERE rm.date >= $1 AND rm.date <= $2
		GROUP BY t.id, t.nickname, t.plate
		ORDER BY total_routes DESC
	`
	if err := db.Select(&trucks, query, start.Format(models.DateFormat), end.Format(models.DateFormat)); err != nil {
		return nil, fmt.Errorf("failed to get truck performance: %w", err)
	}
	for i := range trucks {
		trucks[i].SuccessRate = models.SuccessRate(trucks[i].TotalRoutes, trucks[i].ProblematicRoutes)
	}
	return trucks, nil
}

func GetDriverPerformance(db *sqlx.DB, start, end time.Time, limit int) ([]models.DriverPerformance, error) {
	drivers := []models.DriverPerformance{}
	query := `
		SELECT
			u.id AS driver_id, u.full_name,
			COUNT(rm.id) AS total_routes,
			COUNT(rm.id) FILTER (WHERE rm.audit_status IN ` + problematicStatuses + `) AS problematic_routes,
			COALESCE(SUM(rm.debt_amount), 0)::FLOAT8 AS total_debt,
			COALESCE(SUM(rm.initial_full_bottles), 0) AS total_bottles_delivered
		FROM users u
		JOIN route_manifests rm ON rm.driver_id = u.id
		WHERE rm.date >= $1 AND rm.date <= $2 AND u.role = $3
		GROUP BY u.id, u.full_name
		ORDER BY total_routes DESC
		LIMIT $4
	`
	err := db.Select(&drivers, query, start.Format(models.DateFormat), end.Format(models.DateFormat), models.RoleDriver, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get driver performance: %w", err)
	}
	for i := range drivers {
		drivers[i].SuccessRate = models.SuccessRate(drivers[i].TotalRoutes, drivers[i].ProblematicRoutes)
	}
	return drivers, nil
}

func GetStatusDistribution(db *sqlx.DB, start, end time.Time) ([]models.StatusCount, error) {
	counts := []models.StatusCount{}
	query := `
		SELECT audit_status AS status, COUNT(*) AS count
		FROM route_manifests
		WHERE date >= $1 AND date <= $2
		GROUP BY audit_status
		ORDER BY count DESC
	`
	if err := db.Select(&counts, query, start.Format(models.DateFormat), end.Format(models.DateFormat)); err != nil {
		return nil, fmt.Errorf("failed to get status distribution: %w", err)
	}
	return counts, nil
}

func GetMonthlySummary(db *sqlx.DB, start time.Time) ([]models.MonthlySummary, error) {
	months := []models.MonthlySummary{}
	query := `
		SELECT
			EXTRACT(YEAR FROM date)::INT AS year,
			EXTRACT(MONTH FROM date)::INT AS month,
			COUNT(*) AS total_routes,
			COALESCE(SUM(initial_full_bottles), 0) AS total_bottles,
			COALESCE(SUM(debt_amount), 0)::FLOAT8 AS total_debt
		FROM route_manifests
		WHERE date >= $1
		GROUP BY 1, 2
		ORDER BY 1, 2
	`
	if err := db.Select(&months, query, start.Format(models.DateFormat)); err != nil {
		return nil, fmt.Errorf("failed to get monthly summary: %w", err)
	}
	return months, nil
}
