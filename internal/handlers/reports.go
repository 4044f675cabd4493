package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/database"
	"waterlog/internal/models"
	"waterlog/internal/services"
	"waterlog/pkg/utils"
)

const defaultReportDays = 30

// reportWindow reads ?start_date and ?end_date, defaulting to the last 30 days
func reportWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	end, ok := queryDate(w, r, "end_date", today())
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, ok := queryDate(w, r, "start_date", end.AddDate(0, 0, -defaultReportDays))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func GetKPIs(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := reportWindow(w, r)
		if !ok {
			return
		}

		kpis, err := database.GetKPIs(db, start, end, today())
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al calcular KPIs")
			return
		}
		utils.Success(w, kpis)
	}
}

func GetDailyTrends(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, ok := queryInt(w, r, "days", defaultReportDays, 7, 365)
		if !ok {
			return
		}

		trends, err := database.GetDailyTrends(db, today().AddDate(0, 0, -days))
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener tendencias")
			return
		}
		utils.Success(w, models.DailyTrendsResponse{Trends: trends})
	}
}

func GetTruckPerformance(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := reportWindow(w, r)
		if !ok {
			return
		}

		trucks, err := database.GetTruckPerformance(db, start, end)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener rendimiento de camionetas")
			return
		}
		utils.Success(w, models.TruckPerformanceResponse{Trucks: trucks})
	}
}

func GetDriverPerformance(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := reportWindow(w, r)
		if !ok {
			return
		}
		limit, ok := queryInt(w, r, "limit", 10, 1, 100)
		if !ok {
			return
		}

		drivers, err := database.GetDriverPerformance(db, start, end, limit)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener rendimiento de choferes")
			return
		}
		utils.Success(w, models.DriverPerformanceResponse{Drivers: drivers})
	}
}

func GetStatusDistribution(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := reportWindow(w, r)
		if !ok {
			return
		}

		counts, err := database.GetStatusDistribution(db, start, end)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener distribución")
			return
		}
		utils.Success(w, models.StatusDistributionResponse{Distribution: counts})
	}
}

func GetMonthlySummary(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months, ok := queryInt(w, r, "months", 12, 1, 24)
		if !ok {
			return
		}

		summary, err := database.GetMonthlySummary(db, today().AddDate(0, 0, -months*30))
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener resumen mensual")
			return
		}
		utils.Success(w, models.MonthlySummaryResponse{Monthly: summary})
	}
}

// GetManifestPDF renders ?date_filter's routes as a printable manifest
func GetManifestPDF(db *sqlx.DB, plantName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := queryDate(w, r, "date_filter", today())
		if !ok {
			return
		}

		rows, err := database.ListRoutesByDate(db, day)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al generar el manifiesto")
			return
		}
		routes := make([]models.RouteResponse, 0, len(rows))
		for i := range rows {
			routes = append(routes, rows[i].ToRouteResponse())
		}

		doc, filename, err := services.BuildDailyManifestPDF(services.ManifestHeader{
			PlantName: plantName,
			Date:      day,
			Generated: now(),
		}, routes)
		if err != nil {
			log.Printf("❌ Manifest PDF failed: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al generar el manifiesto")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		w.WriteHeader(http.StatusOK)
		w.Write(doc)
	}
}
