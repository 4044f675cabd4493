package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/database"
	"waterlog/internal/models"
	"waterlog/pkg/utils"
)

// GetDrivers lists active drivers for the checkout selector
func GetDrivers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drivers, err := database.ListActiveDrivers(db)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener choferes")
			return
		}

		resp := make([]models.UserResponse, 0, len(drivers))
		for i := range drivers {
			resp = append(resp, drivers[i].ToUserResponse())
		}
		utils.Success(w, resp)
	}
}

// CreateDriver registers a driver with a generated username and the default password
func CreateDriver(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("📥 REQUEST: POST /api/v1/resources/drivers")

		var req models.CreateDriverRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.FullName = strings.TrimSpace(req.FullName)
		if req.FullName == "" {
			utils.ValidationError(w, utils.BodyIssue(msgFieldRequired, "full_name"))
			return
		}

		driver, err := database.CreateDriver(db, req)
		if err != nil {
			log.Printf("❌ ERROR EN BASE DE DATOS: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al crear el chofer")
			return
		}

		log.Printf("✅ Driver created: %s (%s)", driver.FullName, driver.Username)
		utils.JSON(w, http.StatusCreated, driver.ToUserResponse())
	}
}

// GetTrucks lists active trucks for the checkout selector
func GetTrucks(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trucks, err := database.ListActiveTrucks(db)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener camionetas")
			return
		}
		utils.Success(w, trucks)
	}
}

// CreateTruck registers a truck; plates are unique
func CreateTruck(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("📥 REQUEST: POST /api/v1/resources/trucks")

		var req models.CreateTruckRequest
		if !decodeBody(w, r, &req) {
			return
		}

		req.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
		req.Nickname = strings.TrimSpace(req.Nickname)
		var issues []utils.Issue
		if req.Plate == "" {
			issues = append(issues, utils.BodyIssue(msgFieldRequired, "plate"))
		}
		if req.Nickname == "" {
			issues = append(issues, utils.BodyIssue(msgFieldRequired, "nickname"))
		}
		if len(issues) > 0 {
			utils.ValidationError(w, issues...)
			return
		}

		truck, err := database.CreateTruck(db, req)
		if errors.Is(err, database.ErrDuplicatePlate) {
			utils.Error(w, http.StatusBadRequest, "Esa placa ya está registrada")
			return
		}
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al crear la camioneta")
			return
		}

		log.Printf("✅ Truck created: %s (%s)", truck.Nickname, truck.Plate)
		utils.JSON(w, http.StatusCreated, truck)
	}
}
