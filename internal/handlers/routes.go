package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"waterlog/internal/database"
	"waterlog/internal/middleware"
	"waterlog/internal/models"
	"waterlog/internal/services"
	"waterlog/internal/websocket"
	"waterlog/pkg/utils"
)

const (
	msgRouteNotFound = "Ruta no encontrada"
	msgRouteClosed   = "La ruta ya fue cerrada"
	msgTruckOnRoute  = "La camioneta ya tiene una ruta en curso"
)

// ListRoutes returns the routes of ?date_filter=YYYY-MM-DD (today when absent)
func ListRoutes(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := queryDate(w, r, "date_filter", today())
		if !ok {
			return
		}

		rows, err := database.ListRoutesByDate(db, day)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener las rutas")
			return
		}

		routes := make([]models.RouteResponse, 0, len(rows))
		for i := range rows {
			routes = append(routes, rows[i].ToRouteResponse())
		}

		utils.Success(w, models.RouteListResponse{
			Total:  len(routes),
			Date:   day.Format(models.DateFormat),
			Routes: routes,
		})
	}
}

// GetRoute returns one route with its sale lines
func GetRoute(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathInt(w, r, "route_id")
		if !ok {
			return
		}

		row, err := database.GetRouteRow(db, id)
		if errors.Is(err, database.ErrRouteNotFound) {
			utils.Error(w, http.StatusNotFound, msgRouteNotFound)
			return
		}
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener la ruta")
			return
		}

		sales, err := database.GetRouteSales(db, id)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener la ruta")
			return
		}

		detail := models.RouteDetailResponse{RouteResponse: row.ToRouteResponse(), Sales: make([]models.SaleResponse, 0, len(sales))}
		total := decimal.Zero
		for i := range sales {
			detail.Sales = append(detail.Sales, sales[i].ToSaleResponse())
			total = total.Add(sales[i].Subtotal)
		}
		detail.SalesTotal = total.InexactFloat64()

		utils.Success(w, detail)
	}
}

// GetRouteAudit returns the audit trail of a route, newest first
func GetRouteAudit(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathInt(w, r, "route_id")
		if !ok {
			return
		}

		logs, err := database.ListAuditLogs(db, "route_manifest", id)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener la bitácora")
			return
		}
		utils.Success(w, logs)
	}
}

func validateCheckout(req models.CheckoutRequest) []utils.Issue {
	var issues []utils.Issue
	if req.DriverID == nil {
		issues = append(issues, utils.BodyIssue(msgFieldRequired, "driver_id"))
	}
	if req.TruckID == nil {
		issues = append(issues, utils.BodyIssue(msgFieldRequired, "truck_id"))
	}
	switch {
	case req.InitialFullBottles == nil:
		issues = append(issues, utils.BodyIssue(msgFieldRequired, "initial_full_bottles"))
	case *req.InitialFullBottles < 1:
		issues = append(issues, utils.BodyIssue("Input should be greater than or equal to 1", "initial_full_bottles"))
	}
	return issues
}

// CheckoutRoute opens a route for a driver and truck leaving the plant
func CheckoutRoute(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("📥 REQUEST: POST /api/v1/routes/checkout")

		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, middleware.CredentialsError)
			return
		}

		var req models.CheckoutRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if issues := validateCheckout(req); len(issues) > 0 {
			utils.ValidationError(w, issues...)
			return
		}

		if exists, err := database.DriverExists(db, *req.DriverID); err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al crear la ruta")
			return
		} else if !exists {
			utils.ValidationError(w, utils.BodyIssue("Chofer no encontrado", "driver_id"))
			return
		}
		if exists, err := database.TruckExists(db, *req.TruckID); err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al crear la ruta")
			return
		} else if !exists {
			utils.ValidationError(w, utils.BodyIssue("Camioneta no encontrada", "truck_id"))
			return
		}

		route, err := database.CreateRoute(db, *req.DriverID, *req.TruckID, *req.InitialFullBottles, user.UserID, now())
		if errors.Is(err, database.ErrTruckOnRoute) {
			utils.Error(w, http.StatusConflict, msgTruckOnRoute)
			return
		}
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al crear la ruta")
			return
		}

		services.LogActivity(db, services.AuditEntry{
			UserID:     user.UserID,
			Action:     models.ActionRouteCheckout,
			EntityType: "route_manifest",
			EntityID:   route.ID,
			NewValue: map[string]interface{}{
				"driver_id":            route.DriverID,
				"truck_id":             route.TruckID,
				"initial_full_bottles": route.InitialFullBottles,
			},
		}, services.ClientMetaFromRequest(r))

		checkoutTime := models.FormatClock(&route.CheckoutTimestamp)
		hub.PublishRouteEvent(models.RouteEvent{
			Type:      "route_checked_out",
			RouteID:   route.ID,
			DriverID:  route.DriverID,
			TruckID:   route.TruckID,
			Status:    route.AuditStatus,
			Timestamp: route.CheckoutTimestamp.Format(time.RFC3339),
		})

		log.Printf("✅ Route #%d checked out (driver %d, truck %d, %d bottles)", route.ID, route.DriverID, route.TruckID, route.InitialFullBottles)
		utils.JSON(w, http.StatusOK, models.CheckoutResponse{
			Message:            "Ruta iniciada correctamente",
			ID:                 route.ID,
			RouteID:            route.ID,
			DriverID:           route.DriverID,
			TruckID:            route.TruckID,
			InitialFullBottles: route.InitialFullBottles,
			Status:             route.AuditStatus,
			CheckoutTime:       checkoutTime,
		})
	}
}

func validateCheckin(req models.CheckinRequest) []utils.Issue {
	var issues []utils.Issue
	switch {
	case req.ReturnedFullBottles == nil:
		issues = append(issues, utils.BodyIssue(msgFieldRequired, "returned_full_bottles"))
	case *req.ReturnedFullBottles < 0:
		issues = append(issues, utils.BodyIssue("Input should be greater than or equal to 0", "returned_full_bottles"))
	}
	switch {
	case req.ReturnedEmptyBottles == nil:
		issues = append(issues, utils.BodyIssue(msgFieldRequired, "returned_empty_bottles"))
	case *req.ReturnedEmptyBottles < 0:
		issues = append(issues, utils.BodyIssue("Input should be greater than or equal to 0", "returned_empty_bottles"))
	}
	if req.ReportedDamaged < 0 {
		issues = append(issues, utils.BodyIssue("Input should be greater than or equal to 0", "reported_damaged"))
	}
	return issues
}

// CheckinRoute closes a route: reconciles inventory, prices sales, records debt
func CheckinRoute(db *sqlx.DB, bottlePrice decimal.Decimal, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, middleware.CredentialsError)
			return
		}

		routeID, ok := pathInt(w, r, "route_id")
		if !ok {
			return
		}
		log.Printf("📥 REQUEST: POST /api/v1/routes/%d/checkin", routeID)

		var req models.CheckinRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if issues := validateCheckin(req); len(issues) > 0 {
			utils.ValidationError(w, issues...)
			return
		}

		route, err := database.GetRoute(db, routeID)
		if errors.Is(err, database.ErrRouteNotFound) {
			utils.Error(w, http.StatusNotFound, msgRouteNotFound)
			return
		}
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al registrar la entrada")
			return
		}
		if route.AuditStatus != models.StatusInProgress {
			utils.Error(w, http.StatusConflict, msgRouteClosed)
			return
		}

		clientIDs := make([]int, 0, len(req.Sales))
		for _, s := range req.Sales {
			clientIDs = append(clientIDs, s.ClientID)
		}
		clients, err := database.GetClientsByIDs(db, clientIDs)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al registrar la entrada")
			return
		}
		sales, salesTotal, err := services.PriceSales(req.Sales, clients, bottlePrice)
		var saleIssue *services.SaleIssue
		if errors.As(err, &saleIssue) {
			utils.ValidationError(w, utils.BodyIssue(saleIssue.Msg, "sales", saleIssue.Index, saleIssue.Field))
			return
		} else if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al registrar la entrada")
			return
		}

		counts := services.ReturnCounts{
			ReturnedFull:     *req.ReturnedFullBottles,
			ReturnedEmpty:    *req.ReturnedEmptyBottles,
			ReportedDamaged:  req.ReportedDamaged,
			EvidenceVerified: req.EvidenceVerified,
		}
		result := services.ReconcileRoute(route, counts, bottlePrice)

		closed, err := database.CloseRoute(db, database.CloseRouteParams{
			RouteID:          routeID,
			ReturnedFull:     counts.ReturnedFull,
			ReturnedEmpty:    counts.ReturnedEmpty,
			ReportedDamaged:  counts.ReportedDamaged,
			EvidenceVerified: counts.EvidenceVerified,
			Notes:            req.Notes,
			ByUserID:         user.UserID,
			Status:           result.Status,
			DebtAmount:       result.Debt,
			Sales:            sales,
			CheckinAt:        now(),
		})
		switch {
		case errors.Is(err, database.ErrRouteNotFound):
			utils.Error(w, http.StatusNotFound, msgRouteNotFound)
			return
		case errors.Is(err, database.ErrRouteClosed):
			utils.Error(w, http.StatusConflict, msgRouteClosed)
			return
		case err != nil:
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al registrar la entrada")
			return
		}

		services.LogActivity(db, services.AuditEntry{
			UserID:     user.UserID,
			Action:     models.ActionRouteClosed,
			EntityType: "route_manifest",
			EntityID:   routeID,
			OldValue:   map[string]interface{}{"status": route.AuditStatus},
			NewValue: map[string]interface{}{
				"status":                 closed.AuditStatus,
				"returned_full_bottles":  counts.ReturnedFull,
				"returned_empty_bottles": counts.ReturnedEmpty,
				"reported_damaged":       counts.ReportedDamaged,
				"evidence_verified":      counts.EvidenceVerified,
				"debt_amount":            result.Debt.StringFixed(2),
				"sales_total":            salesTotal.StringFixed(2),
			},
			Notes: result.Message,
		}, services.ClientMetaFromRequest(r))

		checkinAt := *closed.CheckinTimestamp
		hub.PublishRouteEvent(models.RouteEvent{
			Type:       "route_checked_in",
			RouteID:    closed.ID,
			DriverID:   closed.DriverID,
			TruckID:    closed.TruckID,
			Status:     closed.AuditStatus,
			DebtAmount: closed.DebtAmount.InexactFloat64(),
			Timestamp:  checkinAt.Format(time.RFC3339),
		})

		if closed.AuditStatus == models.StatusLockedDebt && fcm != nil {
			go sendDebtAlert(db, fcm, closed.ID, result)
		}

		log.Printf("✅ Route #%d checked in: %s (delta %d, debt %s)", closed.ID, closed.AuditStatus, result.Delta, result.Debt.StringFixed(2))
		utils.Success(w, models.CheckinResponse{
			Message:     result.Message,
			ID:          closed.ID,
			RouteID:     closed.ID,
			CheckinTime: models.FormatClock(&checkinAt),
			Status:      closed.AuditStatus,
			DebtAmount:  closed.DebtAmount.InexactFloat64(),
			Delta:       result.Delta,
			SalesTotal:  salesTotal.InexactFloat64(),
			SalesCount:  len(sales),
		})
	}
}

func sendDebtAlert(db *sqlx.DB, fcm *services.FCMService, routeID int, result services.Reconciliation) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	tokens, err := database.TokensForRoles(db, models.RoleAdmin, models.RoleSupervisor)
	if err != nil {
		log.Printf("⚠️  %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	alert := services.DebtAlert{RouteID: routeID, Missing: result.Delta, Debt: result.Debt, DriverName: "N/A", TruckName: "N/A"}
	if row, err := database.GetRouteRow(db, routeID); err == nil {
		resp := row.ToRouteResponse()
		alert.DriverName, alert.TruckName = resp.DriverName, resp.TruckName
	}

	stale, err := fcm.SendDebtAlert(ctx, tokens, alert)
	if err != nil {
		log.Printf("⚠️  Debt alert for route #%d failed: %v", routeID, err)
		return
	}
	for _, token := range stale {
		if err := database.DeleteFCMToken(db, token); err != nil {
			log.Printf("⚠️  %v", err)
		}
	}
	if len(stale) > 0 {
		log.Printf("🧹 Removed %d unregistered FCM tokens", len(stale))
	}
}
