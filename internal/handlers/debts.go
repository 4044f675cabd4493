package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"waterlog/internal/database"
	"waterlog/internal/middleware"
	"waterlog/internal/models"
	"waterlog/internal/services"
	"waterlog/pkg/utils"
)

// GetDebts lists debt records, filtered by ?status when given
func GetDebts(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := models.DebtStatus(r.URL.Query().Get("status"))
		if status != "" && status != models.DebtPending && !status.ValidResolution() {
			utils.ValidationError(w, utils.QueryIssue("Input should be 'PENDING', 'DEDUCTED', 'FORGIVEN', 'DISPUTED' or 'PAID'", "status"))
			return
		}

		debts, err := database.ListDebts(db, status)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener adeudos")
			return
		}

		resp := make([]models.DebtResponse, 0, len(debts))
		for i := range debts {
			resp = append(resp, debts[i].ToDebtResponse())
		}
		utils.Success(w, resp)
	}
}

// ResolveDebt settles a pending debt record
func ResolveDebt(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, middleware.CredentialsError)
			return
		}

		id, ok := pathInt(w, r, "debt_id")
		if !ok {
			return
		}

		var req models.ResolveDebtRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !req.Status.ValidResolution() {
			utils.ValidationError(w, utils.BodyIssue("Input should be 'DEDUCTED', 'FORGIVEN', 'DISPUTED' or 'PAID'", "status"))
			return
		}

		before, err := database.GetDebt(db, id)
		if errors.Is(err, database.ErrDebtNotFound) {
			utils.Error(w, http.StatusNotFound, "Adeudo no encontrado")
			return
		}
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al resolver el adeudo")
			return
		}

		err = database.ResolveDebt(db, id, req.Status, req.ResolutionNotes, user.UserID, now())
		switch {
		case errors.Is(err, database.ErrDebtNotFound):
			utils.Error(w, http.StatusNotFound, "Adeudo no encontrado")
			return
		case errors.Is(err, database.ErrDebtResolved):
			utils.Error(w, http.StatusConflict, "El adeudo ya fue resuelto")
			return
		case err != nil:
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al resolver el adeudo")
			return
		}

		after, err := database.GetDebt(db, id)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al resolver el adeudo")
			return
		}

		services.LogActivity(db, services.AuditEntry{
			UserID:     user.UserID,
			Action:     models.ActionDebtResolved,
			EntityType: "debt_record",
			EntityID:   id,
			OldValue:   map[string]interface{}{"status": before.Status},
			NewValue:   map[string]interface{}{"status": after.Status, "amount": after.Amount.StringFixed(2)},
			Notes:      req.ResolutionNotes,
		}, services.ClientMetaFromRequest(r))

		log.Printf("✅ Debt #%d resolved as %s by user %d", id, after.Status, user.UserID)
		utils.Success(w, after.ToDebtResponse())
	}
}
