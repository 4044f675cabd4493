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

func validateClient(req *models.ClientRequest) []utils.Issue {
	req.Name = strings.TrimSpace(req.Name)
	var issues []utils.Issue
	if req.Name == "" {
		issues = append(issues, utils.BodyIssue(msgFieldRequired, "name"))
	}
	return issues
}

// GetClients lists active clients for the sales picker
func GetClients(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, err := database.ListActiveClients(db)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al obtener clientes")
			return
		}

		resp := make([]models.ClientResponse, 0, len(clients))
		for i := range clients {
			resp = append(resp, clients[i].ToClientResponse())
		}
		utils.Success(w, resp)
	}
}

func CreateClient(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ClientRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if issues := validateClient(&req); len(issues) > 0 {
			utils.ValidationError(w, issues...)
			return
		}
		if req.SpecialPrice != nil && *req.SpecialPrice < 0 {
			utils.Error(w, http.StatusBadRequest, "El precio no puede ser negativo")
			return
		}

		client, err := database.CreateClient(db, req)
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al crear el cliente")
			return
		}

		log.Printf("✅ Client created: %s", client.Name)
		utils.Success(w, client.ToClientResponse())
	}
}

func UpdateClient(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathInt(w, r, "client_id")
		if !ok {
			return
		}

		var req models.ClientRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if issues := validateClient(&req); len(issues) > 0 {
			utils.ValidationError(w, issues...)
			return
		}
		if req.SpecialPrice != nil && *req.SpecialPrice < 0 {
			utils.Error(w, http.StatusBadRequest, "El precio no puede ser negativo")
			return
		}

		client, err := database.UpdateClient(db, id, req)
		if errors.Is(err, database.ErrClientNotFound) {
			utils.Error(w, http.StatusNotFound, "Cliente no encontrado")
			return
		}
		if err != nil {
			log.Printf("❌ %v", err)
			utils.Error(w, http.StatusInternalServerError, "Error al actualizar el cliente")
			return
		}

		utils.Success(w, client.ToClientResponse())
	}
}
