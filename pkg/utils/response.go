package utils

import (
	"encoding/json"
	"net/http"
)

// Issue is one entry of a structured validation error
type Issue struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Error sends {"detail": message}
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"detail": message})
}

// ValidationError sends a 422 with {"detail": [issues...]}
func ValidationError(w http.ResponseWriter, issues ...Issue) {
	JSON(w, http.StatusUnprocessableEntity, map[string][]Issue{"detail": issues})
}

// BodyIssue builds an issue located in the request body, e.g. BodyIssue("Field required", "driver_id")
func BodyIssue(msg string, path ...interface{}) Issue {
	loc := append([]interface{}{"body"}, path...)
	return Issue{Loc: loc, Msg: msg}
}

// QueryIssue builds an issue located in the query string
func QueryIssue(msg, param string) Issue {
	return Issue{Loc: []interface{}{"query", param}, Msg: msg}
}
