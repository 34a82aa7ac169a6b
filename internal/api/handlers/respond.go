package handlers

import (
	"encoding/json"
	"net/http"
)

// envelope is the `{"success": ..., "data": ..., "message": ...}` response
// shape the marketplace front-end expects.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	respondJSON(w, status, envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{
		Success: false,
		Message: message,
	})
}
