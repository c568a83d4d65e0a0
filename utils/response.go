package utils

import (
	"encoding/json"
	"net/http"
)

// M is shorthand for ad-hoc JSON payloads.
type M map[string]interface{}

// RespondWithJSON marshals data before touching the ResponseWriter so an
// encoding failure never leaves a half-written body behind the status code.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

// RespondWithError wraps msg in the {"error": ...} envelope every handler uses.
func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"error": msg})
}
