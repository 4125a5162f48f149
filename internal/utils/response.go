package utils

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response with status code
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// JSONError writes the error envelope {"error": "..."} used by every
// failure response of both APIs.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// JSONMessage writes a confirmation envelope {"message": "..."}.
func JSONMessage(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}
