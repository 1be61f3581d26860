// Package api defines the JSON response envelope shared by every handler.
// It decouples the wire format from the internal domain models.
package api

import (
	"encoding/json"
	"net/http"
)

// Response is the standard envelope for every JSON payload.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Total   *int        `json:"total,omitempty"`
	Error   string      `json:"error,omitempty"`
	Path    string      `json:"path,omitempty"`
}

// Success writes a successful JSON response with the given payload.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, Response{Success: true, Data: data})
}

// SuccessMessage writes a successful JSON response with a payload and a
// human-readable message.
func SuccessMessage(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	writeJSON(w, statusCode, Response{Success: true, Data: data, Message: message})
}

// SuccessList writes a successful JSON response for a collection,
// including the total element count.
func SuccessList(w http.ResponseWriter, statusCode int, data interface{}, total int) {
	writeJSON(w, statusCode, Response{Success: true, Data: data, Total: &total})
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Response{Success: false, Error: message})
}

// NotFoundRoute writes the 404 envelope for unmatched routes, echoing
// the requested path.
func NotFoundRoute(w http.ResponseWriter, path string) {
	writeJSON(w, http.StatusNotFound, Response{Success: false, Error: "Route not found", Path: path})
}

// JSON writes an arbitrary payload without the envelope. Used by
// endpoints with their own response shape, such as /health.
func JSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	writeJSON(w, statusCode, payload)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Encoding failures past this point cannot be reported to the client;
	// the status line is already on the wire.
	_ = json.NewEncoder(w).Encode(payload)
}
