package web

// errors.go provides unified error response handling for the web layer.
// The core packages raise typed sentinel errors; this file maps them to
// status codes and the original API's {error, message} JSON shape, logging
// the technical error server-side with the request id for correlation.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Jaytech9/galamsay-analysis/internal/analysis"
	"github.com/Jaytech9/galamsay-analysis/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError classifies err, logs it, and writes the error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, label := classify(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
	)

	respondJSON(w, status, ErrorResponse{Error: label, Message: err.Error()})
}

// respondNotFound writes a 404 with a resource-specific message.
func respondNotFound(w http.ResponseWriter, label, message string) {
	respondJSON(w, http.StatusNotFound, ErrorResponse{Error: label, Message: message})
}

// classify maps a pipeline or store error to a status code and label.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrSourceNotFound):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, analysis.ErrInvalidThreshold):
		return http.StatusBadRequest, "Invalid threshold"
	case errors.Is(err, analysis.ErrSourceFormat),
		errors.Is(err, analysis.ErrEmptyInput):
		return http.StatusBadRequest, "Invalid data"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
