package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/kislikjeka/finpanel/internal/shared/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondAppError maps err through its AppError code
func respondAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if appErr := apperrors.GetAppError(err); appErr != nil {
		respondJSON(w, ErrorResponse{Error: appErr.Message, Code: appErr.Code}, status)
		return
	}
	respondError(w, http.StatusText(status), status)
}

// wantsJSON reports whether the caller asked for JSON rather than a page
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// redirect answers a form post with 303 so a reload does not resubmit it
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
