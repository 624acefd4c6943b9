package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
)

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to its HTTP status. Internal failures
// are logged with detail but reported generically.
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).Error("Internal server error")
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
