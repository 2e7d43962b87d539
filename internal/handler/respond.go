package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/service"
	"github.com/yourorg/swiftstore/internal/tenant"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Not-found never reveals whether the row exists under another tenant.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrDuplicateSubdomain):
		writeError(w, http.StatusConflict, "subdomain already taken")
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenant.ErrNoTenant):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
