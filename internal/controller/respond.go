package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondError maps domain errors to HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	var campaignNotFound *apperrors.ErrCampaignNotFound
	var leadNotFound *apperrors.ErrLeadNotFound
	var transition *apperrors.ErrInvalidTransition

	switch {
	case errors.As(err, &campaignNotFound), errors.As(err, &leadNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case apperrors.IsInvalidSchedule(err), apperrors.IsUnknownQuotaType(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case apperrors.IsQuotaExceeded(err):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.As(err, &transition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// uuidParam parses a UUID path parameter; ok is false after a 400 has
// been written.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
