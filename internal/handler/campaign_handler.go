package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
	"github.com/leadsynch/leadsynch-backend/internal/middleware"
	"github.com/leadsynch/leadsynch-backend/internal/service"
)

// CampaignHandler serves the campaign reporting endpoints.
type CampaignHandler struct {
	CampaignService *service.CampaignService
}

func NewCampaignHandler(svc *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{CampaignService: svc}
}

// StatsHandler returns the queue breakdown for one campaign.
func (h *CampaignHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	details, err := h.CampaignService.GetDetails(ctx.TenantID, id)
	if err != nil {
		var notFound *apperrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": details.ID,
		"status":      details.Status,
		"total_leads": details.TotalLeads,
		"sent_count":  details.SentCount,
		"stats":       details.Stats,
	})
}

// HealthHandler is the unauthenticated liveness probe.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
