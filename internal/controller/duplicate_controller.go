package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/middleware"
	"github.com/leadsynch/leadsynch-backend/internal/service"
)

type DuplicateController struct {
	DedupeService *service.DedupeService
}

func (c *DuplicateController) Detect(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	result, err := c.DedupeService.Scan(ctx.TenantID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *DuplicateController) Pending(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pending, err := c.DedupeService.Pending(ctx.TenantID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": pending, "count": len(pending)})
}

func (c *DuplicateController) Merge(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var body struct {
		KeepLeadID      uuid.UUID `json:"keep_lead_id"`
		DuplicateLeadID uuid.UUID `json:"duplicate_lead_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.KeepLeadID == uuid.Nil || body.DuplicateLeadID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "keep_lead_id and duplicate_lead_id are required")
		return
	}

	result, err := c.DedupeService.Merge(ctx.TenantID, ctx.UserID, body.KeepLeadID, body.DuplicateLeadID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *DuplicateController) MergeAuto(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	results, err := c.DedupeService.MergeAuto(ctx.TenantID, ctx.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"merged": len(results), "results": results})
}

func (c *DuplicateController) Dismiss(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := c.DedupeService.Dismiss(ctx.TenantID, id, ctx.UserID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func (c *DuplicateController) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	stats, err := c.DedupeService.Stats(ctx.TenantID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
