package controller

import (
	"encoding/json"
	"net/http"

	"github.com/leadsynch/leadsynch-backend/internal/middleware"
	"github.com/leadsynch/leadsynch-backend/internal/service"
)

type SectorController struct {
	SectorService *service.SectorService
}

func (c *SectorController) List(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	sectors, err := c.SectorService.List(ctx.TenantID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": sectors})
}

func (c *SectorController) Rename(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var body struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := c.SectorService.Rename(ctx.TenantID, body.OldName, body.NewName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"leads_updated": updated})
}

func (c *SectorController) Merge(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var body struct {
		SectorsToMerge []string `json:"sectors_to_merge"`
		TargetSector   string   `json:"target_sector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	moved, err := c.SectorService.Merge(ctx.TenantID, body.SectorsToMerge, body.TargetSector)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"leads_updated": moved})
}

func (c *SectorController) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	sector := r.URL.Query().Get("sector")

	updated, err := c.SectorService.Clear(ctx.TenantID, sector)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"leads_updated": updated})
}
