package controller

import (
	"net/http"

	"github.com/leadsynch/leadsynch-backend/internal/middleware"
	"github.com/leadsynch/leadsynch-backend/internal/service"
)

type QuotaController struct {
	QuotaService *service.QuotaService
}

func (c *QuotaController) List(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	statuses, err := c.QuotaService.StatusAll(ctx.TenantID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": statuses})
}

func (c *QuotaController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	quotaType := r.URL.Query().Get("type")
	if quotaType == "" {
		writeError(w, http.StatusBadRequest, "type query parameter is required")
		return
	}

	status, err := c.QuotaService.Status(ctx.TenantID, quotaType)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
