package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/leadsynch/leadsynch-backend/internal/middleware"
	"github.com/leadsynch/leadsynch-backend/internal/service"
)

type LeadGenController struct {
	LeadGenService *service.LeadGenService
}

// Generate streams a lead generation run as server-sent events.
func (c *LeadGenController) Generate(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var req service.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := make(chan service.Event, 16)
	go c.LeadGenService.Run(r.Context(), ctx.TenantID, ctx.UserID, req, events)

	for event := range events {
		data, err := json.Marshal(event.Data)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
		flusher.Flush()
	}
}
