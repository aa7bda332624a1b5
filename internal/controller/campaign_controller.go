package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/middleware"
	"github.com/leadsynch/leadsynch-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) Create(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var input service.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(ctx.TenantID, ctx.UserID, input)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) List(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	campaigns, total, err := c.CampaignService.ListCampaigns(
		ctx.TenantID, (page-1)*pageSize, pageSize,
		r.URL.Query().Get("type"), r.URL.Query().Get("status"),
	)
	if err != nil {
		respondError(w, err)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

func (c *CampaignController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	details, err := c.CampaignService.GetDetails(ctx.TenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (c *CampaignController) Update(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var input service.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := c.CampaignService.UpdateCampaign(ctx.TenantID, id, input)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := c.CampaignService.DeleteCampaign(ctx.TenantID, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *CampaignController) Start(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	campaign, err := c.CampaignService.StartCampaign(ctx.TenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) Pause(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	campaign, err := c.CampaignService.PauseCampaign(ctx.TenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) Resume(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	campaign, err := c.CampaignService.ResumeCampaign(ctx.TenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) Stop(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	campaign, err := c.CampaignService.StopCampaign(ctx.TenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) Archive(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	campaign, err := c.CampaignService.ArchiveCampaign(ctx.TenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) Unarchive(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	campaign, err := c.CampaignService.UnarchiveCampaign(ctx.TenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) Duplicate(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	campaign, err := c.CampaignService.DuplicateCampaign(ctx.TenantID, ctx.UserID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) Relaunch(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	// Body is optional.
	json.NewDecoder(r.Body).Decode(&body)

	campaign, err := c.CampaignService.RelaunchCampaign(ctx.TenantID, ctx.UserID, id, body.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) TestSend(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	if body.Email == "" {
		body.Email = ctx.Email
	}

	result, err := c.CampaignService.TestSend(r.Context(), ctx.TenantID, id, body.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *CampaignController) SendEmails(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var body struct {
		CampaignID uuid.UUID `json:"campaign_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CampaignID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "campaign_id is required")
		return
	}

	result, err := c.CampaignService.SendCampaignEmails(ctx.TenantID, body.CampaignID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

func (c *CampaignController) Estimate(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	estimate, err := c.CampaignService.Estimate(ctx.TenantID, id, r.URL.Query().Get("mode"), time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}
