package controller

import (
	"encoding/json"
	"net/http"

	"github.com/leadsynch/leadsynch-backend/internal/middleware"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/service"
)

type MailingController struct {
	MailingService *service.MailingService
}

func (c *MailingController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	settings, err := c.MailingService.Get(ctx.TenantID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (c *MailingController) Save(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var body struct {
		FromEmail string `json:"from_email"`
		FromName  string `json:"from_name"`
		ReplyTo   string `json:"reply_to"`
		Provider  string `json:"provider"`
		APIKey    string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.FromEmail == "" {
		writeError(w, http.StatusBadRequest, "from_email is required")
		return
	}

	settings, err := c.MailingService.Upsert(&model.MailingSettings{
		TenantID:  ctx.TenantID,
		FromEmail: body.FromEmail,
		FromName:  body.FromName,
		ReplyTo:   body.ReplyTo,
		Provider:  body.Provider,
		APIKey:    body.APIKey,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (c *MailingController) SendTest(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var body struct {
		Email string `json:"email"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	if body.Email == "" {
		body.Email = ctx.Email
	}

	if err := c.MailingService.SendTest(r.Context(), ctx.TenantID, body.Email); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
