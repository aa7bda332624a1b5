package controller

import (
	"encoding/json"
	"net/http"

	"github.com/leadsynch/leadsynch-backend/internal/middleware"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
)

type LeadDatabaseController struct {
	DatabaseRepo repository.LeadDatabaseRepositoryInterface
	LeadRepo     repository.LeadRepositoryInterface
}

func (c *LeadDatabaseController) List(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	databases, err := c.DatabaseRepo.List(ctx.TenantID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": databases})
}

func (c *LeadDatabaseController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	database, err := c.DatabaseRepo.GetByID(ctx.TenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	if database == nil {
		writeError(w, http.StatusNotFound, "lead database not found")
		return
	}

	leads, err := c.LeadRepo.ListByDatabase(ctx.TenantID, id, nil)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"database": database,
		"leads":    leads,
	})
}

func (c *LeadDatabaseController) Create(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	database := &model.LeadDatabase{
		TenantID:    ctx.TenantID,
		Name:        body.Name,
		Description: body.Description,
	}
	if err := c.DatabaseRepo.Create(database); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, database)
}

func (c *LeadDatabaseController) Patch(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	database, err := c.DatabaseRepo.Patch(ctx.TenantID, id, body.Name, body.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, database)
}

func (c *LeadDatabaseController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, _ := middleware.FromContext(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := c.DatabaseRepo.Delete(ctx.TenantID, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
