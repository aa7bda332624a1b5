package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leadsynch/leadsynch-backend/internal/dedupe"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
)

// GenerateRequest describes one lead generation run.
type GenerateRequest struct {
	Sector     string     `json:"sector"`
	City       string     `json:"city"`
	Count      int        `json:"count"`
	DatabaseID *uuid.UUID `json:"database_id,omitempty"`
}

// LeadGenerator produces candidate leads for a request. Each candidate
// is passed to emit; returning an error from emit stops the run.
type LeadGenerator interface {
	Generate(ctx context.Context, req GenerateRequest, emit func(model.Lead) error) error
}

// Event is one server-sent event of a generation run.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type GenerateProgress struct {
	Generated int `json:"generated"`
	Kept      int `json:"kept"`
	Skipped   int `json:"skipped"`
	Requested int `json:"requested"`
}

type GenerateSummary struct {
	GenerateProgress
	LeadIDs []uuid.UUID `json:"lead_ids"`
}

type LeadGenService struct {
	LeadRepo     repository.LeadRepositoryInterface
	DatabaseRepo repository.LeadDatabaseRepositoryInterface
	Dedupe       *DedupeService
	Quotas       *QuotaService
	Generator    LeadGenerator
}

// Run generates leads, screens each candidate against existing leads,
// inserts the survivors and streams progress on events. The channel is
// closed when the run ends.
func (s *LeadGenService) Run(ctx context.Context, tenantID, userID uuid.UUID, req GenerateRequest, events chan<- Event) {
	defer close(events)

	if req.Count <= 0 {
		req.Count = 10
	}
	if req.Count > 100 {
		req.Count = 100
	}

	if _, err := s.Quotas.Check(tenantID, model.QuotaLeads, req.Count); err != nil {
		events <- Event{Type: "error", Data: map[string]string{"error": err.Error()}}
		return
	}

	if req.DatabaseID != nil {
		db, err := s.DatabaseRepo.GetByID(tenantID, *req.DatabaseID)
		if err != nil {
			events <- Event{Type: "error", Data: map[string]string{"error": err.Error()}}
			return
		}
		if db == nil {
			events <- Event{Type: "error", Data: map[string]string{"error": "lead database not found"}}
			return
		}
	}

	// Screen against a snapshot of the tenant's leads; leads we
	// insert during the run join the candidate set as we go.
	existing, err := s.LeadRepo.ListForDedup(tenantID)
	if err != nil {
		events <- Event{Type: "error", Data: map[string]string{"error": err.Error()}}
		return
	}

	progress := GenerateProgress{Requested: req.Count}
	var leadIDs []uuid.UUID

	emit := func(candidate model.Lead) error {
		if progress.Kept >= req.Count {
			return fmt.Errorf("requested count reached")
		}
		progress.Generated++

		matches := dedupe.FindMatches(candidate, existing)
		if len(matches) > 0 && matches[0].Confidence >= dedupe.AutoMergeThreshold {
			progress.Skipped++
			events <- Event{Type: "progress", Data: progress}
			return nil
		}

		candidate.ID = uuid.New()
		candidate.TenantID = tenantID
		if candidate.Sector == "" {
			candidate.Sector = req.Sector
		}
		if candidate.Status == "" {
			candidate.Status = "new"
		}
		if err := s.LeadRepo.Insert(&candidate); err != nil {
			return err
		}
		if req.DatabaseID != nil {
			if err := s.LeadRepo.AttachToDatabase(tenantID, candidate.ID, *req.DatabaseID); err != nil {
				return err
			}
		}

		existing = append(existing, candidate)
		leadIDs = append(leadIDs, candidate.ID)
		progress.Kept++

		events <- Event{Type: "generated_lead", Data: candidate}
		events <- Event{Type: "progress", Data: progress}
		return nil
	}

	if err := s.Generator.Generate(ctx, req, emit); err != nil && progress.Kept < req.Count {
		log.Warnln("⚠️ Lead generation stopped early:", err)
	}

	if progress.Kept > 0 {
		if err := s.Quotas.Consume(tenantID, model.QuotaLeads, progress.Kept); err != nil {
			log.Warnln("⚠️ Failed to record lead quota usage:", err)
		}
	}

	events <- Event{Type: "final_results", Data: GenerateSummary{GenerateProgress: progress, LeadIDs: leadIDs}}
	events <- Event{Type: "complete", Data: progress}
	log.Infof("✨ Lead generation for tenant %s by %s: %d kept, %d skipped", tenantID, userID, progress.Kept, progress.Skipped)
}
