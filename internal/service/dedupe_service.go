package service

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leadsynch/leadsynch-backend/internal/dedupe"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
)

type DedupeService struct {
	LeadRepo      repository.LeadRepositoryInterface
	DuplicateRepo repository.DuplicateRepositoryInterface
	QueueRepo     repository.EmailQueueRepositoryInterface
}

type ScanResult struct {
	LeadsScanned int `json:"leads_scanned"`
	PairsFound   int `json:"pairs_found"`
}

type MergeResult struct {
	KeptLeadID    uuid.UUID `json:"kept_lead_id"`
	MergedLeadID  uuid.UUID `json:"merged_lead_id"`
	FieldsCopied  int       `json:"fields_copied"`
	MatchType     string    `json:"match_type,omitempty"`
	AutoConfirmed bool      `json:"auto_confirmed,omitempty"`
}

// Scan runs duplicate detection over the tenant's active leads and
// records one pending detection per pair.
func (s *DedupeService) Scan(tenantID uuid.UUID) (*ScanResult, error) {
	leads, err := s.LeadRepo.ListForDedup(tenantID)
	if err != nil {
		return nil, err
	}

	pairs := dedupe.ScanAll(leads)
	for _, pair := range pairs {
		detection := &model.DuplicateDetection{
			ID:              uuid.New(),
			TenantID:        tenantID,
			LeadID:          pair.Primary.ID,
			DuplicateLeadID: pair.Duplicate.ID,
			MatchType:       pair.MatchType,
			MatchConfidence: pair.Confidence,
			Status:          model.DetectionPending,
		}
		if err := s.DuplicateRepo.Log(detection); err != nil {
			return nil, err
		}
	}

	log.Infof("🔍 Duplicate scan for tenant %s: %d leads, %d pairs", tenantID, len(leads), len(pairs))
	return &ScanResult{LeadsScanned: len(leads), PairsFound: len(pairs)}, nil
}

func (s *DedupeService) Pending(tenantID uuid.UUID, limit int) ([]model.PendingDuplicate, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.DuplicateRepo.Pending(tenantID, limit)
}

// Merge folds duplicateID into keepID: empty fields on the kept lead
// are filled from the duplicate, every relation is re-pointed, and the
// duplicate is archived.
func (s *DedupeService) Merge(tenantID, userID, keepID, duplicateID uuid.UUID) (*MergeResult, error) {
	if keepID == duplicateID {
		return nil, fmt.Errorf("cannot merge a lead into itself")
	}

	keep, err := s.LeadRepo.GetByID(tenantID, keepID)
	if err != nil {
		return nil, err
	}
	duplicate, err := s.LeadRepo.GetByID(tenantID, duplicateID)
	if err != nil {
		return nil, err
	}

	fields := dedupe.MergeFields(*keep, *duplicate)
	if len(fields) > 0 {
		if err := s.LeadRepo.UpdateFields(tenantID, keepID, fields); err != nil {
			return nil, err
		}
	}

	if err := s.LeadRepo.ReassignRelations(tenantID, duplicateID, keepID); err != nil {
		return nil, err
	}
	if err := s.QueueRepo.ReassignLead(tenantID, duplicateID, keepID); err != nil {
		return nil, err
	}
	if err := s.LeadRepo.ArchiveAsDuplicate(tenantID, duplicateID, keepID); err != nil {
		return nil, err
	}
	if err := s.DuplicateRepo.MarkMerged(tenantID, keepID, duplicateID, userID); err != nil {
		return nil, err
	}

	log.Infof("🧹 Merged lead %s into %s (%d fields copied)", duplicateID, keepID, len(fields))
	return &MergeResult{KeptLeadID: keepID, MergedLeadID: duplicateID, FieldsCopied: len(fields)}, nil
}

// MergeAuto merges every pending detection at or above the auto-merge
// confidence threshold, keeping the older lead of each pair.
func (s *DedupeService) MergeAuto(tenantID, userID uuid.UUID) ([]MergeResult, error) {
	detections, err := s.DuplicateRepo.PendingDetections(tenantID, dedupe.AutoMergeThreshold)
	if err != nil {
		return nil, err
	}

	results := make([]MergeResult, 0, len(detections))
	for _, detection := range detections {
		leadA, err := s.LeadRepo.GetByID(tenantID, detection.LeadID)
		if err != nil {
			log.Warnln("⚠️ Auto-merge skipped detection, lead missing:", err)
			continue
		}
		leadB, err := s.LeadRepo.GetByID(tenantID, detection.DuplicateLeadID)
		if err != nil {
			log.Warnln("⚠️ Auto-merge skipped detection, lead missing:", err)
			continue
		}

		keep, duplicate := leadA, leadB
		if dedupe.Older(*leadB, *leadA) {
			keep, duplicate = leadB, leadA
		}

		result, err := s.Merge(tenantID, userID, keep.ID, duplicate.ID)
		if err != nil {
			log.Warnf("⚠️ Auto-merge failed for pair %s/%s: %v", keep.ID, duplicate.ID, err)
			continue
		}
		result.MatchType = detection.MatchType
		result.AutoConfirmed = true
		results = append(results, *result)
	}

	return results, nil
}

func (s *DedupeService) Dismiss(tenantID, detectionID, userID uuid.UUID) error {
	return s.DuplicateRepo.Dismiss(tenantID, detectionID, userID)
}

func (s *DedupeService) Stats(tenantID uuid.UUID) (map[string]int, error) {
	return s.DuplicateRepo.Stats(tenantID)
}

// Screen checks one lead against the tenant's existing leads without
// persisting anything. Used by lead generation to skip known leads.
func (s *DedupeService) Screen(tenantID uuid.UUID, lead model.Lead) ([]dedupe.Match, error) {
	candidates, err := s.LeadRepo.ListForDedup(tenantID)
	if err != nil {
		return nil, err
	}
	return dedupe.FindMatches(lead, candidates), nil
}
