package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
)

type SectorService struct {
	LeadRepo repository.LeadRepositoryInterface
}

func (s *SectorService) List(tenantID uuid.UUID) ([]model.SectorCount, error) {
	return s.LeadRepo.SectorCounts(tenantID)
}

// Rename changes a sector name on every lead carrying it and returns
// the number of leads touched.
func (s *SectorService) Rename(tenantID uuid.UUID, oldName, newName string) (int, error) {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return 0, fmt.Errorf("sector names cannot be empty")
	}
	if oldName == newName {
		return 0, fmt.Errorf("new sector name must differ from the current one")
	}
	return s.LeadRepo.RenameSector(tenantID, oldName, newName)
}

// Merge folds one or more sectors into a target sector and returns the
// number of leads moved. The target may already exist.
func (s *SectorService) Merge(tenantID uuid.UUID, sectors []string, target string) (int, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return 0, fmt.Errorf("target sector cannot be empty")
	}
	if len(sectors) == 0 {
		return 0, fmt.Errorf("no sectors to merge")
	}
	moved := 0
	for _, sector := range sectors {
		sector = strings.TrimSpace(sector)
		if sector == "" || sector == target {
			continue
		}
		n, err := s.LeadRepo.RenameSector(tenantID, sector, target)
		if err != nil {
			return moved, err
		}
		moved += n
	}
	return moved, nil
}

// Clear removes the sector from every lead carrying it.
func (s *SectorService) Clear(tenantID uuid.UUID, sector string) (int, error) {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return 0, fmt.Errorf("sector name cannot be empty")
	}
	return s.LeadRepo.ClearSector(tenantID, sector)
}
