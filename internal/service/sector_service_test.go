package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

func sectorFixture(t *testing.T) (uuid.UUID, *mockLeadRepo, *SectorService) {
	t.Helper()
	tenantID := uuid.New()
	repo := newMockLeadRepo()
	for i, sector := range []string{"Restauration", "Restauration", "Coiffure", "BTP"} {
		require.NoError(t, repo.Insert(&model.Lead{
			TenantID:    tenantID,
			CompanyName: "Entreprise",
			Email:       "lead" + string(rune('a'+i)) + "@example.com",
			Sector:      sector,
		}))
	}
	return tenantID, repo, &SectorService{LeadRepo: repo}
}

func TestSectorList(t *testing.T) {
	tenantID, _, svc := sectorFixture(t)

	counts, err := svc.List(tenantID)
	require.NoError(t, err)
	require.Len(t, counts, 3)

	byName := map[string]int{}
	for _, c := range counts {
		byName[c.Sector] = c.LeadsCount
	}
	assert.Equal(t, 2, byName["Restauration"])
	assert.Equal(t, 1, byName["Coiffure"])
	assert.Equal(t, 1, byName["BTP"])
}

func TestSectorRename(t *testing.T) {
	tenantID, repo, svc := sectorFixture(t)

	updated, err := svc.Rename(tenantID, "Restauration", "Hôtellerie-Restauration")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	for _, lead := range repo.leads {
		assert.NotEqual(t, "Restauration", lead.Sector)
	}
}

func TestSectorRenameRejectsSameName(t *testing.T) {
	tenantID, _, svc := sectorFixture(t)

	_, err := svc.Rename(tenantID, "BTP", "BTP")
	assert.Error(t, err)

	_, err = svc.Rename(tenantID, "", "BTP")
	assert.Error(t, err)
}

func TestSectorMergeFoldsIntoTarget(t *testing.T) {
	tenantID, _, svc := sectorFixture(t)

	moved, err := svc.Merge(tenantID, []string{"Coiffure", "BTP"}, "Services")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	counts, err := svc.List(tenantID)
	require.NoError(t, err)
	byName := map[string]int{}
	for _, c := range counts {
		byName[c.Sector] = c.LeadsCount
	}
	assert.Equal(t, 2, byName["Services"])
	assert.Equal(t, 0, byName["Coiffure"])
}

func TestSectorMergeRequiresTarget(t *testing.T) {
	tenantID, _, svc := sectorFixture(t)

	_, err := svc.Merge(tenantID, []string{"BTP"}, "")
	assert.Error(t, err)

	_, err = svc.Merge(tenantID, nil, "Services")
	assert.Error(t, err)
}

func TestSectorClear(t *testing.T) {
	tenantID, _, svc := sectorFixture(t)

	updated, err := svc.Clear(tenantID, "Restauration")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	counts, err := svc.List(tenantID)
	require.NoError(t, err)
	require.Len(t, counts, 2)
}
