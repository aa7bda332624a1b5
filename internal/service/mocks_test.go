package service

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/queue"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
)

// Hand-rolled in-memory repositories shared by the service tests.

type mockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*model.Campaign
	stats     map[uuid.UUID]map[string]int
}

var _ repository.CampaignRepositoryInterface = (*mockCampaignRepo)(nil)

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{
		campaigns: map[uuid.UUID]*model.Campaign{},
		stats:     map[uuid.UUID]map[string]int{},
	}
}

func (m *mockCampaignRepo) Create(c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	copied := *c
	m.campaigns[c.ID] = &copied
	return nil
}

func (m *mockCampaignRepo) GetByID(tenantID, id uuid.UUID) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.TenantID != tenantID {
		return nil, apperrors.NewCampaignNotFound(id)
	}
	copied := *c
	return &copied, nil
}

func (m *mockCampaignRepo) List(tenantID uuid.UUID, offset, limit int, campaignType, status string) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Campaign
	for _, c := range m.campaigns {
		if c.TenantID != tenantID {
			continue
		}
		if campaignType != "" && c.Type != campaignType {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockCampaignRepo) Update(c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	m.campaigns[c.ID] = &copied
	return nil
}

func (m *mockCampaignRepo) UpdateStatus(tenantID, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.TenantID != tenantID {
		return apperrors.NewCampaignNotFound(id)
	}
	c.Status = status
	return nil
}

func (m *mockCampaignRepo) Delete(tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.campaigns, id)
	return nil
}

func (m *mockCampaignRepo) ListActiveEmailCampaigns() ([]*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Campaign
	for _, c := range m.campaigns {
		if c.Status == model.CampaignActive && c.Type == "email" {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockCampaignRepo) MarkTracking(id uuid.UUID, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.campaigns[id]
	c.Status = model.CampaignTracking
	c.TrackingEndDate = &until
	return nil
}

func (m *mockCampaignRepo) TouchCycle(id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[id].LastCycleAt = &at
	return nil
}

func (m *mockCampaignRepo) UpdateSentCount(id uuid.UUID, sent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[id].SentCount = sent
	return nil
}

func (m *mockCampaignRepo) GetStats(campaignID uuid.UUID) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats, ok := m.stats[campaignID]; ok {
		return stats, nil
	}
	return map[string]int{}, nil
}

type mockQueueRepo struct {
	mu       sync.Mutex
	items    []*model.EmailQueueItem
	excluded map[uuid.UUID][]uuid.UUID
}

var _ repository.EmailQueueRepositoryInterface = (*mockQueueRepo)(nil)

func newMockQueueRepo() *mockQueueRepo {
	return &mockQueueRepo{excluded: map[uuid.UUID][]uuid.UUID{}}
}

func (m *mockQueueRepo) EnqueueLeads(campaignID, tenantID uuid.UUID, leads []model.Lead) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	queued := 0
	for _, lead := range leads {
		if lead.Email == "" {
			continue
		}
		exists := false
		for _, item := range m.items {
			if item.CampaignID == campaignID && item.LeadID == lead.ID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		m.items = append(m.items, &model.EmailQueueItem{
			ID:             uuid.New(),
			CampaignID:     campaignID,
			LeadID:         lead.ID,
			TenantID:       tenantID,
			RecipientEmail: lead.Email,
			Status:         model.EmailPending,
			CreatedAt:      time.Now(),
		})
		queued++
	}
	return queued, nil
}

func (m *mockQueueRepo) PendingBatch(campaignID uuid.UUID, limit int) ([]model.EmailQueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EmailQueueItem
	for _, item := range m.items {
		if item.CampaignID == campaignID && item.Status == model.EmailPending {
			out = append(out, *item)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *mockQueueRepo) CountPending(campaignID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, item := range m.items {
		if item.CampaignID == campaignID && item.Status == model.EmailPending {
			count++
		}
	}
	return count, nil
}

func (m *mockQueueRepo) GetByID(id uuid.UUID) (*model.EmailQueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockQueueRepo) MarkSent(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			now := time.Now()
			item.Status = model.EmailSent
			item.SentAt = &now
		}
	}
	return nil
}

func (m *mockQueueRepo) MarkFailed(id uuid.UUID, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			item.Status = model.EmailFailed
			item.ErrorMessage = errorMessage
			item.RetryCount++
		}
	}
	return nil
}

func (m *mockQueueRepo) ExcludedLeadIDs(campaignID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.excluded[campaignID], nil
}

func (m *mockQueueRepo) ReassignLead(tenantID, fromLeadID, toLeadID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.TenantID == tenantID && item.LeadID == fromLeadID {
			item.LeadID = toLeadID
		}
	}
	return nil
}

func (m *mockQueueRepo) DeleteByCampaign(campaignID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, item := range m.items {
		if item.CampaignID != campaignID {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return nil
}

type mockLeadRepo struct {
	mu         sync.Mutex
	leads      map[uuid.UUID]*model.Lead
	byDatabase map[uuid.UUID][]uuid.UUID
	updated    map[uuid.UUID]map[string]string
	reassigned [][2]uuid.UUID
	sectorRows []model.SectorCount
}

var _ repository.LeadRepositoryInterface = (*mockLeadRepo)(nil)

func newMockLeadRepo() *mockLeadRepo {
	return &mockLeadRepo{
		leads:      map[uuid.UUID]*model.Lead{},
		byDatabase: map[uuid.UUID][]uuid.UUID{},
		updated:    map[uuid.UUID]map[string]string{},
	}
}

func (m *mockLeadRepo) addToDatabase(databaseID uuid.UUID, lead *model.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[lead.ID] = lead
	m.byDatabase[databaseID] = append(m.byDatabase[databaseID], lead.ID)
}

func (m *mockLeadRepo) GetByID(tenantID, id uuid.UUID) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok || lead.TenantID != tenantID {
		return nil, apperrors.NewLeadNotFound(id)
	}
	copied := *lead
	return &copied, nil
}

func (m *mockLeadRepo) Insert(lead *model.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	lead.CreatedAt = time.Now()
	copied := *lead
	m.leads[lead.ID] = &copied
	return nil
}

func (m *mockLeadRepo) AttachToDatabase(tenantID, leadID, databaseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byDatabase[databaseID] = append(m.byDatabase[databaseID], leadID)
	return nil
}

func (m *mockLeadRepo) ListByDatabase(tenantID, databaseID uuid.UUID, sectors []string) ([]model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Lead
	for _, id := range m.byDatabase[databaseID] {
		lead := m.leads[id]
		if lead == nil || lead.TenantID != tenantID || lead.IsDuplicate {
			continue
		}
		if len(sectors) > 0 {
			match := false
			for _, sector := range sectors {
				if lead.Sector == sector {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *lead)
	}
	return out, nil
}

func (m *mockLeadRepo) ListForDedup(tenantID uuid.UUID) ([]model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Lead
	for _, lead := range m.leads {
		if lead.TenantID == tenantID && !lead.IsDuplicate {
			out = append(out, *lead)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockLeadRepo) UpdateFields(tenantID, id uuid.UUID, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated[id] = fields
	return nil
}

func (m *mockLeadRepo) ArchiveAsDuplicate(tenantID, id, duplicateOf uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead := m.leads[id]
	lead.IsDuplicate = true
	lead.DuplicateOf = &duplicateOf
	lead.Status = "archived"
	return nil
}

func (m *mockLeadRepo) ReassignRelations(tenantID, fromLeadID, toLeadID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reassigned = append(m.reassigned, [2]uuid.UUID{fromLeadID, toLeadID})
	return nil
}

func (m *mockLeadRepo) SectorCounts(tenantID uuid.UUID) ([]model.SectorCount, error) {
	if m.sectorRows != nil {
		return m.sectorRows, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, lead := range m.leads {
		if lead.TenantID == tenantID && lead.Sector != "" {
			counts[lead.Sector]++
		}
	}
	var out []model.SectorCount
	for sector, n := range counts {
		out = append(out, model.SectorCount{Sector: sector, LeadsCount: n})
	}
	return out, nil
}

func (m *mockLeadRepo) RenameSector(tenantID uuid.UUID, oldName, newName string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	updated := 0
	for _, lead := range m.leads {
		if lead.TenantID == tenantID && lead.Sector == oldName {
			lead.Sector = newName
			updated++
		}
	}
	return updated, nil
}

func (m *mockLeadRepo) ClearSector(tenantID uuid.UUID, sector string) (int, error) {
	return m.RenameSector(tenantID, sector, "")
}

type mockDatabaseRepo struct {
	mu        sync.Mutex
	databases map[uuid.UUID]*model.LeadDatabase
}

var _ repository.LeadDatabaseRepositoryInterface = (*mockDatabaseRepo)(nil)

func (m *mockDatabaseRepo) List(tenantID uuid.UUID) ([]model.LeadDatabase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LeadDatabase
	for _, db := range m.databases {
		if db.TenantID == tenantID {
			out = append(out, *db)
		}
	}
	return out, nil
}

func (m *mockDatabaseRepo) GetByID(tenantID, id uuid.UUID) (*model.LeadDatabase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if db, ok := m.databases[id]; ok && db.TenantID == tenantID {
		copied := *db
		return &copied, nil
	}
	return nil, nil
}

func (m *mockDatabaseRepo) Create(db *model.LeadDatabase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.databases == nil {
		m.databases = map[uuid.UUID]*model.LeadDatabase{}
	}
	if db.ID == uuid.Nil {
		db.ID = uuid.New()
	}
	copied := *db
	m.databases[db.ID] = &copied
	return nil
}

func (m *mockDatabaseRepo) Patch(tenantID, id uuid.UUID, name, description *string) (*model.LeadDatabase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	db := m.databases[id]
	if name != nil {
		db.Name = *name
	}
	if description != nil {
		db.Description = *description
	}
	copied := *db
	return &copied, nil
}

func (m *mockDatabaseRepo) Delete(tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.databases, id)
	return nil
}

type mockTemplateRepo struct {
	templates map[uuid.UUID]*model.EmailTemplate
}

var _ repository.TemplateRepositoryInterface = (*mockTemplateRepo)(nil)

func (m *mockTemplateRepo) GetByID(tenantID, id uuid.UUID) (*model.EmailTemplate, error) {
	if m.templates == nil {
		return nil, nil
	}
	return m.templates[id], nil
}

type mockQuotaRepo struct {
	mu     sync.Mutex
	quotas map[string]*model.Quota
}

var _ repository.QuotaRepositoryInterface = (*mockQuotaRepo)(nil)

func newMockQuotaRepo() *mockQuotaRepo {
	return &mockQuotaRepo{quotas: map[string]*model.Quota{}}
}

func quotaKey(tenantID uuid.UUID, quotaType string) string {
	return tenantID.String() + "/" + quotaType
}

func (m *mockQuotaRepo) Get(tenantID uuid.UUID, quotaType string) (*model.Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotas[quotaKey(tenantID, quotaType)]
	if !ok {
		return nil, nil
	}
	copied := *q
	return &copied, nil
}

func (m *mockQuotaRepo) Insert(q *model.Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *q
	m.quotas[quotaKey(q.TenantID, q.QuotaType)] = &copied
	return nil
}

func (m *mockQuotaRepo) Increment(tenantID uuid.UUID, quotaType string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.quotas[quotaKey(tenantID, quotaType)]; ok {
		q.QuotaUsed += amount
	}
	return nil
}

func (m *mockQuotaRepo) ListByTenant(tenantID uuid.UUID) ([]model.Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Quota
	for _, q := range m.quotas {
		if q.TenantID == tenantID {
			out = append(out, *q)
		}
	}
	return out, nil
}

type mockSettingsRepo struct {
	settings map[uuid.UUID]*model.MailingSettings
}

var _ repository.MailingSettingsRepositoryInterface = (*mockSettingsRepo)(nil)

func (m *mockSettingsRepo) Get(tenantID uuid.UUID) (*model.MailingSettings, error) {
	stored := m.settings[tenantID]
	if stored == nil {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (m *mockSettingsRepo) Upsert(settings *model.MailingSettings) error {
	if m.settings == nil {
		m.settings = map[uuid.UUID]*model.MailingSettings{}
	}
	if existing := m.settings[settings.TenantID]; existing != nil && settings.APIKey == "" {
		settings.APIKey = existing.APIKey
	}
	settings.Configured = true
	copied := *settings
	m.settings[settings.TenantID] = &copied
	return nil
}

type mockDuplicateRepo struct {
	mu         sync.Mutex
	detections []*model.DuplicateDetection
}

var _ repository.DuplicateRepositoryInterface = (*mockDuplicateRepo)(nil)

func (m *mockDuplicateRepo) Log(d *model.DuplicateDetection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.detections {
		samePair := (existing.LeadID == d.LeadID && existing.DuplicateLeadID == d.DuplicateLeadID) ||
			(existing.LeadID == d.DuplicateLeadID && existing.DuplicateLeadID == d.LeadID)
		if existing.TenantID == d.TenantID && samePair {
			return nil
		}
	}
	copied := *d
	m.detections = append(m.detections, &copied)
	return nil
}

func (m *mockDuplicateRepo) Pending(tenantID uuid.UUID, limit int) ([]model.PendingDuplicate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PendingDuplicate
	for _, d := range m.detections {
		if d.TenantID == tenantID && d.Status == model.DetectionPending {
			out = append(out, model.PendingDuplicate{DuplicateDetection: *d})
		}
	}
	return out, nil
}

func (m *mockDuplicateRepo) PendingDetections(tenantID uuid.UUID, minConfidence int) ([]model.DuplicateDetection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DuplicateDetection
	for _, d := range m.detections {
		if d.TenantID == tenantID && d.Status == model.DetectionPending && d.MatchConfidence >= minConfidence {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDuplicateRepo) GetByID(tenantID, id uuid.UUID) (*model.DuplicateDetection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.detections {
		if d.TenantID == tenantID && d.ID == id {
			copied := *d
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockDuplicateRepo) MarkMerged(tenantID, keepLeadID, mergeLeadID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, d := range m.detections {
		samePair := (d.LeadID == keepLeadID && d.DuplicateLeadID == mergeLeadID) ||
			(d.LeadID == mergeLeadID && d.DuplicateLeadID == keepLeadID)
		if d.TenantID == tenantID && samePair {
			d.Status = model.DetectionMerged
			d.MergedAt = &now
			d.MergedBy = &userID
		}
	}
	return nil
}

func (m *mockDuplicateRepo) Dismiss(tenantID, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, d := range m.detections {
		if d.TenantID == tenantID && d.ID == id && d.Status == model.DetectionPending {
			d.Status = model.DetectionDismissed
			d.DismissedAt = &now
			d.DismissedBy = &userID
		}
	}
	return nil
}

func (m *mockDuplicateRepo) Stats(tenantID uuid.UUID) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := map[string]int{}
	for _, d := range m.detections {
		if d.TenantID == tenantID {
			stats[d.Status]++
		}
	}
	return stats, nil
}

// mockPublisher records published jobs without running subscribers.
type mockPublisher struct {
	mu        sync.Mutex
	published []queue.SendJob
}

var _ queue.Queue = (*mockPublisher)(nil)

func (m *mockPublisher) Publish(topic string, job queue.SendJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, job)
	return nil
}

func (m *mockPublisher) Subscribe(topic string, handler func(job queue.SendJob) error) error {
	return nil
}
