package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/queue"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
	"github.com/leadsynch/leadsynch-backend/internal/schedule"
	"github.com/leadsynch/leadsynch-backend/internal/sender"
)

// TestSendCap bounds how many leads a test send previews.
const TestSendCap = 5

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	LeadRepo     repository.LeadRepositoryInterface
	QueueRepo    repository.EmailQueueRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	Quotas       *QuotaService
	Mail         *MailingService
	Queue        queue.Queue
}

type CampaignInput struct {
	Name                 string     `json:"name"`
	Type                 string     `json:"type"`
	Subject              string     `json:"subject"`
	Description          string     `json:"description"`
	DatabaseID           uuid.UUID  `json:"database_id"`
	TemplateID           *uuid.UUID `json:"template_id"`
	Sectors              []string   `json:"sectors"`
	SendDays             []int      `json:"send_days"`
	SendTimeStart        string     `json:"send_time_start"`
	SendTimeEnd          string     `json:"send_time_end"`
	EmailsPerCycle       int        `json:"emails_per_cycle"`
	CycleIntervalMinutes *int       `json:"cycle_interval_minutes"`
	TrackClicks          *bool      `json:"track_clicks"`
}

type CampaignDetails struct {
	*model.Campaign
	Stats map[string]int `json:"stats"`
}

type TestSendResult struct {
	Requested int `json:"requested"`
	Sent      int `json:"sent"`
}

type SendCampaignResult struct {
	CampaignID   uuid.UUID   `json:"campaign_id"`
	EmailsQueued int         `json:"emails_queued"`
	QueueItemIDs []uuid.UUID `json:"queue_item_ids"`
}

// scheduleOf builds the pacing schedule from stored campaign fields.
func scheduleOf(c *model.Campaign) schedule.Schedule {
	return schedule.Schedule{
		EmailsPerCycle:       c.EmailsPerCycle,
		CycleIntervalMinutes: c.CycleIntervalMinutes,
		SendDays:             c.SendDayInts(),
		SendTimeStart:        c.SendTimeStart,
		SendTimeEnd:          c.SendTimeEnd,
	}
}

// applyDefaults fills unset schedule fields before validation.
func (in *CampaignInput) applyDefaults() {
	if in.Type == "" {
		in.Type = "email"
	}
	if in.EmailsPerCycle == 0 {
		in.EmailsPerCycle = schedule.DefaultEmailsPerCycle
	}
	if in.CycleIntervalMinutes == nil {
		interval := schedule.DefaultCycleIntervalMinutes
		in.CycleIntervalMinutes = &interval
	}
	if len(in.SendDays) == 0 {
		in.SendDays = []int{1, 2, 3, 4, 5}
	}
	if in.SendTimeStart == "" {
		in.SendTimeStart = schedule.DefaultSendTimeStart
	}
	if in.SendTimeEnd == "" {
		in.SendTimeEnd = schedule.DefaultSendTimeEnd
	}
}

func (s *CampaignService) CreateCampaign(tenantID, createdBy uuid.UUID, in CampaignInput) (*model.Campaign, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("campaign name is required")
	}
	in.applyDefaults()

	sched := schedule.Schedule{
		EmailsPerCycle:       in.EmailsPerCycle,
		CycleIntervalMinutes: *in.CycleIntervalMinutes,
		SendDays:             in.SendDays,
		SendTimeStart:        in.SendTimeStart,
		SendTimeEnd:          in.SendTimeEnd,
	}
	if err := sched.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.Quotas.Check(tenantID, model.QuotaCampaigns, 1); err != nil {
		return nil, err
	}

	sendDays := make([]int64, len(in.SendDays))
	for i, d := range in.SendDays {
		sendDays[i] = int64(d)
	}

	campaign := &model.Campaign{
		ID:                   uuid.New(),
		TenantID:             tenantID,
		Name:                 in.Name,
		Type:                 in.Type,
		Subject:              in.Subject,
		Description:          in.Description,
		DatabaseID:           in.DatabaseID,
		TemplateID:           in.TemplateID,
		Status:               model.CampaignDraft,
		SendDays:             sendDays,
		SendTimeStart:        in.SendTimeStart,
		SendTimeEnd:          in.SendTimeEnd,
		EmailsPerCycle:       in.EmailsPerCycle,
		CycleIntervalMinutes: *in.CycleIntervalMinutes,
		CreatedBy:            createdBy,
	}
	if in.TrackClicks != nil {
		campaign.TrackClicks = *in.TrackClicks
	}

	if err := s.CampaignRepo.Create(campaign); err != nil {
		return nil, err
	}

	if campaign.Type == "email" {
		queued, err := s.enqueueDatabaseLeads(campaign, in.Sectors, nil)
		if err != nil {
			return nil, err
		}
		campaign.TotalLeads = queued
		if err := s.CampaignRepo.Update(campaign); err != nil {
			return nil, err
		}
	}

	if err := s.Quotas.Consume(tenantID, model.QuotaCampaigns, 1); err != nil {
		log.Warnln("⚠️ Failed to record campaign quota usage:", err)
	}

	log.Infof("✅ Campaign %s created with %d leads queued", campaign.ID, campaign.TotalLeads)
	return campaign, nil
}

// enqueueDatabaseLeads queues every sendable lead of the campaign's
// database, skipping any lead ID present in excluded.
func (s *CampaignService) enqueueDatabaseLeads(c *model.Campaign, sectors []string, excluded []uuid.UUID) (int, error) {
	leads, err := s.LeadRepo.ListByDatabase(c.TenantID, c.DatabaseID, sectors)
	if err != nil {
		return 0, err
	}

	if len(excluded) > 0 {
		skip := make(map[uuid.UUID]bool, len(excluded))
		for _, id := range excluded {
			skip[id] = true
		}
		kept := leads[:0]
		for _, lead := range leads {
			if !skip[lead.ID] {
				kept = append(kept, lead)
			}
		}
		leads = kept
	}

	return s.QueueRepo.EnqueueLeads(c.ID, c.TenantID, leads)
}

func (s *CampaignService) GetCampaign(tenantID, id uuid.UUID) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(tenantID, id)
}

func (s *CampaignService) ListCampaigns(tenantID uuid.UUID, offset, limit int, campaignType, status string) ([]*model.Campaign, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.CampaignRepo.List(tenantID, offset, limit, campaignType, status)
}

func (s *CampaignService) GetDetails(tenantID, id uuid.UUID) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.CampaignRepo.GetStats(id)
	if err != nil {
		return nil, err
	}
	return &CampaignDetails{Campaign: campaign, Stats: stats}, nil
}

func (s *CampaignService) UpdateCampaign(tenantID, id uuid.UUID, in CampaignInput) (*model.Campaign, error) {
	campaign, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == model.CampaignArchived {
		return nil, apperrors.NewInvalidTransition(campaign.Status, "updated")
	}

	if in.Name != "" {
		campaign.Name = in.Name
	}
	if in.Subject != "" {
		campaign.Subject = in.Subject
	}
	if in.Description != "" {
		campaign.Description = in.Description
	}
	if in.TemplateID != nil {
		campaign.TemplateID = in.TemplateID
	}
	if len(in.SendDays) > 0 {
		sendDays := make([]int64, len(in.SendDays))
		for i, d := range in.SendDays {
			sendDays[i] = int64(d)
		}
		campaign.SendDays = sendDays
	}
	if in.SendTimeStart != "" {
		campaign.SendTimeStart = in.SendTimeStart
	}
	if in.SendTimeEnd != "" {
		campaign.SendTimeEnd = in.SendTimeEnd
	}
	if in.EmailsPerCycle > 0 {
		campaign.EmailsPerCycle = in.EmailsPerCycle
	}
	if in.CycleIntervalMinutes != nil {
		campaign.CycleIntervalMinutes = *in.CycleIntervalMinutes
	}
	if in.TrackClicks != nil {
		campaign.TrackClicks = *in.TrackClicks
	}

	if err := scheduleOf(campaign).Validate(); err != nil {
		return nil, err
	}
	if err := s.CampaignRepo.Update(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *CampaignService) DeleteCampaign(tenantID, id uuid.UUID) error {
	campaign, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return err
	}
	if campaign.Status != model.CampaignDraft && campaign.Status != model.CampaignArchived {
		return apperrors.NewInvalidTransition(campaign.Status, "deleted")
	}
	if err := s.QueueRepo.DeleteByCampaign(id); err != nil {
		return err
	}
	return s.CampaignRepo.Delete(tenantID, id)
}

// StartCampaign activates a draft or paused campaign. The schedule is
// revalidated so a campaign with a broken window can never go live.
func (s *CampaignService) StartCampaign(tenantID, id uuid.UUID) (*model.Campaign, error) {
	campaign, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != model.CampaignDraft && campaign.Status != model.CampaignPaused {
		return nil, apperrors.NewInvalidTransition(campaign.Status, model.CampaignActive)
	}
	if err := scheduleOf(campaign).Validate(); err != nil {
		return nil, err
	}

	campaign.Status = model.CampaignActive
	if campaign.StartDate == nil {
		now := time.Now()
		campaign.StartDate = &now
	}
	if err := s.CampaignRepo.Update(campaign); err != nil {
		return nil, err
	}
	log.Infof("🚀 Campaign %s started", campaign.ID)
	return campaign, nil
}

func (s *CampaignService) PauseCampaign(tenantID, id uuid.UUID) (*model.Campaign, error) {
	return s.transition(tenantID, id, model.CampaignPaused, model.CampaignActive)
}

func (s *CampaignService) ResumeCampaign(tenantID, id uuid.UUID) (*model.Campaign, error) {
	return s.StartCampaign(tenantID, id)
}

func (s *CampaignService) StopCampaign(tenantID, id uuid.UUID) (*model.Campaign, error) {
	return s.transition(tenantID, id, model.CampaignStopped,
		model.CampaignActive, model.CampaignPaused, model.CampaignTracking)
}

func (s *CampaignService) ArchiveCampaign(tenantID, id uuid.UUID) (*model.Campaign, error) {
	return s.transition(tenantID, id, model.CampaignArchived,
		model.CampaignDraft, model.CampaignPaused, model.CampaignStopped, model.CampaignTracking)
}

func (s *CampaignService) UnarchiveCampaign(tenantID, id uuid.UUID) (*model.Campaign, error) {
	return s.transition(tenantID, id, model.CampaignStopped, model.CampaignArchived)
}

func (s *CampaignService) transition(tenantID, id uuid.UUID, to string, from ...string) (*model.Campaign, error) {
	campaign, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, status := range from {
		if campaign.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.NewInvalidTransition(campaign.Status, to)
	}

	if err := s.CampaignRepo.UpdateStatus(tenantID, id, to); err != nil {
		return nil, err
	}
	campaign.Status = to
	return campaign, nil
}

// DuplicateCampaign copies a campaign as a fresh draft with its own
// queue built from the source database.
func (s *CampaignService) DuplicateCampaign(tenantID, userID, id uuid.UUID) (*model.Campaign, error) {
	src, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	return s.cloneCampaign(src, userID, src.Name+" (copie)", nil)
}

// RelaunchCampaign creates a follow-up campaign over the same database,
// excluding leads that bounced, unsubscribed or already clicked.
func (s *CampaignService) RelaunchCampaign(tenantID, userID, id uuid.UUID, name string) (*model.Campaign, error) {
	src, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	excluded, err := s.QueueRepo.ExcludedLeadIDs(id)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = src.Name + " (relance)"
	}
	return s.cloneCampaign(src, userID, name, excluded)
}

func (s *CampaignService) cloneCampaign(src *model.Campaign, userID uuid.UUID, name string, excludedLeads []uuid.UUID) (*model.Campaign, error) {
	if _, err := s.Quotas.Check(src.TenantID, model.QuotaCampaigns, 1); err != nil {
		return nil, err
	}

	clone := &model.Campaign{
		ID:                   uuid.New(),
		TenantID:             src.TenantID,
		Name:                 name,
		Type:                 src.Type,
		Subject:              src.Subject,
		Description:          src.Description,
		DatabaseID:           src.DatabaseID,
		TemplateID:           src.TemplateID,
		Status:               model.CampaignDraft,
		SendDays:             src.SendDays,
		SendTimeStart:        src.SendTimeStart,
		SendTimeEnd:          src.SendTimeEnd,
		EmailsPerCycle:       src.EmailsPerCycle,
		CycleIntervalMinutes: src.CycleIntervalMinutes,
		TrackClicks:          src.TrackClicks,
		CreatedBy:            userID,
	}

	if err := s.CampaignRepo.Create(clone); err != nil {
		return nil, err
	}

	queued, err := s.enqueueDatabaseLeads(clone, nil, excludedLeads)
	if err != nil {
		return nil, err
	}
	clone.TotalLeads = queued
	if err := s.CampaignRepo.Update(clone); err != nil {
		return nil, err
	}

	if err := s.Quotas.Consume(src.TenantID, model.QuotaCampaigns, 1); err != nil {
		log.Warnln("⚠️ Failed to record campaign quota usage:", err)
	}
	return clone, nil
}

// Estimate computes the projected send duration for the campaign's
// remaining recipients. Mode "calendar" walks real send days.
func (s *CampaignService) Estimate(tenantID, id uuid.UUID, mode string, now time.Time) (interface{}, error) {
	campaign, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	pending, err := s.QueueRepo.CountPending(id)
	if err != nil {
		return nil, err
	}
	return scheduleOf(campaign).EstimateFor(pending, mode, now)
}

// TestSend delivers up to TestSendCap rendered previews to the
// requester's address without touching queue state.
func (s *CampaignService) TestSend(ctx context.Context, tenantID, id uuid.UUID, recipient string) (*TestSendResult, error) {
	if recipient == "" {
		return nil, fmt.Errorf("recipient email is required")
	}

	campaign, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	body, err := campaignContent(s.TemplateRepo, campaign)
	if err != nil {
		return nil, err
	}

	items, err := s.QueueRepo.PendingBatch(id, TestSendCap)
	if err != nil {
		return nil, err
	}

	mailer, settings, err := s.Mail.Outbound(tenantID)
	if err != nil {
		return nil, err
	}

	result := &TestSendResult{Requested: len(items)}
	for _, item := range items {
		lead, err := s.LeadRepo.GetByID(tenantID, item.LeadID)
		if err != nil {
			log.Warnln("⚠️ Test send skipped missing lead:", err)
			continue
		}

		err = mailer.Send(ctx, sender.Email{
			From:     settings.FromEmail,
			FromName: settings.FromName,
			To:       recipient,
			ReplyTo:  settings.ReplyTo,
			Subject:  "[TEST] " + campaign.Subject,
			HTMLBody: PersonalizeContent(body, lead),
		})
		if err != nil {
			log.Warnln("⚠️ Test send failed:", err)
			continue
		}
		result.Sent++
	}
	return result, nil
}

// SendCampaignEmails queues one immediate cycle of pending emails,
// bypassing the window gate. Used for manual dispatch.
func (s *CampaignService) SendCampaignEmails(tenantID, id uuid.UUID) (*SendCampaignResult, error) {
	campaign, err := s.CampaignRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != model.CampaignActive {
		return nil, apperrors.NewInvalidTransition(campaign.Status, "sending")
	}

	items, err := s.QueueRepo.PendingBatch(id, campaign.EmailsPerCycle)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &SendCampaignResult{CampaignID: id, QueueItemIDs: []uuid.UUID{}}, nil
	}

	if _, err := s.Quotas.Check(tenantID, model.QuotaEmail, len(items)); err != nil {
		return nil, err
	}

	result := &SendCampaignResult{CampaignID: id, QueueItemIDs: []uuid.UUID{}}
	for _, item := range items {
		job := queue.SendJob{QueueItemID: item.ID, CampaignID: id}
		if err := s.Queue.Publish(queue.SendTopic, job); err != nil {
			log.Warnln("⚠️ Failed to enqueue send job for item", item.ID, ":", err)
			continue
		}
		result.QueueItemIDs = append(result.QueueItemIDs, item.ID)
		result.EmailsQueued++
	}
	return result, nil
}

// campaignContent resolves the HTML content sent for a campaign,
// preferring its template over the inline description.
func campaignContent(templates repository.TemplateRepositoryInterface, c *model.Campaign) (string, error) {
	if c.TemplateID != nil {
		tmpl, err := templates.GetByID(c.TenantID, *c.TemplateID)
		if err != nil {
			return "", err
		}
		if tmpl != nil {
			return tmpl.HTMLBody, nil
		}
	}
	if c.Description != "" {
		return c.Description, nil
	}
	return "", fmt.Errorf("campaign %s has no content to send", c.ID)
}
