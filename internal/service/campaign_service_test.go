package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/schedule"
	"github.com/leadsynch/leadsynch-backend/internal/sender"
)

type serviceFixture struct {
	tenantID   uuid.UUID
	userID     uuid.UUID
	databaseID uuid.UUID

	campaignRepo *mockCampaignRepo
	queueRepo    *mockQueueRepo
	leadRepo     *mockLeadRepo
	quotaRepo    *mockQuotaRepo
	mailer       *sender.MockSender
	publisher    *mockPublisher

	campaigns *CampaignService
	pacing    *PacingService
}

func newServiceFixture(leadCount int) *serviceFixture {
	f := &serviceFixture{
		tenantID:     uuid.New(),
		userID:       uuid.New(),
		databaseID:   uuid.New(),
		campaignRepo: newMockCampaignRepo(),
		queueRepo:    newMockQueueRepo(),
		leadRepo:     newMockLeadRepo(),
		quotaRepo:    newMockQuotaRepo(),
		mailer:       sender.NewMockSender(),
		publisher:    &mockPublisher{},
	}

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < leadCount; i++ {
		lead := &model.Lead{
			ID:          uuid.New(),
			TenantID:    f.tenantID,
			CompanyName: fmt.Sprintf("Entreprise %d", i),
			ContactName: fmt.Sprintf("Contact %d", i),
			Email:       fmt.Sprintf("lead%d@example.com", i),
			Status:      "new",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		f.leadRepo.addToDatabase(f.databaseID, lead)
	}

	quotas := &QuotaService{QuotaRepo: f.quotaRepo}
	mail := &MailingService{
		SettingsRepo:     &mockSettingsRepo{},
		DefaultSender:    f.mailer,
		DefaultFromEmail: "contact@leadsynch.com",
	}

	f.campaigns = &CampaignService{
		CampaignRepo: f.campaignRepo,
		LeadRepo:     f.leadRepo,
		QueueRepo:    f.queueRepo,
		TemplateRepo: &mockTemplateRepo{},
		Quotas:       quotas,
		Mail:         mail,
		Queue:        f.publisher,
	}
	f.pacing = &PacingService{
		CampaignRepo: f.campaignRepo,
		LeadRepo:     f.leadRepo,
		QueueRepo:    f.queueRepo,
		TemplateRepo: &mockTemplateRepo{},
		Quotas:       quotas,
		Mail:         mail,
	}
	return f
}

func (f *serviceFixture) createCampaign(t *testing.T, in CampaignInput) *model.Campaign {
	t.Helper()
	if in.Name == "" {
		in.Name = "Prospection test"
	}
	if in.DatabaseID == uuid.Nil {
		in.DatabaseID = f.databaseID
	}
	if in.Subject == "" {
		in.Subject = "Bonjour {contact_name}"
	}
	if in.Description == "" {
		in.Description = "<p>Offre pour {company_name}</p>"
	}
	campaign, err := f.campaigns.CreateCampaign(f.tenantID, f.userID, in)
	require.NoError(t, err)
	return campaign
}

func TestCreateCampaignAppliesDefaults(t *testing.T) {
	f := newServiceFixture(8)

	campaign := f.createCampaign(t, CampaignInput{})

	assert.Equal(t, model.CampaignDraft, campaign.Status)
	assert.Equal(t, 50, campaign.EmailsPerCycle)
	assert.Equal(t, 10, campaign.CycleIntervalMinutes)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, campaign.SendDayInts())
	assert.Equal(t, "08:00", campaign.SendTimeStart)
	assert.Equal(t, "18:00", campaign.SendTimeEnd)
	assert.Equal(t, 8, campaign.TotalLeads)

	pending, err := f.queueRepo.CountPending(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, pending)
}

func TestUpdateCampaignKeepsTrackClicksWhenOmitted(t *testing.T) {
	f := newServiceFixture(4)

	enabled := true
	campaign := f.createCampaign(t, CampaignInput{TrackClicks: &enabled})
	require.True(t, campaign.TrackClicks)

	// A partial update without track_clicks must not reset it.
	updated, err := f.campaigns.UpdateCampaign(f.tenantID, campaign.ID, CampaignInput{Name: "Nouveau nom"})
	require.NoError(t, err)
	assert.Equal(t, "Nouveau nom", updated.Name)
	assert.True(t, updated.TrackClicks)

	disabled := false
	updated, err = f.campaigns.UpdateCampaign(f.tenantID, campaign.ID, CampaignInput{TrackClicks: &disabled})
	require.NoError(t, err)
	assert.False(t, updated.TrackClicks)
}

func TestCreateCampaignRejectsInvertedWindow(t *testing.T) {
	f := newServiceFixture(2)

	_, err := f.campaigns.CreateCampaign(f.tenantID, f.userID, CampaignInput{
		Name:          "Fenetre inversee",
		DatabaseID:    f.databaseID,
		SendTimeStart: "18:00",
		SendTimeEnd:   "08:00",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidSchedule(err))
}

func TestCreateCampaignQuotaExceeded(t *testing.T) {
	f := newServiceFixture(2)
	f.quotaRepo.Insert(&model.Quota{
		ID: uuid.New(), TenantID: f.tenantID,
		QuotaType: model.QuotaCampaigns, PlanType: "FREE",
		QuotaLimit: 3, QuotaUsed: 3,
	})

	_, err := f.campaigns.CreateCampaign(f.tenantID, f.userID, CampaignInput{
		Name:       "Une de trop",
		DatabaseID: f.databaseID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsQuotaExceeded(err))
}

func TestCampaignLifecycle(t *testing.T) {
	f := newServiceFixture(3)
	campaign := f.createCampaign(t, CampaignInput{})

	started, err := f.campaigns.StartCampaign(f.tenantID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignActive, started.Status)
	assert.NotNil(t, started.StartDate)

	paused, err := f.campaigns.PauseCampaign(f.tenantID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignPaused, paused.Status)

	resumed, err := f.campaigns.ResumeCampaign(f.tenantID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignActive, resumed.Status)

	stopped, err := f.campaigns.StopCampaign(f.tenantID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStopped, stopped.Status)

	archived, err := f.campaigns.ArchiveCampaign(f.tenantID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignArchived, archived.Status)

	restored, err := f.campaigns.UnarchiveCampaign(f.tenantID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStopped, restored.Status)
}

func TestPauseRequiresActiveCampaign(t *testing.T) {
	f := newServiceFixture(1)
	campaign := f.createCampaign(t, CampaignInput{})

	_, err := f.campaigns.PauseCampaign(f.tenantID, campaign.ID)
	require.Error(t, err)
	var transition *apperrors.ErrInvalidTransition
	assert.ErrorAs(t, err, &transition)
}

func TestTestSendCapsPreviews(t *testing.T) {
	f := newServiceFixture(8)
	campaign := f.createCampaign(t, CampaignInput{})

	result, err := f.campaigns.TestSend(context.Background(), f.tenantID, campaign.ID, "moi@exemple.fr")
	require.NoError(t, err)
	assert.Equal(t, 5, result.Requested)
	assert.Equal(t, 5, result.Sent)

	for _, email := range f.mailer.Sent {
		assert.Equal(t, "moi@exemple.fr", email.To)
	}

	// The real queue is untouched by a test send.
	pending, err := f.queueRepo.CountPending(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, pending)
}

func TestTestSendWithFewerPendingThanCap(t *testing.T) {
	f := newServiceFixture(2)
	campaign := f.createCampaign(t, CampaignInput{})

	result, err := f.campaigns.TestSend(context.Background(), f.tenantID, campaign.ID, "moi@exemple.fr")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 2, result.Sent)
}

func TestSendCampaignEmailsPublishesBatch(t *testing.T) {
	f := newServiceFixture(8)
	campaign := f.createCampaign(t, CampaignInput{})
	_, err := f.campaigns.StartCampaign(f.tenantID, campaign.ID)
	require.NoError(t, err)

	result, err := f.campaigns.SendCampaignEmails(f.tenantID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, result.EmailsQueued)
	assert.Len(t, f.publisher.published, 8)
}

func TestSendCampaignEmailsRequiresActive(t *testing.T) {
	f := newServiceFixture(2)
	campaign := f.createCampaign(t, CampaignInput{})

	_, err := f.campaigns.SendCampaignEmails(f.tenantID, campaign.ID)
	require.Error(t, err)
	var transition *apperrors.ErrInvalidTransition
	assert.ErrorAs(t, err, &transition)
}

func TestRelaunchExcludesEngagedLeads(t *testing.T) {
	f := newServiceFixture(6)
	campaign := f.createCampaign(t, CampaignInput{})

	// Two leads opted out or bounced in the first run.
	items, err := f.queueRepo.PendingBatch(campaign.ID, 2)
	require.NoError(t, err)
	f.queueRepo.excluded[campaign.ID] = []uuid.UUID{items[0].LeadID, items[1].LeadID}

	relaunch, err := f.campaigns.RelaunchCampaign(f.tenantID, f.userID, campaign.ID, "")
	require.NoError(t, err)
	assert.Equal(t, campaign.Name+" (relance)", relaunch.Name)
	assert.Equal(t, model.CampaignDraft, relaunch.Status)
	assert.Equal(t, 4, relaunch.TotalLeads)
}

func TestDuplicateCampaignCopiesSchedule(t *testing.T) {
	f := newServiceFixture(3)
	interval := 25
	campaign := f.createCampaign(t, CampaignInput{
		SendDays:             []int{2, 4},
		SendTimeStart:        "09:30",
		SendTimeEnd:          "12:00",
		EmailsPerCycle:       15,
		CycleIntervalMinutes: &interval,
	})

	copy, err := f.campaigns.DuplicateCampaign(f.tenantID, f.userID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.Name+" (copie)", copy.Name)
	assert.Equal(t, model.CampaignDraft, copy.Status)
	assert.Equal(t, []int{2, 4}, copy.SendDayInts())
	assert.Equal(t, "09:30", copy.SendTimeStart)
	assert.Equal(t, 15, copy.EmailsPerCycle)
	assert.Equal(t, 25, copy.CycleIntervalMinutes)
	assert.Equal(t, 0, copy.SentCount)
	assert.Equal(t, 3, copy.TotalLeads)
}

func TestDeleteCampaignRequiresDraftOrArchived(t *testing.T) {
	f := newServiceFixture(1)
	campaign := f.createCampaign(t, CampaignInput{})
	_, err := f.campaigns.StartCampaign(f.tenantID, campaign.ID)
	require.NoError(t, err)

	err = f.campaigns.DeleteCampaign(f.tenantID, campaign.ID)
	require.Error(t, err)
}

func TestEstimateUsesPendingRecipients(t *testing.T) {
	f := newServiceFixture(8)
	interval := 10
	campaign := f.createCampaign(t, CampaignInput{
		EmailsPerCycle:       4,
		CycleIntervalMinutes: &interval,
	})

	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	result, err := f.campaigns.Estimate(f.tenantID, campaign.ID, "", now)
	require.NoError(t, err)

	estimate, ok := result.(schedule.Estimate)
	require.True(t, ok)
	assert.Equal(t, 2, estimate.Cycles)
	assert.Equal(t, 22, estimate.TotalMinutes)

	calendarResult, err := f.campaigns.Estimate(f.tenantID, campaign.ID, "calendar", now)
	require.NoError(t, err)
	calendar, ok := calendarResult.(schedule.CalendarEstimate)
	require.True(t, ok)
	assert.False(t, calendar.Unbounded)
	assert.Equal(t, 1, calendar.CalendarDays)
}
