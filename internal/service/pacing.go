package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/queue"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
	"github.com/leadsynch/leadsynch-backend/internal/sender"
)

// TrackingPeriod is how long a drained campaign keeps collecting
// opens and clicks before it is considered finished.
const TrackingPeriod = 15 * 24 * time.Hour

// PacingService runs the periodic send cycles for active email
// campaigns, honoring each campaign's window and cycle interval.
type PacingService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	LeadRepo     repository.LeadRepositoryInterface
	QueueRepo    repository.EmailQueueRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	Quotas       *QuotaService
	Mail         *MailingService

	// Clock is swappable in tests. Defaults to time.Now.
	Clock func() time.Time
}

func (s *PacingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// CycleReport summarizes one pacing pass.
type CycleReport struct {
	Examined int
	Sent     int
	Skipped  int
	Drained  int
}

// ProcessDueCampaigns runs one pacing pass over all active email
// campaigns. A campaign sends at most one cycle per pass, and only
// when inside its window and past its cycle interval.
func (s *PacingService) ProcessDueCampaigns(ctx context.Context) (*CycleReport, error) {
	now := s.now()
	report := &CycleReport{}

	campaigns, err := s.CampaignRepo.ListActiveEmailCampaigns()
	if err != nil {
		return nil, err
	}
	report.Examined = len(campaigns)

	for _, campaign := range campaigns {
		sent, drained, err := s.processCampaign(ctx, campaign, now)
		if err != nil {
			log.Warnf("⚠️ Pacing cycle failed for campaign %s: %v", campaign.ID, err)
			continue
		}
		switch {
		case drained:
			report.Drained++
		case sent == 0:
			report.Skipped++
		default:
			report.Sent += sent
		}
	}

	return report, nil
}

func (s *PacingService) processCampaign(ctx context.Context, campaign *model.Campaign, now time.Time) (int, bool, error) {
	sched := scheduleOf(campaign)
	if err := sched.Validate(); err != nil {
		// A live campaign with a broken schedule never sends.
		return 0, false, err
	}

	if !sched.IsSendAllowed(now) {
		return 0, false, nil
	}

	// Enforce the pause between cycles from the last recorded cycle,
	// not from worker ticks, so restarts cannot compress the pacing.
	if campaign.LastCycleAt != nil {
		elapsed := now.Sub(*campaign.LastCycleAt)
		if elapsed < time.Duration(campaign.CycleIntervalMinutes)*time.Minute {
			return 0, false, nil
		}
	}

	batch, err := s.QueueRepo.PendingBatch(campaign.ID, campaign.EmailsPerCycle)
	if err != nil {
		return 0, false, err
	}

	if len(batch) == 0 {
		until := now.Add(TrackingPeriod)
		if err := s.CampaignRepo.MarkTracking(campaign.ID, until); err != nil {
			return 0, false, err
		}
		log.Infof("🏁 Campaign %s drained, tracking until %s", campaign.ID, until.Format(time.RFC3339))
		return 0, true, nil
	}

	if _, err := s.Quotas.Check(campaign.TenantID, model.QuotaEmail, len(batch)); err != nil {
		if apperrors.IsQuotaExceeded(err) {
			log.Warnf("⚠️ Campaign %s paused by email quota: %v", campaign.ID, err)
			return 0, false, nil
		}
		return 0, false, err
	}

	sent := 0
	for _, item := range batch {
		if err := s.deliver(ctx, campaign, &item); err != nil {
			log.Warnf("⚠️ Delivery failed for queue item %s: %v", item.ID, err)
			continue
		}
		sent++
	}

	if err := s.CampaignRepo.UpdateSentCount(campaign.ID, campaign.SentCount+sent); err != nil {
		return sent, false, err
	}
	if err := s.CampaignRepo.TouchCycle(campaign.ID, now); err != nil {
		return sent, false, err
	}
	if sent > 0 {
		if err := s.Quotas.Consume(campaign.TenantID, model.QuotaEmail, sent); err != nil {
			log.Warnln("⚠️ Failed to record email quota usage:", err)
		}
	}

	log.Infof("📤 Campaign %s cycle complete: %d/%d sent", campaign.ID, sent, len(batch))
	return sent, false, nil
}

// deliver renders and sends one queue item, then records the outcome.
func (s *PacingService) deliver(ctx context.Context, campaign *model.Campaign, item *model.EmailQueueItem) error {
	lead, err := s.LeadRepo.GetByID(item.TenantID, item.LeadID)
	if err != nil {
		markErr := s.QueueRepo.MarkFailed(item.ID, err.Error())
		if markErr != nil {
			log.Warnln("⚠️ Failed to record delivery failure:", markErr)
		}
		return err
	}

	body, err := campaignContent(s.TemplateRepo, campaign)
	if err != nil {
		return err
	}

	mailer, settings, err := s.Mail.Outbound(item.TenantID)
	if err != nil {
		return err
	}

	err = mailer.Send(ctx, sender.Email{
		From:     settings.FromEmail,
		FromName: settings.FromName,
		To:       item.RecipientEmail,
		ReplyTo:  settings.ReplyTo,
		Subject:  PersonalizeContent(campaign.Subject, lead),
		HTMLBody: PersonalizeContent(body, lead),
	})
	if err != nil {
		if markErr := s.QueueRepo.MarkFailed(item.ID, err.Error()); markErr != nil {
			log.Warnln("⚠️ Failed to record delivery failure:", markErr)
		}
		return err
	}

	return s.QueueRepo.MarkSent(item.ID)
}

// HandleSendJob processes one queued send job from the broker. Items
// that are no longer pending are acked without sending.
func (s *PacingService) HandleSendJob(ctx context.Context, job queue.SendJob) error {
	item, err := s.QueueRepo.GetByID(job.QueueItemID)
	if err != nil {
		return err
	}
	if item == nil || item.Status != model.EmailPending {
		return nil
	}

	campaign, err := s.CampaignRepo.GetByID(item.TenantID, item.CampaignID)
	if err != nil {
		return err
	}

	if err := s.deliver(ctx, campaign, item); err != nil {
		return err
	}
	if err := s.CampaignRepo.UpdateSentCount(campaign.ID, campaign.SentCount+1); err != nil {
		log.Warnln("⚠️ Failed to bump sent count:", err)
	}
	if err := s.Quotas.Consume(item.TenantID, model.QuotaEmail, 1); err != nil {
		log.Warnln("⚠️ Failed to record email quota usage:", err)
	}
	return nil
}
