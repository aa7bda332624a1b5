package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/leadsynch/leadsynch-backend/internal/config"
	"github.com/leadsynch/leadsynch-backend/internal/db"
	"github.com/leadsynch/leadsynch-backend/internal/queue"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
	"github.com/leadsynch/leadsynch-backend/internal/sender"
	"github.com/leadsynch/leadsynch-backend/internal/service"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalln("❌ Failed to connect to database:", err)
	}
	defer database.Close()

	campaignRepo := &repository.CampaignRepository{DB: database}
	leadRepo := &repository.LeadRepository{DB: database}
	queueRepo := &repository.EmailQueueRepository{DB: database}
	templateRepo := &repository.TemplateRepository{DB: database}
	settingsRepo := &repository.MailingSettingsRepository{DB: database}
	quotaRepo := &repository.QuotaRepository{DB: database}

	quotaService := &service.QuotaService{QuotaRepo: quotaRepo}
	mailService := &service.MailingService{
		SettingsRepo:     settingsRepo,
		DefaultSender:    sender.NewResendSender(cfg.ResendAPIKey),
		DefaultFromEmail: cfg.FromEmail,
		DefaultReplyTo:   cfg.ReplyToEmail,
	}
	pacingService := &service.PacingService{
		CampaignRepo: campaignRepo,
		LeadRepo:     leadRepo,
		QueueRepo:    queueRepo,
		TemplateRepo: templateRepo,
		Quotas:       quotaService,
		Mail:         mailService,
	}

	// Consume queued send jobs from RabbitMQ.
	amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL)
	if err != nil {
		log.Warnln("⚠️ RabbitMQ unavailable, worker runs pacing only:", err)
	} else {
		defer amqpQueue.Close()
		err = amqpQueue.Subscribe(queue.SendTopic, func(job queue.SendJob) error {
			return pacingService.HandleSendJob(context.Background(), job)
		})
		if err != nil {
			log.Fatalln("❌ Failed to subscribe to send queue:", err)
		}
		log.Infof("📩 Consuming %s queue", queue.SendTopic)
	}

	log.Infof("🏁 Pacing worker started, interval %s", cfg.WorkerInterval)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for range ticker.C {
		report, err := pacingService.ProcessDueCampaigns(context.Background())
		if err != nil {
			log.Errorln("❌ Pacing cycle failed:", err)
			continue
		}
		if report.Examined > 0 {
			log.Infof("📤 Pacing cycle: %d campaigns examined, %d emails sent, %d skipped, %d drained",
				report.Examined, report.Sent, report.Skipped, report.Drained)
		}
	}
}
