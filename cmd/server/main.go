package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/leadsynch/leadsynch-backend/internal/config"
	"github.com/leadsynch/leadsynch-backend/internal/controller"
	"github.com/leadsynch/leadsynch-backend/internal/db"
	"github.com/leadsynch/leadsynch-backend/internal/handler"
	"github.com/leadsynch/leadsynch-backend/internal/middleware"
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

	// Repositories
	campaignRepo := &repository.CampaignRepository{DB: database}
	leadRepo := &repository.LeadRepository{DB: database}
	queueRepo := &repository.EmailQueueRepository{DB: database}
	databaseRepo := &repository.LeadDatabaseRepository{DB: database}
	duplicateRepo := &repository.DuplicateRepository{DB: database}
	templateRepo := &repository.TemplateRepository{DB: database}
	settingsRepo := &repository.MailingSettingsRepository{DB: database}
	quotaRepo := &repository.QuotaRepository{DB: database}

	// Broker: RabbitMQ when configured, in-memory otherwise.
	var jobQueue queue.Queue
	amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL)
	if err != nil {
		log.Warnln("⚠️ RabbitMQ unavailable, using in-memory queue:", err)
		jobQueue = queue.NewInMemoryQueue()
	} else {
		defer amqpQueue.Close()
		jobQueue = amqpQueue
	}

	// Services
	quotaService := &service.QuotaService{QuotaRepo: quotaRepo}
	mailService := &service.MailingService{
		SettingsRepo:     settingsRepo,
		DefaultSender:    sender.NewResendSender(cfg.ResendAPIKey),
		DefaultFromEmail: cfg.FromEmail,
		DefaultReplyTo:   cfg.ReplyToEmail,
	}
	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		LeadRepo:     leadRepo,
		QueueRepo:    queueRepo,
		TemplateRepo: templateRepo,
		Quotas:       quotaService,
		Mail:         mailService,
		Queue:        jobQueue,
	}
	pacingService := &service.PacingService{
		CampaignRepo: campaignRepo,
		LeadRepo:     leadRepo,
		QueueRepo:    queueRepo,
		TemplateRepo: templateRepo,
		Quotas:       quotaService,
		Mail:         mailService,
	}
	dedupeService := &service.DedupeService{
		LeadRepo:      leadRepo,
		DuplicateRepo: duplicateRepo,
		QueueRepo:     queueRepo,
	}
	sectorService := &service.SectorService{LeadRepo: leadRepo}
	leadGenService := &service.LeadGenService{
		LeadRepo:     leadRepo,
		DatabaseRepo: databaseRepo,
		Dedupe:       dedupeService,
		Quotas:       quotaService,
		Generator:    &service.SampleGenerator{},
	}

	// The in-memory queue needs a local consumer; with RabbitMQ the
	// worker binary consumes instead.
	if inMemory, ok := jobQueue.(*queue.InMemoryQueue); ok {
		inMemory.Subscribe(queue.SendTopic, func(job queue.SendJob) error {
			return pacingService.HandleSendJob(context.Background(), job)
		})
	}

	// Controllers
	campaignController := &controller.CampaignController{CampaignService: campaignService}
	duplicateController := &controller.DuplicateController{DedupeService: dedupeService}
	databaseController := &controller.LeadDatabaseController{DatabaseRepo: databaseRepo, LeadRepo: leadRepo}
	sectorController := &controller.SectorController{SectorService: sectorService}
	mailingController := &controller.MailingController{MailingService: mailService}
	quotaController := &controller.QuotaController{QuotaService: quotaService}
	leadGenController := &controller.LeadGenController{LeadGenService: leadGenService}
	campaignHandler := handler.NewCampaignHandler(campaignService)

	r := chi.NewRouter()

	r.Get("/health", handler.HealthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		// Campaigns
		r.Post("/campaigns", campaignController.Create)
		r.Get("/campaigns", campaignController.List)
		r.Get("/campaigns/{id}", campaignController.Get)
		r.Put("/campaigns/{id}", campaignController.Update)
		r.Delete("/campaigns/{id}", campaignController.Delete)
		r.Get("/campaigns/{id}/stats", campaignHandler.StatsHandler)
		r.Get("/campaigns/{id}/estimate", campaignController.Estimate)
		r.Post("/campaigns/{id}/start", campaignController.Start)
		r.Post("/campaigns/{id}/pause", campaignController.Pause)
		r.Post("/campaigns/{id}/resume", campaignController.Resume)
		r.Post("/campaigns/{id}/stop", campaignController.Stop)
		r.Post("/campaigns/{id}/archive", campaignController.Archive)
		r.Post("/campaigns/{id}/unarchive", campaignController.Unarchive)
		r.Post("/campaigns/{id}/duplicate", campaignController.Duplicate)
		r.Post("/campaigns/{id}/relaunch", campaignController.Relaunch)
		r.Post("/campaigns/{id}/test-send", campaignController.TestSend)
		r.Post("/send-campaign-emails", campaignController.SendEmails)

		// Duplicates
		r.Get("/duplicates", duplicateController.Pending)
		r.Get("/duplicates/detect", duplicateController.Detect)
		r.Get("/duplicates/stats", duplicateController.Stats)
		r.Post("/duplicates/merge", duplicateController.Merge)
		r.Post("/duplicates/merge-auto", duplicateController.MergeAuto)
		r.Post("/duplicates/{id}/dismiss", duplicateController.Dismiss)

		// Lead databases
		r.Get("/lead-databases", databaseController.List)
		r.Post("/lead-databases", databaseController.Create)
		r.Get("/lead-databases/{id}", databaseController.Get)
		r.Patch("/lead-databases/{id}", databaseController.Patch)
		r.Delete("/lead-databases/{id}", databaseController.Delete)

		// Sectors
		r.Get("/sectors", sectorController.List)
		r.Put("/sectors", sectorController.Rename)
		r.Delete("/sectors", sectorController.Clear)
		r.Post("/sectors/merge", sectorController.Merge)

		// Mailing settings
		r.Get("/mailing-settings", mailingController.Get)
		r.Post("/mailing-settings", mailingController.Save)
		r.Post("/mailing-settings/test", mailingController.SendTest)

		// Quotas
		r.Get("/quotas", quotaController.List)
		r.Get("/quotas/status", quotaController.Get)

		// Lead generation (SSE)
		r.Post("/generate-leads-v2", leadGenController.Generate)
	})

	log.Infof("🚀 Server running on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
