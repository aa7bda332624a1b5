package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
	"github.com/leadsynch/leadsynch-backend/internal/sender"
)

type MailingService struct {
	SettingsRepo repository.MailingSettingsRepositoryInterface

	// Platform defaults, used when the tenant has not configured
	// its own provider key.
	DefaultSender    sender.Sender
	DefaultFromEmail string
	DefaultReplyTo   string
}

// Get returns the tenant settings with the API key masked.
func (s *MailingService) Get(tenantID uuid.UUID) (*model.MailingSettings, error) {
	settings, err := s.SettingsRepo.Get(tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return &model.MailingSettings{
			TenantID:  tenantID,
			FromEmail: s.DefaultFromEmail,
			ReplyTo:   s.DefaultReplyTo,
			Provider:  "resend",
		}, nil
	}
	settings.APIKey = MaskAPIKey(settings.APIKey)
	return settings, nil
}

// Upsert saves tenant settings. An empty or masked APIKey in the
// payload keeps the stored key: settings forms echo back the masked
// form Get returns, and persisting it would destroy the real one.
func (s *MailingService) Upsert(settings *model.MailingSettings) (*model.MailingSettings, error) {
	if isMaskedKey(settings.APIKey) {
		settings.APIKey = ""
	}
	if err := s.SettingsRepo.Upsert(settings); err != nil {
		return nil, err
	}
	return s.Get(settings.TenantID)
}

// isMaskedKey recognizes the forms MaskAPIKey produces.
func isMaskedKey(key string) bool {
	return key == "****" || strings.Contains(key, "...")
}

// Outbound resolves the sender and envelope addresses for a tenant.
func (s *MailingService) Outbound(tenantID uuid.UUID) (sender.Sender, *model.MailingSettings, error) {
	settings, err := s.SettingsRepo.Get(tenantID)
	if err != nil {
		return nil, nil, err
	}

	if settings == nil || !settings.Configured || settings.APIKey == "" {
		return s.DefaultSender, &model.MailingSettings{
			TenantID:  tenantID,
			FromEmail: s.DefaultFromEmail,
			ReplyTo:   s.DefaultReplyTo,
		}, nil
	}

	return sender.NewResendSender(settings.APIKey), settings, nil
}

// SendTest sends a single verification email with the tenant's
// current configuration.
func (s *MailingService) SendTest(ctx context.Context, tenantID uuid.UUID, to string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient email is required")
	}

	mailer, settings, err := s.Outbound(tenantID)
	if err != nil {
		return err
	}

	return mailer.Send(ctx, sender.Email{
		From:     settings.FromEmail,
		FromName: settings.FromName,
		To:       to,
		ReplyTo:  settings.ReplyTo,
		Subject:  "LeadSynch - Email de test",
		HTMLBody: "<p>Votre configuration email fonctionne correctement.</p>",
	})
}

// MaskAPIKey hides the middle of a provider key, keeping the first 8
// and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}
