package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

type MailingSettingsRepositoryInterface interface {
	Get(tenantID uuid.UUID) (*model.MailingSettings, error)
	Upsert(settings *model.MailingSettings) error
}

type MailingSettingsRepository struct {
	DB *sql.DB
}

func (r *MailingSettingsRepository) Get(tenantID uuid.UUID) (*model.MailingSettings, error) {
	var s model.MailingSettings
	err := r.DB.QueryRow(`
        SELECT id, tenant_id, from_email, from_name, reply_to, provider, api_key, configured, created_at, updated_at
        FROM mailing_settings WHERE tenant_id=$1`,
		tenantID,
	).Scan(&s.ID, &s.TenantID, &s.FromEmail, &s.FromName, &s.ReplyTo, &s.Provider, &s.APIKey, &s.Configured, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Upsert keeps the stored API key when the payload carries none (the
// UI sends back the masked key untouched).
func (r *MailingSettingsRepository) Upsert(s *model.MailingSettings) error {
	existing, err := r.Get(s.TenantID)
	if err != nil {
		return err
	}
	if existing != nil {
		if s.APIKey == "" {
			s.APIKey = existing.APIKey
		}
		_, err = r.DB.Exec(`
            UPDATE mailing_settings
            SET from_email=$1, from_name=$2, reply_to=$3, provider=$4, api_key=$5, configured=true, updated_at=NOW()
            WHERE tenant_id=$6`,
			s.FromEmail, s.FromName, s.ReplyTo, s.Provider, s.APIKey, s.TenantID,
		)
		return err
	}

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.Configured = true
	s.CreatedAt = time.Now()
	_, err = r.DB.Exec(`
        INSERT INTO mailing_settings (id, tenant_id, from_email, from_name, reply_to, provider, api_key, configured, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8)`,
		s.ID, s.TenantID, s.FromEmail, s.FromName, s.ReplyTo, s.Provider, s.APIKey, s.CreatedAt,
	)
	return err
}

var _ MailingSettingsRepositoryInterface = (*MailingSettingsRepository)(nil)
