package model

import (
	"time"

	"github.com/google/uuid"
)

// Email queue item statuses.
const (
	EmailPending = "pending"
	EmailSent    = "sent"
	EmailFailed  = "failed"
)

type EmailQueueItem struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CampaignID     uuid.UUID  `db:"campaign_id" json:"campaign_id"`
	LeadID         uuid.UUID  `db:"lead_id" json:"lead_id"`
	TenantID       uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	RecipientEmail string     `db:"recipient_email" json:"recipient_email"`
	Status         string     `db:"status" json:"status"` // pending, sent, failed
	ErrorMessage   string     `db:"error_message" json:"error_message,omitempty"`
	RetryCount     int        `db:"retry_count" json:"retry_count"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	BouncedAt      *time.Time `db:"bounced_at" json:"bounced_at,omitempty"`
	UnsubscribedAt *time.Time `db:"unsubscribed_at" json:"unsubscribed_at,omitempty"`
	ClickedAt      *time.Time `db:"clicked_at" json:"clicked_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type EmailTemplate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	Subject   string    `db:"subject" json:"subject"`
	HTMLBody  string    `db:"html_body" json:"html_body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
