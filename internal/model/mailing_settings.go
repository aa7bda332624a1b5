package model

import (
	"time"

	"github.com/google/uuid"
)

type MailingSettings struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	TenantID   uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	FromEmail  string     `db:"from_email" json:"from_email"`
	FromName   string     `db:"from_name" json:"from_name"`
	ReplyTo    string     `db:"reply_to" json:"reply_to"`
	Provider   string     `db:"provider" json:"provider"`
	APIKey     string     `db:"api_key" json:"api_key"`
	Configured bool       `db:"configured" json:"configured"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
