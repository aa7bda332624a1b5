package model

import (
	"time"

	"github.com/google/uuid"
)

// Quota types.
const (
	QuotaEmail     = "email"
	QuotaLeads     = "leads"
	QuotaCampaigns = "campaigns"
)

// Unlimited marks a plan limit with no cap.
const Unlimited = -1

type Quota struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	TenantID   uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	QuotaType  string     `db:"quota_type" json:"quota_type"`
	PlanType   string     `db:"plan_type" json:"plan_type"`
	QuotaLimit int        `db:"quota_limit" json:"quota_limit"`
	QuotaUsed  int        `db:"quota_used" json:"quota_used"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// QuotaStatus is the evaluated quota returned to callers.
type QuotaStatus struct {
	QuotaType  string `json:"quota_type"`
	Allowed    bool   `json:"allowed"`
	Remaining  int    `json:"remaining"`
	Used       int    `json:"used"`
	Limit      int    `json:"limit"`
	Percentage int    `json:"percentage"`
	Plan       string `json:"plan"`
	Unlimited  bool   `json:"unlimited"`
}
