package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Campaign statuses.
const (
	CampaignDraft    = "draft"
	CampaignActive   = "active"
	CampaignPaused   = "paused"
	CampaignStopped  = "stopped"
	CampaignTracking = "tracking"
	CampaignArchived = "archived"
)

type Campaign struct {
	ID                   uuid.UUID     `db:"id" json:"id"`
	TenantID             uuid.UUID     `db:"tenant_id" json:"tenant_id"`
	Name                 string        `db:"name" json:"name"`
	Type                 string        `db:"type" json:"type"` // email, phoning
	Subject              string        `db:"subject" json:"subject"`
	Description          string        `db:"description" json:"description"`
	DatabaseID           uuid.UUID     `db:"database_id" json:"database_id"`
	TemplateID           *uuid.UUID    `db:"template_id" json:"template_id,omitempty"`
	Status               string        `db:"status" json:"status"`
	SendDays             pq.Int64Array `db:"send_days" json:"send_days"` // 1=Mon .. 7=Sun
	SendTimeStart        string        `db:"send_time_start" json:"send_time_start"`
	SendTimeEnd          string        `db:"send_time_end" json:"send_time_end"`
	StartDate            *time.Time    `db:"start_date" json:"start_date,omitempty"`
	EmailsPerCycle       int           `db:"emails_per_cycle" json:"emails_per_cycle"`
	CycleIntervalMinutes int           `db:"cycle_interval_minutes" json:"cycle_interval_minutes"`
	TotalLeads           int           `db:"total_leads" json:"total_leads"`
	SentCount            int           `db:"sent_count" json:"sent_count"`
	TrackClicks          bool          `db:"track_clicks" json:"track_clicks"`
	TrackingEndDate      *time.Time    `db:"tracking_end_date" json:"tracking_end_date,omitempty"`
	LastCycleAt          *time.Time    `db:"last_cycle_at" json:"last_cycle_at,omitempty"`
	CreatedBy            uuid.UUID     `db:"created_by" json:"created_by"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}

// SendDayInts converts the stored int64 array to plain ints.
func (c *Campaign) SendDayInts() []int {
	days := make([]int, len(c.SendDays))
	for i, d := range c.SendDays {
		days[i] = int(d)
	}
	return days
}
