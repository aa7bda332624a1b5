package model

import (
	"time"

	"github.com/google/uuid"
)

// Duplicate detection statuses.
const (
	DetectionPending   = "pending"
	DetectionMerged    = "merged"
	DetectionDismissed = "dismissed"
)

type DuplicateDetection struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	TenantID        uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	LeadID          uuid.UUID  `db:"lead_id" json:"lead_id"`
	DuplicateLeadID uuid.UUID  `db:"duplicate_lead_id" json:"duplicate_lead_id"`
	MatchType       string     `db:"match_type" json:"match_type"`
	MatchConfidence int        `db:"match_confidence" json:"match_confidence"`
	Status          string     `db:"status" json:"status"`
	MergedAt        *time.Time `db:"merged_at" json:"merged_at,omitempty"`
	MergedBy        *uuid.UUID `db:"merged_by" json:"merged_by,omitempty"`
	DismissedAt     *time.Time `db:"dismissed_at" json:"dismissed_at,omitempty"`
	DismissedBy     *uuid.UUID `db:"dismissed_by" json:"dismissed_by,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// PendingDuplicate is a detection joined with both leads, as listed in
// the review screen.
type PendingDuplicate struct {
	DuplicateDetection
	LeadCompany        string    `db:"lead_company" json:"lead_company"`
	LeadEmail          string    `db:"lead_email" json:"lead_email"`
	LeadCreatedAt      time.Time `db:"lead_created_at" json:"lead_created_at"`
	DuplicateCompany   string    `db:"duplicate_company" json:"duplicate_company"`
	DuplicateEmail     string    `db:"duplicate_email" json:"duplicate_email"`
	DuplicateCreatedAt time.Time `db:"duplicate_created_at" json:"duplicate_created_at"`
}
