package model

import (
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TenantID    uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	CompanyName string     `db:"company_name" json:"company_name"`
	ContactName string     `db:"contact_name" json:"contact_name"`
	Email       string     `db:"email" json:"email"`
	Phone       string     `db:"phone" json:"phone"`
	DirectLine  string     `db:"direct_line" json:"direct_line"`
	Siret       string     `db:"siret" json:"siret"`
	Website     string     `db:"website" json:"website"`
	Address     string     `db:"address" json:"address"`
	City        string     `db:"city" json:"city"`
	PostalCode  string     `db:"postal_code" json:"postal_code"`
	Sector      string     `db:"sector" json:"sector"`
	Status      string     `db:"status" json:"status"`
	IsDuplicate bool       `db:"is_duplicate" json:"is_duplicate"`
	DuplicateOf *uuid.UUID `db:"duplicate_of" json:"duplicate_of,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type LeadDatabase struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TenantID    uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	LeadsCount  int        `db:"leads_count" json:"leads_count"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// SectorCount is one row of the sector taxonomy view.
type SectorCount struct {
	Sector     string `db:"sector" json:"sector"`
	LeadsCount int    `db:"leads_count" json:"leads_count"`
}
