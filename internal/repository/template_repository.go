package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

type TemplateRepositoryInterface interface {
	GetByID(tenantID, id uuid.UUID) (*model.EmailTemplate, error)
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) GetByID(tenantID, id uuid.UUID) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	err := r.DB.QueryRow(`
        SELECT id, tenant_id, name, subject, html_body, created_at
        FROM email_templates WHERE id=$1 AND tenant_id=$2`,
		id, tenantID,
	).Scan(&t.ID, &t.TenantID, &t.Name, &t.Subject, &t.HTMLBody, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
