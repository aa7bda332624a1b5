package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

type LeadDatabaseRepositoryInterface interface {
	List(tenantID uuid.UUID) ([]model.LeadDatabase, error)
	GetByID(tenantID, id uuid.UUID) (*model.LeadDatabase, error)
	Create(db *model.LeadDatabase) error
	Patch(tenantID, id uuid.UUID, name, description *string) (*model.LeadDatabase, error)
	Delete(tenantID, id uuid.UUID) error
}

type LeadDatabaseRepository struct {
	DB *sql.DB
}

func (r *LeadDatabaseRepository) List(tenantID uuid.UUID) ([]model.LeadDatabase, error) {
	rows, err := r.DB.Query(`
        SELECT ld.id, ld.tenant_id, ld.name, ld.description,
               COUNT(ldr.lead_id) AS leads_count, ld.created_at, ld.updated_at
        FROM lead_databases ld
        LEFT JOIN lead_database_relations ldr ON ld.id = ldr.database_id
        WHERE ld.tenant_id=$1
        GROUP BY ld.id
        ORDER BY ld.created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	databases := []model.LeadDatabase{}
	for rows.Next() {
		var d model.LeadDatabase
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Name, &d.Description, &d.LeadsCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		databases = append(databases, d)
	}
	return databases, rows.Err()
}

func (r *LeadDatabaseRepository) GetByID(tenantID, id uuid.UUID) (*model.LeadDatabase, error) {
	var d model.LeadDatabase
	err := r.DB.QueryRow(`
        SELECT id, tenant_id, name, description, created_at, updated_at
        FROM lead_databases WHERE id=$1 AND tenant_id=$2`,
		id, tenantID,
	).Scan(&d.ID, &d.TenantID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *LeadDatabaseRepository) Create(db *model.LeadDatabase) error {
	if db.ID == uuid.Nil {
		db.ID = uuid.New()
	}
	db.CreatedAt = time.Now()
	_, err := r.DB.Exec(`
        INSERT INTO lead_databases (id, tenant_id, name, description, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		db.ID, db.TenantID, db.Name, db.Description, db.CreatedAt,
	)
	return err
}

func (r *LeadDatabaseRepository) Patch(tenantID, id uuid.UUID, name, description *string) (*model.LeadDatabase, error) {
	var d model.LeadDatabase
	err := r.DB.QueryRow(`
        UPDATE lead_databases
        SET name=COALESCE($1, name), description=COALESCE($2, description), updated_at=NOW()
        WHERE id=$3 AND tenant_id=$4
        RETURNING id, tenant_id, name, description, created_at, updated_at`,
		name, description, id, tenantID,
	).Scan(&d.ID, &d.TenantID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *LeadDatabaseRepository) Delete(tenantID, id uuid.UUID) error {
	if _, err := r.DB.Exec(`DELETE FROM lead_database_relations WHERE database_id=$1`, id); err != nil {
		return err
	}
	_, err := r.DB.Exec(`DELETE FROM lead_databases WHERE id=$1 AND tenant_id=$2`, id, tenantID)
	return err
}

var _ LeadDatabaseRepositoryInterface = (*LeadDatabaseRepository)(nil)
