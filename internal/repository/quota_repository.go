package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

type QuotaRepositoryInterface interface {
	Get(tenantID uuid.UUID, quotaType string) (*model.Quota, error)
	Insert(q *model.Quota) error
	Increment(tenantID uuid.UUID, quotaType string, amount int) error
	ListByTenant(tenantID uuid.UUID) ([]model.Quota, error)
}

type QuotaRepository struct {
	DB *sql.DB
}

func (r *QuotaRepository) Get(tenantID uuid.UUID, quotaType string) (*model.Quota, error) {
	var q model.Quota
	err := r.DB.QueryRow(`
        SELECT id, tenant_id, quota_type, plan_type, quota_limit, quota_used, updated_at
        FROM quotas WHERE tenant_id=$1 AND quota_type=$2`,
		tenantID, quotaType,
	).Scan(&q.ID, &q.TenantID, &q.QuotaType, &q.PlanType, &q.QuotaLimit, &q.QuotaUsed, &q.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *QuotaRepository) Insert(q *model.Quota) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	_, err := r.DB.Exec(`
        INSERT INTO quotas (id, tenant_id, quota_type, plan_type, quota_limit, quota_used)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		q.ID, q.TenantID, q.QuotaType, q.PlanType, q.QuotaLimit, q.QuotaUsed,
	)
	return err
}

func (r *QuotaRepository) Increment(tenantID uuid.UUID, quotaType string, amount int) error {
	_, err := r.DB.Exec(`
        UPDATE quotas SET quota_used = quota_used + $1, updated_at=NOW()
        WHERE tenant_id=$2 AND quota_type=$3`,
		amount, tenantID, quotaType,
	)
	return err
}

func (r *QuotaRepository) ListByTenant(tenantID uuid.UUID) ([]model.Quota, error) {
	rows, err := r.DB.Query(`
        SELECT id, tenant_id, quota_type, plan_type, quota_limit, quota_used, updated_at
        FROM quotas WHERE tenant_id=$1 ORDER BY quota_type`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotas := []model.Quota{}
	for rows.Next() {
		var q model.Quota
		if err := rows.Scan(&q.ID, &q.TenantID, &q.QuotaType, &q.PlanType, &q.QuotaLimit, &q.QuotaUsed, &q.UpdatedAt); err != nil {
			return nil, err
		}
		quotas = append(quotas, q)
	}
	return quotas, rows.Err()
}

var _ QuotaRepositoryInterface = (*QuotaRepository)(nil)
