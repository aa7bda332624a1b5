package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

type DuplicateRepositoryInterface interface {
	Log(detection *model.DuplicateDetection) error
	Pending(tenantID uuid.UUID, limit int) ([]model.PendingDuplicate, error)
	PendingDetections(tenantID uuid.UUID, minConfidence int) ([]model.DuplicateDetection, error)
	GetByID(tenantID, id uuid.UUID) (*model.DuplicateDetection, error)
	MarkMerged(tenantID, keepLeadID, mergeLeadID, userID uuid.UUID) error
	Dismiss(tenantID, id, userID uuid.UUID) error
	Stats(tenantID uuid.UUID) (map[string]int, error)
}

type DuplicateRepository struct {
	DB *sql.DB
}

// Log records a detection once per lead pair.
func (r *DuplicateRepository) Log(d *model.DuplicateDetection) error {
	var existing uuid.UUID
	err := r.DB.QueryRow(`
        SELECT id FROM duplicate_detections
        WHERE tenant_id=$1
          AND ((lead_id=$2 AND duplicate_lead_id=$3) OR (lead_id=$3 AND duplicate_lead_id=$2))`,
		d.TenantID, d.LeadID, d.DuplicateLeadID,
	).Scan(&existing)
	if err == nil {
		d.ID = existing
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Status = model.DetectionPending
	d.CreatedAt = time.Now()
	_, err = r.DB.Exec(`
        INSERT INTO duplicate_detections (id, tenant_id, lead_id, duplicate_lead_id, match_type, match_confidence, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.TenantID, d.LeadID, d.DuplicateLeadID, d.MatchType, d.MatchConfidence, d.Status, d.CreatedAt,
	)
	return err
}

func (r *DuplicateRepository) Pending(tenantID uuid.UUID, limit int) ([]model.PendingDuplicate, error) {
	rows, err := r.DB.Query(`
        SELECT dd.id, dd.tenant_id, dd.lead_id, dd.duplicate_lead_id, dd.match_type,
               dd.match_confidence, dd.status, dd.created_at,
               l1.company_name, l1.email, l1.created_at,
               l2.company_name, l2.email, l2.created_at
        FROM duplicate_detections dd
        JOIN leads l1 ON dd.lead_id = l1.id
        JOIN leads l2 ON dd.duplicate_lead_id = l2.id
        WHERE dd.tenant_id=$1 AND dd.status='pending'
        ORDER BY dd.match_confidence DESC, dd.created_at DESC
        LIMIT $2`,
		tenantID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := []model.PendingDuplicate{}
	for rows.Next() {
		var p model.PendingDuplicate
		err := rows.Scan(
			&p.ID, &p.TenantID, &p.LeadID, &p.DuplicateLeadID, &p.MatchType,
			&p.MatchConfidence, &p.Status, &p.CreatedAt,
			&p.LeadCompany, &p.LeadEmail, &p.LeadCreatedAt,
			&p.DuplicateCompany, &p.DuplicateEmail, &p.DuplicateCreatedAt,
		)
		if err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *DuplicateRepository) PendingDetections(tenantID uuid.UUID, minConfidence int) ([]model.DuplicateDetection, error) {
	rows, err := r.DB.Query(`
        SELECT id, tenant_id, lead_id, duplicate_lead_id, match_type, match_confidence, status, created_at
        FROM duplicate_detections
        WHERE tenant_id=$1 AND status='pending' AND match_confidence >= $2
        ORDER BY match_confidence DESC`,
		tenantID, minConfidence,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	detections := []model.DuplicateDetection{}
	for rows.Next() {
		var d model.DuplicateDetection
		if err := rows.Scan(&d.ID, &d.TenantID, &d.LeadID, &d.DuplicateLeadID, &d.MatchType, &d.MatchConfidence, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}
	return detections, rows.Err()
}

func (r *DuplicateRepository) GetByID(tenantID, id uuid.UUID) (*model.DuplicateDetection, error) {
	var d model.DuplicateDetection
	err := r.DB.QueryRow(`
        SELECT id, tenant_id, lead_id, duplicate_lead_id, match_type, match_confidence, status, created_at
        FROM duplicate_detections WHERE id=$1 AND tenant_id=$2`,
		id, tenantID,
	).Scan(&d.ID, &d.TenantID, &d.LeadID, &d.DuplicateLeadID, &d.MatchType, &d.MatchConfidence, &d.Status, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// MarkMerged closes the detection regardless of which side was logged
// first.
func (r *DuplicateRepository) MarkMerged(tenantID, keepLeadID, mergeLeadID, userID uuid.UUID) error {
	_, err := r.DB.Exec(`
        UPDATE duplicate_detections
        SET status='merged', merged_at=NOW(), merged_by=$1
        WHERE tenant_id=$2
          AND ((lead_id=$3 AND duplicate_lead_id=$4) OR (lead_id=$4 AND duplicate_lead_id=$3))`,
		userID, tenantID, keepLeadID, mergeLeadID,
	)
	return err
}

func (r *DuplicateRepository) Dismiss(tenantID, id, userID uuid.UUID) error {
	res, err := r.DB.Exec(`
        UPDATE duplicate_detections
        SET status='dismissed', dismissed_at=NOW(), dismissed_by=$1
        WHERE id=$2 AND tenant_id=$3 AND status='pending'`,
		userID, id, tenantID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *DuplicateRepository) Stats(tenantID uuid.UUID) (map[string]int, error) {
	rows, err := r.DB.Query(`
        SELECT status, COUNT(*) FROM duplicate_detections WHERE tenant_id=$1 GROUP BY status`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "merged": 0, "dismissed": 0, "total": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

var _ DuplicateRepositoryInterface = (*DuplicateRepository)(nil)
