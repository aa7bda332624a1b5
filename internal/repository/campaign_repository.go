package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
	"github.com/leadsynch/leadsynch-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(tenantID, id uuid.UUID) (*model.Campaign, error)
	List(tenantID uuid.UUID, offset, limit int, campaignType, status string) ([]*model.Campaign, int, error)
	Update(c *model.Campaign) error
	UpdateStatus(tenantID, id uuid.UUID, status string) error
	Delete(tenantID, id uuid.UUID) error

	// Pacing worker
	ListActiveEmailCampaigns() ([]*model.Campaign, error)
	MarkTracking(id uuid.UUID, until time.Time) error
	TouchCycle(id uuid.UUID, at time.Time) error
	UpdateSentCount(id uuid.UUID, sent int) error

	GetStats(campaignID uuid.UUID) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, tenant_id, name, type, subject, description, database_id, template_id,
		status, send_days, send_time_start, send_time_end, start_date,
		emails_per_cycle, cycle_interval_minutes, total_leads, sent_count,
		track_clicks, tracking_end_date, last_cycle_at, created_by, created_at, updated_at`

func (r *CampaignRepository) Create(c *model.Campaign) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	query := `
        INSERT INTO campaigns (
            id, tenant_id, name, type, subject, description, database_id, template_id,
            status, send_days, send_time_start, send_time_end, start_date,
            emails_per_cycle, cycle_interval_minutes, total_leads, track_clicks,
            created_by, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
    `
	_, err := r.DB.Exec(query,
		c.ID, c.TenantID, c.Name, c.Type, c.Subject, c.Description, c.DatabaseID, c.TemplateID,
		c.Status, c.SendDays, c.SendTimeStart, c.SendTimeEnd, c.StartDate,
		c.EmailsPerCycle, c.CycleIntervalMinutes, c.TotalLeads, c.TrackClicks,
		c.CreatedBy, c.CreatedAt,
	)
	return err
}

func (r *CampaignRepository) GetByID(tenantID, id uuid.UUID) (*model.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id=$1 AND tenant_id=$2`, campaignColumns)
	c, err := scanCampaign(r.DB.QueryRow(query, id, tenantID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List(tenantID uuid.UUID, offset, limit int, campaignType, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE tenant_id=$1`, campaignColumns)
	args := []interface{}{tenantID}
	argPos := 2

	if campaignType != "" {
		query += fmt.Sprintf(" AND type=$%d", argPos)
		args = append(args, campaignType)
		argPos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE tenant_id=$1`
	countArgs := []interface{}{tenantID}
	argPos = 2
	if campaignType != "" {
		countQuery += fmt.Sprintf(" AND type=$%d", argPos)
		countArgs = append(countArgs, campaignType)
		argPos++
	}
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPos)
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	query := `
        UPDATE campaigns
        SET name=$1, subject=$2, description=$3, template_id=$4,
            send_days=$5, send_time_start=$6, send_time_end=$7, start_date=$8,
            emails_per_cycle=$9, cycle_interval_minutes=$10, track_clicks=$11,
            updated_at=NOW()
        WHERE id=$12 AND tenant_id=$13
    `
	res, err := r.DB.Exec(query,
		c.Name, c.Subject, c.Description, c.TemplateID,
		c.SendDays, c.SendTimeStart, c.SendTimeEnd, c.StartDate,
		c.EmailsPerCycle, c.CycleIntervalMinutes, c.TrackClicks,
		c.ID, c.TenantID,
	)
	if err != nil {
		return err
	}
	return errIfNoRows(res, apperrors.NewCampaignNotFound(c.ID))
}

func (r *CampaignRepository) UpdateStatus(tenantID, id uuid.UUID, status string) error {
	res, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2 AND tenant_id=$3`,
		status, id, tenantID,
	)
	if err != nil {
		return err
	}
	return errIfNoRows(res, apperrors.NewCampaignNotFound(id))
}

func (r *CampaignRepository) Delete(tenantID, id uuid.UUID) error {
	res, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1 AND tenant_id=$2`, id, tenantID)
	if err != nil {
		return err
	}
	return errIfNoRows(res, apperrors.NewCampaignNotFound(id))
}

// ListActiveEmailCampaigns is cross-tenant: the pacing worker walks all
// active email campaigns, oldest first.
func (r *CampaignRepository) ListActiveEmailCampaigns() ([]*model.Campaign, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM campaigns WHERE status='active' AND type='email' ORDER BY created_at ASC`,
		campaignColumns)
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) MarkTracking(id uuid.UUID, until time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE campaigns SET status='tracking', tracking_end_date=$1, updated_at=NOW() WHERE id=$2`,
		until, id,
	)
	return err
}

func (r *CampaignRepository) TouchCycle(id uuid.UUID, at time.Time) error {
	_, err := r.DB.Exec(`UPDATE campaigns SET last_cycle_at=$1, updated_at=NOW() WHERE id=$2`, at, id)
	return err
}

func (r *CampaignRepository) UpdateSentCount(id uuid.UUID, sent int) error {
	_, err := r.DB.Exec(`UPDATE campaigns SET sent_count=$1, updated_at=NOW() WHERE id=$2`, sent, id)
	return err
}

func (r *CampaignRepository) GetStats(campaignID uuid.UUID) (map[string]int, error) {
	rows, err := r.DB.Query(
		`SELECT status, COUNT(*) FROM email_queue WHERE campaign_id=$1 GROUP BY status`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"total": 0, "pending": 0, "sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		if _, ok := stats[status]; ok {
			stats[status] = count
		}
		stats["total"] += count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Type, &c.Subject, &c.Description, &c.DatabaseID, &c.TemplateID,
		&c.Status, &c.SendDays, &c.SendTimeStart, &c.SendTimeEnd, &c.StartDate,
		&c.EmailsPerCycle, &c.CycleIntervalMinutes, &c.TotalLeads, &c.SentCount,
		&c.TrackClicks, &c.TrackingEndDate, &c.LastCycleAt, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func errIfNoRows(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
