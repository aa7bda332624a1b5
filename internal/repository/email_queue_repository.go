package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

type EmailQueueRepositoryInterface interface {
	EnqueueLeads(campaignID, tenantID uuid.UUID, leads []model.Lead) (int, error)
	PendingBatch(campaignID uuid.UUID, limit int) ([]model.EmailQueueItem, error)
	CountPending(campaignID uuid.UUID) (int, error)
	GetByID(id uuid.UUID) (*model.EmailQueueItem, error)
	MarkSent(id uuid.UUID) error
	MarkFailed(id uuid.UUID, errorMessage string) error
	ExcludedLeadIDs(campaignID uuid.UUID) ([]uuid.UUID, error)
	ReassignLead(tenantID, fromLeadID, toLeadID uuid.UUID) error
	DeleteByCampaign(campaignID uuid.UUID) error
}

type EmailQueueRepository struct {
	DB *sql.DB
}

const queueColumns = `id, campaign_id, lead_id, tenant_id, recipient_email, status, error_message,
		retry_count, sent_at, bounced_at, unsubscribed_at, clicked_at, created_at, updated_at`

// EnqueueLeads inserts one pending row per lead with a usable email.
// Re-enqueueing the same lead for the same campaign is a no-op.
func (r *EmailQueueRepository) EnqueueLeads(campaignID, tenantID uuid.UUID, leads []model.Lead) (int, error) {
	query := `
        INSERT INTO email_queue (id, campaign_id, lead_id, tenant_id, recipient_email, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, 'pending', NOW(), NOW())
        ON CONFLICT (campaign_id, lead_id) DO NOTHING
    `
	queued := 0
	for _, lead := range leads {
		if lead.Email == "" {
			continue
		}
		res, err := r.DB.Exec(query, uuid.New(), campaignID, lead.ID, tenantID, lead.Email)
		if err != nil {
			return queued, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			queued++
		}
	}
	return queued, nil
}

// PendingBatch returns up to limit pending rows, oldest first, one send
// cycle's worth.
func (r *EmailQueueRepository) PendingBatch(campaignID uuid.UUID, limit int) ([]model.EmailQueueItem, error) {
	query := `SELECT ` + queueColumns + `
              FROM email_queue
              WHERE campaign_id=$1 AND status='pending'
              ORDER BY created_at ASC
              LIMIT $2`
	rows, err := r.DB.Query(query, campaignID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.EmailQueueItem{}
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *EmailQueueRepository) CountPending(campaignID uuid.UUID) (int, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM email_queue WHERE campaign_id=$1 AND status='pending'`,
		campaignID,
	).Scan(&count)
	return count, err
}

func (r *EmailQueueRepository) GetByID(id uuid.UUID) (*model.EmailQueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM email_queue WHERE id=$1`
	item, err := scanQueueItem(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (r *EmailQueueRepository) MarkSent(id uuid.UUID) error {
	_, err := r.DB.Exec(
		`UPDATE email_queue SET status='sent', sent_at=NOW(), error_message='', updated_at=NOW() WHERE id=$1`,
		id,
	)
	return err
}

func (r *EmailQueueRepository) MarkFailed(id uuid.UUID, errorMessage string) error {
	_, err := r.DB.Exec(
		`UPDATE email_queue
         SET status='failed', error_message=$1, retry_count=retry_count+1, updated_at=NOW()
         WHERE id=$2`,
		errorMessage, id,
	)
	return err
}

// ExcludedLeadIDs lists leads that bounced, unsubscribed or already
// clicked. They are never re-contacted on relaunch.
func (r *EmailQueueRepository) ExcludedLeadIDs(campaignID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.DB.Query(
		`SELECT DISTINCT lead_id FROM email_queue
         WHERE campaign_id=$1
         AND (bounced_at IS NOT NULL OR unsubscribed_at IS NOT NULL OR clicked_at IS NOT NULL)`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReassignLead re-points queue rows from a merged duplicate to the
// kept lead.
func (r *EmailQueueRepository) ReassignLead(tenantID, fromLeadID, toLeadID uuid.UUID) error {
	_, err := r.DB.Exec(
		`UPDATE email_queue SET lead_id=$1, updated_at=NOW() WHERE lead_id=$2 AND tenant_id=$3`,
		toLeadID, fromLeadID, tenantID,
	)
	return err
}

func (r *EmailQueueRepository) DeleteByCampaign(campaignID uuid.UUID) error {
	_, err := r.DB.Exec(`DELETE FROM email_queue WHERE campaign_id=$1`, campaignID)
	return err
}

func scanQueueItem(row rowScanner) (*model.EmailQueueItem, error) {
	var item model.EmailQueueItem
	err := row.Scan(
		&item.ID, &item.CampaignID, &item.LeadID, &item.TenantID, &item.RecipientEmail,
		&item.Status, &item.ErrorMessage, &item.RetryCount,
		&item.SentAt, &item.BouncedAt, &item.UnsubscribedAt, &item.ClickedAt,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

var _ EmailQueueRepositoryInterface = (*EmailQueueRepository)(nil)
