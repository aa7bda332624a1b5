package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
	"github.com/leadsynch/leadsynch-backend/internal/model"
)

type LeadRepositoryInterface interface {
	GetByID(tenantID, id uuid.UUID) (*model.Lead, error)
	Insert(lead *model.Lead) error
	AttachToDatabase(tenantID, leadID, databaseID uuid.UUID) error
	ListByDatabase(tenantID, databaseID uuid.UUID, sectors []string) ([]model.Lead, error)
	ListForDedup(tenantID uuid.UUID) ([]model.Lead, error)
	UpdateFields(tenantID, id uuid.UUID, fields map[string]string) error
	ArchiveAsDuplicate(tenantID, id, duplicateOf uuid.UUID) error
	ReassignRelations(tenantID, fromLeadID, toLeadID uuid.UUID) error

	SectorCounts(tenantID uuid.UUID) ([]model.SectorCount, error)
	RenameSector(tenantID uuid.UUID, oldName, newName string) (int, error)
	ClearSector(tenantID uuid.UUID, sector string) (int, error)
}

type LeadRepository struct {
	DB *sql.DB
}

const leadColumns = `id, tenant_id, company_name, contact_name, email, phone, direct_line, siret,
		website, address, city, postal_code, sector, status, is_duplicate, duplicate_of,
		created_at, updated_at`

func (r *LeadRepository) GetByID(tenantID, id uuid.UUID) (*model.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id=$1 AND tenant_id=$2`, leadColumns)
	lead, err := scanLead(r.DB.QueryRow(query, id, tenantID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewLeadNotFound(id)
		}
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) Insert(lead *model.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	lead.CreatedAt = time.Now()
	if lead.Status == "" {
		lead.Status = "new"
	}
	_, err := r.DB.Exec(`
        INSERT INTO leads (id, tenant_id, company_name, contact_name, email, phone, direct_line,
            siret, website, address, city, postal_code, sector, status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		lead.ID, lead.TenantID, lead.CompanyName, lead.ContactName, lead.Email, lead.Phone,
		lead.DirectLine, lead.Siret, lead.Website, lead.Address, lead.City, lead.PostalCode,
		lead.Sector, lead.Status, lead.CreatedAt,
	)
	return err
}

// AttachToDatabase links a lead to a lead database. Re-attaching is a
// no-op.
func (r *LeadRepository) AttachToDatabase(tenantID, leadID, databaseID uuid.UUID) error {
	_, err := r.DB.Exec(`
        INSERT INTO lead_database_relations (lead_id, database_id, tenant_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (lead_id, database_id) DO NOTHING`,
		leadID, databaseID, tenantID,
	)
	return err
}

// ListByDatabase returns the leads of one lead database, optionally
// restricted to a sector list. This is the campaign's recipient set.
func (r *LeadRepository) ListByDatabase(tenantID, databaseID uuid.UUID, sectors []string) ([]model.Lead, error) {
	query := fmt.Sprintf(`
        SELECT DISTINCT %s FROM leads l
        JOIN lead_database_relations ldr ON l.id = ldr.lead_id
        WHERE l.tenant_id=$1 AND ldr.database_id=$2 AND l.is_duplicate=false`,
		prefixColumns("l", leadColumns))
	args := []interface{}{tenantID, databaseID}
	if len(sectors) > 0 {
		query += ` AND l.sector = ANY($3)`
		args = append(args, pq.Array(sectors))
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// ListForDedup loads every live lead of the tenant, oldest first.
func (r *LeadRepository) ListForDedup(tenantID uuid.UUID) ([]model.Lead, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM leads
        WHERE tenant_id=$1 AND is_duplicate=false AND status NOT IN ('archived', 'lost')
        ORDER BY created_at ASC`, leadColumns)
	rows, err := r.DB.Query(query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// UpdateFields patches whitelisted columns (merge fills gaps on the
// kept lead). Columns come from dedupe.MergeFields, never from user
// input.
func (r *LeadRepository) UpdateFields(tenantID, id uuid.UUID, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	columns := make([]string, 0, len(fields))
	for col := range fields {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	query := `UPDATE leads SET `
	args := []interface{}{}
	for i, col := range columns {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("%s=$%d", col, i+1)
		args = append(args, fields[col])
	}
	query += fmt.Sprintf(", updated_at=NOW() WHERE id=$%d AND tenant_id=$%d", len(columns)+1, len(columns)+2)
	args = append(args, id, tenantID)

	_, err := r.DB.Exec(query, args...)
	return err
}

func (r *LeadRepository) ArchiveAsDuplicate(tenantID, id, duplicateOf uuid.UUID) error {
	_, err := r.DB.Exec(`
        UPDATE leads
        SET is_duplicate=true, duplicate_of=$1, status='archived', updated_at=NOW()
        WHERE id=$2 AND tenant_id=$3`,
		duplicateOf, id, tenantID,
	)
	return err
}

// ReassignRelations moves the merged lead's notes and follow-ups to the
// kept lead. The email queue is reassigned by EmailQueueRepository.
func (r *LeadRepository) ReassignRelations(tenantID, fromLeadID, toLeadID uuid.UUID) error {
	for _, table := range []string{"lead_notes", "follow_ups"} {
		query := fmt.Sprintf(`UPDATE %s SET lead_id=$1 WHERE lead_id=$2 AND tenant_id=$3`, table)
		if _, err := r.DB.Exec(query, toLeadID, fromLeadID, tenantID); err != nil {
			return err
		}
	}
	return nil
}

func (r *LeadRepository) SectorCounts(tenantID uuid.UUID) ([]model.SectorCount, error) {
	rows, err := r.DB.Query(`
        SELECT sector, COUNT(*) AS leads_count
        FROM leads
        WHERE tenant_id=$1 AND sector IS NOT NULL AND sector != ''
        GROUP BY sector
        ORDER BY leads_count DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []model.SectorCount{}
	for rows.Next() {
		var sc model.SectorCount
		if err := rows.Scan(&sc.Sector, &sc.LeadsCount); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func (r *LeadRepository) RenameSector(tenantID uuid.UUID, oldName, newName string) (int, error) {
	res, err := r.DB.Exec(
		`UPDATE leads SET sector=$1, updated_at=NOW() WHERE tenant_id=$2 AND sector=$3`,
		newName, tenantID, oldName,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *LeadRepository) ClearSector(tenantID uuid.UUID, sector string) (int, error) {
	res, err := r.DB.Exec(
		`UPDATE leads SET sector=NULL, updated_at=NOW() WHERE tenant_id=$1 AND sector=$2`,
		tenantID, sector,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanLead(row rowScanner) (*model.Lead, error) {
	var l model.Lead
	var sector sql.NullString
	err := row.Scan(
		&l.ID, &l.TenantID, &l.CompanyName, &l.ContactName, &l.Email, &l.Phone, &l.DirectLine,
		&l.Siret, &l.Website, &l.Address, &l.City, &l.PostalCode, &sector, &l.Status,
		&l.IsDuplicate, &l.DuplicateOf, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Sector = sector.String
	return &l, nil
}

func collectLeads(rows *sql.Rows) ([]model.Lead, error) {
	leads := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

func prefixColumns(prefix, columns string) string {
	out := ""
	for i, col := range splitColumns(columns) {
		if i > 0 {
			out += ", "
		}
		out += prefix + "." + col
	}
	return out
}

func splitColumns(columns string) []string {
	var out []string
	current := ""
	for _, r := range columns {
		switch r {
		case ',':
			out = append(out, current)
			current = ""
		case ' ', '\n', '\t':
		default:
			current += string(r)
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)
