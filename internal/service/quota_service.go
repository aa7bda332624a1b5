package service

import (
	"github.com/google/uuid"
	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
	"github.com/leadsynch/leadsynch-backend/internal/model"
	"github.com/leadsynch/leadsynch-backend/internal/repository"
)

// planLimits maps plan type to per-quota limits. -1 means unlimited.
var planLimits = map[string]map[string]int{
	"FREE":       {model.QuotaEmail: 500, model.QuotaLeads: 1000, model.QuotaCampaigns: 3},
	"BASIC":      {model.QuotaEmail: 5000, model.QuotaLeads: 10000, model.QuotaCampaigns: 10},
	"PRO":        {model.QuotaEmail: 25000, model.QuotaLeads: 50000, model.QuotaCampaigns: 50},
	"ENTERPRISE": {model.QuotaEmail: model.Unlimited, model.QuotaLeads: model.Unlimited, model.QuotaCampaigns: model.Unlimited},
}

const defaultPlan = "FREE"

type QuotaService struct {
	QuotaRepo repository.QuotaRepositoryInterface
}

// getOrCreate lazily provisions a FREE quota row the first time a
// tenant touches a quota type. Unknown types are rejected before any
// row is written.
func (s *QuotaService) getOrCreate(tenantID uuid.UUID, quotaType string) (*model.Quota, error) {
	if _, known := planLimits[defaultPlan][quotaType]; !known {
		return nil, apperrors.NewUnknownQuotaType(quotaType)
	}

	quota, err := s.QuotaRepo.Get(tenantID, quotaType)
	if err != nil {
		return nil, err
	}
	if quota != nil {
		return quota, nil
	}

	quota = &model.Quota{
		ID:         uuid.New(),
		TenantID:   tenantID,
		QuotaType:  quotaType,
		PlanType:   defaultPlan,
		QuotaLimit: planLimits[defaultPlan][quotaType],
		QuotaUsed:  0,
	}
	if err := s.QuotaRepo.Insert(quota); err != nil {
		return nil, err
	}
	return quota, nil
}

// Status reports current usage for one quota type.
func (s *QuotaService) Status(tenantID uuid.UUID, quotaType string) (*model.QuotaStatus, error) {
	quota, err := s.getOrCreate(tenantID, quotaType)
	if err != nil {
		return nil, err
	}
	return statusOf(quota, 0), nil
}

// Check verifies that the tenant can consume amount more units. It
// returns ErrQuotaExceeded when the plan limit would be crossed.
func (s *QuotaService) Check(tenantID uuid.UUID, quotaType string, amount int) (*model.QuotaStatus, error) {
	quota, err := s.getOrCreate(tenantID, quotaType)
	if err != nil {
		return nil, err
	}

	status := statusOf(quota, amount)
	if !status.Allowed {
		return status, apperrors.NewQuotaExceeded(quotaType, quota.QuotaLimit, quota.QuotaUsed)
	}
	return status, nil
}

// Consume records amount units against the quota.
func (s *QuotaService) Consume(tenantID uuid.UUID, quotaType string, amount int) error {
	if _, err := s.getOrCreate(tenantID, quotaType); err != nil {
		return err
	}
	return s.QuotaRepo.Increment(tenantID, quotaType, amount)
}

// StatusAll reports every quota type for the tenant.
func (s *QuotaService) StatusAll(tenantID uuid.UUID) ([]*model.QuotaStatus, error) {
	statuses := make([]*model.QuotaStatus, 0, 3)
	for _, quotaType := range []string{model.QuotaEmail, model.QuotaLeads, model.QuotaCampaigns} {
		status, err := s.Status(tenantID, quotaType)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func statusOf(quota *model.Quota, amount int) *model.QuotaStatus {
	status := &model.QuotaStatus{
		QuotaType: quota.QuotaType,
		Used:      quota.QuotaUsed,
		Limit:     quota.QuotaLimit,
		Plan:      quota.PlanType,
		Unlimited: quota.QuotaLimit == model.Unlimited,
	}

	if status.Unlimited {
		status.Allowed = true
		status.Remaining = model.Unlimited
		return status
	}

	status.Remaining = quota.QuotaLimit - quota.QuotaUsed
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	status.Allowed = quota.QuotaUsed+amount <= quota.QuotaLimit
	if quota.QuotaLimit > 0 {
		status.Percentage = quota.QuotaUsed * 100 / quota.QuotaLimit
	}
	return status
}
