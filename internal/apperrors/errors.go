package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID uuid.UUID
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

func NewCampaignNotFound(id uuid.UUID) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrLeadNotFound is returned when a lead does not exist for the tenant.
type ErrLeadNotFound struct {
	LeadID uuid.UUID
}

func (e *ErrLeadNotFound) Error() string {
	return fmt.Sprintf("lead %s not found", e.LeadID)
}

func NewLeadNotFound(id uuid.UUID) error {
	return &ErrLeadNotFound{LeadID: id}
}

// ErrInvalidSchedule marks a campaign schedule that must be rejected
// before any estimation or sending happens (inverted window, empty day
// set, zero batch size).
type ErrInvalidSchedule struct {
	Reason string
}

func (e *ErrInvalidSchedule) Error() string {
	return fmt.Sprintf("invalid schedule: %s", e.Reason)
}

func NewInvalidSchedule(reason string) error {
	return &ErrInvalidSchedule{Reason: reason}
}

// IsInvalidSchedule reports whether err is an ErrInvalidSchedule.
func IsInvalidSchedule(err error) bool {
	var e *ErrInvalidSchedule
	return errors.As(err, &e)
}

// ErrQuotaExceeded is returned when a tenant hits a plan limit.
type ErrQuotaExceeded struct {
	QuotaType string
	Limit     int
	Used      int
}

func (e *ErrQuotaExceeded) Error() string {
	return fmt.Sprintf("%s quota exceeded (%d/%d)", e.QuotaType, e.Used, e.Limit)
}

func NewQuotaExceeded(quotaType string, limit, used int) error {
	return &ErrQuotaExceeded{QuotaType: quotaType, Limit: limit, Used: used}
}

func IsQuotaExceeded(err error) bool {
	var e *ErrQuotaExceeded
	return errors.As(err, &e)
}

// ErrUnknownQuotaType is returned for quota types no plan defines.
type ErrUnknownQuotaType struct {
	QuotaType string
}

func (e *ErrUnknownQuotaType) Error() string {
	return fmt.Sprintf("unknown quota type %q", e.QuotaType)
}

func NewUnknownQuotaType(quotaType string) error {
	return &ErrUnknownQuotaType{QuotaType: quotaType}
}

func IsUnknownQuotaType(err error) bool {
	var e *ErrUnknownQuotaType
	return errors.As(err, &e)
}

// ErrInvalidTransition is returned on an illegal campaign status change.
type ErrInvalidTransition struct {
	From, To string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("cannot move campaign from %q to %q", e.From, e.To)
}

func NewInvalidTransition(from, to string) error {
	return &ErrInvalidTransition{From: from, To: to}
}
