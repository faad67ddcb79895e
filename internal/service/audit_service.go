package service

import (
	"context"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	// Authentication events
	AuditEventRegister    AuditEventType = "REGISTER"
	AuditEventLogin       AuditEventType = "LOGIN"
	AuditEventLoginFailed AuditEventType = "LOGIN_FAILED"
	AuditEventLogout      AuditEventType = "LOGOUT"

	// Team events
	AuditEventTeamCreated AuditEventType = "TEAM_CREATED"
	AuditEventTeamJoined  AuditEventType = "TEAM_JOINED"
	AuditEventSubmission  AuditEventType = "SUBMISSION"
)

// AuditService handles audit logging
type AuditService struct {
	logger *logging.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(logger *logging.Logger) *AuditService {
	return &AuditService{logger: logger}
}

// Log logs an event performed by principal. principal may be nil for
// failed attempts.
func (s *AuditService) Log(ctx context.Context, eventType AuditEventType, principal *models.Principal, ip string, details map[string]interface{}) {
	if s == nil || s.logger == nil {
		return
	}

	id, email := "-", "-"
	if principal != nil {
		id, email = principal.ID, principal.Email
	}

	s.logger.Info(
		"[AUDIT] %s | Principal: %s (%s) | IP: %s | Details: %v",
		eventType,
		id,
		email,
		ip,
		details,
	)
}

// LogFailure logs a rejected attempt at a warning level
func (s *AuditService) LogFailure(ctx context.Context, eventType AuditEventType, ip, reason string, err error) {
	if s == nil || s.logger == nil {
		return
	}

	details := map[string]interface{}{
		"reason": reason,
	}
	if err != nil {
		details["error"] = err.Error()
	}

	s.logger.Warn(
		"[AUDIT] %s | IP: %s | Reason: %s | Details: %v",
		eventType,
		ip,
		reason,
		details,
	)
}
