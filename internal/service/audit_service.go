package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/models"
)

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditService writes best-effort audit trail entries. Failures are logged, never returned.
type AuditService struct {
	repo   auditRepository
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record stores an entry for the actor. values is JSON-encoded into new_values.
func (s *AuditService) Record(ctx context.Context, actor models.Actor, action, resource, resourceID string, values interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if actor.ID != "" {
		id := actor.ID
		entry.UserID = &id
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if values != nil {
		payload, err := json.Marshal(values)
		if err == nil {
			entry.NewValues = payload
		}
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err),
		)
	}
}
