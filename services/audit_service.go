package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
)

// AuditService пишет журнал действий. Запись fire-and-forget: отказ
// журнала никогда не валит основную операцию.
type AuditService interface {
	Record(ctx context.Context, actorID int, verb, objectType string, objectID int, metadata map[string]string)
}

type auditService struct {
	auditRepo repositories.AuditRepository
	clock     Clock
	logger    *slog.Logger
}

func NewAuditService(auditRepo repositories.AuditRepository, clock Clock, logger *slog.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		clock:     clock,
		logger:    logger,
	}
}

func (s *auditService) Record(ctx context.Context, actorID int, verb, objectType string, objectID int, metadata map[string]string) {
	event := &models.AuditEvent{
		When:       s.clock.Now(),
		ActorID:    &actorID,
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   strconv.Itoa(objectID),
		Metadata:   metadata,
	}
	if err := s.auditRepo.Insert(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			slog.String("verb", verb),
			slog.String("object_type", objectType),
			slog.Int("object_id", objectID),
			slog.Any("error", err),
		)
	}
}
