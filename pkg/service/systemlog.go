package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/audit"
	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
)

// SystemLogService serves the audit trail. Non-admin callers only see
// entries they produced themselves.
type SystemLogService struct {
	logs   *postgres.SystemLogRepository
	logger *zap.Logger
}

func NewSystemLogService(logs *postgres.SystemLogRepository, logger *zap.Logger) *SystemLogService {
	return &SystemLogService{logs: logs, logger: logger}
}

type ListSystemLogsInput struct {
	Action     string
	TargetType string
	TargetID   string
	From       *time.Time
	To         *time.Time
	ActorID    *uuid.UUID
	Limit      int
	Offset     int
}

func (s *SystemLogService) List(ctx context.Context, actor policy.Actor, in ListSystemLogsInput) Result {
	filter := postgres.SystemLogFilter{
		Action:     in.Action,
		ActorID:    in.ActorID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		From:       in.From,
		To:         in.To,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if actor.Role != policy.RoleAdmin {
		actorID := actor.AccountID
		filter.ActorID = &actorID
	}

	entries, total, err := s.logs.List(ctx, filter)
	if err != nil {
		s.logger.Error("system log list failed", zap.Error(err))
		return Internal()
	}

	return OK(map[string]interface{}{
		"logs":   entries,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Actions returns the known audit actions with their labels, for filter
// dropdowns.
func (s *SystemLogService) Actions(ctx context.Context) Result {
	return OK(audit.Actions())
}
