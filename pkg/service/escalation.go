package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/metrics"
	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
)

// EscalationService implements the out-of-band blocker-reporting path:
// Staff escalate to their department's Leaders, Leaders escalate to all PMO.
type EscalationService struct {
	tasks      *postgres.TaskRepository
	policy     *policy.Policy
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

func NewEscalationService(tasks *postgres.TaskRepository, pol *policy.Policy, dispatcher *events.Dispatcher, logger *zap.Logger) *EscalationService {
	return &EscalationService{tasks: tasks, policy: pol, dispatcher: dispatcher, logger: logger}
}

type EscalationInput struct {
	TaskID *uuid.UUID `json:"taskId"`
	Note   string     `json:"note"`
}

// ToLeader notifies the Leaders of the requester's department.
func (s *EscalationService) ToLeader(ctx context.Context, actor policy.Actor, in EscalationInput) Result {
	if d := s.policy.Authorize(actor, policy.EscalateToLeader, policy.Context{}); !d.Allowed {
		metrics.PolicyDenialsTotal.WithLabelValues(string(policy.EscalateToLeader)).Inc()
		return Forbidden(d.Reason)
	}
	if actor.DepartmentID == nil {
		return BadRequest("tài khoản của bạn chưa thuộc phòng ban nào")
	}

	ev := events.New(events.EscalatedToLeader, actor.AccountID)
	ev.ActorName = actor.Username
	ev.DepartmentID = actor.DepartmentID
	ev.Detail = strings.TrimSpace(in.Note)
	ev.TargetType = "escalation"

	if in.TaskID != nil {
		task, err := s.tasks.GetByID(ctx, *in.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("công việc không tồn tại")
			}
			s.logger.Error("task lookup failed", zap.Error(err))
			return Internal()
		}
		if task.IsDeleted {
			return NotFound("công việc không tồn tại")
		}
		taskID := task.ID
		ev.TaskID = &taskID
		ev.TaskTitle = task.Title
		ev.TargetID = task.ID.String()
	}

	s.dispatcher.Dispatch(ctx, ev)
	return OKMessage("đã gửi yêu cầu hỗ trợ đến trưởng phòng")
}

// ToPMO notifies every PMO account regardless of department.
func (s *EscalationService) ToPMO(ctx context.Context, actor policy.Actor, in EscalationInput) Result {
	if d := s.policy.Authorize(actor, policy.EscalateToPMO, policy.Context{}); !d.Allowed {
		metrics.PolicyDenialsTotal.WithLabelValues(string(policy.EscalateToPMO)).Inc()
		return Forbidden(d.Reason)
	}

	note := strings.TrimSpace(in.Note)
	if note == "" {
		return BadRequest("thiếu nội dung báo cáo")
	}

	ev := events.New(events.EscalatedToPMO, actor.AccountID)
	ev.ActorName = actor.Username
	ev.Detail = note
	ev.TargetType = "escalation"

	if in.TaskID != nil {
		task, err := s.tasks.GetByID(ctx, *in.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("công việc không tồn tại")
			}
			s.logger.Error("task lookup failed", zap.Error(err))
			return Internal()
		}
		if task.IsDeleted {
			return NotFound("công việc không tồn tại")
		}
		taskID := task.ID
		ev.TaskID = &taskID
		ev.TaskTitle = task.Title
		ev.TargetID = task.ID.String()
	}

	s.dispatcher.Dispatch(ctx, ev)
	return OKMessage("đã gửi báo cáo đến PMO")
}
