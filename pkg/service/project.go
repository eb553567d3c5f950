package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/metrics"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
	"github.com/taskdesk/taskdesk/pkg/workflow"
)

type ProjectService struct {
	projects   *postgres.ProjectRepository
	policy     *policy.Policy
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

func NewProjectService(projects *postgres.ProjectRepository, pol *policy.Policy, dispatcher *events.Dispatcher, logger *zap.Logger) *ProjectService {
	return &ProjectService{projects: projects, policy: pol, dispatcher: dispatcher, logger: logger}
}

func (s *ProjectService) deny(action policy.Action, reason string) Result {
	metrics.PolicyDenialsTotal.WithLabelValues(string(action)).Inc()
	return Forbidden(reason)
}

type CreateProjectInput struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	DepartmentID uuid.UUID  `json:"departmentId"`
	BeginDate    *time.Time `json:"beginDate"`
	EndDate      *time.Time `json:"endDate"`
}

func (s *ProjectService) Create(ctx context.Context, actor policy.Actor, in CreateProjectInput) Result {
	if d := s.policy.Authorize(actor, policy.ProjectCreate, policy.Context{}); !d.Allowed {
		return s.deny(policy.ProjectCreate, d.Reason)
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return BadRequest("thiếu tên dự án")
	}
	if in.DepartmentID == uuid.Nil {
		return BadRequest("thiếu phòng ban")
	}

	exists, err := s.projects.NameExists(ctx, in.Name, nil)
	if err != nil {
		s.logger.Error("project name check failed", zap.Error(err))
		return Internal()
	}
	if exists {
		return BadRequest("tên dự án đã tồn tại")
	}

	project := &model.Project{
		Name:         in.Name,
		Description:  in.Description,
		DepartmentID: in.DepartmentID,
		Status:       model.ProjectActive,
		BeginDate:    in.BeginDate,
		EndDate:      in.EndDate,
		CreatedByID:  &actor.AccountID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		s.logger.Error("project create failed", zap.String("name", in.Name), zap.Error(err))
		return Internal()
	}

	ev := events.New(events.ProjectCreated, actor.AccountID)
	ev.ActorName = actor.Username
	ev.ProjectID = &project.ID
	ev.ProjectName = project.Name
	ev.DepartmentID = &project.DepartmentID
	ev.TargetType = "project"
	ev.TargetID = project.ID.String()
	s.dispatcher.Dispatch(ctx, ev)

	return Created(project)
}

func (s *ProjectService) List(ctx context.Context, actor policy.Actor, status string) Result {
	if d := s.policy.Authorize(actor, policy.ProjectView, policy.Context{}); !d.Allowed {
		return s.deny(policy.ProjectView, d.Reason)
	}

	filter := postgres.ProjectFilter{Status: status}
	// Leaders and Staff see only their department's projects.
	if actor.Role == policy.RoleLeader || actor.Role == policy.RoleStaff {
		if actor.DepartmentID == nil {
			return OK([]model.Project{})
		}
		filter.DepartmentID = actor.DepartmentID
	}

	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		s.logger.Error("project list failed", zap.Error(err))
		return Internal()
	}
	return OK(projects)
}

func (s *ProjectService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	if d := s.policy.Authorize(actor, policy.ProjectView, policy.Context{}); !d.Allowed {
		return s.deny(policy.ProjectView, d.Reason)
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("dự án không tồn tại")
		}
		s.logger.Error("project get failed", zap.Error(err))
		return Internal()
	}
	if project.IsDeleted {
		return NotFound("dự án không tồn tại")
	}
	if (actor.Role == policy.RoleLeader || actor.Role == policy.RoleStaff) && !actor.InDepartment(project.DepartmentID) {
		return Forbidden("chỉ được xem dự án thuộc phòng ban của mình")
	}
	return OK(project)
}

type UpdateProjectInput struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	DepartmentID *uuid.UUID `json:"departmentId"`
	Status       *string    `json:"status"`
	BeginDate    *time.Time `json:"beginDate"`
	EndDate      *time.Time `json:"endDate"`
}

// Update handles both PMO field edits and Director status transitions. A
// Director may write nothing but Status, and only the approval vocabulary.
func (s *ProjectService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdateProjectInput) Result {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("dự án không tồn tại")
		}
		s.logger.Error("project get failed", zap.Error(err))
		return Internal()
	}
	if project.IsDeleted {
		return NotFound("dự án không tồn tại")
	}

	if actor.Role == policy.RoleDirector {
		return s.transition(ctx, actor, project, in)
	}

	if d := s.policy.Authorize(actor, policy.ProjectUpdate, policy.Context{}); !d.Allowed {
		return s.deny(policy.ProjectUpdate, d.Reason)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return BadRequest("tên dự án không được để trống")
		}
		if name != project.Name {
			exists, err := s.projects.NameExists(ctx, name, &id)
			if err != nil {
				s.logger.Error("project name check failed", zap.Error(err))
				return Internal()
			}
			if exists {
				return BadRequest("tên dự án đã tồn tại")
			}
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.DepartmentID != nil {
		updates["department_id"] = *in.DepartmentID
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.BeginDate != nil {
		updates["begin_date"] = *in.BeginDate
	}
	if in.EndDate != nil {
		updates["end_date"] = *in.EndDate
	}
	if len(updates) == 0 {
		return BadRequest("không có trường nào để cập nhật")
	}

	if err := s.projects.Updates(ctx, id, updates); err != nil {
		s.logger.Error("project update failed", zap.String("project_id", id.String()), zap.Error(err))
		return Internal()
	}

	updated, err := s.projects.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("project reload failed", zap.Error(err))
		return Internal()
	}

	ev := events.New(events.ProjectUpdated, actor.AccountID)
	ev.ActorName = actor.Username
	ev.ProjectID = &id
	ev.ProjectName = updated.Name
	ev.DepartmentID = &updated.DepartmentID
	ev.TargetType = "project"
	ev.TargetID = id.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OK(updated)
}

func (s *ProjectService) transition(ctx context.Context, actor policy.Actor, project *model.Project, in UpdateProjectInput) Result {
	if in.Name != nil || in.Description != nil || in.DepartmentID != nil || in.BeginDate != nil || in.EndDate != nil {
		return s.deny(policy.ProjectTransition, "Giám đốc chỉ được thay đổi trạng thái dự án")
	}
	if in.Status == nil {
		return BadRequest("thiếu trạng thái dự án")
	}

	newStatus := workflow.Canonical(*in.Status)
	d := s.policy.Authorize(actor, policy.ProjectTransition, policy.Context{NewStatus: newStatus})
	if !d.Allowed {
		return s.deny(policy.ProjectTransition, d.Reason)
	}

	evType, err := workflow.ProjectTransitionEvent(newStatus)
	if err != nil {
		return BadRequest(err.Error())
	}

	if string(project.Status) == newStatus {
		return OK(project)
	}

	if err := s.projects.Updates(ctx, project.ID, map[string]interface{}{"status": newStatus}); err != nil {
		s.logger.Error("project transition failed", zap.String("project_id", project.ID.String()), zap.Error(err))
		return Internal()
	}
	project.Status = model.ProjectStatus(newStatus)

	ev := events.New(evType, actor.AccountID)
	ev.ActorName = actor.Username
	ev.ProjectID = &project.ID
	ev.ProjectName = project.Name
	ev.DepartmentID = &project.DepartmentID
	ev.TargetType = "project"
	ev.TargetID = project.ID.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OK(project)
}

func (s *ProjectService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	if d := s.policy.Authorize(actor, policy.ProjectDelete, policy.Context{}); !d.Allowed {
		return s.deny(policy.ProjectDelete, d.Reason)
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("dự án không tồn tại")
		}
		s.logger.Error("project get failed", zap.Error(err))
		return Internal()
	}
	if project.IsDeleted {
		return NotFound("dự án không tồn tại")
	}

	now := time.Now().UTC()
	err = s.projects.Updates(ctx, id, map[string]interface{}{
		"is_deleted": true,
		"deleted_at": now,
		"deleted_by": actor.AccountID,
		"status":     model.ProjectDeleted,
	})
	if err != nil {
		s.logger.Error("project delete failed", zap.String("project_id", id.String()), zap.Error(err))
		return Internal()
	}

	ev := events.New(events.ProjectDeleted, actor.AccountID)
	ev.ActorName = actor.Username
	ev.ProjectID = &id
	ev.ProjectName = project.Name
	ev.DepartmentID = &project.DepartmentID
	ev.TargetType = "project"
	ev.TargetID = id.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OKMessage("xóa dự án thành công")
}
